// Package console assembles the SuperAdmin page controllers. Each listing
// page owns a fetch coordinator, typed filters, and the operations its screen
// renders; the analytics page is a one-shot parallel dashboard load.
//
// # Pages
//
// LocalesPage manages place records: coordinated listing, validated create,
// update and delete forms, an optimistic active toggle, sequential bulk
// activation, duplicate scanning, and CSV/JSON export.
//
// UsersPage manages accounts with the same toggle, bulk and export
// operations. LogsPage and QueryMonitorPage are read-only diagnostic views;
// TripScoresPage lists aggregated travel scores with a distribution chart.
// AnalyticsPage loads every dashboard summary concurrently and reduces them
// to chart records.
//
// # Wiring
//
// Pages speak to the backend through the Backend interface, satisfied by
// *client.Client. Listing traffic flows through the fetch coordinator, so
// debouncing, cancellation, stale-result dropping and cache revalidation
// behave identically on every page. User-facing outcomes go to the
// configured notify.Sink; a zerolog sink is installed when none is given.
//
// # Basic Usage
//
//	restClient, err := client.New(client.DefaultConfig(redisClient, baseURL))
//	if err != nil {
//		return err
//	}
//
//	page, err := console.NewLocalesPage(console.Config{
//		Backend: restClient,
//		Sink:    toasts,
//	})
//	if err != nil {
//		return err
//	}
//	defer page.Close()
//
//	page.Mount(console.LocaleFilters{})
//	page.SetFilters(console.LocaleFilters{Search: "paris"})
package console
