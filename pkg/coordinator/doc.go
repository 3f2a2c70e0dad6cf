// Package coordinator serializes the fetch lifecycle of console listing pages.
//
// Listing pages are driven by several independently changing inputs: free
// text search, dropdown filters, pagination and sort order. Wiring each input
// to its own request produces request storms and races where a slow early
// response overwrites a fast later one. The coordinator centralizes all of
// that into one parameter fingerprint, one debounce timer and at most one
// outstanding request per page.
//
// # State Machine
//
// The transition logic is a pure function:
//
//	next, effects := coordinator.Step(state, event)
//
// Phases are Idle, Debouncing, InFlight, Settling and Closed. Events are
// mount, parameter change, debounce expiry, force refresh, fetch completion
// and unmount. Effects instruct the shell: arm or disarm the timer, cancel
// or dispatch an attempt, apply, confirm, degrade or discard a result. The
// machine holds fingerprints and sequence numbers only; payloads stay in the
// shell.
//
// # Behavior
//
//   - A parameter change restarts the debounce timer. Any burst of changes
//     inside the window results in one request for the final state.
//   - When the timer fires and the fingerprint equals the last applied key,
//     no request is issued.
//   - Mount fetches immediately, bypassing the debounce.
//   - Force refresh cancels in-flight work, clears the last-applied marker
//     and dispatches a revalidating fetch at once.
//   - A result is applied only when it carries the newest sequence number
//     and its captured fingerprint still equals the current parameters.
//     Everything else is dropped silently.
//   - A 304 for content the page already displays changes nothing.
//   - A failed fetch keeps previously loaded data when some exists, clears
//     to empty otherwise, and notifies the user.
//
// # Basic Usage
//
//	state := listing.NewState[api.Locale]()
//	coord, err := coordinator.New(coordinator.Config[api.Locale, LocaleFilters]{
//		Page:  "locales",
//		State: state,
//		Fetch: fetchLocales,
//	})
//	if err != nil {
//		return err
//	}
//	defer coord.Close()
//
//	coord.Mount(LocaleFilters{})               // immediate first fetch
//	coord.SetParams(LocaleFilters{Search: "p"}) // debounced
//	coord.ForceRefresh()                        // after a mutation
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - console_fetches_total{page,result} - Outcomes: applied, not_modified,
//     stale_dropped, error, skipped_duplicate, cancelled
//   - console_fetch_duration_seconds{page} - Attempt duration
//   - console_debounce_coalesced_total{page} - Changes absorbed by a window
package coordinator
