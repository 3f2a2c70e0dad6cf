package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Godevs04/taatom-admin-console/internal/testutil"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/client"
	"github.com/Godevs04/taatom-admin-console/pkg/console"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available for integration testing: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// waitFor polls cond until it holds or the deadline passes. Coordinator
// fetches land on background goroutines, so state changes are eventual.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func localeBody(t *testing.T, locales ...api.Locale) string {
	t.Helper()

	if locales == nil {
		locales = []api.Locale{}
	}
	data, err := json.Marshal(api.LocaleList{
		Locales:    locales,
		Pagination: listing.Pagination{Page: 1, TotalPages: 1, Total: len(locales)},
	})
	if err != nil {
		t.Fatalf("Failed to marshal locale list: %v", err)
	}
	return string(data)
}

func integrationLocales() []api.Locale {
	created := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)
	return []api.Locale{
		{ID: "loc-1", Name: "Eiffel Tower", CountryCode: "FR", City: "Paris", Latitude: 48.8584, Longitude: 2.2945, Category: "landmark", Active: true, VisitCount: 120, CreatedAt: created},
		{ID: "loc-2", Name: "Louvre Museum", CountryCode: "FR", City: "Paris", Latitude: 48.8606, Longitude: 2.3376, Category: "museum", Active: true, VisitCount: 95, CreatedAt: created},
	}
}

func newConsoleClient(t *testing.T, redisClient *redis.Client, baseURL string) *client.Client {
	t.Helper()

	c, err := client.New(client.DefaultConfig(redisClient, baseURL))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestLocalesPageFullFlow drives a locales page against a live Redis cache
// and a mock backend: mount, debounced filter change, forced refresh
// answered by a 304.
func TestLocalesPageFullFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	locales := integrationLocales()
	allBody := localeBody(t, locales...)
	filteredBody := localeBody(t, locales[1])
	etag := `"console-etag-1"`

	mock.SetHandler(api.EndpointLocales, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == etag {
			w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
			w.WriteHeader(http.StatusNotModified)
			return
		}

		body := allBody
		if r.URL.Query().Get("search") == "louvre" {
			body = filteredBody
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", etag)
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})

	c := newConsoleClient(t, redisClient, mock.URL())
	defer c.Close()

	sink := notify.NewChannelSink(16)
	page, err := console.NewLocalesPage(console.Config{
		Backend:  c,
		Sink:     sink,
		Debounce: 25 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create locales page: %v", err)
	}
	defer page.Close()

	// Mount: first fetch goes to the network
	page.Mount(console.LocaleFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 2 }, "mounted page")
	if got := mock.PathCount(api.EndpointLocales); got != 1 {
		t.Errorf("After mount: list requests = %d, want 1", got)
	}

	// Filter change: debounce, then a fresh fetch for the new key
	page.SetFilters(console.LocaleFilters{Search: "louvre"})
	waitFor(t, func() bool { return len(page.Items()) == 1 }, "filtered page")
	if page.Items()[0].ID != "loc-2" {
		t.Errorf("Filtered item = %s, want loc-2", page.Items()[0].ID)
	}
	if got := mock.PathCount(api.EndpointLocales); got != 2 {
		t.Errorf("After filter: list requests = %d, want 2", got)
	}

	// Forced refresh: revalidates with a conditional request, keeps the rows
	page.Refresh()
	waitFor(t, func() bool { return mock.ConditionalCount() == 1 }, "conditional refresh")
	waitFor(t, func() bool { return !page.Fetching() }, "refresh to settle")
	if len(page.Items()) != 1 {
		t.Errorf("After 304 refresh: items = %d, want 1", len(page.Items()))
	}
	if got := mock.PathCount(api.EndpointLocales); got != 3 {
		t.Errorf("After refresh: list requests = %d, want 3", got)
	}
}

// TestToggleActivePersists verifies the optimistic toggle round trip: the
// PATCH goes out, the canonical record lands in page state, the cached list
// is dropped, and no list re-fetch happens until the page asks for one.
func TestToggleActivePersists(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	locales := integrationLocales()
	mock.SetResponse(api.EndpointLocales, testutil.NewListResponse(localeBody(t, locales...)))

	toggled := locales[0]
	toggled.Active = false
	toggledJSON, err := json.Marshal(toggled)
	if err != nil {
		t.Fatalf("Failed to marshal toggled locale: %v", err)
	}
	mock.SetResponse(api.EndpointLocales+"/loc-1", testutil.NewEnvelopeResponse(string(toggledJSON)))

	c := newConsoleClient(t, redisClient, mock.URL())
	defer c.Close()

	page, err := console.NewLocalesPage(console.Config{
		Backend:  c,
		Sink:     notify.NewChannelSink(16),
		Debounce: 25 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create locales page: %v", err)
	}
	defer page.Close()

	page.Mount(console.LocaleFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 2 }, "mounted page")

	ctx := context.Background()
	if err := page.ToggleActive(ctx, "loc-1"); err != nil {
		t.Fatalf("ToggleActive failed: %v", err)
	}

	if got := mock.PathCount(api.EndpointLocales + "/loc-1"); got != 1 {
		t.Errorf("PATCH requests = %d, want 1", got)
	}
	if got := mock.PathCount(api.EndpointLocales); got != 1 {
		t.Errorf("List requests after toggle = %d, want 1 (no re-fetch)", got)
	}

	items := page.Items()
	if len(items) != 2 || items[0].ID != "loc-1" || items[0].Active {
		t.Errorf("Toggled row not reconciled: %+v", items[0])
	}

	// The toggle invalidated the endpoint, so a refresh must go back to the
	// network with a plain request rather than replay the stale page.
	page.Refresh()
	waitFor(t, func() bool { return mock.PathCount(api.EndpointLocales) == 2 }, "post-toggle refresh")
	if got := mock.ConditionalCount(); got != 0 {
		t.Errorf("Conditional requests = %d, want 0 after invalidation", got)
	}
}

// TestSharedCacheAcrossClients verifies that two clients sharing one Redis
// see each other's cached pages, the way two console tabs would.
func TestSharedCacheAcrossClients(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse(api.EndpointLocales, testutil.NewListResponse(localeBody(t, integrationLocales()...)))

	first := newConsoleClient(t, redisClient, mock.URL())
	defer first.Close()
	second := newConsoleClient(t, redisClient, mock.URL())
	defer second.Close()

	ctx := context.Background()

	warm, err := first.FetchList(ctx, api.EndpointLocales, nil)
	if err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if warm.FromCache {
		t.Error("First fetch should hit the network")
	}

	shared, err := second.FetchList(ctx, api.EndpointLocales, nil)
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}
	if !shared.FromCache {
		t.Error("Second client should be served from the shared cache")
	}
	if string(shared.Body) != string(warm.Body) {
		t.Error("Shared cache returned a different body")
	}
	if got := mock.PathCount(api.EndpointLocales); got != 1 {
		t.Errorf("Backend requests = %d, want 1", got)
	}
}

// TestExportFetchedRows exports the rows a mounted page actually displays.
func TestExportFetchedRows(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse(api.EndpointLocales, testutil.NewListResponse(localeBody(t, integrationLocales()...)))

	c := newConsoleClient(t, redisClient, mock.URL())
	defer c.Close()

	page, err := console.NewLocalesPage(console.Config{
		Backend:  c,
		Sink:     notify.NewChannelSink(16),
		Debounce: 25 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create locales page: %v", err)
	}
	defer page.Close()

	page.Mount(console.LocaleFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 2 }, "mounted page")

	var out strings.Builder
	if err := page.ExportCSV(&out); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV lines = %d, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[1], "loc-1,Eiffel Tower,FR,Paris,") {
		t.Errorf("Unexpected first CSV row: %s", lines[1])
	}
}
