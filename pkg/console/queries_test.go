package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godevs04/taatom-admin-console/pkg/analytics"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
)

func testQuerySamples() []api.QuerySample {
	return []api.QuerySample{
		{ID: "q-1", Route: "/api/feed", Collection: "posts", Operation: "find", DurationMS: 120, RowCount: 40, Slow: true},
		{ID: "q-2", Route: "/api/feed", Collection: "posts", Operation: "find", DurationMS: 80, RowCount: 38},
		{ID: "q-3", Route: "/api/profile", Collection: "users", Operation: "findOne", DurationMS: 30, RowCount: 1},
		{ID: "q-4", Route: "/api/search", Collection: "locales", Operation: "aggregate", DurationMS: 250, RowCount: 200, Slow: true},
	}
}

func newTestQueryMonitorPage(t *testing.T, backend *stubBackend) *QueryMonitorPage {
	t.Helper()
	page, err := NewQueryMonitorPage(Config{Backend: backend, Sink: testSink(), Debounce: testDebounce})
	require.NoError(t, err)
	t.Cleanup(page.Close)
	return page
}

func TestQueryFilters_Snapshot(t *testing.T) {
	snap := QueryFilters{Route: "/api/feed", SlowOnly: true, MinDurationMS: 100}.Snapshot()

	assert.Equal(t, api.EndpointQueryStats, snap.Endpoint)
	assert.Equal(t, "/api/feed", snap.Query.Get("route"))
	assert.Equal(t, "true", snap.Query.Get("slowOnly"))
	assert.Equal(t, "100", snap.Query.Get("minDurationMs"))
}

func TestQueryMonitorPage_MountListsSamples(t *testing.T) {
	backend := newStubBackend()
	backend.setList(api.EndpointQueryStats, queryListBody(t, testQuerySamples(),
		&api.QueryStatistics{SlowCount: 2, AvgDurationMS: 120}))

	page := newTestQueryMonitorPage(t, backend)
	page.Mount(QueryFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 4 })

	require.NotNil(t, page.Statistics())
	assert.Equal(t, 2, page.Statistics().SlowCount)
	assert.InDelta(t, 120, page.Statistics().AvgDurationMS, 0.001)
}

func TestQueryMonitorPage_SlowestRoutes(t *testing.T) {
	backend := newStubBackend()
	backend.setList(api.EndpointQueryStats, queryListBody(t, testQuerySamples(), nil))

	page := newTestQueryMonitorPage(t, backend)
	page.Mount(QueryFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 4 })

	all := page.SlowestRoutes(0)
	assert.Equal(t, []analytics.Record{
		{Name: "/api/search", Value: 250},
		{Name: "/api/feed", Value: 100},
		{Name: "/api/profile", Value: 30},
	}, all)

	top := page.SlowestRoutes(2)
	require.Len(t, top, 2)
	assert.Equal(t, "/api/search", top[0].Name)
	assert.Equal(t, "/api/feed", top[1].Name)
}
