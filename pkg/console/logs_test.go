package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godevs04/taatom-admin-console/pkg/analytics"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
)

func testLogEntries() []api.LogEntry {
	return []api.LogEntry{
		{ID: "log-1", Level: "error", Category: "api", Message: "request exploded", Source: "backend"},
		{ID: "log-2", Level: "info", Category: "api", Message: "request served", Source: "backend"},
		{ID: "log-3", Level: "info", Category: "jobs", Message: "batch finished", Source: "worker"},
	}
}

func newTestLogsPage(t *testing.T, backend *stubBackend) *LogsPage {
	t.Helper()
	page, err := NewLogsPage(Config{Backend: backend, Sink: testSink(), Debounce: testDebounce})
	require.NoError(t, err)
	t.Cleanup(page.Close)
	return page
}

func TestLogFilters_Snapshot(t *testing.T) {
	snap := LogFilters{Search: "exploded", Level: "error", Category: "api", Limit: 50}.Snapshot()

	assert.Equal(t, api.EndpointLogs, snap.Endpoint)
	assert.Equal(t, "exploded", snap.Query.Get("search"))
	assert.Equal(t, "error", snap.Query.Get("level"))
	assert.Equal(t, "api", snap.Query.Get("category"))
	assert.Equal(t, "50", snap.Query.Get("limit"))
}

func TestLogsPage_LevelDistributionFromStatistics(t *testing.T) {
	backend := newStubBackend()
	backend.setList(api.EndpointLogs, logListBody(t, testLogEntries(),
		&api.LogStatistics{Debug: 4, Info: 120, Warn: 9, Error: 2}))

	page := newTestLogsPage(t, backend)
	page.Mount(LogFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 3 })

	assert.Equal(t, []analytics.Record{
		{Name: "debug", Value: 4},
		{Name: "info", Value: 120},
		{Name: "warn", Value: 9},
		{Name: "error", Value: 2},
	}, page.LevelDistribution())
}

func TestLogsPage_LevelDistributionCountsRows(t *testing.T) {
	backend := newStubBackend()
	backend.setList(api.EndpointLogs, logListBody(t, testLogEntries(), nil))

	page := newTestLogsPage(t, backend)
	page.Mount(LogFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 3 })

	assert.Equal(t, []analytics.Record{
		{Name: "info", Value: 2},
		{Name: "error", Value: 1},
	}, page.LevelDistribution())
}

func TestLogsPage_ExportCSV(t *testing.T) {
	backend := newStubBackend()
	backend.setList(api.EndpointLogs, logListBody(t, testLogEntries(), nil))

	page := newTestLogsPage(t, backend)
	page.Mount(LogFilters{})
	waitFor(t, func() bool { return len(page.Items()) == 3 })

	var buf bytes.Buffer
	require.NoError(t, page.ExportCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,level,category,message,source,requestId,createdAt", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "log-1,error,api,request exploded,backend,"))
}
