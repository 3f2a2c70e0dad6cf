package console

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Godevs04/taatom-admin-console/pkg/analytics"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/coordinator"
	"github.com/Godevs04/taatom-admin-console/pkg/export"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

// LogFilters are the Logs page controls. Logs arrive newest first; there is
// no sort control.
type LogFilters struct {
	Search   string
	Level    string
	Category string
	Page     int
	Limit    int
}

// Snapshot fingerprints the filters for fetch-key comparison.
func (f LogFilters) Snapshot() listing.Snapshot {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.Level != "" {
		query.Set("level", f.Level)
	}
	if f.Category != "" {
		query.Set("category", f.Category)
	}
	setPaging(query, f.Page, f.Limit)
	return listing.NewSnapshot(api.EndpointLogs, query)
}

// LogsPage is the read-only diagnostic log view with a level distribution
// summary and export.
type LogsPage struct {
	*pageCore[api.LogEntry, LogFilters]

	backend Backend
	sink    notify.Sink
	logger  zerolog.Logger

	mu    sync.Mutex
	stats *api.LogStatistics
}

// NewLogsPage creates the Logs page controller.
func NewLogsPage(cfg Config) (*LogsPage, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	sink := cfg.sinkOrDefault()
	page := &LogsPage{
		backend: cfg.Backend,
		sink:    sink,
		logger:  pageLogger(PageLogs),
	}

	core, err := newPageCore[api.LogEntry, LogFilters](PageLogs, page.fetch, cfg, sink)
	if err != nil {
		return nil, err
	}
	page.pageCore = core

	return page, nil
}

func (p *LogsPage) fetch(ctx context.Context, req coordinator.Request[LogFilters]) (*coordinator.Result[api.LogEntry], error) {
	raw, err := listFetch(ctx, p.backend, req)
	if err != nil {
		return nil, err
	}

	list, err := api.DecodeLogList(raw.Body)
	if err != nil {
		return nil, err
	}

	return &coordinator.Result[api.LogEntry]{
		Items:       list.Logs,
		Pagination:  list.Pagination,
		NotModified: raw.NotModified,
		OnApply:     func() { p.setStatistics(list.Statistics) },
	}, nil
}

func (p *LogsPage) setStatistics(stats *api.LogStatistics) {
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

// Statistics returns the level distribution block of the displayed response,
// nil when the backend sent none.
func (p *LogsPage) Statistics() *api.LogStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// LevelDistribution returns level counts for the distribution chart. The
// server statistics block covers the whole filtered set when present;
// otherwise the displayed rows are counted.
func (p *LogsPage) LevelDistribution() []analytics.Record {
	p.mu.Lock()
	stats := p.stats
	p.mu.Unlock()

	return levelRecords(stats, p.state.Items())
}

// levelRecords turns a statistics block into chart records, falling back to
// counting the given entries when the block is absent.
func levelRecords(stats *api.LogStatistics, entries []api.LogEntry) []analytics.Record {
	if stats != nil {
		return []analytics.Record{
			{Name: "debug", Value: float64(stats.Debug)},
			{Name: "info", Value: float64(stats.Info)},
			{Name: "warn", Value: float64(stats.Warn)},
			{Name: "error", Value: float64(stats.Error)},
		}
	}
	return analytics.CountBy(entries, func(entry api.LogEntry) string { return entry.Level })
}

var logColumns = []export.Column[api.LogEntry]{
	{Header: "id", Value: func(e api.LogEntry) string { return e.ID }},
	{Header: "level", Value: func(e api.LogEntry) string { return e.Level }},
	{Header: "category", Value: func(e api.LogEntry) string { return e.Category }},
	{Header: "message", Value: func(e api.LogEntry) string { return e.Message }},
	{Header: "source", Value: func(e api.LogEntry) string { return e.Source }},
	{Header: "requestId", Value: func(e api.LogEntry) string { return e.RequestID }},
	{Header: "createdAt", Value: func(e api.LogEntry) string { return e.CreatedAt.Format(time.RFC3339) }},
}

// ExportCSV writes the currently displayed log entries as CSV.
func (p *LogsPage) ExportCSV(w io.Writer) error {
	return export.CSV(w, logColumns, p.state.Items())
}

// ExportJSON writes the currently displayed log entries as a pretty JSON
// document.
func (p *LogsPage) ExportJSON(w io.Writer) error {
	return export.JSON(w, "logs", p.state.Items())
}

// ExportFilename suggests a dated download name for a logs export.
func (p *LogsPage) ExportFilename(extension string) string {
	return export.Filename("logs", extension)
}
