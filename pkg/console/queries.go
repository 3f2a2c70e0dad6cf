package console

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Godevs04/taatom-admin-console/pkg/analytics"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/coordinator"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

// QueryFilters are the query monitor controls.
type QueryFilters struct {
	Route         string
	SlowOnly      bool
	MinDurationMS float64
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

// Snapshot fingerprints the filters for fetch-key comparison.
func (f QueryFilters) Snapshot() listing.Snapshot {
	query := url.Values{}
	if f.Route != "" {
		query.Set("route", f.Route)
	}
	if f.SlowOnly {
		query.Set("slowOnly", "true")
	}
	if f.MinDurationMS > 0 {
		query.Set("minDurationMs", strconv.FormatFloat(f.MinDurationMS, 'f', -1, 64))
	}
	setSort(query, f.SortBy, f.SortOrder)
	setPaging(query, f.Page, f.Limit)
	return listing.NewSnapshot(api.EndpointQueryStats, query)
}

// QueryMonitorPage is the read-only database profiling view: captured query
// samples plus a slowest-routes chart.
type QueryMonitorPage struct {
	*pageCore[api.QuerySample, QueryFilters]

	backend Backend
	sink    notify.Sink
	logger  zerolog.Logger

	mu    sync.Mutex
	stats *api.QueryStatistics
}

// NewQueryMonitorPage creates the query monitor controller.
func NewQueryMonitorPage(cfg Config) (*QueryMonitorPage, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	sink := cfg.sinkOrDefault()
	page := &QueryMonitorPage{
		backend: cfg.Backend,
		sink:    sink,
		logger:  pageLogger(PageQueries),
	}

	core, err := newPageCore[api.QuerySample, QueryFilters](PageQueries, page.fetch, cfg, sink)
	if err != nil {
		return nil, err
	}
	page.pageCore = core

	return page, nil
}

func (p *QueryMonitorPage) fetch(ctx context.Context, req coordinator.Request[QueryFilters]) (*coordinator.Result[api.QuerySample], error) {
	raw, err := listFetch(ctx, p.backend, req)
	if err != nil {
		return nil, err
	}

	list, err := api.DecodeQueryList(raw.Body)
	if err != nil {
		return nil, err
	}

	return &coordinator.Result[api.QuerySample]{
		Items:       list.Queries,
		Pagination:  list.Pagination,
		NotModified: raw.NotModified,
		OnApply:     func() { p.setStatistics(list.Statistics) },
	}, nil
}

func (p *QueryMonitorPage) setStatistics(stats *api.QueryStatistics) {
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

// Statistics returns the summary block of the displayed response, nil when
// the backend sent none.
func (p *QueryMonitorPage) Statistics() *api.QueryStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// SlowestRoutes returns the n routes with the highest average duration among
// the displayed samples. n <= 0 returns all routes.
func (p *QueryMonitorPage) SlowestRoutes(n int) []analytics.Record {
	records := analytics.AvgBy(p.state.Items(),
		func(s api.QuerySample) string { return s.Route },
		func(s api.QuerySample) float64 { return s.DurationMS },
	)
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records
}
