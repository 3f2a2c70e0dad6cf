package console

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
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

// Score buckets of the distribution chart. Scores grow open-ended; outliers
// clamp into the top bucket.
const (
	scoreBucketWidth = 20.0
	scoreBucketCount = 5
)

// TripScoreFilters are the trip score page controls.
type TripScoreFilters struct {
	Search    string
	MinScore  float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Snapshot fingerprints the filters for fetch-key comparison.
func (f TripScoreFilters) Snapshot() listing.Snapshot {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.MinScore > 0 {
		query.Set("minScore", strconv.FormatFloat(f.MinScore, 'f', -1, 64))
	}
	setSort(query, f.SortBy, f.SortOrder)
	setPaging(query, f.Page, f.Limit)
	return listing.NewSnapshot(api.EndpointTripScores, query)
}

// TripScoresPage lists aggregated travel scores with a distribution chart
// and export.
type TripScoresPage struct {
	*pageCore[api.TripScore, TripScoreFilters]

	backend Backend
	sink    notify.Sink
	logger  zerolog.Logger

	mu    sync.Mutex
	stats *api.TripScoreStatistics
}

// NewTripScoresPage creates the trip scores page controller.
func NewTripScoresPage(cfg Config) (*TripScoresPage, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	sink := cfg.sinkOrDefault()
	page := &TripScoresPage{
		backend: cfg.Backend,
		sink:    sink,
		logger:  pageLogger(PageTripScores),
	}

	core, err := newPageCore[api.TripScore, TripScoreFilters](PageTripScores, page.fetch, cfg, sink)
	if err != nil {
		return nil, err
	}
	page.pageCore = core

	return page, nil
}

func (p *TripScoresPage) fetch(ctx context.Context, req coordinator.Request[TripScoreFilters]) (*coordinator.Result[api.TripScore], error) {
	raw, err := listFetch(ctx, p.backend, req)
	if err != nil {
		return nil, err
	}

	list, err := api.DecodeTripScoreList(raw.Body)
	if err != nil {
		return nil, err
	}

	return &coordinator.Result[api.TripScore]{
		Items:       list.TripScores,
		Pagination:  list.Pagination,
		NotModified: raw.NotModified,
		OnApply:     func() { p.setStatistics(list.Statistics) },
	}, nil
}

func (p *TripScoresPage) setStatistics(stats *api.TripScoreStatistics) {
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

// Statistics returns the summary block of the displayed response, nil when
// the backend sent none.
func (p *TripScoresPage) Statistics() *api.TripScoreStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// ScoreDistribution buckets the displayed scores for the distribution chart.
func (p *TripScoresPage) ScoreDistribution() []analytics.Record {
	scores := p.state.Items()
	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.Score
	}
	return analytics.Buckets(values, scoreBucketWidth, scoreBucketCount)
}

var tripScoreColumns = []export.Column[api.TripScore]{
	{Header: "id", Value: func(s api.TripScore) string { return s.ID }},
	{Header: "userId", Value: func(s api.TripScore) string { return s.UserID }},
	{Header: "userName", Value: func(s api.TripScore) string { return s.UserName }},
	{Header: "localeCount", Value: func(s api.TripScore) string { return strconv.Itoa(s.LocaleCount) }},
	{Header: "countryCount", Value: func(s api.TripScore) string { return strconv.Itoa(s.CountryCount) }},
	{Header: "distanceKm", Value: func(s api.TripScore) string { return formatFloat(s.DistanceKM) }},
	{Header: "score", Value: func(s api.TripScore) string { return formatFloat(s.Score) }},
	{Header: "computedAt", Value: func(s api.TripScore) string { return s.ComputedAt.Format(time.RFC3339) }},
}

// ExportCSV writes the currently displayed trip scores as CSV.
func (p *TripScoresPage) ExportCSV(w io.Writer) error {
	return export.CSV(w, tripScoreColumns, p.state.Items())
}

// ExportJSON writes the currently displayed trip scores as a pretty JSON
// document.
func (p *TripScoresPage) ExportJSON(w io.Writer) error {
	return export.JSON(w, "trip-scores", p.state.Items())
}

// ExportFilename suggests a dated download name for a trip score export.
func (p *TripScoresPage) ExportFilename(extension string) string {
	return export.Filename("trip-scores", extension)
}
