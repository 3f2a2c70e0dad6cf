package console

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Godevs04/taatom-admin-console/pkg/analytics"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/dedup"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

const (
	// summaryLimit is the sample size each dashboard summary fetches.
	summaryLimit = 200

	// topCountries caps the locales-by-country chart before folding the
	// remainder into "other".
	topCountries = 10

	// densityPrecision is the geohash precision of density cells. Three
	// characters cover roughly a 156km x 156km area.
	densityPrecision = 3
)

// Dashboard is the chart payload of the analytics page.
type Dashboard struct {
	LocalesByCountry []analytics.Record `json:"localesByCountry"`
	LocaleDensity    []analytics.Record `json:"localeDensity"`
	UsersByRole      []analytics.Record `json:"usersByRole"`
	TripScoreBuckets []analytics.Record `json:"tripScoreBuckets"`
	LogLevelMix      []analytics.Record `json:"logLevelMix"`
}

// AnalyticsPage loads the dashboard. Unlike the listing pages it has no
// coordinator: the dashboard is a one-shot parallel load the caller repeats
// on demand.
type AnalyticsPage struct {
	backend Backend
	sink    notify.Sink
	logger  zerolog.Logger
}

// NewAnalyticsPage creates the analytics page controller.
func NewAnalyticsPage(cfg Config) (*AnalyticsPage, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	return &AnalyticsPage{
		backend: cfg.Backend,
		sink:    cfg.sinkOrDefault(),
		logger:  pageLogger(PageAnalytics),
	}, nil
}

// Load fetches the four dashboard summaries in parallel and reduces them to
// chart records. Any failed summary fails the load as a whole.
func (p *AnalyticsPage) Load(ctx context.Context) (*Dashboard, error) {
	started := time.Now()

	var (
		locales []api.Locale
		users   []api.User
		scores  []api.TripScore
		logList *api.LogList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := p.summary(gctx, api.EndpointLocales)
		if err != nil {
			return err
		}
		list, err := api.DecodeLocaleList(body)
		if err != nil {
			return err
		}
		locales = list.Locales
		return nil
	})
	g.Go(func() error {
		body, err := p.summary(gctx, api.EndpointUsers)
		if err != nil {
			return err
		}
		list, err := api.DecodeUserList(body)
		if err != nil {
			return err
		}
		users = list.Users
		return nil
	})
	g.Go(func() error {
		body, err := p.summary(gctx, api.EndpointTripScores)
		if err != nil {
			return err
		}
		list, err := api.DecodeTripScoreList(body)
		if err != nil {
			return err
		}
		scores = list.TripScores
		return nil
	})
	g.Go(func() error {
		body, err := p.summary(gctx, api.EndpointLogs)
		if err != nil {
			return err
		}
		list, err := api.DecodeLogList(body)
		if err != nil {
			return err
		}
		logList = list
		return nil
	})

	if err := g.Wait(); err != nil {
		p.logger.Error().Err(err).Msg("Dashboard load failed")
		p.sink.Notify(notify.NewEvent(notify.LevelError, PageAnalytics, "Failed to load dashboard", err.Error()))
		return nil, err
	}

	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.Score
	}

	p.logger.Info().
		Int("locales", len(locales)).
		Int("users", len(users)).
		Int("trip_scores", len(scores)).
		Dur("took", time.Since(started)).
		Msg("Dashboard loaded")

	return &Dashboard{
		LocalesByCountry: analytics.TopN(analytics.CountBy(locales, localeCountry), topCountries),
		LocaleDensity:    analytics.DensityCells(locales, localeCoordinates, densityPrecision),
		UsersByRole:      analytics.CountBy(users, userRole),
		TripScoreBuckets: analytics.Buckets(values, scoreBucketWidth, scoreBucketCount),
		LogLevelMix:      levelRecords(logList.Statistics, logList.Logs),
	}, nil
}

func (p *AnalyticsPage) summary(ctx context.Context, endpoint string) ([]byte, error) {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("limit", strconv.Itoa(summaryLimit))

	result, err := p.backend.FetchList(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

func localeCountry(l api.Locale) string { return l.CountryCode }

func userRole(u api.User) string { return u.Role }

func localeCoordinates(l api.Locale) (float64, float64, bool) {
	return l.Latitude, l.Longitude, dedup.ValidCoordinates(l.Latitude, l.Longitude)
}
