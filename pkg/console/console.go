package console

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/client"
	"github.com/Godevs04/taatom-admin-console/pkg/coordinator"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/mutation"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

// Page names used in logs, metrics and notifications.
const (
	PageLocales    = "locales"
	PageUsers      = "users"
	PageLogs       = "logs"
	PageQueries    = "queries"
	PageTripScores = "trip-scores"
	PageAnalytics  = "analytics"
)

// DefaultPageSize is the list page size when the filters leave it unset.
const DefaultPageSize = 25

// Backend is the slice of the REST client the pages depend on.
// *client.Client satisfies it; tests substitute a stub.
type Backend interface {
	FetchList(ctx context.Context, endpoint string, query url.Values) (*client.ListResult, error)
	Revalidate(ctx context.Context, endpoint string, query url.Values) (*client.ListResult, error)
	PostJSON(ctx context.Context, endpoint string, payload any) (*api.Envelope, error)
	PatchJSON(ctx context.Context, endpoint, id string, payload any) (*api.Envelope, error)
	DeleteJSON(ctx context.Context, endpoint, id string) (*api.Envelope, error)
	InvalidateEndpoint(ctx context.Context, endpoint string) error
}

// Config holds the shared dependencies of a page controller.
type Config struct {
	// Backend performs the HTTP traffic. Required.
	Backend Backend

	// Sink receives user-facing notifications. Defaults to a zerolog sink.
	Sink notify.Sink

	// Guard, when set, is held while bulk mutations run so the surrounding
	// UI can block navigation.
	Guard mutation.Guard

	// Debounce overrides the coordinator debounce window. Zero keeps the
	// default.
	Debounce time.Duration
}

func (cfg Config) sinkOrDefault() notify.Sink {
	if cfg.Sink != nil {
		return cfg.Sink
	}
	return notify.NewLogSink(log.Logger)
}

func pageLogger(page string) zerolog.Logger {
	return log.With().
		Str("component", "console").
		Str("page", page).
		Logger()
}

// pageCore is the coordinated listing machinery every page embeds: typed
// filters go in, displayed rows come out, and all fetch ordering rules are
// enforced by the shared coordinator.
type pageCore[T any, Q coordinator.Params] struct {
	state *listing.State[T]
	coord *coordinator.Coordinator[T, Q]
}

func newPageCore[T any, Q coordinator.Params](page string, fetch coordinator.FetchFunc[T, Q], cfg Config, sink notify.Sink) (*pageCore[T, Q], error) {
	state := listing.NewState[T]()
	coord, err := coordinator.New(coordinator.Config[T, Q]{
		Page:     page,
		Fetch:    fetch,
		State:    state,
		Sink:     sink,
		Debounce: cfg.Debounce,
	})
	if err != nil {
		return nil, err
	}
	return &pageCore[T, Q]{state: state, coord: coord}, nil
}

// Mount loads the list for the initial filters immediately, bypassing the
// debounce window.
func (c *pageCore[T, Q]) Mount(filters Q) {
	c.coord.Mount(filters)
}

// SetFilters schedules a debounced reload with the changed filters.
func (c *pageCore[T, Q]) SetFilters(filters Q) {
	c.coord.SetParams(filters)
}

// Refresh reloads the current filters immediately. Cached responses are
// revalidated against the backend rather than served from freshness alone.
func (c *pageCore[T, Q]) Refresh() {
	c.coord.ForceRefresh()
}

// Close cancels outstanding work and stops timers. The page must not be used
// afterwards.
func (c *pageCore[T, Q]) Close() {
	c.coord.Close()
}

// Items returns a copy of the currently displayed rows.
func (c *pageCore[T, Q]) Items() []T {
	return c.state.Items()
}

// Pagination returns the paging block of the displayed response.
func (c *pageCore[T, Q]) Pagination() listing.Pagination {
	return c.state.Pagination()
}

// Fetching reports whether a load attempt is outstanding.
func (c *pageCore[T, Q]) Fetching() bool {
	return c.coord.Fetching()
}

// Filters returns the most recently submitted filters.
func (c *pageCore[T, Q]) Filters() Q {
	return c.coord.Params()
}

// listFetch runs the raw list request of one coordinator attempt. Force
// refresh takes the revalidating path so a fresh cache entry cannot satisfy
// it without a round trip.
func listFetch[Q coordinator.Params](ctx context.Context, backend Backend, req coordinator.Request[Q]) (*client.ListResult, error) {
	if req.Revalidate {
		return backend.Revalidate(ctx, req.Snapshot.Endpoint, req.Snapshot.Query)
	}
	return backend.FetchList(ctx, req.Snapshot.Endpoint, req.Snapshot.Query)
}

// sendActiveFlag pushes one record's active flag to the backend and decodes
// the canonical record from the mutation envelope. An acknowledgement without
// a record payload keeps the optimistic copy in place.
func sendActiveFlag[T any](ctx context.Context, backend Backend, logger zerolog.Logger, endpoint, id string, active bool) (*T, error) {
	env, err := backend.PatchJSON(ctx, endpoint, id, map[string]bool{"active": active})
	if err != nil {
		return nil, err
	}

	var canonical T
	if err := env.Record(&canonical); err != nil {
		logger.Debug().
			Err(err).
			Str("id", id).
			Msg("Mutation acknowledged without a record payload")
		return nil, nil
	}
	return &canonical, nil
}

// bulkToast summarizes a finished bulk run for the toast area.
func bulkToast(sink notify.Sink, page, noun string, report mutation.Report[string], total int) {
	if total == 0 {
		return
	}

	if report.Failed == 0 {
		sink.Notify(notify.NewEvent(notify.LevelSuccess, page, "Bulk update complete",
			fmt.Sprintf("%d %s updated", report.Succeeded, noun)))
		return
	}

	sink.Notify(notify.NewEvent(notify.LevelWarning, page, "Bulk update incomplete",
		fmt.Sprintf("%d of %d %s updated, %d failed", report.Succeeded, total, noun, report.Failed)))
}

// setPaging writes page and limit with defaults filled in, so equivalent
// filter structs always fingerprint identically.
func setPaging(query url.Values, page, limit int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
}

func setSort(query url.Values, sortBy, sortOrder string) {
	if sortBy == "" {
		return
	}
	query.Set("sortBy", sortBy)
	if sortOrder != "" {
		query.Set("sortOrder", sortOrder)
	}
}
