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

	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/coordinator"
	"github.com/Godevs04/taatom-admin-console/pkg/dedup"
	"github.com/Godevs04/taatom-admin-console/pkg/export"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/mutation"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

// LocaleFilters are the Locales page controls. The zero value lists the
// first page with defaults.
type LocaleFilters struct {
	Search          string
	CountryCode     string
	IncludeInactive bool
	SortBy          string
	SortOrder       string
	Page            int
	Limit           int
}

// Snapshot fingerprints the filters for fetch-key comparison.
func (f LocaleFilters) Snapshot() listing.Snapshot {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.CountryCode != "" {
		query.Set("countryCode", f.CountryCode)
	}
	if f.IncludeInactive {
		query.Set("includeInactive", "true")
	}
	setSort(query, f.SortBy, f.SortOrder)
	setPaging(query, f.Page, f.Limit)
	return listing.NewSnapshot(api.EndpointLocales, query)
}

// LocalesPage manages the place records of the console: coordinated listing,
// create/update/delete forms, optimistic activation, bulk runs, duplicate
// scanning and export.
type LocalesPage struct {
	*pageCore[api.Locale, LocaleFilters]

	backend Backend
	sink    notify.Sink
	logger  zerolog.Logger
	mutator *mutation.Mutator[api.Locale, string]

	mu    sync.Mutex
	stats *api.LocaleStatistics
}

// NewLocalesPage creates the Locales page controller.
func NewLocalesPage(cfg Config) (*LocalesPage, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	sink := cfg.sinkOrDefault()
	page := &LocalesPage{
		backend: cfg.Backend,
		sink:    sink,
		logger:  pageLogger(PageLocales),
	}

	core, err := newPageCore[api.Locale, LocaleFilters](PageLocales, page.fetch, cfg, sink)
	if err != nil {
		return nil, err
	}
	page.pageCore = core

	mutator, err := mutation.New(mutation.Config[api.Locale, string]{
		Page:     PageLocales,
		State:    core.state,
		Identify: localeID,
		Send:     page.sendActive,
		Guard:    cfg.Guard,
	})
	if err != nil {
		return nil, err
	}
	page.mutator = mutator

	return page, nil
}

func localeID(l api.Locale) string { return l.ID }

func (p *LocalesPage) fetch(ctx context.Context, req coordinator.Request[LocaleFilters]) (*coordinator.Result[api.Locale], error) {
	raw, err := listFetch(ctx, p.backend, req)
	if err != nil {
		return nil, err
	}

	list, err := api.DecodeLocaleList(raw.Body)
	if err != nil {
		return nil, err
	}

	return &coordinator.Result[api.Locale]{
		Items:       list.Locales,
		Pagination:  list.Pagination,
		NotModified: raw.NotModified,
		OnApply:     func() { p.setStatistics(list.Statistics) },
	}, nil
}

func (p *LocalesPage) setStatistics(stats *api.LocaleStatistics) {
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

// Statistics returns the summary block of the displayed response, nil when
// the backend sent none.
func (p *LocalesPage) Statistics() *api.LocaleStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Create submits the create form. Validation runs locally first; nothing is
// sent when it fails. A successful create drops the cached locale pages and
// reloads past the debounce window.
func (p *LocalesPage) Create(ctx context.Context, form api.LocaleForm) error {
	// Step 1: Validate locally
	if err := form.Validate(); err != nil {
		return err
	}

	// Step 2: Send
	if _, err := p.backend.PostJSON(ctx, api.EndpointLocales, form); err != nil {
		p.sink.Notify(notify.NewEvent(notify.LevelError, PageLocales, "Create failed", err.Error()))
		return err
	}

	// Step 3: Invalidate cached pages and force a reload
	p.invalidate(ctx)
	p.sink.Notify(notify.NewEvent(notify.LevelSuccess, PageLocales, "Locale created", form.Name))
	p.Refresh()
	return nil
}

// Update submits the edit form for one locale, then invalidates and reloads
// like Create.
func (p *LocalesPage) Update(ctx context.Context, id string, form api.LocaleForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	if _, err := p.backend.PatchJSON(ctx, api.EndpointLocales, id, form); err != nil {
		p.sink.Notify(notify.NewEvent(notify.LevelError, PageLocales, "Update failed", err.Error()))
		return err
	}

	p.invalidate(ctx)
	p.sink.Notify(notify.NewEvent(notify.LevelSuccess, PageLocales, "Locale updated", form.Name))
	p.Refresh()
	return nil
}

// Delete removes one locale, then invalidates and reloads.
func (p *LocalesPage) Delete(ctx context.Context, id string) error {
	if _, err := p.backend.DeleteJSON(ctx, api.EndpointLocales, id); err != nil {
		p.sink.Notify(notify.NewEvent(notify.LevelError, PageLocales, "Delete failed", err.Error()))
		return err
	}

	p.invalidate(ctx)
	p.sink.Notify(notify.NewEvent(notify.LevelSuccess, PageLocales, "Locale deleted", ""))
	p.Refresh()
	return nil
}

// ToggleActive flips one locale's active flag optimistically. The row
// changes immediately and rolls back if the backend rejects the update.
// No re-fetch happens either way.
func (p *LocalesPage) ToggleActive(ctx context.Context, id string) error {
	if err := p.mutator.Apply(ctx, id, toggleLocaleActive); err != nil {
		p.sink.Notify(notify.NewEvent(notify.LevelError, PageLocales, "Status change failed", err.Error()))
		return err
	}

	p.invalidate(ctx)
	return nil
}

// BulkSetActive sets the active flag on every listed id, one request at a
// time. progress may be nil. Partial failure rolls back only the failed
// records; the report names them.
func (p *LocalesPage) BulkSetActive(ctx context.Context, ids []string, active bool, progress mutation.Progress) mutation.Report[string] {
	report := p.mutator.Bulk(ctx, ids, setLocaleActive(active), progress)
	if len(ids) > 0 {
		p.invalidate(ctx)
	}
	bulkToast(p.sink, PageLocales, "locales", report, len(ids))
	return report
}

func toggleLocaleActive(l api.Locale) api.Locale {
	l.Active = !l.Active
	return l
}

func setLocaleActive(active bool) mutation.Patch[api.Locale] {
	return func(l api.Locale) api.Locale {
		l.Active = active
		return l
	}
}

func (p *LocalesPage) sendActive(ctx context.Context, record api.Locale) (*api.Locale, error) {
	return sendActiveFlag[api.Locale](ctx, p.backend, p.logger, api.EndpointLocales, record.ID, record.Active)
}

// invalidate drops the cached locale pages so the next fetch revalidates.
// Mutations already changed the backend; replaying a stale page would undo
// them visually.
func (p *LocalesPage) invalidate(ctx context.Context) {
	if err := p.backend.InvalidateEndpoint(ctx, api.EndpointLocales); err != nil {
		p.logger.Warn().Err(err).Msg("Cache invalidation failed")
	}
}

// ScanDuplicates flags likely duplicates among the locales currently shown.
// The scan sees only the displayed page.
func (p *LocalesPage) ScanDuplicates() []dedup.Pair {
	return dedup.Scan(p.state.Items())
}

var localeColumns = []export.Column[api.Locale]{
	{Header: "id", Value: func(l api.Locale) string { return l.ID }},
	{Header: "name", Value: func(l api.Locale) string { return l.Name }},
	{Header: "countryCode", Value: func(l api.Locale) string { return l.CountryCode }},
	{Header: "city", Value: func(l api.Locale) string { return l.City }},
	{Header: "latitude", Value: func(l api.Locale) string { return formatFloat(l.Latitude) }},
	{Header: "longitude", Value: func(l api.Locale) string { return formatFloat(l.Longitude) }},
	{Header: "category", Value: func(l api.Locale) string { return l.Category }},
	{Header: "active", Value: func(l api.Locale) string { return strconv.FormatBool(l.Active) }},
	{Header: "visitCount", Value: func(l api.Locale) string { return strconv.Itoa(l.VisitCount) }},
	{Header: "createdAt", Value: func(l api.Locale) string { return l.CreatedAt.Format(time.RFC3339) }},
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportCSV writes the currently displayed locales as CSV.
func (p *LocalesPage) ExportCSV(w io.Writer) error {
	return export.CSV(w, localeColumns, p.state.Items())
}

// ExportJSON writes the currently displayed locales as a pretty JSON
// document with an export header.
func (p *LocalesPage) ExportJSON(w io.Writer) error {
	return export.JSON(w, "locales", p.state.Items())
}

// ExportFilename suggests a dated download name, e.g. for the Content-
// Disposition header.
func (p *LocalesPage) ExportFilename(extension string) string {
	return export.Filename("locales", extension)
}
