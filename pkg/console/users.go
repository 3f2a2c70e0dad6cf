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
	"github.com/Godevs04/taatom-admin-console/pkg/export"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/mutation"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

// UserFilters are the Users page controls.
type UserFilters struct {
	Search          string
	Role            string
	IncludeInactive bool
	SortBy          string
	SortOrder       string
	Page            int
	Limit           int
}

// Snapshot fingerprints the filters for fetch-key comparison.
func (f UserFilters) Snapshot() listing.Snapshot {
	query := url.Values{}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	if f.Role != "" {
		query.Set("role", f.Role)
	}
	if f.IncludeInactive {
		query.Set("includeInactive", "true")
	}
	setSort(query, f.SortBy, f.SortOrder)
	setPaging(query, f.Page, f.Limit)
	return listing.NewSnapshot(api.EndpointUsers, query)
}

// UsersPage manages account records: coordinated listing, optimistic
// activation, bulk runs and export. Accounts are created elsewhere; the
// console only moderates them.
type UsersPage struct {
	*pageCore[api.User, UserFilters]

	backend Backend
	sink    notify.Sink
	logger  zerolog.Logger
	mutator *mutation.Mutator[api.User, string]

	mu    sync.Mutex
	stats *api.UserStatistics
}

// NewUsersPage creates the Users page controller.
func NewUsersPage(cfg Config) (*UsersPage, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	sink := cfg.sinkOrDefault()
	page := &UsersPage{
		backend: cfg.Backend,
		sink:    sink,
		logger:  pageLogger(PageUsers),
	}

	core, err := newPageCore[api.User, UserFilters](PageUsers, page.fetch, cfg, sink)
	if err != nil {
		return nil, err
	}
	page.pageCore = core

	mutator, err := mutation.New(mutation.Config[api.User, string]{
		Page:     PageUsers,
		State:    core.state,
		Identify: userID,
		Send:     page.sendActive,
		Guard:    cfg.Guard,
	})
	if err != nil {
		return nil, err
	}
	page.mutator = mutator

	return page, nil
}

func userID(u api.User) string { return u.ID }

func (p *UsersPage) fetch(ctx context.Context, req coordinator.Request[UserFilters]) (*coordinator.Result[api.User], error) {
	raw, err := listFetch(ctx, p.backend, req)
	if err != nil {
		return nil, err
	}

	list, err := api.DecodeUserList(raw.Body)
	if err != nil {
		return nil, err
	}

	return &coordinator.Result[api.User]{
		Items:       list.Users,
		Pagination:  list.Pagination,
		NotModified: raw.NotModified,
		OnApply:     func() { p.setStatistics(list.Statistics) },
	}, nil
}

func (p *UsersPage) setStatistics(stats *api.UserStatistics) {
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

// Statistics returns the summary block of the displayed response, nil when
// the backend sent none.
func (p *UsersPage) Statistics() *api.UserStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// ToggleActive flips one account's active flag optimistically, rolling back
// on rejection. No re-fetch happens either way.
func (p *UsersPage) ToggleActive(ctx context.Context, id string) error {
	if err := p.mutator.Apply(ctx, id, toggleUserActive); err != nil {
		p.sink.Notify(notify.NewEvent(notify.LevelError, PageUsers, "Status change failed", err.Error()))
		return err
	}

	p.invalidate(ctx)
	return nil
}

// BulkSetActive sets the active flag on every listed id sequentially and
// reports partial failure.
func (p *UsersPage) BulkSetActive(ctx context.Context, ids []string, active bool, progress mutation.Progress) mutation.Report[string] {
	report := p.mutator.Bulk(ctx, ids, setUserActive(active), progress)
	if len(ids) > 0 {
		p.invalidate(ctx)
	}
	bulkToast(p.sink, PageUsers, "users", report, len(ids))
	return report
}

func toggleUserActive(u api.User) api.User {
	u.Active = !u.Active
	return u
}

func setUserActive(active bool) mutation.Patch[api.User] {
	return func(u api.User) api.User {
		u.Active = active
		return u
	}
}

func (p *UsersPage) sendActive(ctx context.Context, record api.User) (*api.User, error) {
	return sendActiveFlag[api.User](ctx, p.backend, p.logger, api.EndpointUsers, record.ID, record.Active)
}

func (p *UsersPage) invalidate(ctx context.Context) {
	if err := p.backend.InvalidateEndpoint(ctx, api.EndpointUsers); err != nil {
		p.logger.Warn().Err(err).Msg("Cache invalidation failed")
	}
}

var userColumns = []export.Column[api.User]{
	{Header: "id", Value: func(u api.User) string { return u.ID }},
	{Header: "email", Value: func(u api.User) string { return u.Email }},
	{Header: "displayName", Value: func(u api.User) string { return u.DisplayName }},
	{Header: "role", Value: func(u api.User) string { return u.Role }},
	{Header: "active", Value: func(u api.User) string { return strconv.FormatBool(u.Active) }},
	{Header: "postCount", Value: func(u api.User) string { return strconv.Itoa(u.PostCount) }},
	{Header: "createdAt", Value: func(u api.User) string { return u.CreatedAt.Format(time.RFC3339) }},
	{Header: "lastLoginAt", Value: func(u api.User) string {
		if u.LastLoginAt == nil {
			return ""
		}
		return u.LastLoginAt.Format(time.RFC3339)
	}},
}

// ExportCSV writes the currently displayed users as CSV.
func (p *UsersPage) ExportCSV(w io.Writer) error {
	return export.CSV(w, userColumns, p.state.Items())
}

// ExportJSON writes the currently displayed users as a pretty JSON document.
func (p *UsersPage) ExportJSON(w io.Writer) error {
	return export.JSON(w, "users", p.state.Items())
}

// ExportFilename suggests a dated download name for a users export.
func (p *UsersPage) ExportFilename(extension string) string {
	return export.Filename("users", extension)
}
