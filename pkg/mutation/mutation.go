// Package mutation implements optimistic record updates with rollback for
// console pages. The patched record renders immediately, the mutating
// request goes out afterwards; a failure restores the captured pre-mutation
// record exactly. Successful responses reconcile the server-canonical record
// without a follow-up re-fetch.
package mutation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Godevs04/taatom-admin-console/pkg/listing"
)

// Prometheus metrics for optimistic mutations.
var (
	consoleMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_mutations_total",
		Help: "Total optimistic mutations by page and outcome",
	}, []string{"page", "result"})

	consoleBulkItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_bulk_items_total",
		Help: "Total items processed by bulk mutations",
	}, []string{"page", "result"})
)

// Send performs the mutating request for one record and returns the
// server-canonical record when the response carries one. Returning a nil
// record on success leaves the optimistic value in place.
type Send[T any] func(ctx context.Context, record T) (*T, error)

// Patch derives the mutated record from the current one.
type Patch[T any] func(T) T

// Progress reports bulk progress after each attempted item.
type Progress func(done, total int)

// Guard is held for the duration of a bulk run so the UI can warn against
// navigating away mid-operation.
type Guard interface {
	// Acquire installs the guard and returns its release function.
	Acquire(reason string) (release func())
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(reason string) func()

// Acquire calls f(reason).
func (f GuardFunc) Acquire(reason string) func() {
	return f(reason)
}

// Report summarizes a bulk run. Failed counts both rejected items and items
// never attempted because the context was canceled.
type Report[ID comparable] struct {
	Succeeded int
	Failed    int
	FailedIDs []ID
}

// Config holds the dependencies for a page's mutator.
type Config[T any, ID comparable] struct {
	// Page names the page for logs and metrics.
	Page string

	// State is the listing state records are patched in.
	State *listing.State[T]

	// Identify extracts a record's identity.
	Identify func(T) ID

	// Send performs the mutating request for one record.
	Send Send[T]

	// Guard, when set, is held while a bulk run is in progress.
	Guard Guard
}

// Mutator performs optimistic mutations against one page's listing state.
// It is not safe for concurrent use by multiple goroutines; pages drive it
// from their event flow, and bulk runs are sequential by design.
type Mutator[T any, ID comparable] struct {
	page     string
	state    *listing.State[T]
	identify func(T) ID
	send     Send[T]
	guard    Guard
	logger   zerolog.Logger
}

// New creates a mutator for one page.
func New[T any, ID comparable](cfg Config[T, ID]) (*Mutator[T, ID], error) {
	if cfg.Page == "" {
		return nil, fmt.Errorf("page name is required")
	}
	if cfg.State == nil {
		return nil, fmt.Errorf("listing state is required")
	}
	if cfg.Identify == nil {
		return nil, fmt.Errorf("identify function is required")
	}
	if cfg.Send == nil {
		return nil, fmt.Errorf("send function is required")
	}

	return &Mutator[T, ID]{
		page:     cfg.Page,
		state:    cfg.State,
		identify: cfg.Identify,
		send:     cfg.Send,
		guard:    cfg.Guard,
		logger: log.With().
			Str("component", "mutation").
			Str("page", cfg.Page).
			Logger(),
	}, nil
}

// Apply mutates one record optimistically.
//
// The patch result replaces the record before the request is sent. On
// success the server-canonical record is reconciled in place; on failure the
// captured pre-mutation record is restored exactly and the error returned.
func (m *Mutator[T, ID]) Apply(ctx context.Context, id ID, patch Patch[T]) error {
	matches := func(record T) bool { return m.identify(record) == id }

	// Step 1: Capture the pre-mutation record
	before, ok := m.state.Find(matches)
	if !ok {
		return fmt.Errorf("record %v not found on the current page", id)
	}

	// Step 2: Render the patched record immediately
	mutated := patch(before)
	m.state.Replace(matches, mutated)

	// Step 3: Send the mutating request
	canonical, err := m.send(ctx, mutated)
	if err != nil {
		// Step 4a: Restore the captured record
		if !m.state.Replace(matches, before) {
			m.logger.Warn().
				Interface("record_id", id).
				Msg("Rollback target no longer on page")
		}

		consoleMutationsTotal.WithLabelValues(m.page, "rolled_back").Inc()
		m.logger.Warn().
			Err(err).
			Interface("record_id", id).
			Msg("Mutation failed, restored previous record")
		return err
	}

	// Step 4b: Reconcile the server-canonical record when one came back.
	// No re-fetch: the optimistic state is already correct.
	if canonical != nil {
		m.state.Replace(matches, *canonical)
	}

	consoleMutationsTotal.WithLabelValues(m.page, "applied").Inc()
	m.logger.Info().
		Interface("record_id", id).
		Msg("Mutation applied")
	return nil
}

// Bulk applies the patch to each listed record in sequence, one request at a
// time. Items fail independently: failed records roll back while successful
// ones keep their new value. A canceled context fails all remaining
// unattempted items. Progress is reported after each attempted item.
func (m *Mutator[T, ID]) Bulk(ctx context.Context, ids []ID, patch Patch[T], progress Progress) Report[ID] {
	total := len(ids)
	var report Report[ID]
	if total == 0 {
		return report
	}

	if m.guard != nil {
		release := m.guard.Acquire(fmt.Sprintf("updating %d records", total))
		defer release()
	}

	batchID := uuid.NewString()
	m.logger.Info().
		Str("batch_id", batchID).
		Int("total", total).
		Msg("Starting bulk mutation")

	for i, id := range ids {
		if ctx.Err() != nil {
			remaining := ids[i:]
			report.Failed += len(remaining)
			report.FailedIDs = append(report.FailedIDs, remaining...)
			consoleBulkItemsTotal.WithLabelValues(m.page, "failed").Add(float64(len(remaining)))

			m.logger.Warn().
				Str("batch_id", batchID).
				Int("done", i).
				Int("total", total).
				Msg("Bulk mutation canceled, remaining items not attempted")
			break
		}

		if err := m.Apply(ctx, id, patch); err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, id)
			consoleBulkItemsTotal.WithLabelValues(m.page, "failed").Inc()
		} else {
			report.Succeeded++
			consoleBulkItemsTotal.WithLabelValues(m.page, "succeeded").Inc()
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	m.logger.Info().
		Str("batch_id", batchID).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Bulk mutation finished")

	return report
}
