package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

// Prometheus metrics for fetch coordination.
var (
	consoleFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_fetches_total",
		Help: "Total coordinated fetch attempts by page and outcome",
	}, []string{"page", "result"})

	consoleFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_fetch_duration_seconds",
		Help:    "Coordinated fetch duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"page"})

	consoleDebounceCoalesced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_debounce_coalesced_total",
		Help: "Parameter changes absorbed into an already armed debounce window",
	}, []string{"page"})
)

// DefaultDebounce is the coalescing window for parameter changes. Rapid
// changes inside the window (keystrokes in a search box) result in a single
// request for the final parameter state.
const DefaultDebounce = 450 * time.Millisecond

// Params is implemented by a page's typed filter set. Implementations should
// be value types: the coordinator copies them at dispatch time.
type Params interface {
	// Snapshot captures the parameters as an endpoint/query fetch descriptor.
	Snapshot() listing.Snapshot
}

// Request describes one fetch attempt handed to a FetchFunc.
type Request[Q Params] struct {
	// Params are the typed page parameters captured at dispatch time.
	Params Q

	// Snapshot is the endpoint/query snapshot derived from Params.
	Snapshot listing.Snapshot

	// Revalidate forces a conditional request even when the cached response
	// is still fresh. Set on force refresh.
	Revalidate bool

	// AttemptID correlates log lines belonging to one attempt.
	AttemptID string
}

// Result is a successful fetch outcome produced by a FetchFunc.
type Result[T any] struct {
	// Items is the decoded item list.
	Items []T

	// Pagination is the decoded pagination block.
	Pagination listing.Pagination

	// NotModified reports that the backend confirmed the cached response is
	// still current (conditional GET answered 304).
	NotModified bool

	// OnApply, when set, runs right after the items are applied, while the
	// coordinator holds its lock. Pages use it to commit derived state
	// (statistics, chart records) atomically with the list. It must not
	// call back into the coordinator.
	OnApply func()
}

// FetchFunc performs one fetch attempt. It must honor ctx cancellation and
// return context.Canceled (wrapped or not) when aborted.
type FetchFunc[T any, Q Params] func(ctx context.Context, req Request[Q]) (*Result[T], error)

// Config holds the dependencies for a page coordinator.
type Config[T any, Q Params] struct {
	// Page names the page for logs and metrics, e.g. "locales".
	Page string

	// Fetch performs one fetch attempt.
	Fetch FetchFunc[T, Q]

	// State is the listing state results are applied to.
	State *listing.State[T]

	// Sink receives degrade notifications. Defaults to a log sink.
	Sink notify.Sink

	// Debounce is the parameter-change coalescing window
	// (default: DefaultDebounce).
	Debounce time.Duration
}

// Coordinator drives the fetch lifecycle of one listing page: it debounces
// parameter changes, dispatches at most one attempt at a time, cancels
// superseded attempts and guarantees that only the newest matching result is
// ever applied to the listing state.
//
// The transition logic lives in the pure Step function; Coordinator is the
// shell that owns the mutex, the debounce timer, attempt contexts, metrics
// and the notify sink. All methods are safe for concurrent use.
type Coordinator[T any, Q Params] struct {
	page     string
	fetch    FetchFunc[T, Q]
	state    *listing.State[T]
	sink     notify.Sink
	debounce time.Duration
	logger   zerolog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu             sync.Mutex
	machine        State
	params         Q
	timer          *time.Timer
	cancelInFlight context.CancelFunc
}

// fetchOutcome carries a completed attempt's payload through effect handling.
type fetchOutcome[T any] struct {
	result    *Result[T]
	err       error
	attemptID string
	duration  time.Duration
}

// New creates a coordinator for one page.
func New[T any, Q Params](cfg Config[T, Q]) (*Coordinator[T, Q], error) {
	if cfg.Page == "" {
		return nil, fmt.Errorf("page name is required")
	}
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("fetch function is required")
	}
	if cfg.State == nil {
		return nil, fmt.Errorf("listing state is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	logger := log.With().
		Str("component", "coordinator").
		Str("page", cfg.Page).
		Logger()

	if cfg.Sink == nil {
		cfg.Sink = notify.NewLogSink(logger)
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &Coordinator[T, Q]{
		page:       cfg.Page,
		fetch:      cfg.Fetch,
		state:      cfg.State,
		sink:       cfg.Sink,
		debounce:   cfg.Debounce,
		logger:     logger,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		machine:    NewState(),
	}, nil
}

// Mount performs the first-render fetch. It bypasses the debounce so the
// page shows data without an artificial initial delay.
func (c *Coordinator[T, Q]) Mount(params Q) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.Phase == PhaseClosed {
		return
	}

	c.params = params
	c.step(EventMount{Key: params.Snapshot().Key})
}

// SetParams records a parameter change and (re)starts the debounce timer.
// Rapid successive calls inside the window coalesce into one fetch for the
// final parameter state.
func (c *Coordinator[T, Q]) SetParams(params Q) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.Phase == PhaseClosed {
		return
	}

	if c.machine.DebounceArmed {
		consoleDebounceCoalesced.WithLabelValues(c.page).Inc()
	}

	c.params = params
	c.step(EventParamsChanged{Key: params.Snapshot().Key})
}

// ForceRefresh bypasses the debounce and the duplicate-key check: it cancels
// any in-flight attempt, clears the last-applied marker and dispatches a
// revalidating fetch for the current parameters. Pages call it after
// mutations and for the refresh button.
func (c *Coordinator[T, Q]) ForceRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.Phase == PhaseClosed {
		return
	}

	c.step(EventForceRefresh{Key: c.params.Snapshot().Key})
}

// Close cancels all pending work and stops accepting events. Called on page
// unmount. Safe to call more than once.
func (c *Coordinator[T, Q]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.Phase == PhaseClosed {
		return
	}

	c.step(EventClosed{})
	c.baseCancel()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.logger.Debug().Msg("Coordinator closed")
}

// Phase returns the current lifecycle phase.
func (c *Coordinator[T, Q]) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Phase
}

// Fetching reports whether an attempt is outstanding.
func (c *Coordinator[T, Q]) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Phase == PhaseInFlight || c.machine.Phase == PhaseSettling
}

// Params returns the current typed parameters.
func (c *Coordinator[T, Q]) Params() Q {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// step advances the machine and executes the resulting effects.
// Must be called with c.mu held.
func (c *Coordinator[T, Q]) step(event Event) {
	next, effects := Step(c.machine, event)
	c.machine = next
	c.runEffects(effects, nil)
}

// runEffects executes machine effects. out carries the fetch payload when the
// effects stem from a completed attempt. Must be called with c.mu held.
func (c *Coordinator[T, Q]) runEffects(effects []Effect, out *fetchOutcome[T]) {
	for _, effect := range effects {
		switch fx := effect.(type) {
		case EffectArmDebounce:
			c.armDebounce(fx.Gen)

		case EffectDisarmDebounce:
			if c.timer != nil {
				c.timer.Stop()
				c.timer = nil
			}

		case EffectCancelFetch:
			if c.cancelInFlight != nil {
				c.cancelInFlight()
				c.cancelInFlight = nil
			}

		case EffectDispatch:
			c.dispatch(fx)

		case EffectApply:
			c.apply(fx.Key, out)

		case EffectConfirm:
			consoleFetchesTotal.WithLabelValues(c.page, "not_modified").Inc()
			c.logger.Debug().
				Str("fetch_key", fx.Key).
				Msg("Content confirmed unchanged, nothing applied")

		case EffectDiscardStale:
			consoleFetchesTotal.WithLabelValues(c.page, "stale_dropped").Inc()
			c.logger.Warn().
				Str("fetch_key", fx.Key).
				Msg("Dropped stale fetch result")

		case EffectDiscardCanceled:
			consoleFetchesTotal.WithLabelValues(c.page, "cancelled").Inc()
			c.logger.Debug().
				Str("fetch_key", fx.Key).
				Msg("Fetch attempt cancelled")

		case EffectDegrade:
			c.degrade(fx.Key, out)

		case EffectSkipDuplicate:
			consoleFetchesTotal.WithLabelValues(c.page, "skipped_duplicate").Inc()
			c.logger.Debug().
				Str("fetch_key", fx.Key).
				Msg("Parameters already applied, no fetch owed")
		}
	}
}

// armDebounce replaces the pending timer with one for the given generation.
func (c *Coordinator[T, Q]) armDebounce(gen uint64) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.onDebounceFired(gen)
	})
}

func (c *Coordinator[T, Q]) onDebounceFired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine.Phase == PhaseClosed {
		return
	}

	c.step(EventDebounceFired{Gen: gen})
}

// dispatch spawns a fetch goroutine for the attempt described by fx.
func (c *Coordinator[T, Q]) dispatch(fx EffectDispatch) {
	params := c.params
	req := Request[Q]{
		Params:     params,
		Snapshot:   params.Snapshot(),
		Revalidate: fx.Revalidate,
		AttemptID:  uuid.NewString(),
	}

	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancelInFlight = cancel

	c.logger.Debug().
		Str("attempt_id", req.AttemptID).
		Str("fetch_key", req.Snapshot.Key).
		Uint64("seq", fx.Seq).
		Bool("revalidate", fx.Revalidate).
		Msg("Dispatching fetch")

	go c.runFetch(ctx, cancel, req, fx.Seq)
}

// runFetch executes one attempt and feeds its outcome back into the machine.
func (c *Coordinator[T, Q]) runFetch(ctx context.Context, cancel context.CancelFunc, req Request[Q], seq uint64) {
	defer cancel()

	start := time.Now()
	result, err := c.fetch(ctx, req)
	duration := time.Since(start)

	canceled := ctx.Err() == context.Canceled || errors.Is(err, context.Canceled)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.Phase == PhaseClosed {
		return
	}

	if !canceled {
		consoleFetchDuration.WithLabelValues(c.page).Observe(duration.Seconds())
	}

	ev := EventFetchResult{
		Seq:          seq,
		Key:          req.Snapshot.Key,
		NotModified:  result != nil && result.NotModified,
		DisplayedKey: c.state.AppliedKey(),
		Canceled:     canceled,
		Failed:       err != nil && !canceled,
	}

	next, effects := Step(c.machine, ev)
	c.machine = next
	c.runEffects(effects, &fetchOutcome[T]{
		result:    result,
		err:       err,
		attemptID: req.AttemptID,
		duration:  duration,
	})

	// Complete the settling ceremony for the newest attempt.
	if c.machine.Phase == PhaseSettling {
		next, _ = Step(c.machine, EventSettled{})
		c.machine = next
		c.cancelInFlight = nil
	}
}

// apply renders a result into the listing state.
func (c *Coordinator[T, Q]) apply(key string, out *fetchOutcome[T]) {
	if out == nil || out.result == nil {
		return
	}

	c.state.Apply(key, out.result.Items, out.result.Pagination)
	if out.result.OnApply != nil {
		out.result.OnApply()
	}

	consoleFetchesTotal.WithLabelValues(c.page, "applied").Inc()
	c.logger.Info().
		Str("fetch_key", key).
		Str("attempt_id", out.attemptID).
		Int("items", len(out.result.Items)).
		Dur("duration", out.duration).
		Msg("Applied fetch result")
}

// degrade handles a failed attempt: keep stale data when some exists,
// otherwise clear to empty, and notify the user either way.
func (c *Coordinator[T, Q]) degrade(key string, out *fetchOutcome[T]) {
	kept := c.state.Degrade()

	var fetchErr error
	if out != nil {
		fetchErr = out.err
	}

	consoleFetchesTotal.WithLabelValues(c.page, "error").Inc()

	if kept {
		c.logger.Warn().
			Err(fetchErr).
			Str("fetch_key", key).
			Msg("Fetch failed, keeping previously loaded data")
	} else {
		c.logger.Error().
			Err(fetchErr).
			Str("fetch_key", key).
			Msg("Fetch failed with no previous data to fall back on")
	}

	message := ""
	if fetchErr != nil {
		message = fetchErr.Error()
	}
	c.sink.Notify(notify.NewEvent(notify.LevelError, c.page, "Failed to load data", message))
}
