package coordinator

// Phase is the position of a page's fetch pipeline in its lifecycle.
type Phase string

const (
	// PhaseIdle means no fetch is scheduled or in flight.
	PhaseIdle Phase = "idle"

	// PhaseDebouncing means a parameter change was observed and a timer is
	// pending before a request is issued, coalescing rapid changes.
	PhaseDebouncing Phase = "debouncing"

	// PhaseInFlight means a request has been dispatched and its cancellation
	// handle is held.
	PhaseInFlight Phase = "in_flight"

	// PhaseSettling means a response for the newest attempt has arrived and
	// its outcome is being decided.
	PhaseSettling Phase = "settling"

	// PhaseClosed means the page unmounted; all further events are ignored.
	PhaseClosed Phase = "closed"
)

// State is the pure coordination state of one page. It carries fingerprints
// and sequence numbers, never payloads; the Coordinator shell owns the data.
//
// A debounce timer and an in-flight request are independent mechanisms: a
// parameter change during PhaseInFlight arms a timer without leaving the
// phase, and DebounceArmed records that overlap.
type State struct {
	// Phase is the current lifecycle phase.
	Phase Phase

	// CurrentKey is the fingerprint of the parameters the page wants now.
	CurrentKey string

	// LastAppliedKey is the fingerprint of the last successfully applied
	// fetch. A debounce firing for this key is skipped. Force refresh
	// clears it.
	LastAppliedKey string

	// InFlightKey is the captured fingerprint of the outstanding attempt.
	InFlightKey string

	// InFlightSeq is the sequence number of the outstanding attempt.
	// Zero means none.
	InFlightSeq uint64

	// NextSeq is the sequence number the next attempt will be issued with.
	NextSeq uint64

	// DebounceGen increments every time the timer is armed or invalidated.
	// A firing timer carrying an older generation is ignored.
	DebounceGen uint64

	// DebounceArmed reports whether a live timer generation exists.
	DebounceArmed bool
}

// NewState returns the initial state for a freshly created coordinator.
func NewState() State {
	return State{
		Phase:   PhaseIdle,
		NextSeq: 1,
	}
}

// Event is an input to the state machine.
type Event interface {
	isEvent()
}

// EventMount is the first render of a page. It bypasses the debounce and
// fetches immediately so the page shows data without an artificial delay.
type EventMount struct {
	// Key is the fingerprint of the mount parameters.
	Key string
}

// EventParamsChanged is a user-driven parameter change (keystroke, filter
// flip, page turn). It restarts the debounce timer.
type EventParamsChanged struct {
	// Key is the fingerprint of the changed parameters.
	Key string
}

// EventDebounceFired is the debounce timer elapsing.
type EventDebounceFired struct {
	// Gen is the timer generation captured when the timer was armed.
	Gen uint64
}

// EventForceRefresh is an explicit refresh (refresh button, or after a
// mutation). It bypasses the debounce and the last-applied-key check,
// cancels any in-flight attempt and dispatches immediately with
// revalidation.
type EventForceRefresh struct {
	// Key is the fingerprint of the current parameters.
	Key string
}

// EventFetchResult is a completed attempt reporting back.
type EventFetchResult struct {
	// Seq is the sequence number the attempt was dispatched with.
	Seq uint64

	// Key is the parameter fingerprint captured at dispatch time.
	Key string

	// NotModified reports a 304 served from the conditional-request cache.
	NotModified bool

	// DisplayedKey is the key of the content the page displayed when the
	// result arrived.
	DisplayedKey string

	// Canceled reports that the attempt's context was canceled.
	Canceled bool

	// Failed reports a fetch or decode error.
	Failed bool
}

// EventSettled completes the settling ceremony after the shell has executed
// the result effects.
type EventSettled struct{}

// EventClosed is the page unmounting.
type EventClosed struct{}

func (EventMount) isEvent()         {}
func (EventParamsChanged) isEvent() {}
func (EventDebounceFired) isEvent() {}
func (EventForceRefresh) isEvent()  {}
func (EventFetchResult) isEvent()   {}
func (EventSettled) isEvent()       {}
func (EventClosed) isEvent()        {}

// Effect is an instruction from the machine to the shell. The machine never
// performs IO; it only describes what the shell must do.
type Effect interface {
	isEffect()
}

// EffectArmDebounce schedules the debounce timer for the given generation.
type EffectArmDebounce struct {
	Gen uint64
}

// EffectDisarmDebounce stops a pending debounce timer.
type EffectDisarmDebounce struct{}

// EffectCancelFetch cancels the attempt with the given sequence number.
type EffectCancelFetch struct {
	Seq uint64
}

// EffectDispatch issues a new fetch attempt.
type EffectDispatch struct {
	// Key is the parameter fingerprint to fetch.
	Key string

	// Seq is the sequence number of the attempt.
	Seq uint64

	// Revalidate forces a conditional request even when the cached entry
	// is still fresh.
	Revalidate bool
}

// EffectApply renders the held result: replace items and pagination
// atomically.
type EffectApply struct {
	Key string
}

// EffectConfirm is a 304 for content the page already displays. Items,
// pagination and derived caches stay byte-identical.
type EffectConfirm struct {
	Key string
}

// EffectDiscardStale drops a result whose attempt was superseded or whose
// parameters are no longer current.
type EffectDiscardStale struct {
	Key string
}

// EffectDiscardCanceled drops a canceled attempt silently.
type EffectDiscardCanceled struct {
	Key string
}

// EffectDegrade handles a failed fetch: keep showing the previous data when
// some exists, otherwise clear to empty, and notify the user either way.
type EffectDegrade struct {
	Key string
}

// EffectSkipDuplicate is a debounce firing for the already-applied key; no
// request is issued.
type EffectSkipDuplicate struct {
	Key string
}

func (EffectArmDebounce) isEffect()     {}
func (EffectDisarmDebounce) isEffect()  {}
func (EffectCancelFetch) isEffect()     {}
func (EffectDispatch) isEffect()        {}
func (EffectApply) isEffect()           {}
func (EffectConfirm) isEffect()         {}
func (EffectDiscardStale) isEffect()    {}
func (EffectDiscardCanceled) isEffect() {}
func (EffectDegrade) isEffect()         {}
func (EffectSkipDuplicate) isEffect()   {}

// Step applies one event to the state and returns the successor state plus
// the effects the shell must execute. It is a pure function: no IO, no
// clocks, no goroutines.
func Step(state State, event Event) (State, []Effect) {
	if state.Phase == PhaseClosed {
		return state, nil
	}

	switch ev := event.(type) {
	case EventMount:
		return dispatchNow(state, ev.Key, false)

	case EventForceRefresh:
		state.LastAppliedKey = ""
		return dispatchNow(state, ev.Key, true)

	case EventParamsChanged:
		state.CurrentKey = ev.Key
		state.DebounceGen++
		state.DebounceArmed = true
		if state.Phase == PhaseIdle {
			state.Phase = PhaseDebouncing
		}
		return state, []Effect{EffectArmDebounce{Gen: state.DebounceGen}}

	case EventDebounceFired:
		return stepDebounceFired(state, ev)

	case EventFetchResult:
		return stepFetchResult(state, ev)

	case EventSettled:
		if state.Phase != PhaseSettling {
			return state, nil
		}
		state.InFlightKey = ""
		state.InFlightSeq = 0
		if state.DebounceArmed {
			state.Phase = PhaseDebouncing
		} else {
			state.Phase = PhaseIdle
		}
		return state, nil

	case EventClosed:
		var effects []Effect
		if state.Phase == PhaseInFlight {
			effects = append(effects, EffectCancelFetch{Seq: state.InFlightSeq})
		}
		if state.DebounceArmed {
			state.DebounceGen++
			state.DebounceArmed = false
			effects = append(effects, EffectDisarmDebounce{})
		}
		state.Phase = PhaseClosed
		return state, effects
	}

	return state, nil
}

// dispatchNow cancels whatever is pending and issues a fresh attempt for key.
func dispatchNow(state State, key string, revalidate bool) (State, []Effect) {
	var effects []Effect

	state.CurrentKey = key

	if state.DebounceArmed {
		state.DebounceGen++
		state.DebounceArmed = false
		effects = append(effects, EffectDisarmDebounce{})
	}

	if state.Phase == PhaseInFlight {
		effects = append(effects, EffectCancelFetch{Seq: state.InFlightSeq})
	}

	seq := state.NextSeq
	state.NextSeq++
	state.InFlightKey = key
	state.InFlightSeq = seq
	state.Phase = PhaseInFlight

	return state, append(effects, EffectDispatch{Key: key, Seq: seq, Revalidate: revalidate})
}

func stepDebounceFired(state State, ev EventDebounceFired) (State, []Effect) {
	// A re-armed or disarmed timer invalidated this generation.
	if !state.DebounceArmed || ev.Gen != state.DebounceGen {
		return state, nil
	}
	state.DebounceArmed = false

	key := state.CurrentKey
	if key == "" {
		if state.Phase == PhaseDebouncing {
			state.Phase = PhaseIdle
		}
		return state, nil
	}

	// The page already shows exactly this parameter state; no request owed.
	if key == state.LastAppliedKey {
		if state.Phase == PhaseDebouncing {
			state.Phase = PhaseIdle
		}
		return state, []Effect{EffectSkipDuplicate{Key: key}}
	}

	return dispatchNow(state, key, false)
}

func stepFetchResult(state State, ev EventFetchResult) (State, []Effect) {
	// Only the newest issued attempt may settle. Anything else completed
	// after being superseded.
	if state.Phase != PhaseInFlight || ev.Seq != state.InFlightSeq {
		if ev.Canceled {
			return state, []Effect{EffectDiscardCanceled{Key: ev.Key}}
		}
		return state, []Effect{EffectDiscardStale{Key: ev.Key}}
	}

	state.Phase = PhaseSettling

	switch {
	case ev.Canceled:
		return state, []Effect{EffectDiscardCanceled{Key: ev.Key}}

	case ev.Key != state.CurrentKey:
		// Parameters moved on while the request was in flight.
		return state, []Effect{EffectDiscardStale{Key: ev.Key}}

	case ev.Failed:
		return state, []Effect{EffectDegrade{Key: ev.Key}}

	case ev.NotModified && ev.DisplayedKey == ev.Key:
		state.LastAppliedKey = ev.Key
		return state, []Effect{EffectConfirm{Key: ev.Key}}

	default:
		state.LastAppliedKey = ev.Key
		return state, []Effect{EffectApply{Key: ev.Key}}
	}
}
