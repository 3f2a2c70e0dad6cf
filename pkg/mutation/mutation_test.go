package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Godevs04/taatom-admin-console/pkg/listing"
)

type testRecord struct {
	ID     string
	Name   string
	Active bool
}

func byID(r testRecord) string { return r.ID }

func setActive(active bool) Patch[testRecord] {
	return func(r testRecord) testRecord {
		r.Active = active
		return r
	}
}

func setupState(records ...testRecord) *listing.State[testRecord] {
	state := listing.NewState[testRecord]()
	state.Apply("api/v1/locales:page=1", records, listing.Pagination{
		Page: 1, TotalPages: 1, Total: len(records),
	})
	return state
}

func newMutator(t *testing.T, state *listing.State[testRecord], send Send[testRecord], guard Guard) *Mutator[testRecord, string] {
	t.Helper()
	m, err := New(Config[testRecord, string]{
		Page:     "locales",
		State:    state,
		Identify: byID,
		Send:     send,
		Guard:    guard,
	})
	require.NoError(t, err)
	return m
}

func TestNew_ConfigValidation(t *testing.T) {
	state := setupState()
	send := func(ctx context.Context, r testRecord) (*testRecord, error) { return nil, nil }

	tests := []struct {
		name    string
		cfg     Config[testRecord, string]
		wantErr string
	}{
		{
			name:    "missing page",
			cfg:     Config[testRecord, string]{State: state, Identify: byID, Send: send},
			wantErr: "page name is required",
		},
		{
			name:    "missing state",
			cfg:     Config[testRecord, string]{Page: "locales", Identify: byID, Send: send},
			wantErr: "listing state is required",
		},
		{
			name:    "missing identify",
			cfg:     Config[testRecord, string]{Page: "locales", State: state, Send: send},
			wantErr: "identify function is required",
		},
		{
			name:    "missing send",
			cfg:     Config[testRecord, string]{Page: "locales", State: state, Identify: byID},
			wantErr: "send function is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApply_OptimisticSuccess(t *testing.T) {
	state := setupState(
		testRecord{ID: "a", Name: "Paris", Active: false},
		testRecord{ID: "b", Name: "Lyon", Active: true},
	)

	var sent testRecord
	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		sent = r
		return nil, nil
	}
	m := newMutator(t, state, send, nil)

	err := m.Apply(context.Background(), "a", setActive(true))
	require.NoError(t, err)

	// The mutated record went over the wire.
	assert.Equal(t, testRecord{ID: "a", Name: "Paris", Active: true}, sent)

	// The optimistic value stands, the other record is untouched.
	assert.Equal(t, []testRecord{
		{ID: "a", Name: "Paris", Active: true},
		{ID: "b", Name: "Lyon", Active: true},
	}, state.Items())
}

func TestApply_ReconcilesCanonicalRecord(t *testing.T) {
	state := setupState(testRecord{ID: "a", Name: "paris", Active: false})

	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		// The backend normalizes the name on write.
		canonical := testRecord{ID: "a", Name: "Paris", Active: r.Active}
		return &canonical, nil
	}
	m := newMutator(t, state, send, nil)

	require.NoError(t, m.Apply(context.Background(), "a", setActive(true)))

	record, ok := state.Find(func(r testRecord) bool { return r.ID == "a" })
	require.True(t, ok)
	assert.Equal(t, testRecord{ID: "a", Name: "Paris", Active: true}, record)
}

func TestApply_FailureRollsBackExactly(t *testing.T) {
	state := setupState(
		testRecord{ID: "a", Name: "Paris", Active: true},
		testRecord{ID: "b", Name: "Lyon", Active: false},
		testRecord{ID: "c", Name: "Nice", Active: true},
	)

	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		return nil, errors.New("backend server error (status 500)")
	}
	m := newMutator(t, state, send, nil)

	err := m.Apply(context.Background(), "b", setActive(true))
	require.Error(t, err)

	// The failed record is byte-identical to its pre-mutation value and
	// the neighbors never moved.
	assert.Equal(t, []testRecord{
		{ID: "a", Name: "Paris", Active: true},
		{ID: "b", Name: "Lyon", Active: false},
		{ID: "c", Name: "Nice", Active: true},
	}, state.Items())
}

func TestApply_RecordNotFound(t *testing.T) {
	state := setupState(testRecord{ID: "a", Name: "Paris"})

	var sendCalls int
	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		sendCalls++
		return nil, nil
	}
	m := newMutator(t, state, send, nil)

	err := m.Apply(context.Background(), "missing", setActive(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Zero(t, sendCalls)
}

func TestBulk_PartialFailure(t *testing.T) {
	state := setupState(
		testRecord{ID: "a", Active: false},
		testRecord{ID: "b", Active: false},
		testRecord{ID: "c", Active: false},
		testRecord{ID: "d", Active: false},
	)

	failing := map[string]bool{"b": true, "d": true}
	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		if failing[r.ID] {
			return nil, errors.New("backend client error (status 409)")
		}
		return nil, nil
	}
	m := newMutator(t, state, send, nil)

	report := m.Bulk(context.Background(), []string{"a", "b", "c", "d"}, setActive(true), nil)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []string{"b", "d"}, report.FailedIDs)

	// Only the failed records rolled back.
	assert.Equal(t, []testRecord{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
		{ID: "c", Active: true},
		{ID: "d", Active: false},
	}, state.Items())
}

func TestBulk_SequentialWithProgress(t *testing.T) {
	state := setupState(
		testRecord{ID: "a"},
		testRecord{ID: "b"},
		testRecord{ID: "c"},
	)

	var order []string
	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		order = append(order, r.ID)
		return nil, nil
	}
	m := newMutator(t, state, send, nil)

	var progress [][2]int
	report := m.Bulk(context.Background(), []string{"a", "b", "c"}, setActive(true), func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
}

func TestBulk_GuardHeldForDuration(t *testing.T) {
	state := setupState(testRecord{ID: "a"}, testRecord{ID: "b"})

	var events []string
	guard := GuardFunc(func(reason string) func() {
		events = append(events, "acquire: "+reason)
		return func() { events = append(events, "release") }
	})

	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		events = append(events, "send "+r.ID)
		return nil, nil
	}
	m := newMutator(t, state, send, guard)

	m.Bulk(context.Background(), []string{"a", "b"}, setActive(true), nil)

	assert.Equal(t, []string{
		"acquire: updating 2 records",
		"send a",
		"send b",
		"release",
	}, events)
}

func TestBulk_CanceledContextFailsRemaining(t *testing.T) {
	state := setupState(
		testRecord{ID: "a"},
		testRecord{ID: "b"},
		testRecord{ID: "c"},
		testRecord{ID: "d"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		return nil, nil
	}
	m := newMutator(t, state, send, nil)

	report := m.Bulk(ctx, []string{"a", "b", "c", "d"}, setActive(true), func(done, total int) {
		if done == 2 {
			cancel()
		}
	})

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []string{"c", "d"}, report.FailedIDs)

	// Unattempted records keep their original value.
	assert.Equal(t, []testRecord{
		{ID: "a", Active: true},
		{ID: "b", Active: true},
		{ID: "c", Active: false},
		{ID: "d", Active: false},
	}, state.Items())
}

func TestBulk_EmptyIDs(t *testing.T) {
	state := setupState(testRecord{ID: "a"})

	var sendCalls, progressCalls int
	send := func(ctx context.Context, r testRecord) (*testRecord, error) {
		sendCalls++
		return nil, nil
	}
	m := newMutator(t, state, send, nil)

	report := m.Bulk(context.Background(), nil, setActive(true), func(int, int) {
		progressCalls++
	})

	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Zero(t, sendCalls)
	assert.Zero(t, progressCalls)
}
