package console

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/client"
	"github.com/Godevs04/taatom-admin-console/pkg/listing"
	"github.com/Godevs04/taatom-admin-console/pkg/notify"
)

const testDebounce = 30 * time.Millisecond

type listCall struct {
	endpoint string
	query    url.Values
}

type mutationCall struct {
	method   string
	endpoint string
	id       string
	payload  any
}

// stubBackend is an in-memory Backend: canned list bodies per endpoint,
// canned mutation envelopes, and a full call log.
type stubBackend struct {
	mu sync.Mutex

	lists   map[string][]byte
	patchFn func(id string, payload any) (*api.Envelope, error)
	mutErr  error
	patched *api.Envelope

	fetches     []listCall
	revalidates []listCall
	mutations   []mutationCall
	invalidated []string
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		lists:   map[string][]byte{},
		patched: &api.Envelope{Success: true},
	}
}

func (b *stubBackend) setList(endpoint string, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists[endpoint] = body
}

func (b *stubBackend) setPatchResponse(env *api.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patched = env
}

func (b *stubBackend) setPatchHandler(fn func(id string, payload any) (*api.Envelope, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patchFn = fn
}

func (b *stubBackend) setMutationError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutErr = err
}

func (b *stubBackend) FetchList(ctx context.Context, endpoint string, query url.Values) (*client.ListResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches = append(b.fetches, listCall{endpoint: endpoint, query: query})
	return b.serveLocked(endpoint)
}

func (b *stubBackend) Revalidate(ctx context.Context, endpoint string, query url.Values) (*client.ListResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revalidates = append(b.revalidates, listCall{endpoint: endpoint, query: query})
	return b.serveLocked(endpoint)
}

func (b *stubBackend) serveLocked(endpoint string) (*client.ListResult, error) {
	body, ok := b.lists[endpoint]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Class: client.ErrorClassClient, Message: "no canned body"}
	}
	return &client.ListResult{Body: body, StatusCode: 200}, nil
}

func (b *stubBackend) PostJSON(ctx context.Context, endpoint string, payload any) (*api.Envelope, error) {
	return b.mutate("POST", endpoint, "", payload)
}

func (b *stubBackend) PatchJSON(ctx context.Context, endpoint, id string, payload any) (*api.Envelope, error) {
	b.mu.Lock()
	b.mutations = append(b.mutations, mutationCall{method: "PATCH", endpoint: endpoint, id: id, payload: payload})
	fn := b.patchFn
	env := b.patched
	err := b.mutErr
	b.mu.Unlock()

	if fn != nil {
		return fn(id, payload)
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (b *stubBackend) DeleteJSON(ctx context.Context, endpoint, id string) (*api.Envelope, error) {
	return b.mutate("DELETE", endpoint, id, nil)
}

func (b *stubBackend) mutate(method, endpoint, id string, payload any) (*api.Envelope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutations = append(b.mutations, mutationCall{method: method, endpoint: endpoint, id: id, payload: payload})
	if b.mutErr != nil {
		return nil, b.mutErr
	}
	return b.patched, nil
}

func (b *stubBackend) InvalidateEndpoint(ctx context.Context, endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidated = append(b.invalidated, endpoint)
	return nil
}

func (b *stubBackend) fetchCalls() []listCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]listCall(nil), b.fetches...)
}

func (b *stubBackend) fetchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fetches)
}

func (b *stubBackend) revalidateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.revalidates)
}

func (b *stubBackend) mutationCalls() []mutationCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mutationCall(nil), b.mutations...)
}

func (b *stubBackend) invalidatedEndpoints() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.invalidated...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func marshalBody(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

func localeListBody(t *testing.T, locales []api.Locale, stats *api.LocaleStatistics) []byte {
	t.Helper()
	if locales == nil {
		locales = []api.Locale{}
	}
	return marshalBody(t, api.LocaleList{
		Locales:    locales,
		Pagination: listing.Pagination{Page: 1, TotalPages: 1, Total: len(locales)},
		Statistics: stats,
	})
}

func userListBody(t *testing.T, users []api.User, stats *api.UserStatistics) []byte {
	t.Helper()
	if users == nil {
		users = []api.User{}
	}
	return marshalBody(t, api.UserList{
		Users:      users,
		Pagination: listing.Pagination{Page: 1, TotalPages: 1, Total: len(users)},
		Statistics: stats,
	})
}

func logListBody(t *testing.T, entries []api.LogEntry, stats *api.LogStatistics) []byte {
	t.Helper()
	if entries == nil {
		entries = []api.LogEntry{}
	}
	return marshalBody(t, api.LogList{
		Logs:       entries,
		Pagination: listing.Pagination{Page: 1, TotalPages: 1, Total: len(entries)},
		Statistics: stats,
	})
}

func queryListBody(t *testing.T, queries []api.QuerySample, stats *api.QueryStatistics) []byte {
	t.Helper()
	if queries == nil {
		queries = []api.QuerySample{}
	}
	return marshalBody(t, api.QueryList{
		Queries:    queries,
		Pagination: listing.Pagination{Page: 1, TotalPages: 1, Total: len(queries)},
		Statistics: stats,
	})
}

func tripScoreListBody(t *testing.T, scores []api.TripScore, stats *api.TripScoreStatistics) []byte {
	t.Helper()
	if scores == nil {
		scores = []api.TripScore{}
	}
	return marshalBody(t, api.TripScoreList{
		TripScores: scores,
		Pagination: listing.Pagination{Page: 1, TotalPages: 1, Total: len(scores)},
		Statistics: stats,
	})
}

func recordEnvelope(t *testing.T, record any) *api.Envelope {
	t.Helper()
	data, err := json.Marshal(record)
	require.NoError(t, err)
	return &api.Envelope{Success: true, Data: data}
}

func testSink() *notify.ChannelSink {
	return notify.NewChannelSink(16)
}
