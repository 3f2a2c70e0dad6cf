package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// invalidateScanCount is the batch size used when scanning keys for
// endpoint invalidation.
const invalidateScanCount = 100

// revalidationWindow is how long an entry stays in Redis past its freshness
// deadline. Stale entries keep their ETag available for conditional requests
// instead of forcing a full refetch.
const revalidationWindow = 24 * time.Hour

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get retrieves a fresh cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is past its
// freshness deadline.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	entry, data, err := m.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	// Stale entries stay stored for conditional requests but are not
	// served as fresh hits
	if entry.IsExpired() {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Cache hit
	CacheHits.WithLabelValues("redis").Inc()
	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return entry, nil
}

// GetStale retrieves a cache entry whether fresh or expired. The fetch path
// uses it to decide between serving the fresh body and revalidating the
// stored ETag with a conditional request.
func (m *Manager) GetStale(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	entry, data, err := m.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	layer := "redis"
	if entry.IsExpired() {
		layer = "stale"
	}
	CacheHits.WithLabelValues(layer).Inc()
	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return entry, nil
}

func (m *Manager) lookup(ctx context.Context, key CacheKey) (*CacheEntry, []byte, error) {
	cacheKey := key.String()

	// Get data from Redis
	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, nil, fmt.Errorf("redis get: %w", err)
	}

	// Unmarshal entry
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	return &entry, data, nil
}

// Set stores a cache entry. The Redis TTL is the entry's remaining freshness
// plus the revalidation window, so the ETag outlives the freshness deadline.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	cacheKey := key.String()

	// Calculate TTL
	ttl := entry.TTL()
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}

	// Marshal entry
	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Store in Redis with TTL
	if err := m.redis.Set(ctx, cacheKey, data, ttl+revalidationWindow).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	// Update cache size metric
	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	cacheKey := key.String()

	if err := m.redis.Del(ctx, cacheKey).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// UpdateTTL updates the TTL of an existing cache entry.
// This is useful when receiving a 304 Not Modified response with a new
// expires header; the revalidated entry is usually already stale.
func (m *Manager) UpdateTTL(ctx context.Context, key CacheKey, newExpires time.Time) error {
	// Get existing entry, stale included
	entry, err := m.GetStale(ctx, key)
	if err != nil {
		return err
	}

	// Update expires time
	entry.Expires = newExpires

	// Re-save with new TTL
	return m.Set(ctx, key, entry)
}

// InvalidateEndpoint removes all cached entries for an endpoint, regardless
// of query parameters. Mutations call this so the next list fetch revalidates
// against the backend instead of serving a stale page.
// Returns the number of keys removed.
func (m *Manager) InvalidateEndpoint(ctx context.Context, endpoint string) (int, error) {
	prefix := CacheKey{Endpoint: endpoint}.EndpointPrefix()

	var removed int

	// The bare key (no query params) does not match the pattern below
	n, err := m.redis.Del(ctx, prefix).Result()
	if err != nil {
		CacheErrors.WithLabelValues("invalidate").Inc()
		return removed, fmt.Errorf("redis del: %w", err)
	}
	removed += int(n)

	var cursor uint64
	for {
		keys, next, err := m.redis.Scan(ctx, cursor, prefix+":*", invalidateScanCount).Result()
		if err != nil {
			CacheErrors.WithLabelValues("invalidate").Inc()
			return removed, fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			if err := m.redis.Del(ctx, keys...).Err(); err != nil {
				CacheErrors.WithLabelValues("invalidate").Inc()
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if removed > 0 {
		CacheInvalidations.Add(float64(removed))
	}

	return removed, nil
}
