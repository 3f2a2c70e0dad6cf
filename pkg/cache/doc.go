// Package cache stores SuperAdmin listing responses in Redis the way a
// browser's HTTP cache would: entries are fresh until their Expires header
// says otherwise, then stay revalidatable through their ETag.
//
// What the manager handles:
//
// - Freshness windows from backend Expires headers
// - Validators for conditional refetches (If-None-Match, If-Modified-Since)
// - A revalidation window that keeps stale entries available for 304s
// - Endpoint-wide invalidation after mutating actions
// - Deterministic keys from endpoint plus sorted query parameters
// - Prometheus counters for hits, misses and 304 traffic
//
// # Fetch Path
//
// The client asks for the entry stale-or-fresh and decides from there:
//
//	key := cache.CacheKey{
//		Endpoint:    "/api/v1/locales",
//		QueryParams: url.Values{"countryCode": []string{"FR"}},
//	}
//
//	entry, err := manager.GetStale(ctx, key)
//	switch {
//	case err == cache.ErrCacheMiss:
//		// nothing stored, fetch the full body
//	case entry.IsExpired():
//		// stale: revalidate with the stored validators
//		cache.AddConditionalHeaders(req, entry)
//	default:
//		// fresh: serve entry.Data without touching the network
//	}
//
// # Storing Responses
//
// A 200 response is captured wholesale and stored under its key:
//
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// A 304 carries no body; UpdateTTL moves the freshness deadline of the
// stored entry instead:
//
//	manager.UpdateTTL(ctx, key, newExpires)
//
// # Invalidation
//
// Destructive actions (create, delete, update) make every cached page of the
// affected endpoint stale at once. InvalidateEndpoint drops all entries whose
// key starts with the endpoint's prefix so the follow-up refresh fetches
// fresh data:
//
//	if _, err := manager.InvalidateEndpoint(ctx, "/api/v1/locales"); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - console_cache_hits_total{layer="redis"} - Cache hits
//   - console_cache_misses_total - Cache misses
//   - console_cache_size_bytes{layer="redis"} - Cache size
//   - console_304_responses_total - Conditional request successes
//   - console_cache_errors_total{operation} - Cache operation errors
//   - console_cache_invalidations_total - Entries dropped by invalidation
//
// # Cache Semantics
//
// This package mirrors what a browser's HTTP cache does for the console:
//
// - Entries are fresh until their Expires header says otherwise
// - Stale entries stay stored so conditional requests (If-None-Match) can
//   revalidate them cheaply instead of refetching the body
// - 304 Not Modified responses refresh the entry TTL without moving the body
// - The cache is shared: every console user behind the proxy sees the same entries
package cache
