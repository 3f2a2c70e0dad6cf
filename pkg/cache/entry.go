// Package cache stores backend listing responses in Redis together with the
// validator metadata needed to revalidate them cheaply.
package cache

import (
	"net/http"
	"time"
)

// CacheEntry is one cached listing response. Entries outlive their freshness
// window: a stale body stays stored so the next fetch can revalidate it with
// a conditional request instead of transferring the payload again.
type CacheEntry struct {
	// Data is the raw JSON body the backend returned.
	Data []byte `json:"data"`

	// ETag is the validator sent back as If-None-Match.
	ETag string `json:"etag"`

	// Expires ends the freshness window, taken from the backend Expires header.
	Expires time.Time `json:"expires"`

	// LastModified backs If-Modified-Since when the backend sent no ETag.
	LastModified time.Time `json:"last_modified"`

	// StatusCode is the status of the cached response.
	StatusCode int `json:"status_code"`

	// Headers are the cached response headers.
	Headers http.Header `json:"headers"`

	// CachedAt records when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired reports whether the freshness window has passed. Expired entries
// are never served directly; they remain revalidation candidates.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the remaining freshness window, 0 when the entry is stale.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Age returns how long ago the entry was stored.
func (e *CacheEntry) Age() time.Duration {
	return time.Since(e.CachedAt)
}

// HasValidators reports whether the entry carries an ETag or Last-Modified
// value a conditional request could use.
func (e *CacheEntry) HasValidators() bool {
	return e.ETag != "" || !e.LastModified.IsZero()
}
