package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTTL is the freshness window assumed when the backend sends no
// usable Expires header.
const DefaultTTL = 5 * time.Minute

// ResponseToEntry captures an HTTP response as a cache entry: body bytes,
// validators and the freshness deadline. The response body is consumed and
// replaced with a reader over the captured bytes, so the caller can keep
// using the response afterwards.
func ResponseToEntry(resp *http.Response) (*CacheEntry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &CacheEntry{
		Data:       body,
		ETag:       resp.Header.Get("ETag"),
		Expires:    parseExpires(resp.Header),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   time.Now(),
	}

	if value := resp.Header.Get("Last-Modified"); value != "" {
		if lastModified, err := http.ParseTime(value); err == nil {
			entry.LastModified = lastModified
		}
	}

	return entry, nil
}

// parseExpires reads the freshness deadline from the Expires header. A
// missing or malformed header falls back to DefaultTTL; a deadline in the
// past is clamped to now so the entry is stored stale but revalidatable.
func parseExpires(headers http.Header) time.Time {
	value := headers.Get("Expires")
	if value == "" {
		return time.Now().Add(DefaultTTL)
	}

	expires, err := http.ParseTime(value)
	if err != nil {
		return time.Now().Add(DefaultTTL)
	}

	if now := time.Now(); expires.Before(now) {
		return now
	}
	return expires
}

// ShouldMakeConditionalRequest reports whether the entry can back a
// conditional request instead of a full refetch.
func ShouldMakeConditionalRequest(entry *CacheEntry) bool {
	return entry != nil && entry.HasValidators()
}

// AddConditionalHeaders attaches the entry's validators to an outgoing
// request. ETag wins over Last-Modified when both are present; the backend
// compares it exactly while dates carry only second precision.
func AddConditionalHeaders(req *http.Request, entry *CacheEntry) {
	if entry == nil || req == nil {
		return
	}

	switch {
	case entry.ETag != "":
		req.Header.Set("If-None-Match", entry.ETag)
	case !entry.LastModified.IsZero():
		req.Header.Set("If-Modified-Since", entry.LastModified.Format(http.TimeFormat))
	}
}
