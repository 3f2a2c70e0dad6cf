package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey represents a unique identifier for a cached backend response.
type CacheKey struct {
	// Endpoint is the backend endpoint path (e.g., "/api/v1/locales")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"countryCode": "FR", "page": "2"})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: console:endpoint:query1=val1:query2=val2
//
// Example:
//
//	console:api/v1/locales:countryCode=FR:limit=25:page=2
func (k CacheKey) String() string {
	parts := []string{"console"}

	// Add endpoint (normalize path)
	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := append([]string(nil), k.QueryParams[key]...)
			sort.Strings(values)
			for _, value := range values {
				parts = append(parts, fmt.Sprintf("%s=%s", key, value))
			}
		}
	}

	return strings.Join(parts, ":")
}

// EndpointPrefix returns the key prefix shared by every entry of the
// endpoint, regardless of query parameters. Used for invalidation.
func (k CacheKey) EndpointPrefix() string {
	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint == "" {
		return "console"
	}
	return "console:" + endpoint
}
