// Package listing holds the state a console page displays: the items of the
// last successfully applied response, the pagination block, and the fetch key
// that identifies which parameter set produced them.
//
// The fetch key is a deterministic fingerprint of (endpoint, filters, page,
// page size). Coordinators compare fingerprints to decide whether a completed
// response is still the one the page wants.
package listing

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Fingerprint builds the deterministic fetch key for an endpoint and its
// query parameters. Keys and values are sorted so logically identical
// parameter sets always produce the same key.
//
// Example:
//
//	api/v1/locales:limit=25:page=2:search=paris
func Fingerprint(endpoint string, query url.Values) string {
	parts := []string{strings.Trim(endpoint, "/")}

	if len(query) > 0 {
		queryKeys := make([]string, 0, len(query))
		for key := range query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := append([]string(nil), query[key]...)
			sort.Strings(values)
			for _, value := range values {
				parts = append(parts, fmt.Sprintf("%s=%s", key, value))
			}
		}
	}

	return strings.Join(parts, ":")
}

// Snapshot captures the parameters of one fetch attempt at dispatch time.
// An in-flight attempt carries its snapshot so the response can be checked
// against the parameters current at completion.
type Snapshot struct {
	Key      string
	Endpoint string
	Query    url.Values
}

// NewSnapshot fingerprints the given parameters. Query values are copied so
// later filter edits cannot mutate an in-flight snapshot.
func NewSnapshot(endpoint string, query url.Values) Snapshot {
	copied := make(url.Values, len(query))
	for key, values := range query {
		copied[key] = append([]string(nil), values...)
	}
	return Snapshot{
		Key:      Fingerprint(endpoint, query),
		Endpoint: endpoint,
		Query:    copied,
	}
}
