// Package metrics provides the centralized Prometheus metrics registry for the
// admin console engine. All metrics are defined in their respective packages
// (client, cache, coordinator, mutation) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the console engine.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - console_requests_total{endpoint, status} (Counter): Backend requests by endpoint and HTTP status
//   - console_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - console_errors_total{class} (Counter): Errors by class (transport, client, server, decode)
//
// Cache Metrics (pkg/cache):
//   - console_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - console_cache_misses_total (Counter): Cache misses
//   - console_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - console_304_responses_total (Counter): 304 Not Modified responses
//   - console_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - console_cache_errors_total{operation} (Counter): Cache operation errors
//   - console_cache_invalidations_total (Counter): Entries dropped after mutating actions
//
// Coordinator Metrics (pkg/coordinator):
//   - console_fetches_total{page, result} (Counter): Fetch dispositions by page
//     (applied, not_modified, stale_dropped, error, cancelled, skipped_duplicate)
//   - console_fetch_duration_seconds{page} (Histogram): Fetch attempt duration by page
//   - console_debounce_coalesced_total{page} (Counter): Parameter changes absorbed by an
//     already-pending debounce window
//
// Mutation Metrics (pkg/mutation):
//   - console_mutations_total{page, result} (Counter): Optimistic mutations by page
//     and result (applied, rolled_back)
//   - console_bulk_items_total{page, result} (Counter): Items processed by bulk
//     mutations, by result (succeeded, failed)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(console_cache_hits_total[5m])) /
//   (sum(rate(console_cache_hits_total[5m])) + sum(rate(console_cache_misses_total[5m])))
//
//   # Share of fetches answered with 304
//   rate(console_304_responses_total[5m]) / rate(console_requests_total[5m])
//
//   # Fetches dropped as stale (should stay near zero)
//   sum(rate(console_fetches_total{result="stale_dropped"}[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(console_request_duration_seconds_bucket[5m]))
//
//   # Mutation Rollback Rate
//   sum(rate(console_mutations_total{result="rolled_back"}[5m])) /
//   sum(rate(console_mutations_total[5m]))
