// Package client provides the SuperAdmin REST client with response caching,
// conditional requests, and error handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for console client operations.
var (
	consoleRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_requests_total",
		Help: "Total backend requests by endpoint and status",
	}, []string{"endpoint", "status"})

	consoleRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_request_duration_seconds",
		Help:    "Backend request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	consoleErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_errors_total",
		Help: "Total backend errors by class",
	}, []string{"class"})
)

// Client is the SuperAdmin REST client.
type Client struct {
	httpClient *http.Client
	redis      *redis.Client
	cache      *cache.Manager
	config     Config
	baseURL    string
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis client for response caching
	Redis *redis.Client

	// BaseURL of the SuperAdmin backend (e.g. "https://api.taatom.io")
	BaseURL string

	// AuthToken is the static service token sent as a bearer header.
	// Empty means no Authorization header.
	AuthToken string

	// User-Agent header sent on every request
	UserAgent string

	// Timeout per HTTP request
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redis *redis.Client, baseURL string) Config {
	return Config{
		Redis:     redis,
		BaseURL:   baseURL,
		UserAgent: "taatom-admin-console/1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new SuperAdmin client.
func New(cfg Config) (*Client, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	// Initialize logger
	logger := log.With().Str("component", "console-client").Logger()

	// Create cache manager
	cacheManager := cache.NewManager(cfg.Redis)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		redis:   cfg.Redis,
		cache:   cacheManager,
		config:  cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}, nil
}

// ListResult is the outcome of a list fetch.
type ListResult struct {
	// Body is the response payload, from the network or the cache
	Body []byte

	// StatusCode of the response the body came from
	StatusCode int

	// NotModified reports a 304 answer to a conditional request;
	// Body then carries the stored payload
	NotModified bool

	// FromCache reports that a fresh cache entry was served without a
	// network round trip
	FromCache bool

	// ETag of the response, when present
	ETag string
}

// FetchList performs a cache-aware GET of a list endpoint. A fresh cache
// entry is served without touching the network; a stale entry turns into a
// conditional request revalidating the stored ETag; a 304 answer returns the
// stored body with NotModified set.
func (c *Client) FetchList(ctx context.Context, endpoint string, query url.Values) (*ListResult, error) {
	return c.fetchList(ctx, endpoint, query, false)
}

// Revalidate behaves like FetchList but never answers from a fresh entry
// alone: the request always reaches the backend, carrying conditional
// headers when an entry exists. Force refresh and post-mutation reloads use
// this path.
func (c *Client) Revalidate(ctx context.Context, endpoint string, query url.Values) (*ListResult, error) {
	return c.fetchList(ctx, endpoint, query, true)
}

func (c *Client) fetchList(ctx context.Context, endpoint string, query url.Values, revalidate bool) (*ListResult, error) {
	// Request timing
	startTime := time.Now()
	defer func() {
		consoleRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check cache
	cacheKey := cache.CacheKey{
		Endpoint:    endpoint,
		QueryParams: query,
	}

	cached, err := c.cache.GetStale(ctx, cacheKey)
	if err != nil && err != cache.ErrCacheMiss {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
	}

	// Step 2: Serve a fresh entry directly, like a browser honoring Expires
	if cached != nil && !cached.IsExpired() && !revalidate {
		consoleRequestsTotal.WithLabelValues(endpoint, "cache").Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", cached.ETag).
			Dur("age", cached.Age()).
			Msg("Serving fresh cache entry")
		return &ListResult{
			Body:       cached.Data,
			StatusCode: cached.StatusCode,
			FromCache:  true,
			ETag:       cached.ETag,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(endpoint, query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Step 3: Make a conditional request when a stored entry exists
	if cached != nil && cache.ShouldMakeConditionalRequest(cached) {
		cache.AddConditionalHeaders(req, cached)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", cached.ETag).
			Msg("Making conditional request")
	}

	// Step 4: Common headers
	c.setCommonHeaders(req)

	// Step 5: Execute
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation is a silent non-event, not an error to classify
		if errors.Is(err, context.Canceled) {
			return nil, err
		}

		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		consoleErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		consoleRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, &APIError{
			Class:   ErrorClassTransport,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	// Step 6: Handle 304 Not Modified
	if resp.StatusCode == http.StatusNotModified {
		if cached == nil {
			// Conditional headers are only sent when an entry exists, so
			// a 304 without one means the backend misbehaved
			consoleErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Class:      ErrorClassServer,
				Message:    "304 response without a cached entry",
			}
		}

		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		consoleRequestsTotal.WithLabelValues(endpoint, "304").Inc()
		cache.NotModifiedResponses.Inc()

		// Update cache TTL from the new expires header
		if expiresStr := resp.Header.Get("Expires"); expiresStr != "" {
			if newExpires, err := http.ParseTime(expiresStr); err == nil {
				if err := c.cache.UpdateTTL(ctx, cacheKey, newExpires); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
				}
			}
		}

		return &ListResult{
			Body:        cached.Data,
			StatusCode:  cached.StatusCode,
			NotModified: true,
			ETag:        cached.ETag,
		}, nil
	}

	// Step 7: Handle HTTP errors
	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		consoleErrorsTotal.WithLabelValues(string(class)).Inc()
		consoleRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Backend request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    resp.Status,
		}
	}

	// Step 8: Store and return the new body
	entry, err := cache.ResponseToEntry(resp)
	if err != nil {
		consoleErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return nil, &APIError{
			Class:   ErrorClassTransport,
			Message: "read response body",
			Err:     err,
		}
	}

	if entry.TTL() > 0 {
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	consoleRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return &ListResult{
		Body:       entry.Data,
		StatusCode: resp.StatusCode,
		ETag:       entry.ETag,
	}, nil
}

// PostJSON sends a create request to an endpoint and decodes the mutation
// envelope. Mutation responses never touch the cache.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload any) (*api.Envelope, error) {
	return c.sendJSON(ctx, http.MethodPost, endpoint, "", payload)
}

// PatchJSON sends an update for one record of an endpoint.
func (c *Client) PatchJSON(ctx context.Context, endpoint, id string, payload any) (*api.Envelope, error) {
	return c.sendJSON(ctx, http.MethodPatch, endpoint, id, payload)
}

// DeleteJSON sends a delete for one record of an endpoint.
func (c *Client) DeleteJSON(ctx context.Context, endpoint, id string) (*api.Envelope, error) {
	return c.sendJSON(ctx, http.MethodDelete, endpoint, id, nil)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint, id string, payload any) (*api.Envelope, error) {
	startTime := time.Now()
	defer func() {
		consoleRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	path := endpoint
	if id != "" {
		path = strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(id)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, nil), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setCommonHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Msg("Executing mutation request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}

		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		consoleErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		consoleRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, &APIError{
			Class:   ErrorClassTransport,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		consoleErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return nil, &APIError{
			Class:   ErrorClassTransport,
			Message: "read response body",
			Err:     err,
		}
	}

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		consoleErrorsTotal.WithLabelValues(string(class)).Inc()
		consoleRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		// Surface the backend's own message when the envelope carries one
		message := resp.Status
		if env, decodeErr := api.DecodeEnvelope(data); decodeErr == nil && env.Error != "" {
			message = env.Error
		}

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Mutation request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    message,
		}
	}

	env, err := api.DecodeEnvelope(data)
	if err != nil {
		consoleErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Msg("Mutation response failed shape validation")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    "mutation envelope rejected",
			Err:        err,
		}
	}

	consoleRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return env, nil
}

// InvalidateEndpoint drops every cached page of an endpoint. Pages call it
// after create, update or delete so the next fetch revalidates against the
// backend instead of replaying a stale page.
func (c *Client) InvalidateEndpoint(ctx context.Context, endpoint string) error {
	removed, err := c.cache.InvalidateEndpoint(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", endpoint, err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("keys", removed).
		Msg("Invalidated cached endpoint")
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}
}

// Close releases client resources. The Redis client is owned by the caller
// and stays open.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager (for testing).
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
