package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Godevs04/taatom-admin-console/internal/config"
	"github.com/Godevs04/taatom-admin-console/pkg/api"
	"github.com/Godevs04/taatom-admin-console/pkg/client"
	"github.com/Godevs04/taatom-admin-console/pkg/logging"
)

const maxPayloadBytes = 1 << 20

// newRouter wires the proxy routes: health and metrics locally, /api/v1/*
// forwarded through the caching client.
func newRouter(cfg config.Config, backend *client.Client, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(redisClient))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/{resource}", func(r chi.Router) {
		r.Get("/", listHandler(backend))
		r.Post("/", createHandler(backend))
		r.Patch("/{id}", updateHandler(backend))
		r.Delete("/{id}", deleteHandler(backend))
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports whether the proxy can serve cached responses.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func resourcePath(r *http.Request) string {
	return "/api/v1/" + chi.URLParam(r, "resource")
}

// listHandler serves GET list requests through the shared cache. The X-Cache
// header reports how the response was produced.
func listHandler(backend *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := backend.FetchList(r.Context(), resourcePath(r), r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", cacheStatus(result))
		if result.ETag != "" {
			w.Header().Set("ETag", result.ETag)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(result.Body)
	}
}

func cacheStatus(result *client.ListResult) string {
	switch {
	case result.FromCache:
		return "HIT"
	case result.NotModified:
		return "REVALIDATED"
	default:
		return "MISS"
	}
}

// createHandler forwards POST bodies uncached and drops the resource's
// cached pages afterwards, the same way console pages do after a mutation.
func createHandler(backend *client.Client) http.HandlerFunc {
	logger := logging.NewLogger("console-proxy")
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := resourcePath(r)

		payload, err := readPayload(r)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		env, err := backend.PostJSON(r.Context(), endpoint, payload)
		if err != nil {
			writeError(w, err)
			return
		}

		invalidateAfterMutation(r.Context(), backend, endpoint, logger)
		writeEnvelope(w, env)
	}
}

func updateHandler(backend *client.Client) http.HandlerFunc {
	logger := logging.NewLogger("console-proxy")
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := resourcePath(r)

		payload, err := readPayload(r)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		env, err := backend.PatchJSON(r.Context(), endpoint, chi.URLParam(r, "id"), payload)
		if err != nil {
			writeError(w, err)
			return
		}

		invalidateAfterMutation(r.Context(), backend, endpoint, logger)
		writeEnvelope(w, env)
	}
}

func deleteHandler(backend *client.Client) http.HandlerFunc {
	logger := logging.NewLogger("console-proxy")
	return func(w http.ResponseWriter, r *http.Request) {
		endpoint := resourcePath(r)

		env, err := backend.DeleteJSON(r.Context(), endpoint, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		invalidateAfterMutation(r.Context(), backend, endpoint, logger)
		writeEnvelope(w, env)
	}
}

// readPayload reads a JSON request body. An empty body is allowed and
// forwarded as no payload.
func readPayload(r *http.Request) (any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, errors.New("request body is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func invalidateAfterMutation(ctx context.Context, backend *client.Client, endpoint string, logger zerolog.Logger) {
	if err := backend.InvalidateEndpoint(ctx, endpoint); err != nil {
		logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache invalidation failed")
	}
}

func writeEnvelope(w http.ResponseWriter, env *api.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeError maps a backend failure onto the proxy response: client and
// server statuses pass through, transport and decode failures become 502.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	message := "backend request failed"

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
		if apiErr.Class == client.ErrorClassClient || apiErr.Class == client.ErrorClassServer {
			status = apiErr.StatusCode
		}
	}

	writeFailure(w, status, message)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}
