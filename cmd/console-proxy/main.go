// Command console-proxy fronts the Taatom SuperAdmin API for the browser
// console. It terminates CORS, forwards /api/v1/* through the caching client
// so every console user shares the Redis conditional-GET cache, and exposes
// health and Prometheus endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Godevs04/taatom-admin-console/internal/config"
	"github.com/Godevs04/taatom-admin-console/pkg/client"
	"github.com/Godevs04/taatom-admin-console/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const proxyUserAgent = "taatom-console-proxy/1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig()).Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("console-proxy")

	// Redis backs the shared response cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

	backend, err := client.New(client.Config{
		Redis:     redisClient,
		BaseURL:   cfg.BackendURL,
		AuthToken: cfg.AuthToken,
		UserAgent: proxyUserAgent,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create backend client")
	}
	defer backend.Close()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: newRouter(cfg, backend, redisClient),
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("backend", cfg.BackendURL).
			Strs("origins", cfg.AllowedOrigins).
			Msg("Starting console proxy")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	logger.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
