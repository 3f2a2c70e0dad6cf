// Package config loads the console-proxy configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Default guardrail values applied by Sanitize.
const (
	DefaultPort            = 8080
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the console-proxy runtime configuration.
type Config struct {
	// Port is the listen port of the proxy.
	Port int `env:"CONSOLE_PROXY_PORT" envDefault:"8080"`

	// BackendURL is the base URL of the SuperAdmin API the proxy fronts.
	BackendURL string `env:"CONSOLE_BACKEND_URL" envDefault:"http://localhost:3000"`

	// AuthToken is sent as a bearer token on every forwarded request.
	// Empty means the backend is open (local development).
	AuthToken string `env:"CONSOLE_AUTH_TOKEN"`

	// Redis connection for the shared response cache.
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// RequestTimeout bounds each forwarded backend request.
	RequestTimeout time.Duration `env:"CONSOLE_REQUEST_TIMEOUT" envDefault:"30s"`

	// ShutdownTimeout bounds graceful server shutdown.
	ShutdownTimeout time.Duration `env:"CONSOLE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// AllowedOrigins lists the browser origins the console may call from.
	AllowedOrigins []string `env:"CONSOLE_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// Logging.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads the configuration from the environment. A .env file is loaded
// first when one exists; a missing file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *Config) Sanitize() {
	if c.Port < 1 || c.Port > 65535 {
		c.Port = DefaultPort
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}

	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, strings.TrimRight(origin, "/"))
		}
	}
	c.AllowedOrigins = origins
}

// Validate reports configuration that cannot be repaired by Sanitize.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return errors.New("CONSOLE_BACKEND_URL must not be empty")
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("CONSOLE_BACKEND_URL must be an http(s) URL, got %q", c.BackendURL)
	}
	if c.RedisAddr == "" {
		return errors.New("REDIS_ADDR must not be empty")
	}
	return nil
}

// Addr returns the listen address of the proxy.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
