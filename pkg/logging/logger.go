// Package logging configures zerolog for the console engine.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity.
type LogLevel string

const (
	// LevelDebug includes cache and coordinator internals.
	LevelDebug LogLevel = "debug"

	// LevelInfo includes normal operation events.
	LevelInfo LogLevel = "info"

	// LevelWarn includes degraded-but-working conditions and above.
	LevelWarn LogLevel = "warn"

	// LevelError includes surfaced failures only.
	LevelError LogLevel = "error"
)

// levelNames maps accepted level spellings to zerolog levels. Unknown
// spellings fall back to info.
var levelNames = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level that gets written.
	Level LogLevel

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool

	// Output receives the log stream. Nil means os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it. Every
// component logger created afterwards inherits the level and output chosen
// here.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	if parsed, ok := levelNames[strings.ToLower(string(level))]; ok {
		return parsed
	}
	return zerolog.InfoLevel
}

// NewLogger returns a logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, TTL)
//   - Request flow (conditional requests, ETags)
//   - Coordinator phase transitions and debounce timers
//
// Info: Normal operation events
//   - Applied fetches (new data rendered)
//   - 304 Not Modified responses
//   - Mutations and bulk batch completion
//   - Proxy startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Degraded fetches (stale data kept after an error)
//   - Cache errors (fallback to direct request)
//   - Dropped stale results
//
// Error: Error conditions requiring attention
//   - Failed fetches with no cached data to fall back on
//   - Rolled-back mutations
//   - Configuration errors
//
// Context Fields:
//   - page: console page name (locales, users, logs, ...)
//   - endpoint: backend endpoint path
//   - fetch_key: parameter fingerprint of a fetch
//   - attempt_id: correlation ID of a fetch attempt
//   - status_code: HTTP status code
//   - duration: Request duration
//   - error_class: Error classification (transport, client, server, decode)
//   - cache_hit: Boolean indicating cache hit
//   - etag: ETag value for conditional requests
//   - ttl: Cache entry TTL
