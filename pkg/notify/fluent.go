package notify

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/rs/zerolog"
)

// FluentConfig holds the connection settings for a Fluentd/Fluent Bit
// forwarder.
type FluentConfig struct {
	// Host is the forwarder host (default 127.0.0.1).
	Host string

	// Port is the forwarder port (default 24224).
	Port int

	// Tag is the fluent tag attached to every event, e.g. "console.notify".
	Tag string
}

// FluentSink forwards events to a Fluentd/Fluent Bit aggregator so console
// incidents show up next to backend logs. Forwarding failures are logged at
// debug level and otherwise swallowed; an unreachable aggregator must not
// surface in the console.
type FluentSink struct {
	client *fluent.Fluent
	tag    string
	logger zerolog.Logger
}

// NewFluentSink connects to the forwarder described by cfg. Note that a
// successful return does not guarantee a live connection; transport errors
// surface on the first post.
func NewFluentSink(cfg FluentConfig, logger zerolog.Logger) (*FluentSink, error) {
	if cfg.Tag == "" {
		return nil, fmt.Errorf("fluent tag is required")
	}

	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("create fluent forwarder: %w", err)
	}

	return &FluentSink{
		client: client,
		tag:    cfg.Tag,
		logger: logger,
	}, nil
}

// Notify posts the event to the forwarder.
func (s *FluentSink) Notify(event Event) {
	record := map[string]string{
		"event_id":  event.ID,
		"level":     string(event.Level),
		"title":     event.Title,
		"message":   event.Message,
		"page":      event.Page,
		"timestamp": event.Time.UTC().Format(time.RFC3339Nano),
	}

	if err := s.client.Post(s.tag, record); err != nil {
		s.logger.Debug().
			Err(err).
			Str("event_id", event.ID).
			Msg("Fluent post failed, event dropped")
	}
}

// Close shuts down the forwarder connection.
func (s *FluentSink) Close() error {
	return s.client.Close()
}
