package notify

import (
	"github.com/rs/zerolog"
)

// LogSink writes every event to a structured logger. It is the always-on
// diagnostic sink: even when no UI is draining toasts, failed fetches and
// rolled-back mutations leave a trace.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a log-backed sink writing through the given logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs the event at a severity matching its level.
func (s *LogSink) Notify(event Event) {
	var logEvent *zerolog.Event
	switch event.Level {
	case LevelError:
		logEvent = s.logger.Error()
	case LevelWarning:
		logEvent = s.logger.Warn()
	default:
		logEvent = s.logger.Info()
	}

	logEvent.
		Str("event_id", event.ID).
		Str("page", event.Page).
		Str("event_level", string(event.Level)).
		Str("title", event.Title).
		Msg(event.Message)
}
