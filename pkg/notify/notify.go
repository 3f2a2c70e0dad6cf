// Package notify delivers user-facing console notifications (toasts) and
// diagnostic events to pluggable sinks. Pages and the fetch coordinator
// publish events without caring who listens; sinks never hand errors back,
// so a broken sink cannot break a page.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Level classifies an event for toast styling and log severity.
type Level string

const (
	// LevelInfo is a neutral informational event.
	LevelInfo Level = "info"

	// LevelSuccess reports a completed user action (create, update, bulk done).
	LevelSuccess Level = "success"

	// LevelWarning reports a degraded but recoverable condition.
	LevelWarning Level = "warning"

	// LevelError reports a failed operation the user should know about.
	LevelError Level = "error"
)

// Event is a single console notification.
type Event struct {
	// ID uniquely identifies the event for deduplication in the UI layer.
	ID string `json:"id"`

	// Level is the event severity.
	Level Level `json:"level"`

	// Title is the short toast headline.
	Title string `json:"title"`

	// Message is the detail line, often an error string.
	Message string `json:"message"`

	// Page names the console page that produced the event.
	Page string `json:"page"`

	// Time is when the event was created.
	Time time.Time `json:"time"`
}

// NewEvent builds an event with a fresh ID and the current timestamp.
func NewEvent(level Level, page, title, message string) Event {
	return Event{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: message,
		Page:    page,
		Time:    time.Now(),
	}
}

// Sink receives events. Implementations must be safe for concurrent use and
// must not block the caller for long; publishing is fire-and-forget.
type Sink interface {
	Notify(event Event)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Event)

// Notify calls f(event).
func (f SinkFunc) Notify(event Event) {
	f(event)
}

// Multi fans an event out to several sinks in order. Nil entries are skipped.
type Multi []Sink

// NewMulti combines sinks into a single fan-out sink.
func NewMulti(sinks ...Sink) Multi {
	return Multi(sinks)
}

// Notify delivers the event to every non-nil sink.
func (m Multi) Notify(event Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(event)
		}
	}
}
