package notify

import (
	"sync"
)

// DefaultChannelCapacity bounds the toast buffer when no capacity is given.
const DefaultChannelCapacity = 32

// ChannelSink buffers events in a bounded channel for a UI layer to drain.
// When the buffer is full the oldest event is dropped so recent toasts win;
// publishing never blocks a page.
type ChannelSink struct {
	mu     sync.Mutex
	events chan Event
}

// NewChannelSink creates a channel sink holding up to capacity events.
// Capacities below 1 fall back to DefaultChannelCapacity.
func NewChannelSink(capacity int) *ChannelSink {
	if capacity < 1 {
		capacity = DefaultChannelCapacity
	}
	return &ChannelSink{
		events: make(chan Event, capacity),
	}
}

// Notify enqueues the event, evicting the oldest buffered event when full.
func (s *ChannelSink) Notify(event Event) {
	// The lock serializes producers so evict-then-send cannot race another
	// producer past the buffer capacity.
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case s.events <- event:
			return
		default:
		}

		select {
		case <-s.events:
		default:
		}
	}
}

// Events exposes the buffered events for consumption, e.g. in a select loop.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// Drain returns all currently buffered events without blocking.
func (s *ChannelSink) Drain() []Event {
	var drained []Event
	for {
		select {
		case event := <-s.events:
			drained = append(drained, event)
		default:
			return drained
		}
	}
}
