package sinks

import (
	"context"
	"sync"

	"novastrike/engine/logging"
)

// MemorySink accumulates events in memory. Tests use it to assert on the
// diagnostic stream without touching IO.
type MemorySink struct {
	mu     sync.RWMutex
	events []logging.Event
}

// NewMemorySink returns an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{events: make([]logging.Event, 0)}
}

// Write satisfies logging.Sink.
func (s *MemorySink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]logging.Event, len(s.events))
	copy(copied, s.events)
	return copied
}

// EventsOfType filters recorded events by type.
func (s *MemorySink) EventsOfType(t logging.EventType) []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []logging.Event
	for _, event := range s.events {
		if event.Type == t {
			matched = append(matched, event)
		}
	}
	return matched
}

// Reset clears the recorded events.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

// Close satisfies logging.Sink.
func (s *MemorySink) Close(context.Context) error {
	return nil
}
