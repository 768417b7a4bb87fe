package telemetry

import (
	"log"
	"sort"
	"sync"
)

// Logger exposes the plain-text logging surface engine components need for
// operational messages that are not structured diagnostics.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts a function into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the counter surface engine components report into.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// Counters is an in-memory Metrics implementation. The engine host reads it
// for status reporting; tests read it for assertions.
type Counters struct {
	mu     sync.RWMutex
	values map[string]uint64
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

// Add implements Metrics.
func (c *Counters) Add(key string, delta uint64) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	c.values[key] += delta
	c.mu.Unlock()
}

// Store implements Metrics.
func (c *Counters) Store(key string, value uint64) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

// Value returns the current count for key.
func (c *Counters) Value(key string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// Keys returns every recorded key in sorted order.
func (c *Counters) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
