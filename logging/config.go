package logging

import "time"

// Config tunes the router: which sinks run, how deep the queue is, and the
// minimum severity that gets forwarded at all.
type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	DropWarnInterval time.Duration
}

// JSONConfig tunes the batched JSON file sink.
type JSONConfig struct {
	FilePath      string
	MaxBatch      int
	FlushInterval time.Duration
}

// DefaultConfig enables the console sink at info severity.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
	}
}

// HasSink reports whether name appears in EnabledSinks.
func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// CloneFields copies the shared field map so the router can annotate events
// without racing the caller.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
