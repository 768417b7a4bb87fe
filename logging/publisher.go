package logging

import (
	"context"
	"time"
)

// EventType identifies one kind of diagnostic event, namespaced by domain,
// e.g. "targeting.target_selected".
type EventType string

// Severity orders events for sink-side filtering.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// EntityKind classifies the actor an event is about.
type EntityKind string

const (
	EntityKindUnknown    EntityKind = "unknown"
	EntityKindLauncher   EntityKind = "launcher"
	EntityKindProjectile EntityKind = "projectile"
	EntityKindWorld      EntityKind = "world"
)

// Event is one structured diagnostic record. Everything the engine has to
// say flows through these instead of ad-hoc printing: target picks and
// rejections, retarget decisions, claim conflicts, expiries.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// EntityRef names an entity by stable identity and kind.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

const (
	CategoryTargeting = "targeting"
	CategoryLifecycle = "lifecycle"
	CategorySystem    = "system"
)

// Publisher accepts events for asynchronous delivery to sinks.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// PublisherFunc adapts a function into a Publisher.
type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher returns a publisher that discards everything. Components take
// it as the default so diagnostics never gate engine behavior.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithFields wraps a publisher so every event carries the given Extra fields
// unless the event already sets them.
func WithFields(p Publisher, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if len(fields) == 0 {
		return p
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &fieldPublisher{next: p, fields: copied}
}

type fieldPublisher struct {
	next   Publisher
	fields map[string]any
}

func (p *fieldPublisher) Publish(ctx context.Context, event Event) {
	if p.next == nil {
		return
	}
	event = cloneEvent(event)
	if event.Extra == nil {
		event.Extra = make(map[string]any, len(p.fields))
	}
	for k, v := range p.fields {
		if _, exists := event.Extra[k]; !exists {
			event.Extra[k] = v
		}
	}
	p.next.Publish(ctx, event)
}

func cloneEvent(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		copied := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			copied[k] = v
		}
		cloned.Extra = copied
	}
	return cloned
}
