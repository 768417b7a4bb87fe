package logging_test

import (
	"context"
	"testing"
	"time"

	"novastrike/engine/logging"
	"novastrike/engine/logging/sinks"
)

func newTestRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router, memory
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRouterDeliversToSinks(t *testing.T) {
	router, memory := newTestRouter(t, logging.DefaultConfig())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		router.Publish(ctx, logging.Event{
			Type:     "targeting.target_selected",
			Tick:     uint64(i),
			Severity: logging.SeverityInfo,
		})
	}
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 delivered events, got %d", len(events))
	}
	for i, event := range events {
		if event.Tick != uint64(i) {
			t.Fatalf("event %d out of order: tick %d", i, event.Tick)
		}
		if event.Time.IsZero() {
			t.Fatalf("event %d missing a routed timestamp", i)
		}
	}
	if stats := router.Stats(); stats.EventsTotal != 3 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newTestRouter(t, cfg)

	ctx := context.Background()
	router.Publish(ctx, logging.Event{Type: "targeting.grid_stats", Severity: logging.SeverityDebug})
	router.Publish(ctx, logging.Event{Type: "targeting.target_selected", Severity: logging.SeverityInfo})
	router.Publish(ctx, logging.Event{Type: "targeting.claim_conflict", Severity: logging.SeverityWarn})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the warn event through, got %d", len(events))
	}
	if events[0].Type != "targeting.claim_conflict" {
		t.Fatalf("wrong event survived the filter: %s", events[0].Type)
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	router, memory := newTestRouter(t, logging.DefaultConfig())
	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityError})
	closeRouter(t, router)
	if got := len(memory.Events()); got != 0 {
		t.Fatalf("untyped event delivered: %d", got)
	}
}

func TestRouterAnnotatesConfiguredFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"engine": "novastrike"}
	router, memory := newTestRouter(t, cfg)
	router.Publish(context.Background(), logging.Event{
		Type:     "lifecycle.nova_launched",
		Severity: logging.SeverityInfo,
		Extra:    map[string]any{"engine": "override", "tickRate": 22.4},
	})
	router.Publish(context.Background(), logging.Event{
		Type:     "lifecycle.nova_expired",
		Severity: logging.SeverityInfo,
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Event-local fields win over router-level ones.
	if events[0].Extra["engine"] != "override" {
		t.Fatalf("router field clobbered the event's own: %v", events[0].Extra)
	}
	if events[1].Extra["engine"] != "novastrike" {
		t.Fatalf("router field not annotated: %v", events[1].Extra)
	}
}

func TestWithFieldsWrapsPublisher(t *testing.T) {
	var got logging.Event
	base := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		got = event
	})
	wrapped := logging.WithFields(base, map[string]any{"seed": uint64(42)})
	wrapped.Publish(context.Background(), logging.Event{Type: "lifecycle.nova_bound"})
	if got.Extra["seed"] != uint64(42) {
		t.Fatalf("wrapped publisher missing fields: %v", got.Extra)
	}
}
