package lifecycle

import (
	"context"

	"novastrike/engine/logging"
)

const (
	// EventNovaLaunched is emitted when a launcher fires and a projectile
	// instance enters flight.
	EventNovaLaunched logging.EventType = "lifecycle.nova_launched"
	// EventNovaExpired is emitted the tick a projectile's countdown reaches zero.
	EventNovaExpired logging.EventType = "lifecycle.nova_expired"
	// EventNovaBound is emitted when a late-bound projectile gains its unit.
	EventNovaBound logging.EventType = "lifecycle.nova_bound"
	// EventLauncherRepositioned is emitted when a launch attempt moves the
	// launcher toward an out-of-range target instead of firing.
	EventLauncherRepositioned logging.EventType = "lifecycle.launcher_repositioned"
)

// NovaLaunchedPayload describes the launch decision.
type NovaLaunchedPayload struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
	Claimed  bool    `json:"claimed"`
}

// NovaExpiredPayload carries the final tracked state.
type NovaExpiredPayload struct {
	TicksLived int `json:"ticksLived"`
}

// RepositionPayload names the interim position the launcher was sent to.
type RepositionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NovaLaunched publishes EventNovaLaunched.
func NovaLaunched(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload NovaLaunchedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventNovaLaunched,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// NovaExpired publishes EventNovaExpired.
func NovaExpired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, ticksLived int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventNovaExpired,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  NovaExpiredPayload{TicksLived: ticksLived},
	})
}

// NovaBound publishes EventNovaBound.
func NovaBound(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventNovaBound,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

// LauncherRepositioned publishes EventLauncherRepositioned.
func LauncherRepositioned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, x, y float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLauncherRepositioned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  RepositionPayload{X: x, Y: y},
	})
}
