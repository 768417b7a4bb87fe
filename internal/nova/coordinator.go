package nova

import (
	"context"

	"novastrike/engine/internal/targeting"
	"novastrike/engine/internal/telemetry"
	"novastrike/engine/logging"
	lifecyclelog "novastrike/engine/logging/lifecycle"
)

// Deps carries the cross-cutting dependencies engine components share.
type Deps struct {
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
}

func (d Deps) normalized() Deps {
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	if d.Metrics == nil {
		d.Metrics = telemetry.NopMetrics()
	}
	return d
}

// Coordinator owns every active projectile and the claim registry they share.
// It drives the per-tick update strictly sequentially: each projectile sees
// the same field snapshot and a registry consistent with every release and
// re-registration that completed earlier in the same tick.
type Coordinator struct {
	deps        Deps
	registry    *targeting.ClaimRegistry
	projectiles []*Projectile
}

// NewCoordinator builds an empty coordinator with a fresh registry.
func NewCoordinator(deps Deps) *Coordinator {
	return &Coordinator{
		deps:     deps.normalized(),
		registry: targeting.NewClaimRegistry(),
	}
}

// Registry exposes the shared claim registry. LaunchController registers
// initial claims through it.
func (c *Coordinator) Registry() *targeting.ClaimRegistry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Active returns the number of non-expired projectiles.
func (c *Coordinator) Active() int {
	if c == nil {
		return 0
	}
	return len(c.projectiles)
}

// Add takes ownership of a projectile produced by a confirmed launch.
func (c *Coordinator) Add(p *Projectile) {
	if c == nil || p == nil || p.Expired() {
		return
	}
	c.projectiles = append(c.projectiles, p)
}

// Observe registers a nova unit the simulation detected already in effect.
// If an unbound projectile is waiting for its unit, the unit binds to it;
// otherwise a fresh full-lifetime instance is created around the unit.
func (c *Coordinator) Observe(ctx context.Context, tick uint64, unit Mover) *Projectile {
	if c == nil || unit == nil {
		return nil
	}
	for _, p := range c.projectiles {
		if !p.Bound() {
			p.Bind(unit)
			lifecyclelog.NovaBound(ctx, c.deps.Publisher, tick, p.ref())
			return p
		}
	}
	p := NewProjectile(unit.ID(), unit, unit.Position(), c.deps.Publisher)
	c.projectiles = append(c.projectiles, p)
	lifecyclelog.NovaBound(ctx, c.deps.Publisher, tick, p.ref())
	return p
}

// Update advances every projectile one tick, then removes the expired ones
// and releases their claims unconditionally.
func (c *Coordinator) Update(ctx context.Context, tick uint64, in TickInput) {
	if c == nil {
		return
	}
	in.Tick = tick
	in.Registry = c.registry

	for _, p := range c.projectiles {
		p.Update(ctx, in)
	}

	alive := c.projectiles[:0]
	for _, p := range c.projectiles {
		if !p.Expired() {
			alive = append(alive, p)
			continue
		}
		c.registry.Release(p.ID())
		lifecyclelog.NovaExpired(ctx, c.deps.Publisher, tick, p.ref(), LifetimeTicks)
		c.deps.Metrics.Add("nova.expired", 1)
	}
	for i := len(alive); i < len(c.projectiles); i++ {
		c.projectiles[i] = nil
	}
	c.projectiles = alive
	c.deps.Metrics.Store("nova.active", uint64(len(c.projectiles)))
}
