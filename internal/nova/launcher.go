package nova

import (
	"context"

	"github.com/google/uuid"

	"novastrike/engine/internal/grid"
	"novastrike/engine/internal/targeting"
	"novastrike/engine/logging"
	lifecyclelog "novastrike/engine/logging/lifecycle"
	targetinglog "novastrike/engine/logging/targeting"
)

// LaunchController decides, for one launcher with a ready ability, whether
// and where to fire. A successful launch yields an in-flight projectile the
// caller hands to the coordinator; anything else leaves the registry exactly
// as it was found.
type LaunchController struct {
	deps     Deps
	registry *targeting.ClaimRegistry
	selector *targeting.Selector
}

// NewLaunchController builds a controller sharing the coordinator's registry.
func NewLaunchController(deps Deps, registry *targeting.ClaimRegistry) *LaunchController {
	deps = deps.normalized()
	return &LaunchController{
		deps:     deps,
		registry: registry,
		selector: targeting.NewSelector(deps.Publisher),
	}
}

// TryLaunch runs the launch decision for one launcher. It returns a new armed
// projectile on a confirmed fire, or nil when the ability is not ready, no
// target exists, or the launcher had to reposition instead.
func (l *LaunchController) TryLaunch(ctx context.Context, tick uint64, launcher Launcher, field *grid.Field, hostiles, friendlies []targeting.Unit) *Projectile {
	if l == nil || launcher == nil {
		return nil
	}
	if !launcher.NovaReady() {
		return nil
	}

	actor := logging.EntityRef{ID: launcher.ID(), Kind: logging.EntityKindLauncher}

	var exclude *grid.Mask
	if field != nil {
		exclude = l.registry.ExclusionMask(field.Width(), field.Height())
	}

	target, ok := l.selector.Select(ctx, targeting.Request{
		Field:      field,
		Hostiles:   hostiles,
		Friendlies: friendlies,
		Exclude:    exclude,
		Origin:     launcher.Position(),
		Tick:       tick,
		Actor:      actor,
	})
	if !ok {
		return nil
	}

	// The claim key becomes the projectile's identity if the launch sticks.
	id := uuid.NewString()
	claimed := l.registry.Register(id, target)
	if !claimed {
		// Non-fatal: fire anyway, just without an exclusion zone of our own.
		targetinglog.ClaimConflict(ctx, l.deps.Publisher, tick, actor, target.X, target.Y)
		l.deps.Metrics.Add("claims.conflicts", 1)
	}

	distance := launcher.Position().DistanceTo(target)
	if distance > MaxTravelDistance() {
		// Out of range: advance the launcher and try again a later tick.
		interim := launcher.Position().Towards(target, ApproachStep)
		launcher.MoveTo(interim)
		lifecyclelog.LauncherRepositioned(ctx, l.deps.Publisher, tick, actor, interim.X, interim.Y)
		if claimed {
			l.registry.Release(id)
		}
		return nil
	}

	if !launcher.FireNova(target) {
		if claimed {
			l.registry.Release(id)
		}
		return nil
	}

	lifecyclelog.NovaLaunched(ctx, l.deps.Publisher, tick, actor, lifecyclelog.NovaLaunchedPayload{
		X:        target.X,
		Y:        target.Y,
		Distance: distance,
		Claimed:  claimed,
	})
	l.deps.Metrics.Add("nova.launched", 1)

	// The nova's own unit surfaces a tick later; the instance flies unbound
	// until the coordinator observes it.
	return NewProjectile(id, nil, target, l.deps.Publisher)
}
