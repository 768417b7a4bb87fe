package nova

import (
	"context"
	"math"

	"novastrike/engine/internal/grid"
	"novastrike/engine/internal/targeting"
	"novastrike/engine/logging"
	targetinglog "novastrike/engine/logging/targeting"
)

// Phase is a projectile's lifecycle stage. Transitions are linear:
// Armed -> InFlight -> Expired, never backwards.
type Phase int

const (
	PhaseArmed Phase = iota
	PhaseInFlight
	PhaseExpired
)

// TickInput is everything one projectile update needs for a single tick. All
// projectiles updated in the same tick receive the same field snapshot, and
// the registry they share is mutated strictly sequentially.
type TickInput struct {
	Tick       uint64
	Field      *grid.Field
	Hostiles   []targeting.Unit
	Friendlies []targeting.Unit
	Registry   *targeting.ClaimRegistry
}

// Projectile tracks one in-flight nova: its countdown, its current target,
// and the claim it holds. The unit reference is weak and may be nil until the
// simulation reports which unit embodies the nova (late binding); an unbound
// projectile still counts down but cannot move or retarget.
type Projectile struct {
	id           string
	phase        Phase
	unit         Mover
	target       grid.Point
	hasTarget    bool
	ticksLeft    int
	distanceLeft float64

	selector *targeting.Selector
	pub      logging.Publisher
}

// NewProjectile constructs an armed projectile with a full lifetime countdown
// aimed at target; it enters flight on its first update. unit may be nil when
// the simulation has not yet surfaced the nova's unit.
func NewProjectile(id string, unit Mover, target grid.Point, pub logging.Publisher) *Projectile {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Projectile{
		id:           id,
		phase:        PhaseArmed,
		unit:         unit,
		target:       target,
		hasTarget:    true,
		ticksLeft:    LifetimeTicks,
		distanceLeft: TravelReach(LifetimeTicks),
		selector:     targeting.NewSelector(pub),
		pub:          pub,
	}
}

// NewUntrackedProjectile constructs a projectile for a nova the simulation
// detected already in effect, before any unit reference exists. It counts
// down from a full lifetime and adopts its unit's position as the initial
// target once bound.
func NewUntrackedProjectile(id string, pub logging.Publisher) *Projectile {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Projectile{
		id:           id,
		phase:        PhaseArmed,
		ticksLeft:    LifetimeTicks,
		distanceLeft: TravelReach(LifetimeTicks),
		selector:     targeting.NewSelector(pub),
		pub:          pub,
	}
}

// Bind attaches the live unit to a projectile created without one. Without a
// target of its own yet, the projectile starts from the unit's position.
func (p *Projectile) Bind(unit Mover) {
	if p == nil || unit == nil || p.unit != nil {
		return
	}
	p.unit = unit
	if !p.hasTarget {
		p.target = unit.Position()
		p.hasTarget = true
	}
}

// ID returns the projectile's stable identity, which doubles as its claim key.
func (p *Projectile) ID() string {
	if p == nil {
		return ""
	}
	return p.id
}

// Phase returns the lifecycle stage.
func (p *Projectile) Phase() Phase {
	if p == nil {
		return PhaseExpired
	}
	return p.phase
}

// Bound reports whether a live unit reference is attached.
func (p *Projectile) Bound() bool {
	return p != nil && p.unit != nil
}

// TicksLeft returns the remaining countdown.
func (p *Projectile) TicksLeft() int {
	if p == nil {
		return 0
	}
	return p.ticksLeft
}

// DistanceLeft returns the travel distance still available, refreshed each
// tick from the countdown.
func (p *Projectile) DistanceLeft() float64 {
	if p == nil {
		return 0
	}
	return p.distanceLeft
}

// Target returns the current target position.
func (p *Projectile) Target() (grid.Point, bool) {
	if p == nil || !p.hasTarget {
		return grid.Point{}, false
	}
	return p.target, true
}

// Expired reports whether the countdown has run out.
func (p *Projectile) Expired() bool {
	return p == nil || p.phase == PhaseExpired
}

func (p *Projectile) ref() logging.EntityRef {
	return logging.EntityRef{ID: p.id, Kind: logging.EntityKindProjectile}
}

// Update advances the projectile one tick: enter flight if still armed,
// decrement the countdown, attempt a retarget while enough flight time
// remains, then issue at most one movement command toward the current target.
func (p *Projectile) Update(ctx context.Context, in TickInput) {
	if p == nil || p.phase == PhaseExpired {
		return
	}
	p.phase = PhaseInFlight
	p.ticksLeft--
	p.distanceLeft = TravelReach(p.ticksLeft)
	if p.ticksLeft <= 0 {
		p.ticksLeft = 0
		p.phase = PhaseExpired
		return
	}

	if p.unit != nil && p.hasTarget && p.ticksLeft > RetargetMinTicks {
		p.retarget(ctx, in)
	}

	if p.unit != nil && p.hasTarget && p.target != p.unit.Position() {
		p.unit.MoveTo(p.target)
	}
}

// retarget re-runs target selection under the travel-reachability constraint.
// The projectile's own claim is lifted for the duration of the search so its
// current spot competes on equal terms, then restored no matter what the
// search found.
func (p *Projectile) retarget(ctx context.Context, in TickInput) {
	if in.Field == nil {
		return
	}
	position := p.unit.Position()
	reach := TravelReach(p.ticksLeft)

	combined := grid.ReachMask(in.Field.Width(), in.Field.Height(), position, reach)
	if combined == nil {
		return
	}

	released := false
	if in.Registry != nil {
		if _, held := in.Registry.Claim(p.id); held {
			in.Registry.Release(p.id)
			released = true
		}
		combined.Or(in.Registry.ExclusionMask(in.Field.Width(), in.Field.Height()))
	}

	candidate, candidateValue, found := targeting.SearchMaskedMax(in.Field, combined)
	if !found {
		candidate, found = p.selector.Select(ctx, targeting.Request{
			Field:      in.Field,
			Hostiles:   in.Hostiles,
			Friendlies: in.Friendlies,
			Exclude:    combined,
			Origin:     position,
			Tick:       in.Tick,
			Actor:      p.ref(),
		})
		if found {
			candidateValue = in.Field.ValueAt(candidate)
		}
	}

	// Restore the claim before acting on the outcome so the registry never
	// undercounts while other projectiles update later this tick.
	if released {
		if !in.Registry.Register(p.id, p.target) {
			targetinglog.ClaimConflict(ctx, p.pub, in.Tick, p.ref(), p.target.X, p.target.Y)
		}
	}
	if !found {
		return
	}

	current := in.Field.ValueAt(p.target)
	improvement := (candidateValue - current) / math.Max(math.Abs(current), 1.0)
	if improvement <= RetargetImprovement {
		targetinglog.RetargetRejected(ctx, p.pub, in.Tick, p.ref(), "improvement_below_threshold", improvement)
		return
	}
	if in.Registry != nil && in.Registry.MinDistanceFrom(candidate, p.id) < targeting.ClaimRadius {
		targetinglog.RetargetRejected(ctx, p.pub, in.Tick, p.ref(), "too_close_to_claim", improvement)
		return
	}

	previous := p.target
	if in.Registry != nil {
		in.Registry.Release(p.id)
	}
	p.target = candidate
	if in.Registry != nil && !in.Registry.Register(p.id, candidate) {
		// Conflict is non-fatal: the projectile still flies at the better
		// target, it just holds no claim.
		targetinglog.ClaimConflict(ctx, p.pub, in.Tick, p.ref(), candidate.X, candidate.Y)
	}
	targetinglog.RetargetSwitched(ctx, p.pub, in.Tick, p.ref(), targetinglog.RetargetSwitchedPayload{
		FromX:       previous.X,
		FromY:       previous.Y,
		ToX:         candidate.X,
		ToY:         candidate.Y,
		Improvement: improvement,
	})
}
