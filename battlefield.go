package main

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"novastrike/engine/internal/grid"
	"novastrike/engine/internal/nova"
	"novastrike/engine/internal/targeting"
)

// Demo battlefield parameters. The scripted scenario exists so the engine has
// hostiles to hunt and the hub has something to stream; it stands in for the
// real simulation that would normally feed the engine.
const (
	fieldWidth      = 64
	fieldHeight     = 64
	hostileCount    = 8
	friendlyCount   = 3
	hostilePresence = 60.0 // field bump per hostile, radius presenceRadius
	presenceRadius  = 3.0
	driftSpeed      = 0.35 // hostile wander per tick, world units
)

// simUnit is a minimal simulation entity: id, position, and a pending move
// order applied during the world step.
type simUnit struct {
	id        string
	pos       grid.Point
	moveTo    grid.Point
	hasOrder  bool
	stepSpeed float64
	ttlTicks  int // >0 for units that despawn, e.g. flying novas
}

func (u *simUnit) ID() string { return u.id }

func (u *simUnit) Position() grid.Point { return u.pos }

func (u *simUnit) MoveTo(target grid.Point) {
	u.moveTo = target
	u.hasOrder = true
}

// step applies the pending move order at the unit's per-tick speed.
func (u *simUnit) step() {
	if !u.hasOrder {
		return
	}
	u.pos = u.pos.Towards(u.moveTo, u.stepSpeed)
	if u.pos == u.moveTo {
		u.hasOrder = false
	}
}

// launcherUnit adds the nova ability gate on top of a simUnit. The cooldown
// lives here because the simulation, not the engine, owns it.
type launcherUnit struct {
	simUnit
	cooldownTicks int
	field         *Battlefield
}

func (l *launcherUnit) NovaReady() bool { return l.cooldownTicks == 0 }

func (l *launcherUnit) FireNova(target grid.Point) bool {
	if l.cooldownTicks > 0 {
		return false
	}
	l.cooldownTicks = nova.LaunchCooldownTicks
	l.field.spawnNovaUnit(l.pos)
	return true
}

// Battlefield is the demo world: one launcher, drifting hostiles, idle
// friendlies, and the engine wired over them.
type Battlefield struct {
	launcher   *launcherUnit
	hostiles   []*simUnit
	friendlies []*simUnit
	novaUnits  []*simUnit
	unobserved []*simUnit

	coordinator *nova.Coordinator
	launchCtl   *nova.LaunchController
	rng         *rand.Rand
}

// NewBattlefield seeds a scripted scenario around the engine deps.
func NewBattlefield(deps nova.Deps, seed int64) *Battlefield {
	rng := rand.New(rand.NewSource(seed))
	coordinator := nova.NewCoordinator(deps)
	b := &Battlefield{
		coordinator: coordinator,
		launchCtl:   nova.NewLaunchController(deps, coordinator.Registry()),
		rng:         rng,
	}
	b.launcher = &launcherUnit{
		simUnit: simUnit{id: "launcher-1", pos: grid.Point{X: 8, Y: 32}, stepSpeed: 0.6},
		field:   b,
	}
	for i := 0; i < hostileCount; i++ {
		b.hostiles = append(b.hostiles, &simUnit{
			id:  uuid.NewString(),
			pos: grid.Point{X: 30 + rng.Float64()*20, Y: 20 + rng.Float64()*24},
		})
	}
	for i := 0; i < friendlyCount; i++ {
		b.friendlies = append(b.friendlies, &simUnit{
			id:  uuid.NewString(),
			pos: grid.Point{X: 12 + rng.Float64()*6, Y: 26 + rng.Float64()*12},
		})
	}
	return b
}

// spawnNovaUnit creates the in-sim representation of a fired nova. The engine
// learns about it through Observe on the next world step, exercising the
// late-binding path the way the real simulation would.
func (b *Battlefield) spawnNovaUnit(at grid.Point) {
	u := &simUnit{
		id:        uuid.NewString(),
		pos:       at,
		stepSpeed: nova.NovaSpeed / nova.TicksPerSecond,
		ttlTicks:  nova.LifetimeTicks,
	}
	b.novaUnits = append(b.novaUnits, u)
	b.unobserved = append(b.unobserved, u)
}

// FieldSnapshot renders the battlefield into raw value rows and ingests them
// as a sanitized snapshot, the same hand-off a tactical grid collaborator
// would perform each tick.
func (b *Battlefield) FieldSnapshot() *grid.Field {
	rows := make([][]float64, fieldHeight)
	for y := range rows {
		row := make([]float64, fieldWidth)
		for x := range row {
			row[x] = grid.NeutralValue
		}
		rows[y] = row
	}
	stamp := func(p grid.Point, delta float64) {
		for y := 0; y < fieldHeight; y++ {
			for x := 0; x < fieldWidth; x++ {
				if (grid.Point{X: float64(x), Y: float64(y)}).DistanceTo(p) <= presenceRadius {
					rows[y][x] += delta
				}
			}
		}
	}
	for _, h := range b.hostiles {
		stamp(h.pos, hostilePresence)
	}
	for _, f := range b.friendlies {
		stamp(f.pos, -hostilePresence)
	}
	return grid.SnapshotField(rows)
}

func unitSnapshots(units []*simUnit) []targeting.Unit {
	out := make([]targeting.Unit, 0, len(units))
	for _, u := range units {
		out = append(out, targeting.Unit{ID: u.id, Pos: u.pos})
	}
	return out
}

// Advance runs one world tick: drift units, surface fired novas to the
// coordinator, attempt a launch, then update every in-flight projectile.
func (b *Battlefield) Advance(tick uint64) {
	ctx := context.Background()

	for _, h := range b.hostiles {
		h.pos.X += (b.rng.Float64() - 0.5) * 2 * driftSpeed
		h.pos.Y += (b.rng.Float64() - 0.5) * 2 * driftSpeed
	}
	if b.launcher.cooldownTicks > 0 {
		b.launcher.cooldownTicks--
	}

	field := b.FieldSnapshot()
	hostiles := unitSnapshots(b.hostiles)
	friendlies := unitSnapshots(b.friendlies)

	for _, u := range b.unobserved {
		b.coordinator.Observe(ctx, tick, u)
	}
	b.unobserved = b.unobserved[:0]

	if p := b.launchCtl.TryLaunch(ctx, tick, b.launcher, field, hostiles, friendlies); p != nil {
		b.coordinator.Add(p)
	}

	b.coordinator.Update(ctx, tick, nova.TickInput{
		Field:      field,
		Hostiles:   hostiles,
		Friendlies: friendlies,
	})

	b.launcher.step()
	alive := b.novaUnits[:0]
	for _, u := range b.novaUnits {
		u.step()
		u.ttlTicks--
		if u.ttlTicks > 0 {
			alive = append(alive, u)
		}
	}
	b.novaUnits = alive
}

// ActiveNovas reports the engine's in-flight count. Only valid on the loop
// goroutine; concurrent readers use the nova.active gauge instead.
func (b *Battlefield) ActiveNovas() int {
	return b.coordinator.Active()
}
