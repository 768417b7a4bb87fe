package nova

import (
	"context"
	"testing"

	"novastrike/engine/internal/grid"
	"novastrike/engine/internal/targeting"
	"novastrike/engine/internal/telemetry"
	lifecyclelog "novastrike/engine/logging/lifecycle"
)

type fakeLauncher struct {
	fakeMover
	ready  bool
	fireOK bool
	fired  []grid.Point
}

func (l *fakeLauncher) NovaReady() bool { return l.ready }

func (l *fakeLauncher) FireNova(target grid.Point) bool {
	if !l.fireOK {
		return false
	}
	l.fired = append(l.fired, target)
	return true
}

func launchFixture() (*LaunchController, *targeting.ClaimRegistry, *telemetry.Counters, *recordingPublisher) {
	pub := &recordingPublisher{}
	counters := telemetry.NewCounters()
	registry := targeting.NewClaimRegistry()
	ctl := NewLaunchController(Deps{Publisher: pub, Metrics: counters}, registry)
	return ctl, registry, counters, pub
}

func hostileScenario(launcherPos, hostilePos grid.Point) (*fakeLauncher, *grid.Field, []targeting.Unit) {
	launcher := &fakeLauncher{
		fakeMover: fakeMover{id: "launcher-1", pos: launcherPos},
		ready:     true,
		fireOK:    true,
	}
	field := flatField(64, 64, 100)
	field.Set(int(hostilePos.X), int(hostilePos.Y), 350)
	hostiles := []targeting.Unit{{ID: "h1", Pos: hostilePos}}
	return launcher, field, hostiles
}

func TestTryLaunchRequiresReadyAbility(t *testing.T) {
	ctl, registry, _, _ := launchFixture()
	launcher, field, hostiles := hostileScenario(grid.Point{X: 10, Y: 10}, grid.Point{X: 12, Y: 10})
	launcher.ready = false

	if p := ctl.TryLaunch(context.Background(), 1, launcher, field, hostiles, nil); p != nil {
		t.Fatal("launch must not proceed on cooldown")
	}
	if registry.Count() != 0 {
		t.Fatalf("no claim may survive a refused launch, got %d", registry.Count())
	}
}

func TestTryLaunchWithoutHostilesLeavesNoTrace(t *testing.T) {
	ctl, registry, _, _ := launchFixture()
	launcher, field, _ := hostileScenario(grid.Point{X: 10, Y: 10}, grid.Point{X: 12, Y: 10})

	if p := ctl.TryLaunch(context.Background(), 1, launcher, field, nil, nil); p != nil {
		t.Fatal("launch with no hostiles must yield nothing")
	}
	if registry.Count() != 0 || len(launcher.fired) != 0 || len(launcher.moves) != 0 {
		t.Fatal("failed selection must leave launcher and registry untouched")
	}
}

func TestTryLaunchFiresInsideRange(t *testing.T) {
	ctl, registry, counters, pub := launchFixture()
	launcher, field, hostiles := hostileScenario(grid.Point{X: 10, Y: 10}, grid.Point{X: 12, Y: 10})

	p := ctl.TryLaunch(context.Background(), 7, launcher, field, hostiles, nil)
	if p == nil {
		t.Fatal("expected a confirmed launch")
	}
	if p.Bound() {
		t.Fatal("fresh projectile must fly unbound until the simulation surfaces its unit")
	}
	target, ok := p.Target()
	if !ok || target != (grid.Point{X: 12, Y: 10}) {
		t.Fatalf("expected target (12,10), got %+v ok=%v", target, ok)
	}
	if len(launcher.fired) != 1 || launcher.fired[0] != target {
		t.Fatalf("expected one fire command at %+v, got %v", target, launcher.fired)
	}
	claim, held := registry.Claim(p.ID())
	if !held || claim != target {
		t.Fatalf("expected claim at the target, got %+v held=%v", claim, held)
	}
	if counters.Value("nova.launched") != 1 {
		t.Fatalf("expected launch counter 1, got %d", counters.Value("nova.launched"))
	}
	if pub.countOfType(lifecyclelog.EventNovaLaunched) != 1 {
		t.Fatal("expected one nova_launched event")
	}
}

func TestTryLaunchRepositionsWhenOutOfRange(t *testing.T) {
	ctl, registry, _, pub := launchFixture()
	launcher, field, hostiles := hostileScenario(grid.Point{X: 10, Y: 10}, grid.Point{X: 40, Y: 10})

	p := ctl.TryLaunch(context.Background(), 3, launcher, field, hostiles, nil)
	if p != nil {
		t.Fatal("out-of-range target must not launch")
	}
	if len(launcher.fired) != 0 {
		t.Fatal("fire command issued for an unreachable target")
	}
	if len(launcher.moves) != 1 || launcher.moves[0] != (grid.Point{X: 15, Y: 10}) {
		t.Fatalf("expected a single advance to (15,10), got %v", launcher.moves)
	}
	if registry.Count() != 0 {
		t.Fatalf("claim must be released after repositioning, got %d", registry.Count())
	}
	if pub.countOfType(lifecyclelog.EventLauncherRepositioned) != 1 {
		t.Fatal("expected a launcher_repositioned event")
	}
}

func TestTryLaunchReleasesClaimWhenFireRefused(t *testing.T) {
	ctl, registry, counters, _ := launchFixture()
	launcher, field, hostiles := hostileScenario(grid.Point{X: 10, Y: 10}, grid.Point{X: 12, Y: 10})
	launcher.fireOK = false

	if p := ctl.TryLaunch(context.Background(), 5, launcher, field, hostiles, nil); p != nil {
		t.Fatal("refused fire must not yield a projectile")
	}
	if registry.Count() != 0 {
		t.Fatalf("claim must be released after a refused fire, got %d", registry.Count())
	}
	if counters.Value("nova.launched") != 0 {
		t.Fatal("launch counter incremented for a refused fire")
	}
}

func TestTryLaunchProceedsThroughClaimConflict(t *testing.T) {
	ctl, registry, counters, pub := launchFixture()
	launcher, field, hostiles := hostileScenario(grid.Point{X: 10, Y: 10}, grid.Point{X: 12, Y: 10})

	// An existing claim blankets the hostile cluster. The grid and position
	// tiers are masked away, so selection falls back to the nearest hostile,
	// and registering the claim there collides with the blocker.
	registry.Register("blocker", grid.Point{X: 14, Y: 10})

	p := ctl.TryLaunch(context.Background(), 9, launcher, field, hostiles, nil)
	if p == nil {
		t.Fatal("claim conflict must not abort the launch")
	}
	if counters.Value("claims.conflicts") == 0 {
		t.Fatal("expected the conflict counter to increment")
	}
	if pub.countOfType(lifecyclelog.EventNovaLaunched) != 1 {
		t.Fatal("expected the launch to complete despite the conflict")
	}
	if _, held := registry.Claim(p.ID()); held {
		t.Fatal("conflicted launch must not hold a claim")
	}
}
