package main

import (
	"testing"

	"novastrike/engine/internal/grid"
	"novastrike/engine/internal/nova"
	"novastrike/engine/internal/telemetry"
)

func TestBattlefieldEventuallyLaunchesAndExpires(t *testing.T) {
	counters := telemetry.NewCounters()
	b := NewBattlefield(nova.Deps{Metrics: counters}, 1)

	for tick := uint64(1); tick <= 800; tick++ {
		b.Advance(tick)
		if claims := b.coordinator.Registry().Count(); claims > b.ActiveNovas() {
			t.Fatalf("tick %d: claims (%d) exceed active novas (%d)", tick, claims, b.ActiveNovas())
		}
	}

	if counters.Value("nova.launched") == 0 {
		t.Fatal("scenario never produced a launch")
	}
	if counters.Value("nova.expired") == 0 {
		t.Fatal("no nova ran out its lifetime")
	}
}

func TestLauncherCooldownGatesFiring(t *testing.T) {
	b := NewBattlefield(nova.Deps{}, 3)
	if !b.launcher.NovaReady() {
		t.Fatal("launcher must start off cooldown")
	}
	if !b.launcher.FireNova(grid.Point{X: 20, Y: 32}) {
		t.Fatal("first fire must succeed")
	}
	if b.launcher.cooldownTicks != nova.LaunchCooldownTicks {
		t.Fatalf("expected cooldown %d ticks, got %d", nova.LaunchCooldownTicks, b.launcher.cooldownTicks)
	}
	if b.launcher.NovaReady() {
		t.Fatal("launcher must not be ready while cooling down")
	}
	if b.launcher.FireNova(grid.Point{X: 20, Y: 32}) {
		t.Fatal("fire must be refused during cooldown")
	}
}

func TestBattlefieldFieldSnapshotShape(t *testing.T) {
	b := NewBattlefield(nova.Deps{}, 7)
	field := b.FieldSnapshot()
	if field == nil {
		t.Fatal("snapshot failed")
	}
	if field.Width() != fieldWidth || field.Height() != fieldHeight {
		t.Fatalf("unexpected shape %dx%d", field.Width(), field.Height())
	}
}

func TestBattlefieldIsDeterministicPerSeed(t *testing.T) {
	run := func(seed int64) []uint64 {
		counters := telemetry.NewCounters()
		b := NewBattlefield(nova.Deps{Metrics: counters}, seed)
		for tick := uint64(1); tick <= 200; tick++ {
			b.Advance(tick)
		}
		return []uint64{counters.Value("nova.launched"), counters.Value("nova.expired")}
	}
	a, b := run(42), run(42)
	if a[0] != b[0] || a[1] != b[1] {
		t.Fatalf("same seed diverged: %v vs %v", a, b)
	}
}
