package targeting

import (
	"math"
	"testing"

	"novastrike/engine/internal/grid"
)

func TestClaimRegistryRejectsNearbyClaims(t *testing.T) {
	reg := NewClaimRegistry()
	if !reg.Register("a", grid.Point{X: 10, Y: 10}) {
		t.Fatal("first claim must succeed")
	}
	if reg.Register("b", grid.Point{X: 13, Y: 10}) {
		t.Fatal("claim within the exclusion radius must fail")
	}
	if !reg.Register("b", grid.Point{X: 15, Y: 10}) {
		t.Fatal("claim exactly at the exclusion radius must succeed")
	}
	if reg.Count() != 2 {
		t.Fatalf("expected 2 claims, got %d", reg.Count())
	}
}

func TestClaimRegistrySupersedesOwnClaim(t *testing.T) {
	reg := NewClaimRegistry()
	reg.Register("a", grid.Point{X: 10, Y: 10})
	// The owner's own claim never blocks its replacement.
	if !reg.Register("a", grid.Point{X: 11, Y: 10}) {
		t.Fatal("owner must be able to move its own claim")
	}
	pos, ok := reg.Claim("a")
	if !ok || pos != (grid.Point{X: 11, Y: 10}) {
		t.Fatalf("expected superseded claim at (11,10), got %+v ok=%v", pos, ok)
	}
	if reg.Count() != 1 {
		t.Fatalf("supersede must not duplicate claims, got %d", reg.Count())
	}
}

func TestClaimRegistryReleaseIsIdempotent(t *testing.T) {
	reg := NewClaimRegistry()
	reg.Register("a", grid.Point{X: 5, Y: 5})
	reg.Release("a")
	reg.Release("a")
	reg.Release("never-existed")
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d claims", reg.Count())
	}
	if _, ok := reg.Claim("a"); ok {
		t.Fatal("released claim still readable")
	}
}

func TestMinDistanceFrom(t *testing.T) {
	reg := NewClaimRegistry()
	if d := reg.MinDistanceFrom(grid.Point{X: 0, Y: 0}, ""); !math.IsInf(d, 1) {
		t.Fatalf("empty registry must report +Inf, got %v", d)
	}
	reg.Register("a", grid.Point{X: 10, Y: 0})
	reg.Register("b", grid.Point{X: 30, Y: 0})
	if d := reg.MinDistanceFrom(grid.Point{X: 0, Y: 0}, ""); d != 10 {
		t.Fatalf("expected nearest claim at distance 10, got %v", d)
	}
	// Excluding the nearest owner reveals the next claim.
	if d := reg.MinDistanceFrom(grid.Point{X: 0, Y: 0}, "a"); d != 30 {
		t.Fatalf("expected excluded-owner distance 30, got %v", d)
	}
}

func TestExclusionMaskStampsClaimDiscs(t *testing.T) {
	reg := NewClaimRegistry()
	reg.Register("a", grid.Point{X: 10, Y: 10})
	mask := reg.ExclusionMask(32, 32)
	if !mask.ExcludesPoint(grid.Point{X: 10, Y: 10}) {
		t.Fatal("claimed cell must be excluded")
	}
	if !mask.ExcludesPoint(grid.Point{X: 14, Y: 10}) {
		t.Fatal("cell inside the claim disc must be excluded")
	}
	if mask.ExcludesPoint(grid.Point{X: 20, Y: 10}) {
		t.Fatal("cell outside the claim disc must stay open")
	}
}
