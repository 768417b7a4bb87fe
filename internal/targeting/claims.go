package targeting

import (
	"math"
	"sort"

	"novastrike/engine/internal/grid"
)

// ClaimRadius is the exclusion radius around a claimed target. No other
// projectile may claim or retarget inside it, which is what spreads
// simultaneous novas across distinct clusters.
const ClaimRadius = 5.0

// ClaimRegistry records which positions are reserved by active projectiles.
// One owner holds at most one claim; registering again under the same owner
// supersedes the previous claim. All mutation happens sequentially inside the
// tick, so the registry needs no locking.
type ClaimRegistry struct {
	claims map[string]grid.Point
}

// NewClaimRegistry returns an empty registry.
func NewClaimRegistry() *ClaimRegistry {
	return &ClaimRegistry{claims: make(map[string]grid.Point)}
}

// Register reserves pos for owner. It fails when another owner already holds
// a claim within ClaimRadius of pos; the caller treats that as a non-fatal
// conflict. Re-registering the same owner replaces its previous claim.
func (r *ClaimRegistry) Register(owner string, pos grid.Point) bool {
	if r == nil || owner == "" {
		return false
	}
	for id, claimed := range r.claims {
		if id == owner {
			continue
		}
		if claimed.DistanceTo(pos) < ClaimRadius {
			return false
		}
	}
	r.claims[owner] = pos
	return true
}

// Release drops the claim held by owner, if any. Releasing an absent claim is
// a no-op, so release-on-expiry and release-on-supersede never double-free.
func (r *ClaimRegistry) Release(owner string) {
	if r == nil {
		return
	}
	delete(r.claims, owner)
}

// Claim returns the position owner has reserved.
func (r *ClaimRegistry) Claim(owner string) (grid.Point, bool) {
	if r == nil {
		return grid.Point{}, false
	}
	pos, ok := r.claims[owner]
	return pos, ok
}

// Count returns the number of active claims.
func (r *ClaimRegistry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.claims)
}

// Positions returns a snapshot of every claimed position, ordered by owner
// for deterministic iteration.
func (r *ClaimRegistry) Positions() []grid.Point {
	if r == nil || len(r.claims) == 0 {
		return nil
	}
	owners := make([]string, 0, len(r.claims))
	for id := range r.claims {
		owners = append(owners, id)
	}
	sort.Strings(owners)
	positions := make([]grid.Point, 0, len(owners))
	for _, id := range owners {
		positions = append(positions, r.claims[id])
	}
	return positions
}

// MinDistanceFrom returns the distance from pos to the nearest claim not held
// by exclude. Returns +Inf when no other claims exist, so spacing checks pass
// trivially for the first projectile.
func (r *ClaimRegistry) MinDistanceFrom(pos grid.Point, exclude string) float64 {
	min := math.Inf(1)
	if r == nil {
		return min
	}
	for id, claimed := range r.claims {
		if id == exclude {
			continue
		}
		if d := claimed.DistanceTo(pos); d < min {
			min = d
		}
	}
	return min
}

// ExclusionMask renders every claim into a boolean grid of the given shape,
// stamping a ClaimRadius disc per claim. Selection treats marked cells as
// off-limits.
func (r *ClaimRegistry) ExclusionMask(width, height int) *grid.Mask {
	mask := grid.NewMask(width, height)
	if r == nil || mask == nil {
		return mask
	}
	for _, claimed := range r.claims {
		mask.StampDisc(claimed, ClaimRadius)
	}
	return mask
}
