package targeting

import (
	"context"
	"math"

	"novastrike/engine/internal/grid"
	"novastrike/engine/logging"
	targetinglog "novastrike/engine/logging/targeting"
)

const (
	// BlastRadius is the detonation radius: units inside it are assumed hit.
	BlastRadius = 1.5
	// HostileBoost is added once to every cell covered by at least one
	// hostile's blast disc. The field already scores hostile presence above
	// the 200 baseline; the boost sharpens clustered areas.
	HostileBoost = 50.0
	// FriendlyPenalty is subtracted per friendly whose blast disc covers a
	// cell. Unlike the boost, penalties stack when discs overlap.
	FriendlyPenalty = 150.0
	// BorderMargin is the width in cells of the field edge that can never be
	// targeted, guarding against argmax landing on boundary artifacts.
	BorderMargin = 2

	// AcceptFloor and AcceptCeiling bound grid-tier acceptance, both strict.
	// The floor demands genuine hostile presence above the 200 baseline; the
	// ceiling rejects values inflated by sanitized infinities.
	AcceptFloor   = 210.0
	AcceptCeiling = 600.0

	// SampleResolution is the lattice step of the position-sampling tier.
	SampleResolution = 8
	// HostileHitScore and FriendlyHitCost weight the position-tier score:
	// HostileHitScore*hostilesHit - FriendlyHitCost*friendliesHit.
	HostileHitScore = 150.0
	FriendlyHitCost = 200.0
	// ScoreFloor is the lowest acceptable position-tier score, exclusive.
	// Slightly negative scores pass: hitting a cluster is worth clipping one
	// friendly in a pinch.
	ScoreFloor = -100.0

	// Default playable bounds when no field snapshot exists to derive them.
	defaultBoundsX = 200
	defaultBoundsY = 200
)

// candidateOffsets surround each hostile with extra sample points so the
// position tier can cover gaps between units.
var candidateOffsets = [4]grid.Point{{X: 2, Y: 0}, {X: -2, Y: 0}, {X: 0, Y: 2}, {X: 0, Y: -2}}

// Unit is a positioned battlefield entity as the selector sees it: a stable
// identity and a snapshot of its position for this tick.
type Unit struct {
	ID  string
	Pos grid.Point
}

// Request carries one selection query. Field may be nil (the collaborator
// grid was unavailable this tick), in which case only the position-sampling
// tier runs. Exclude may be nil, which behaves exactly like an all-false
// mask. Origin anchors the nearest-hostile last resort.
type Request struct {
	Field      *grid.Field
	Hostiles   []Unit
	Friendlies []Unit
	Exclude    *grid.Mask
	Origin     grid.Point
	Tick       uint64
	Actor      logging.EntityRef
}

// Selector is the target decision function: value field snapshot plus unit
// positions in, at most one target point out. It memoizes the value backing
// its last accepted target for retarget comparisons.
type Selector struct {
	pub logging.Publisher

	lastPos   grid.Point
	lastValue float64
	hasLast   bool
}

// NewSelector builds a selector publishing diagnostics to pub. A nil pub
// disables diagnostics without changing behavior.
func NewSelector(pub logging.Publisher) *Selector {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Selector{pub: pub}
}

// LastValue returns the grid value or position score behind the most recently
// accepted target.
func (s *Selector) LastValue() (float64, bool) {
	if s == nil || !s.hasLast {
		return 0, false
	}
	return s.lastValue, true
}

// Select runs the fallback chain: grid tier, then position sampling, then
// nearest hostile. It returns false only when no hostile exists or every tier
// came up empty.
func (s *Selector) Select(ctx context.Context, req Request) (grid.Point, bool) {
	if s == nil {
		return grid.Point{}, false
	}
	if len(req.Hostiles) == 0 {
		targetinglog.TargetRejected(ctx, s.pub, req.Tick, req.Actor, "no_hostiles")
		return grid.Point{}, false
	}
	if req.Field == nil {
		targetinglog.FieldDegraded(ctx, s.pub, req.Tick, req.Actor, targetinglog.DegradeMissingInput)
		return s.selectByPosition(ctx, req)
	}
	if !req.Exclude.Matches(req.Field) {
		// The mask cannot be applied to this field; drop it and degrade.
		targetinglog.FieldDegraded(ctx, s.pub, req.Tick, req.Actor, targetinglog.DegradeShapeMismatch)
		req.Exclude = nil
		return s.selectByPosition(ctx, req)
	}
	if pos, ok := s.selectByGrid(ctx, req); ok {
		return pos, true
	}
	return s.selectByPosition(ctx, req)
}

// SearchMaskedMax finds the highest-value cell of field outside the excluded
// area. It is the direct grid search retargeting runs under a combined
// reachability and claim mask, skipping boosts and penalties. ok is false
// when every cell is excluded.
func SearchMaskedMax(field *grid.Field, exclude *grid.Mask) (grid.Point, float64, bool) {
	if field == nil {
		return grid.Point{}, 0, false
	}
	if exclude != nil && !exclude.Matches(field) {
		exclude = nil
	}
	best := -math.MaxFloat64
	bestX, bestY := -1, -1
	for y := 0; y < field.Height(); y++ {
		for x := 0; x < field.Width(); x++ {
			if exclude.At(x, y) {
				continue
			}
			if v := field.At(x, y); v > best {
				best = v
				bestX, bestY = x, y
			}
		}
	}
	if bestX < 0 {
		return grid.Point{}, 0, false
	}
	return grid.Point{X: float64(bestX), Y: float64(bestY)}, best, true
}

// selectByGrid runs the vectorized grid tier: boost hostile areas, penalize
// friendly areas, mask borders and exclusions, take the argmax, and accept it
// only inside the (AcceptFloor, AcceptCeiling) window.
func (s *Selector) selectByGrid(ctx context.Context, req Request) (grid.Point, bool) {
	working := req.Field.Clone()
	if req.Exclude != nil {
		working.MaskOut(req.Exclude, -grid.InfinityCeiling)
	}

	// Hostile boost: union of blast discs, applied once per cell no matter
	// how many hostiles overlap it.
	boost := grid.NewMask(working.Width(), working.Height())
	for _, hostile := range req.Hostiles {
		boost.StampDisc(snapToCell(working, hostile.Pos), BlastRadius)
	}
	working.AddWhere(boost, HostileBoost)

	// Friendly penalty: accumulates per friendly, so a cell covered by two
	// friendlies costs double.
	for _, friendly := range req.Friendlies {
		working.AddDisc(snapToCell(working, friendly.Pos), BlastRadius, -FriendlyPenalty)
	}

	working.MaskBorder(BorderMargin, -grid.InfinityCeiling)

	s.publishGridStats(ctx, req, working)

	x, y, value, ok := working.Max()
	if !ok {
		return grid.Point{}, false
	}
	if !(value > AcceptFloor && value < AcceptCeiling) {
		return grid.Point{}, false
	}
	pos := grid.Point{X: float64(x), Y: float64(y)}
	s.remember(pos, value)
	targetinglog.TargetSelected(ctx, s.pub, req.Tick, req.Actor, targetinglog.TargetSelectedPayload{
		Tier: targetinglog.TierGrid, X: pos.X, Y: pos.Y, Value: value,
	})
	return pos, true
}

// selectByPosition samples hostile surroundings and a coarse lattice, scoring
// each candidate by blast coverage. Falls back to the nearest hostile when
// nothing scores above the floor.
func (s *Selector) selectByPosition(ctx context.Context, req Request) (grid.Point, bool) {
	boundsX, boundsY := defaultBoundsX, defaultBoundsY
	if req.Field != nil {
		boundsX = req.Field.Width()
		boundsY = req.Field.Height()
	}

	candidates := make([]grid.Point, 0, len(req.Hostiles)*5+(boundsX/SampleResolution+1)*(boundsY/SampleResolution+1))
	for _, hostile := range req.Hostiles {
		candidates = append(candidates, hostile.Pos)
		for _, off := range candidateOffsets {
			candidates = append(candidates, grid.Point{X: hostile.Pos.X + off.X, Y: hostile.Pos.Y + off.Y})
		}
	}
	for x := 0; x < boundsX; x += SampleResolution {
		for y := 0; y < boundsY; y += SampleResolution {
			candidates = append(candidates, grid.Point{X: float64(x), Y: float64(y)})
		}
	}

	maskUsable := req.Exclude != nil && req.Field != nil && req.Exclude.Matches(req.Field)

	var bestPos grid.Point
	bestScore := math.Inf(-1)
	found := false
	for _, pos := range candidates {
		if maskUsable && req.Exclude.ExcludesPoint(pos) {
			continue
		}
		hostilesHit := countWithinBlast(req.Hostiles, pos)
		if hostilesHit == 0 {
			continue
		}
		score := HostileHitScore*float64(hostilesHit) - FriendlyHitCost*float64(countWithinBlast(req.Friendlies, pos))
		if score <= ScoreFloor {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestPos = pos
			found = true
		}
	}

	if found {
		s.remember(bestPos, bestScore)
		targetinglog.TargetSelected(ctx, s.pub, req.Tick, req.Actor, targetinglog.TargetSelectedPayload{
			Tier: targetinglog.TierPosition, X: bestPos.X, Y: bestPos.Y, Value: bestScore,
		})
		return bestPos, true
	}

	// Last resort: the hostile nearest the origin. Hostiles are known
	// non-empty by the time any tier runs.
	nearest := req.Hostiles[0].Pos
	nearestDist := req.Origin.DistanceTo(nearest)
	for _, hostile := range req.Hostiles[1:] {
		if d := req.Origin.DistanceTo(hostile.Pos); d < nearestDist {
			nearestDist = d
			nearest = hostile.Pos
		}
	}
	s.remember(nearest, -1)
	targetinglog.TargetSelected(ctx, s.pub, req.Tick, req.Actor, targetinglog.TargetSelectedPayload{
		Tier: targetinglog.TierLastResort, X: nearest.X, Y: nearest.Y, Value: -1,
	})
	return nearest, true
}

func (s *Selector) remember(pos grid.Point, value float64) {
	s.lastPos = pos
	s.lastValue = value
	s.hasLast = true
}

func (s *Selector) publishGridStats(ctx context.Context, req Request, working *grid.Field) {
	min := math.MaxFloat64
	max := -math.MaxFloat64
	hostileCells, neutralCells, penaltyCells := 0, 0, 0
	for y := 0; y < working.Height(); y++ {
		for x := 0; x < working.Width(); x++ {
			v := working.At(x, y)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			switch {
			case v > grid.NeutralValue:
				hostileCells++
			case v <= -grid.NeutralValue:
				penaltyCells++
			default:
				neutralCells++
			}
		}
	}
	targetinglog.GridStats(ctx, s.pub, req.Tick, req.Actor, targetinglog.GridStatsPayload{
		Min:          min,
		Max:          max,
		HostileCells: hostileCells,
		NeutralCells: neutralCells,
		PenaltyCells: penaltyCells,
	})
}

// snapToCell pins a world position onto the center of its containing cell so
// disc stamping matches the integer distance transform of the field.
func snapToCell(f *grid.Field, p grid.Point) grid.Point {
	return grid.Point{X: float64(f.CellX(p.X)), Y: float64(f.CellY(p.Y))}
}

func countWithinBlast(units []Unit, pos grid.Point) int {
	count := 0
	for _, u := range units {
		if pos.DistanceTo(u.Pos) <= BlastRadius {
			count++
		}
	}
	return count
}
