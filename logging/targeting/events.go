package targeting

import (
	"context"

	"novastrike/engine/logging"
)

const (
	// EventTargetSelected is emitted when a selection tier accepts a target.
	EventTargetSelected logging.EventType = "targeting.target_selected"
	// EventTargetRejected is emitted when the whole fallback chain yields nothing.
	EventTargetRejected logging.EventType = "targeting.target_rejected"
	// EventFieldDegraded is emitted when the grid tier is skipped because the
	// value field is missing or an exclusion mask has the wrong shape.
	EventFieldDegraded logging.EventType = "targeting.field_degraded"
	// EventGridStats carries grid classification counts at debug severity.
	EventGridStats logging.EventType = "targeting.grid_stats"
	// EventRetargetSwitched is emitted when a projectile adopts a better target.
	EventRetargetSwitched logging.EventType = "targeting.retarget_switched"
	// EventRetargetRejected is emitted when a retarget candidate fails the
	// improvement or spacing checks.
	EventRetargetRejected logging.EventType = "targeting.retarget_rejected"
	// EventClaimConflict is emitted when claim registration fails. Non-fatal:
	// the launch or retarget proceeds without a claim.
	EventClaimConflict logging.EventType = "targeting.claim_conflict"
)

// Selection tiers as reported in TargetSelectedPayload.
const (
	TierGrid        = "grid"
	TierPosition    = "position"
	TierLastResort  = "nearest_hostile"
	TierRetargetMax = "retarget_max" // direct masked-argmax during retargeting
)

// Degradation reasons as reported in FieldDegradedPayload.
const (
	DegradeMissingInput  = "missing_input"
	DegradeShapeMismatch = "shape_mismatch"
)

// TargetSelectedPayload describes an accepted target.
type TargetSelectedPayload struct {
	Tier  string  `json:"tier"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// TargetRejectedPayload describes a selection attempt that found nothing.
type TargetRejectedPayload struct {
	Reason string `json:"reason"`
}

// FieldDegradedPayload describes why the grid tier was skipped.
type FieldDegradedPayload struct {
	Reason string `json:"reason"`
}

// GridStatsPayload summarizes the working grid after boosts and penalties.
type GridStatsPayload struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	HostileCells int     `json:"hostileCells"`
	NeutralCells int     `json:"neutralCells"`
	PenaltyCells int     `json:"penaltyCells"`
}

// RetargetSwitchedPayload describes a target switch.
type RetargetSwitchedPayload struct {
	FromX       float64 `json:"fromX"`
	FromY       float64 `json:"fromY"`
	ToX         float64 `json:"toX"`
	ToY         float64 `json:"toY"`
	Improvement float64 `json:"improvement"`
}

// RetargetRejectedPayload describes why a candidate was kept out.
type RetargetRejectedPayload struct {
	Reason      string  `json:"reason"`
	Improvement float64 `json:"improvement"`
}

// ClaimConflictPayload locates the contested position.
type ClaimConflictPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TargetSelected publishes EventTargetSelected.
func TargetSelected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TargetSelectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTargetSelected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryTargeting,
		Payload:  payload,
	})
}

// TargetRejected publishes EventTargetRejected.
func TargetRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTargetRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryTargeting,
		Payload:  TargetRejectedPayload{Reason: reason},
	})
}

// FieldDegraded publishes EventFieldDegraded.
func FieldDegraded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFieldDegraded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryTargeting,
		Payload:  FieldDegradedPayload{Reason: reason},
	})
}

// GridStats publishes EventGridStats at debug severity.
func GridStats(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GridStatsPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGridStats,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryTargeting,
		Payload:  payload,
	})
}

// RetargetSwitched publishes EventRetargetSwitched.
func RetargetSwitched(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RetargetSwitchedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRetargetSwitched,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryTargeting,
		Payload:  payload,
	})
}

// RetargetRejected publishes EventRetargetRejected.
func RetargetRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, reason string, improvement float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRetargetRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryTargeting,
		Payload:  RetargetRejectedPayload{Reason: reason, Improvement: improvement},
	})
}

// ClaimConflict publishes EventClaimConflict at warn severity.
func ClaimConflict(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, x, y float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClaimConflict,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryTargeting,
		Payload:  ClaimConflictPayload{X: x, Y: y},
	})
}
