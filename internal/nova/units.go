package nova

import "novastrike/engine/internal/grid"

// Unit is the minimal view of a simulation entity: stable identity plus a
// position the simulation keeps current. The engine holds these references
// weakly; it never owns a unit's lifetime.
type Unit interface {
	ID() string
	Position() grid.Point
}

// Mover is a unit that accepts movement commands. Commands are fire-and-
// forget: the simulation applies them on its own schedule.
type Mover interface {
	Unit
	MoveTo(target grid.Point)
}

// Launcher is the unit that fires novas. NovaReady reflects the cooldown and
// resource gate owned by the simulation. FireNova reports success
// synchronously; a false return means the simulation refused the command.
type Launcher interface {
	Mover
	NovaReady() bool
	FireNova(target grid.Point) bool
}
