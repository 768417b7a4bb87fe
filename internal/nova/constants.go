package nova

// The nova's flight envelope. Every travel-range computation in the engine
// derives from NovaSpeed and TicksPerSecond here; launch range and retarget
// reach must never drift apart.
const (
	// TicksPerSecond is the simulation rate the lifetime constants assume.
	TicksPerSecond = 22.4
	// NovaSpeed is the projectile's movement speed in world units per second.
	NovaSpeed = 5.95
	// NovaLifetimeSeconds is how long a nova flies before detonating.
	NovaLifetimeSeconds = 2.1
	// LifetimeTicks is the per-projectile countdown at launch:
	// NovaLifetimeSeconds at TicksPerSecond, rounded as the simulation does.
	LifetimeTicks = 48
	// LaunchCooldownSeconds gates how often one launcher can fire. The
	// simulation owns enforcement; the engine only reads readiness.
	LaunchCooldownSeconds = 21.4
	// LaunchCooldownTicks is LaunchCooldownSeconds at TicksPerSecond,
	// truncated to whole ticks the way the simulation counts them.
	LaunchCooldownTicks = 479

	// RetargetMinTicks is the countdown floor below which retargeting stops:
	// with this little flight time left a redirect cannot land.
	RetargetMinTicks = 4
	// RetargetImprovement is the relative value gain a candidate must show
	// before a projectile abandons its current target.
	RetargetImprovement = 0.15
	// ApproachStep is how far a launcher advances toward an out-of-range
	// target instead of firing.
	ApproachStep = 5.0
)

// MaxTravelDistance is the farthest a nova can fly over its whole lifetime.
func MaxTravelDistance() float64 {
	return NovaSpeed * NovaLifetimeSeconds
}

// TravelReach converts a remaining-tick countdown into remaining travel
// distance.
func TravelReach(ticksLeft int) float64 {
	if ticksLeft <= 0 {
		return 0
	}
	return NovaSpeed * float64(ticksLeft) / TicksPerSecond
}
