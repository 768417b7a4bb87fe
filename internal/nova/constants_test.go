package nova

import "testing"

func TestLifetimeConstantsStayDerived(t *testing.T) {
	cooldown := LaunchCooldownSeconds * TicksPerSecond
	if LaunchCooldownTicks != int(cooldown) {
		t.Fatalf("cooldown ticks drifted from %v seconds at %v Hz: %d vs %d",
			LaunchCooldownSeconds, TicksPerSecond, LaunchCooldownTicks, int(cooldown))
	}
	if MaxTravelDistance() != NovaSpeed*NovaLifetimeSeconds {
		t.Fatalf("max travel distance drifted: %v", MaxTravelDistance())
	}
	if got := TravelReach(LifetimeTicks); got != NovaSpeed*LifetimeTicks/TicksPerSecond {
		t.Fatalf("full-lifetime reach drifted: %v", got)
	}
	if TravelReach(0) != 0 || TravelReach(-1) != 0 {
		t.Fatal("an exhausted countdown must have zero reach")
	}
}
