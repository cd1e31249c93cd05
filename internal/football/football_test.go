package football

import (
	"math"
	"testing"

	"matchsim/engine/internal/rng"
)

func TestBallIntegrateAdvancesPositionAndDecaysVelocity(t *testing.T) {
	ball := &Ball{Position: Vec3{}, Velocity: Vec3{X: 10}}
	ball.Integrate(1)
	if ball.Position.X != 10 {
		t.Fatalf("Position.X = %v, want 10", ball.Position.X)
	}
	if ball.Velocity.X >= 10 {
		t.Fatalf("Velocity.X = %v, want friction to have reduced it below 10", ball.Velocity.X)
	}
}

func TestBallIntegrateIgnoresNonPositiveStep(t *testing.T) {
	ball := &Ball{Position: Vec3{X: 1}, Velocity: Vec3{X: 1}}
	ball.Integrate(0)
	if ball.Position.X != 1 || ball.Velocity.X != 1 {
		t.Fatalf("Integrate(0) mutated state: %+v", ball)
	}
}

func TestPlayerIntegrateAdvancesPosition(t *testing.T) {
	p := &Player{Position: Vec3{Y: 0}, Velocity: Vec3{Y: 5}}
	p.Integrate(2)
	if p.Position.Y != 10 {
		t.Fatalf("Position.Y = %v, want 10", p.Position.Y)
	}
}

func TestAITickIsDeterministicForSameStream(t *testing.T) {
	a := rng.NewSource(42, 0)
	b := rng.NewSource(42, 0)
	for i := 0; i < 10; i++ {
		if AITick(a) != AITick(b) {
			t.Fatalf("AITick diverged between identically-seeded streams at step %d", i)
		}
	}
}

func TestAITickNilSourceHolds(t *testing.T) {
	if AITick(nil) != DecisionHold {
		t.Fatalf("AITick(nil) = want DecisionHold")
	}
}

func TestVisionTickDetectsTargetWithinConeAndRange(t *testing.T) {
	cone := VisibilityCone{MaxDistance: 20, MaxAngleRad: math.Pi / 4}
	observer := Vec3{}
	facing := Vec3{X: 1}
	if !VisionTick(cone, observer, facing, Vec3{X: 10}) {
		t.Fatalf("expected target directly ahead to be visible")
	}
}

func TestVisionTickRejectsTargetBehindObserver(t *testing.T) {
	cone := VisibilityCone{MaxDistance: 20, MaxAngleRad: math.Pi / 4}
	observer := Vec3{}
	facing := Vec3{X: 1}
	if VisionTick(cone, observer, facing, Vec3{X: -10}) {
		t.Fatalf("expected target behind observer to be invisible")
	}
}

func TestVisionTickRejectsTargetBeyondMaxDistance(t *testing.T) {
	cone := VisibilityCone{MaxDistance: 5, MaxAngleRad: math.Pi}
	if VisionTick(cone, Vec3{}, Vec3{X: 1}, Vec3{X: 100}) {
		t.Fatalf("expected out-of-range target to be invisible")
	}
}

func TestPitchContainsAndClamp(t *testing.T) {
	pitch := Pitch{Length: 100, Width: 60}
	if !pitch.Contains(Vec3{X: 0, Y: 0}) {
		t.Fatalf("expected center to be within pitch")
	}
	if pitch.Contains(Vec3{X: 60, Y: 0}) {
		t.Fatalf("expected point beyond length/2 to be out of bounds")
	}
	clamped := pitch.Clamp(Vec3{X: 200, Y: -200})
	if clamped.X != 50 || clamped.Y != -30 {
		t.Fatalf("Clamp() = %+v, want {50 -30 0}", clamped)
	}
}
