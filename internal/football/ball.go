package football

// Friction decays ball velocity by this fraction per second of simulated
// time, a placeholder drag coefficient standing in for real pitch physics.
const ballFriction = 0.6

// Ball is a stand-in physics body for the match ball: position and
// velocity advanced by plain Euler integration. Spin, bounce, and surface
// interaction are explicitly out of scope.
type Ball struct {
	Position Vec3
	Velocity Vec3
}

// Integrate advances the ball's position by one Euler step of dtSeconds
// and applies linear friction to the velocity, exactly like the teacher's
// integrateLinear helper for vehicle translation.
func (b *Ball) Integrate(dtSeconds float64) {
	if b == nil || dtSeconds <= 0 {
		return
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dtSeconds))
	decay := 1 - ballFriction*dtSeconds
	if decay < 0 {
		decay = 0
	}
	b.Velocity = b.Velocity.Scale(decay)
}
