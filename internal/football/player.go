package football

// Player is a stand-in physics body for one player on the pitch: position
// and velocity advanced by plain Euler integration, plus the bookkeeping
// a shout/tactical-change callback needs a target for. Stamina, injuries,
// and real movement AI are explicitly out of scope.
type Player struct {
	ID       string
	TeamID   string
	Position Vec3
	Velocity Vec3
}

// Integrate advances the player's position by one Euler step of
// dtSeconds, exactly like the teacher's integrateLinear helper for
// vehicle translation.
func (p *Player) Integrate(dtSeconds float64) {
	if p == nil || dtSeconds <= 0 {
		return
	}
	p.Position = p.Position.Add(p.Velocity.Scale(dtSeconds))
}
