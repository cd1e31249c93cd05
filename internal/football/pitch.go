package football

// Pitch describes a rectangular playing surface centered at the origin,
// used only to clamp the ball/player stand-ins within bounds.
type Pitch struct {
	Length float64 // X extent
	Width  float64 // Y extent
}

// Contains reports whether the position lies within the pitch boundary.
func (p Pitch) Contains(pos Vec3) bool {
	half := Vec3{X: p.Length / 2, Y: p.Width / 2}
	return pos.X >= -half.X && pos.X <= half.X && pos.Y >= -half.Y && pos.Y <= half.Y
}

// Clamp constrains a position to the pitch boundary.
func (p Pitch) Clamp(pos Vec3) Vec3 {
	half := Vec3{X: p.Length / 2, Y: p.Width / 2}
	clamp := func(v, lim float64) float64 {
		if v < -lim {
			return -lim
		}
		if v > lim {
			return lim
		}
		return v
	}
	return Vec3{X: clamp(pos.X, half.X), Y: clamp(pos.Y, half.Y), Z: pos.Z}
}
