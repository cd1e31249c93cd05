// Package football provides minimal, explicitly non-authoritative stand-ins
// for the ball/player physics, AI, and vision systems that the scheduler
// drives but that this repository does not implement. Ball and player
// physics, AI decision-making, and vision are out of scope; these types
// exist so BallPhysicsTick/PlayerPhysicsTick/PlayerAITick/VisionTick have
// a real callback to exercise the scheduler's ordering and
// self-rescheduling contract end to end.
package football

import "math"

// Vec3 is a plain 3D vector, lifted from the teacher's collision-math
// vector helpers without the SDF/ray-marching machinery built on top of
// them in the original.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale multiplies the vector by a scalar.
func (v Vec3) Scale(scalar float64) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Dot returns the scalar dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length computes the Euclidean norm of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize produces a unit-length vector. The zero vector normalizes to
// itself rather than panicking, since an idle ball/player at rest is a
// routine state here, unlike a ray-marching direction vector.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return v
	}
	inv := 1.0 / length
	return Vec3{X: v.X * inv, Y: v.Y * inv, Z: v.Z * inv}
}
