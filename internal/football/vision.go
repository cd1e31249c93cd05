package football

import "math"

// VisibilityCone is a stand-in vision check: an opponent is "visible" when
// within both a distance and a forward-facing angle threshold of the
// observer. Occlusion, peripheral awareness, and real perception modeling
// are explicitly out of scope — this exists only so VISION has a real
// callback to exercise the scheduler's ordering contract.
type VisibilityCone struct {
	MaxDistance float64
	MaxAngleRad float64
}

// VisionTick reports whether target is within the observer's facing
// (a unit direction vector) vision cone.
func VisionTick(cone VisibilityCone, observer Vec3, facing Vec3, target Vec3) bool {
	offset := target.Sub(observer)
	distance := offset.Length()
	if distance > cone.MaxDistance || distance == 0 {
		return false
	}
	dir := facing.Normalize()
	if dir.Length() == 0 {
		return false
	}
	cosAngle := dir.Dot(offset.Scale(1 / distance))
	cosAngle = math.Max(-1, math.Min(1, cosAngle))
	angle := math.Acos(cosAngle)
	return angle <= cone.MaxAngleRad
}
