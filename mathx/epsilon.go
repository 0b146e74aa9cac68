package mathx

import "math"

// Epsilon is the numeric-safety threshold used throughout the solver: any
// scalar or diagonal matrix entry whose magnitude falls at or below this
// value is treated as zero rather than inverted, per spec §4.A/§9.
const Epsilon = 1e-9

func sincos(angle float64) (float64, float64) {
	return math.Sin(angle), math.Cos(angle)
}

// WrapAngle folds angle into (−π, π], matching the referenceAngle
// convention used by AngleJoint and RevoluteJoint limits.
func WrapAngle(angle float64) float64 {
	const twoPi = 2 * math.Pi
	for angle > math.Pi {
		angle -= twoPi
	}
	for angle <= -math.Pi {
		angle += twoPi
	}
	return angle
}
