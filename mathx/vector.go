// Package mathx is the 2D math kernel shared by the joint and contact
// solvers: vectors, 2x2/3x3 matrices with epsilon-guarded solves, and the
// small numeric-safety helpers every constraint equation leans on.
package mathx

import "github.com/go-gl/mathgl/mgl64"

// Vector is a 2D vector. It is a named alias of mgl64.Vec2 so that the
// solver gets mgl64's Add/Sub/Mul/Dot/Len/Normalize for free, while the
// cross-product and ε-guarded helpers below — which mgl64 has no 2D
// equivalent of — live alongside it.
type Vector = mgl64.Vec2

// Zero is the additive identity vector.
var Zero = Vector{0, 0}

// NewVector builds a vector from components.
func NewVector(x, y float64) Vector {
	return Vector{x, y}
}

// Cross computes the 2D vector cross product a×b, a scalar:
// x·y' − y·x'.
func Cross(a, b Vector) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// CrossVS computes v×s, the perpendicular vector (−y·s, x·s).
func CrossVS(v Vector, s float64) Vector {
	return Vector{-s * v[1], s * v[0]}
}

// CrossSV computes s×v, (−s·y, s·x); it returns the same vector as
// CrossVS(v, s).
func CrossSV(s float64, v Vector) Vector {
	return Vector{-s * v[1], s * v[0]}
}

// RightHandOrthogonal returns (y, −x), the vector rotated −90°.
func RightHandOrthogonal(v Vector) Vector {
	return Vector{v[1], -v[0]}
}

// LeftHandOrthogonal returns (−y, x), the vector rotated +90°.
func LeftHandOrthogonal(v Vector) Vector {
	return Vector{-v[1], v[0]}
}

// Rotate rotates v by angle radians.
func Rotate(v Vector, angle float64) Vector {
	s, c := sincos(angle)
	return Vector{c*v[0] - s*v[1], s*v[0] + c*v[1]}
}
