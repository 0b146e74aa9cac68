package mathx

// Vector3 is a 3-component scratch vector for the WeldJoint's combined
// (linear x, linear y, angular) constraint row.
type Vector3 struct {
	X, Y, Z float64
}

// Mat33 is a 3x3 matrix stored by columns, mirroring Mat22.
type Mat33 struct {
	Col1, Col2, Col3 Vector3
}

// NewMat33FromRows builds a matrix from its nine scalar entries, row-major
// for readability at call sites (effective-mass blocks are usually written
// out row by row).
func NewMat33FromRows(a11, a12, a13, a21, a22, a23, a31, a32, a33 float64) Mat33 {
	return Mat33{
		Col1: Vector3{a11, a21, a31},
		Col2: Vector3{a12, a22, a32},
		Col3: Vector3{a13, a23, a33},
	}
}

// At returns the entry at row r, col c (0-indexed).
func (m Mat33) At(r, c int) float64 {
	cols := [3]Vector3{m.Col1, m.Col2, m.Col3}
	col := cols[c]
	switch r {
	case 0:
		return col.X
	case 1:
		return col.Y
	default:
		return col.Z
	}
}

// Upper22 returns the upper-left 2x2 block.
func (m Mat33) Upper22() Mat22 {
	return NewMat22(m.At(0, 0), m.At(0, 1), m.At(1, 0), m.At(1, 1))
}

// Determinant computes the 3x3 determinant via cofactor expansion.
func (m Mat33) Determinant() float64 {
	a, b, c := m.Col1, m.Col2, m.Col3
	return a.X*(b.Y*c.Z-b.Z*c.Y) - b.X*(a.Y*c.Z-a.Z*c.Y) + c.X*(a.Y*b.Z-a.Z*b.Y)
}

// MulVec applies the matrix to a 3-vector.
func (m Mat33) MulVec(v Vector3) Vector3 {
	return Vector3{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// Solve22 solves the upper-left 2x2 block M*x = b for x, ignoring the third
// row/column entirely. Used when a joint's angular row is degenerate (e.g.
// WeldJoint with both bodies fixed-rotation).
func (m Mat33) Solve22(b Vector) Vector {
	return m.Upper22().Solve(b)
}

// Solve33 solves the full 3x3 system M*x = b via Cramer's rule, returning
// the zero vector when the determinant is at or below Epsilon.
func (m Mat33) Solve33(b Vector3) Vector3 {
	det := m.Determinant()
	if abs(det) <= Epsilon {
		return Vector3{}
	}
	invDet := 1.0 / det

	a, c2, c3 := m.Col1, m.Col2, m.Col3

	// x = det(replace col1 with b) / det
	mx := Mat33{Col1: b, Col2: c2, Col3: c3}
	my := Mat33{Col1: a, Col2: b, Col3: c3}
	mz := Mat33{Col1: a, Col2: c2, Col3: b}

	return Vector3{
		X: mx.Determinant() * invDet,
		Y: my.Determinant() * invDet,
		Z: mz.Determinant() * invDet,
	}
}
