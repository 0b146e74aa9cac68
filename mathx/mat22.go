package mathx

// Mat22 is a 2x2 matrix stored by columns, following the Box2D/dyn4j
// convention the spec's solve22 wording is lifted from: Col1 is the first
// column (a11, a21), Col2 the second (a12, a22).
type Mat22 struct {
	Col1, Col2 Vector
}

// NewMat22 builds a matrix from its scalar entries.
func NewMat22(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{Col1: Vector{a11, a21}, Col2: Vector{a12, a22}}
}

// Determinant returns a11*a22 − a12*a21.
func (m Mat22) Determinant() float64 {
	return m.Col1[0]*m.Col2[1] - m.Col2[0]*m.Col1[1]
}

// Invert returns the matrix inverse and whether it was computable. When the
// determinant's magnitude is at or below Epsilon the zero matrix is
// returned instead of dividing by (near) zero, per spec §4.A.
func (m Mat22) Invert() (Mat22, bool) {
	det := m.Determinant()
	if abs(det) <= Epsilon {
		return Mat22{}, false
	}
	invDet := 1.0 / det
	return Mat22{
		Col1: Vector{invDet * m.Col2[1], -invDet * m.Col1[1]},
		Col2: Vector{-invDet * m.Col2[0], invDet * m.Col1[0]},
	}, true
}

// MulVec applies the matrix to a vector: M*v.
func (m Mat22) MulVec(v Vector) Vector {
	return Vector{
		m.Col1[0]*v[0] + m.Col2[0]*v[1],
		m.Col1[1]*v[0] + m.Col2[1]*v[1],
	}
}

// Solve solves M*x = b for x, returning the zero vector when M is singular
// (or near-singular) to Epsilon — the solver never divides by zero, it
// simply applies no impulse that iteration.
func (m Mat22) Solve(b Vector) Vector {
	inv, ok := m.Invert()
	if !ok {
		return Vector{}
	}
	return inv.MulVec(b)
}

// Add returns the entrywise sum.
func (m Mat22) Add(o Mat22) Mat22 {
	return Mat22{Col1: m.Col1.Add(o.Col1), Col2: m.Col2.Add(o.Col2)}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
