package contact

import (
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// relativeVelocity returns (v2 - v1), the full point velocities at each
// contact's lever arm, consistent with the body1->body2 normal
// convention: positive along N means separating.
func (cc *ContactConstraint) relativeVelocity(c *SolvableContact) mathx.Vector {
	v1 := cc.Body1.LinearVelocity().Add(mathx.CrossSV(cc.Body1.AngularVelocity(), c.r1))
	v2 := cc.Body2.LinearVelocity().Add(mathx.CrossSV(cc.Body2.AngularVelocity(), c.r2))
	return v2.Sub(v1)
}

func (cc *ContactConstraint) applyNormalTangent(m1, m2 body.Mass, c *SolvableContact, P mathx.Vector) {
	applyImpulse(cc.Body1, m1.InverseMass, m1.InverseInertia, c.r1, P.Mul(-1))
	applyImpulse(cc.Body2, m2.InverseMass, m2.InverseInertia, c.r2, P)
}

// SolveVelocity performs one velocity-iteration pass: friction first (using
// the current normal impulse as its cap), then the normal impulse — one
// contact solved directly, two solved as a block LCP via Murty's total
// enumeration.
func (cc *ContactConstraint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := cc.Body1.GetMass(), cc.Body2.GetMass()

	// 1. Friction, per contact, capped by the current normal impulse.
	for _, c := range cc.Points {
		if !c.Solved || c.massT == 0 {
			continue
		}
		rv := cc.relativeVelocity(c)
		rvt := cc.Tangent.Dot(rv) - cc.TangentSpeed
		deltaJt := c.massT * -rvt

		maxJt := cc.Friction * c.Jn
		oldJt := c.Jt
		newJt := mathx.Clamp(oldJt+deltaJt, -maxJt, maxJt)
		deltaJt = newJt - oldJt
		c.Jt = newJt

		P := cc.Tangent.Mul(deltaJt)
		cc.applyNormalTangent(m1, m2, c, P)
	}

	// 2. Normal.
	switch {
	case len(cc.Points) == 1:
		cc.solveNormalSingle(m1, m2)
	case cc.blockValid:
		cc.solveNormalBlock(m1, m2)
	default:
		cc.solveNormalSingle(m1, m2)
	}
}

func (cc *ContactConstraint) solveNormalSingle(m1, m2 body.Mass) {
	for _, c := range cc.Points {
		if !c.Solved || c.massN == 0 {
			continue
		}
		rv := cc.relativeVelocity(c)
		rvn := cc.Normal.Dot(rv)
		deltaJn := c.massN * (c.vb - rvn)

		oldJn := c.Jn
		newJn := math.Max(oldJn+deltaJn, 0)
		deltaJn = newJn - oldJn
		c.Jn = newJn

		P := cc.Normal.Mul(deltaJn)
		cc.applyNormalTangent(m1, m2, c, P)
	}
}

// solveNormalBlock solves the 2-contact mixed complementarity problem
// vn = K·x + b, x >= 0, vn >= 0, x·vn = 0 by enumerating its four cases in
// fixed order, applying the first that satisfies its inequalities.
func (cc *ContactConstraint) solveNormalBlock(m1, m2 body.Mass) {
	c0, c1 := cc.Points[0], cc.Points[1]
	n := cc.Normal

	a := mathx.Vector{c0.Jn, c1.Jn}

	rv0 := cc.relativeVelocity(c0)
	rv1 := cc.relativeVelocity(c1)
	vn0 := n.Dot(rv0)
	vn1 := n.Dot(rv1)

	b := mathx.Vector{vn0 - c0.vb, vn1 - c1.vb}
	b = b.Sub(cc.k.MulVec(a))

	// Case 1: both active (vn = 0).
	negB := b.Mul(-1)
	x := cc.kInverse.MulVec(negB)
	if x[0] >= 0 && x[1] >= 0 {
		cc.applyBlockSolution(m1, m2, c0, c1, x)
		return
	}

	// Case 2: x2 = 0, vn1 = 0 (contact 0 active, contact 1 separating).
	if c0.massN > 0 {
		x1 := -c0.massN * b[0]
		vnB := cc.k.Col2[0]*x1 + b[1]
		if x1 >= 0 && vnB >= 0 {
			cc.applyBlockSolution(m1, m2, c0, c1, mathx.Vector{x1, 0})
			return
		}
	}

	// Case 3: x1 = 0, vn2 = 0 (contact 1 active, contact 0 separating).
	if c1.massN > 0 {
		x2 := -c1.massN * b[1]
		vnA := cc.k.Col1[1]*x2 + b[0]
		if x2 >= 0 && vnA >= 0 {
			cc.applyBlockSolution(m1, m2, c0, c1, mathx.Vector{0, x2})
			return
		}
	}

	// Case 4: both separating.
	if b[0] >= 0 && b[1] >= 0 {
		cc.applyBlockSolution(m1, m2, c0, c1, mathx.Vector{0, 0})
		return
	}

	// No case satisfied its inequalities (rare, ill-conditioned input):
	// leave this iteration unchanged.
}

func (cc *ContactConstraint) applyBlockSolution(m1, m2 body.Mass, c0, c1 *SolvableContact, x mathx.Vector) {
	d0 := x[0] - c0.Jn
	d1 := x[1] - c1.Jn
	c0.Jn = x[0]
	c1.Jn = x[1]

	cc.applyNormalTangent(m1, m2, c0, cc.Normal.Mul(d0))
	cc.applyNormalTangent(m1, m2, c1, cc.Normal.Mul(d1))
}

// SolvePosition applies one iteration of non-linear position projection
// across every contact, recomputing lever arms each time since bodies may
// have moved within the loop, and reports whether the manifold's minimum
// separation is within tolerance.
func (cc *ContactConstraint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := cc.Body1.GetMass(), cc.Body2.GetMass()
	n := cc.Normal
	minSeparation := math.Inf(1)

	for _, c := range cc.Points {
		p1 := cc.Body1.WorldPoint(c.LocalPoint1)
		p2 := cc.Body2.WorldPoint(c.LocalPoint2)
		r1 := p1.Sub(cc.Body1.WorldCenter())
		r2 := p2.Sub(cc.Body2.WorldCenter())

		pen := n.Dot(p2.Sub(p1)) - c.Depth
		if pen < minSeparation {
			minSeparation = pen
		}

		cp := set.Baumgarte * mathx.Clamp(pen+set.LinearTolerance, -set.MaximumLinearCorrection, 0)

		rn1 := mathx.Cross(r1, n)
		rn2 := mathx.Cross(r2, n)
		k := m1.InverseMass + m2.InverseMass + m1.InverseInertia*rn1*rn1 + m2.InverseInertia*rn2*rn2

		var deltaJp float64
		if k > mathx.Epsilon {
			deltaJp = -cp / k
		}

		oldJp := c.Jp
		newJp := math.Max(oldJp+deltaJp, 0)
		deltaJp = newJp - oldJp
		c.Jp = newJp

		P := n.Mul(deltaJp)
		applyPositionCorrection(cc.Body1, m1.InverseMass, m1.InverseInertia, r1, P.Mul(-1))
		applyPositionCorrection(cc.Body2, m2.InverseMass, m2.InverseInertia, r2, P)
	}

	return minSeparation >= -3*set.LinearTolerance
}

func applyPositionCorrection(b body.Body, invMass, invInertia float64, r, P mathx.Vector) {
	if invMass != 0 {
		b.Translate(P.Mul(invMass))
	}
	if invInertia != 0 {
		b.RotateAboutCenter(invInertia * mathx.Cross(r, P))
	}
}
