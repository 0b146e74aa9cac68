// Package contact is the sequential-impulse contact-constraint solver:
// non-penetration plus Coulomb friction between colliding body pairs, with
// warm-started normal/tangent impulses and a two-point block LCP solved by
// Murty's total enumeration (contact.go, solver.go).
package contact

import (
	"fmt"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// MaxPoints is the maximum number of contact points a single manifold
// carries — a 2D convex-vs-convex manifold never needs more than two.
const MaxPoints = 2

// ErrArgumentNull is returned when a required input is missing.
var ErrArgumentNull = fmt.Errorf("contact: required argument is nil")

// ErrTooManyPoints is returned when zero or more than MaxPoints contact
// points are supplied to NewContactConstraint.
var ErrTooManyPoints = fmt.Errorf("contact: at most %d contact points per manifold", MaxPoints)

// Point is the caller-supplied per-contact input: a world-space contact
// location and the manifold's penetration depth at that point. Narrow-phase
// collision detection is an external collaborator (spec §1); this is the
// entire interface boundary this package needs from it.
type Point struct {
	WorldPoint mathx.Vector
	Depth      float64
}

// SolvableContact is one point of a manifold's warm-started solve state.
// Solved reports whether this point currently participates in the block
// solve — the two-point block setup may drop the shallower of two
// near-coincident contacts as ill-conditioned while still leaving the
// point here for an external event layer's begin/persist/end tracking.
type SolvableContact struct {
	LocalPoint1, LocalPoint2 mathx.Vector
	Depth                    float64
	Solved                   bool

	// Warm-started accumulated impulses.
	Jn, Jt, Jp float64

	// Per-step scratch, recomputed each Initialize/position iteration.
	r1, r2       mathx.Vector
	massN, massT float64
	vb           float64
}

// ContactConstraint resolves non-penetration and friction between one pair
// of bodies across 1-2 contact points (spec §4.F).
type ContactConstraint struct {
	Body1, Body2 body.Body

	// Normal is the unit collision normal, from Body1 toward Body2.
	Normal mathx.Vector
	// Tangent is Normal rotated 90°, N⊥.
	Tangent mathx.Vector

	Restitution  float64
	Friction     float64
	TangentSpeed float64

	Points []*SolvableContact

	// Two-point block cache, valid only when len(Points) == 2 and the
	// condition heuristic passes.
	blockValid bool
	k          mathx.Mat22
	kInverse   mathx.Mat22
}

// NewContactConstraint builds a ContactConstraint from 1 or 2 manifold
// points. Local anchor points are derived from the bodies' current
// transforms at construction time, matching every joint constructor's
// world-to-local convention.
func NewContactConstraint(body1, body2 body.Body, normal mathx.Vector, restitution, friction, tangentSpeed float64, points []Point) (*ContactConstraint, error) {
	if body1 == nil || body2 == nil {
		return nil, fmt.Errorf("%w: body1/body2", ErrArgumentNull)
	}
	if len(points) == 0 || len(points) > MaxPoints {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyPoints, len(points))
	}

	cc := &ContactConstraint{
		Body1:        body1,
		Body2:        body2,
		Normal:       normal,
		Tangent:      mathx.RightHandOrthogonal(normal),
		Restitution:  restitution,
		Friction:     friction,
		TangentSpeed: tangentSpeed,
		Points:       make([]*SolvableContact, len(points)),
	}
	for i, p := range points {
		cc.Points[i] = &SolvableContact{
			LocalPoint1: body1.LocalPoint(p.WorldPoint),
			LocalPoint2: body2.LocalPoint(p.WorldPoint),
			Depth:       p.Depth,
			Solved:      true,
		}
	}
	return cc, nil
}

// Initialize recomputes per-contact lever arms, effective masses, and
// restitution bias, and builds the two-point block cache when applicable.
func (cc *ContactConstraint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := cc.Body1.GetMass(), cc.Body2.GetMass()
	n := cc.Normal

	for _, c := range cc.Points {
		c.Solved = true
		c.r1 = cc.Body1.WorldPoint(c.LocalPoint1).Sub(cc.Body1.WorldCenter())
		c.r2 = cc.Body2.WorldPoint(c.LocalPoint2).Sub(cc.Body2.WorldCenter())

		rn1 := mathx.Cross(c.r1, n)
		rn2 := mathx.Cross(c.r2, n)
		invMassN := m1.InverseMass + m2.InverseMass + m1.InverseInertia*rn1*rn1 + m2.InverseInertia*rn2*rn2
		if invMassN > mathx.Epsilon {
			c.massN = 1.0 / invMassN
		} else {
			c.massN = 0
		}

		rt1 := mathx.Cross(c.r1, cc.Tangent)
		rt2 := mathx.Cross(c.r2, cc.Tangent)
		invMassT := m1.InverseMass + m2.InverseMass + m1.InverseInertia*rt1*rt1 + m2.InverseInertia*rt2*rt2
		if invMassT > mathx.Epsilon {
			c.massT = 1.0 / invMassT
		} else {
			c.massT = 0
		}

		v1 := cc.Body1.LinearVelocity().Add(mathx.CrossSV(cc.Body1.AngularVelocity(), c.r1))
		v2 := cc.Body2.LinearVelocity().Add(mathx.CrossSV(cc.Body2.AngularVelocity(), c.r2))
		// rvn is the separating velocity along N (pointing body1->body2):
		// negative means the bodies are closing.
		rvn := n.Dot(v2.Sub(v1))

		c.vb = 0
		if rvn < -set.RestitutionVelocity {
			c.vb = -cc.Restitution * rvn
		}
	}

	cc.blockValid = false
	if len(cc.Points) == 2 {
		c0, c1 := cc.Points[0], cc.Points[1]
		rn1A := mathx.Cross(c0.r1, n)
		rn1B := mathx.Cross(c0.r2, n)
		rn2A := mathx.Cross(c1.r1, n)
		rn2B := mathx.Cross(c1.r2, n)

		k11 := m1.InverseMass + m2.InverseMass + m1.InverseInertia*rn1A*rn1A + m2.InverseInertia*rn1B*rn1B
		k22 := m1.InverseMass + m2.InverseMass + m1.InverseInertia*rn2A*rn2A + m2.InverseInertia*rn2B*rn2B
		k12 := m1.InverseMass + m2.InverseMass + m1.InverseInertia*rn1A*rn2A + m2.InverseInertia*rn1B*rn2B

		k := mathx.NewMat22(k11, k12, k12, k22)
		det := k.Determinant()

		const conditionFactor = 1000.0
		if k11*k11 < conditionFactor*det {
			if inv, ok := k.Invert(); ok {
				cc.k = k
				cc.kInverse = inv
				cc.blockValid = true
			}
		}
		if !cc.blockValid {
			// Drop the shallower of the two near-coincident contacts from
			// the block solve; it stays in Points for event tracking.
			if c0.Depth >= c1.Depth {
				c1.Solved = false
			} else {
				c0.Solved = false
			}
		}
	}
}

// WarmStart rescales and reapplies each point's accumulated impulse,
// matching the joint catalog's deltaTimeRatio warm-start convention.
func (cc *ContactConstraint) WarmStart(step settings.TimeStep, set settings.Settings) {
	m1, m2 := cc.Body1.GetMass(), cc.Body2.GetMass()

	if !set.WarmStartingEnabled {
		for _, c := range cc.Points {
			c.Jn, c.Jt, c.Jp = 0, 0, 0
		}
		return
	}

	for _, c := range cc.Points {
		c.Jn *= step.DeltaTimeRatio
		c.Jt *= step.DeltaTimeRatio

		P := cc.Normal.Mul(c.Jn).Add(cc.Tangent.Mul(c.Jt))
		applyImpulse(cc.Body1, m1.InverseMass, m1.InverseInertia, c.r1, P.Mul(-1))
		applyImpulse(cc.Body2, m2.InverseMass, m2.InverseInertia, c.r2, P)
	}
}

func applyImpulse(b body.Body, invMass, invInertia float64, r, P mathx.Vector) {
	if invMass != 0 {
		b.SetLinearVelocity(b.LinearVelocity().Add(P.Mul(invMass)))
	}
	if invInertia != 0 {
		b.SetAngularVelocity(b.AngularVelocity() + invInertia*mathx.Cross(r, P))
	}
}
