package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// PulleyJoint couples two bodies through a pair of fixed world-space pulley
// anchors: length1 + Ratio·length2 is held at Constant, where length1/2 are
// each body's distance to its own pulley anchor. With SlackEnabled (the
// default) the rope may go slack — the constraint only ever pulls, never
// pushes, so the accumulated impulse is clamped to >= 0.
type PulleyJoint struct {
	PairBase

	GroundAnchor1, GroundAnchor2 mathx.Vector
	LocalAnchor1, LocalAnchor2   mathx.Vector
	Ratio                        float64
	Constant                     float64
	SlackEnabled                 bool

	impulse float64

	u1, u2           mathx.Vector
	r1, r2           mathx.Vector
	length1, length2 float64
	mass             float64
}

// NewPulleyJoint constructs a PulleyJoint. Ratio must be strictly
// positive. Constant is derived from the bodies' current anchor distances
// at construction time, so the pulley starts in its current configuration.
func NewPulleyJoint(body1, body2 body.Body, groundAnchor1, groundAnchor2, anchor1, anchor2 mathx.Vector, ratio float64) (*PulleyJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	if ratio <= 0 {
		return nil, fmt.Errorf("%w: ratio %v must be > 0", ErrOutOfRange, ratio)
	}

	length1 := anchor1.Sub(groundAnchor1).Len()
	length2 := anchor2.Sub(groundAnchor2).Len()

	return &PulleyJoint{
		PairBase:      base,
		GroundAnchor1: groundAnchor1,
		GroundAnchor2: groundAnchor2,
		LocalAnchor1:  body1.LocalPoint(anchor1),
		LocalAnchor2:  body2.LocalPoint(anchor2),
		Ratio:         ratio,
		Constant:      length1 + ratio*length2,
		SlackEnabled:  true,
	}, nil
}

// SetRatio changes the gear ratio between the two rope segments. Rejects
// non-positive ratios.
func (p *PulleyJoint) SetRatio(ratio float64) error {
	if ratio <= 0 {
		return fmt.Errorf("%w: ratio %v must be > 0", ErrOutOfRange, ratio)
	}
	p.Ratio = ratio
	p.Body1.SetAtRest(false)
	p.Body2.SetAtRest(false)
	return nil
}

// SetSlackEnabled toggles whether the rope can go slack (impulse clamped
// to >= 0, pull-only) or behaves as a rigid two-segment link (impulse
// unclamped, can also push).
func (p *PulleyJoint) SetSlackEnabled(enabled bool) {
	p.SlackEnabled = enabled
	p.Body1.SetAtRest(false)
	p.Body2.SetAtRest(false)
}

// SetConstant overrides the target total length L1 + Ratio·L2 directly.
func (p *PulleyJoint) SetConstant(constant float64) error {
	if constant < 0 {
		return fmt.Errorf("%w: constant %v must be >= 0", ErrOutOfRange, constant)
	}
	p.Constant = constant
	p.Body1.SetAtRest(false)
	p.Body2.SetAtRest(false)
	return nil
}

func (p *PulleyJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()

	p.r1 = p.Body1.TransformedR(p.LocalAnchor1.Sub(m1.LocalCenter))
	p.r2 = p.Body2.TransformedR(p.LocalAnchor2.Sub(m2.LocalCenter))

	p1 := p.Body1.WorldCenter().Add(p.r1)
	p2 := p.Body2.WorldCenter().Add(p.r2)

	p.u1 = p1.Sub(p.GroundAnchor1)
	p.u2 = p2.Sub(p.GroundAnchor2)
	p.length1 = p.u1.Len()
	p.length2 = p.u2.Len()

	if p.length1 > 10*mathx.Epsilon {
		p.u1 = p.u1.Mul(1.0 / p.length1)
	} else {
		p.u1 = mathx.Vector{}
	}
	if p.length2 > 10*mathx.Epsilon {
		p.u2 = p.u2.Mul(1.0 / p.length2)
	} else {
		p.u2 = mathx.Vector{}
	}

	cr1u1 := mathx.Cross(p.r1, p.u1)
	cr2u2 := mathx.Cross(p.r2, p.u2)
	invMass := m1.InverseMass + m1.InverseInertia*cr1u1*cr1u1 +
		p.Ratio*p.Ratio*(m2.InverseMass+m2.InverseInertia*cr2u2*cr2u2)
	if invMass > mathx.Epsilon {
		p.mass = 1.0 / invMass
	} else {
		p.mass = 0
	}

	if set.WarmStartingEnabled {
		p.impulse *= step.DeltaTimeRatio
		P1 := p.u1.Mul(-p.impulse)
		P2 := p.u2.Mul(-p.Ratio * p.impulse)
		ApplyImpulse(p.Body1, m1.InverseMass, m1.InverseInertia, p.r1, P1)
		ApplyImpulse(p.Body2, m2.InverseMass, m2.InverseInertia, p.r2, P2)
	} else {
		p.impulse = 0
	}
}

func (p *PulleyJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()

	vp1 := RelativeVelocityAt(p.Body1, p.r1)
	vp2 := RelativeVelocityAt(p.Body2, p.r2)

	Cdot := -p.u1.Dot(vp1) - p.Ratio*p.u2.Dot(vp2)
	impulse := -p.mass * Cdot

	if p.SlackEnabled {
		newImpulse := maxFloat(0, p.impulse+impulse)
		impulse = newImpulse - p.impulse
		p.impulse = newImpulse
	} else {
		p.impulse += impulse
	}

	P1 := p.u1.Mul(-impulse)
	P2 := p.u2.Mul(-p.Ratio * impulse)
	ApplyImpulse(p.Body1, m1.InverseMass, m1.InverseInertia, p.r1, P1)
	ApplyImpulse(p.Body2, m2.InverseMass, m2.InverseInertia, p.r2, P2)
}

func (p *PulleyJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()

	r1 := p.Body1.TransformedR(p.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := p.Body2.TransformedR(p.LocalAnchor2.Sub(m2.LocalCenter))

	p1 := p.Body1.WorldCenter().Add(r1)
	p2 := p.Body2.WorldCenter().Add(r2)

	u1 := p1.Sub(p.GroundAnchor1)
	u2 := p2.Sub(p.GroundAnchor2)
	length1 := u1.Len()
	length2 := u2.Len()

	if length1 > 10*mathx.Epsilon {
		u1 = u1.Mul(1.0 / length1)
	} else {
		u1 = mathx.Vector{}
	}
	if length2 > 10*mathx.Epsilon {
		u2 = u2.Mul(1.0 / length2)
	} else {
		u2 = mathx.Vector{}
	}

	C := p.Constant - length1 - p.Ratio*length2
	if p.SlackEnabled && C > 0 {
		return true
	}

	cr1u1 := mathx.Cross(r1, u1)
	cr2u2 := mathx.Cross(r2, u2)
	invMass := m1.InverseMass + m1.InverseInertia*cr1u1*cr1u1 +
		p.Ratio*p.Ratio*(m2.InverseMass+m2.InverseInertia*cr2u2*cr2u2)
	var mass float64
	if invMass > mathx.Epsilon {
		mass = 1.0 / invMass
	}

	impulse := -mass * C

	P1 := u1.Mul(-impulse)
	P2 := u2.Mul(-p.Ratio * impulse)
	ApplyPositionCorrection(p.Body1, m1.InverseMass, m1.InverseInertia, r1, P1)
	ApplyPositionCorrection(p.Body2, m2.InverseMass, m2.InverseInertia, r2, P2)

	return math.Abs(C) < set.LinearTolerance
}

// Shift translates both pulley ground anchors by delta. Apart from
// PinJoint (which shifts its Target), every other joint kind's Shift is a
// no-op because their constrained points are body-local.
func (p *PulleyJoint) Shift(delta mathx.Vector) {
	p.GroundAnchor1 = p.GroundAnchor1.Add(delta)
	p.GroundAnchor2 = p.GroundAnchor2.Add(delta)
}

func (p *PulleyJoint) ReactionForce(invDt float64) mathx.Vector {
	return p.u2.Mul(p.impulse * invDt)
}

func (p *PulleyJoint) ReactionTorque(invDt float64) float64 { return 0 }

var _ Joint = (*PulleyJoint)(nil)
