package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// DistanceJoint maintains a fixed or soft distance between two anchor
// points on two bodies, with optional independently-enabled lower/upper
// distance limits (spec §4.D "DistanceJoint").
type DistanceJoint struct {
	PairBase

	LocalAnchor1, LocalAnchor2 mathx.Vector
	RestLength                 float64

	Spring Spring

	LowerLimitEnabled, UpperLimitEnabled bool
	LowerLimit, UpperLimit               float64

	// isRope is set by NewRopeJoint; it forbids enabling the spring.
	isRope bool

	// Warm-started accumulated impulses.
	impulse      float64 // bilateral (soft or hard)
	lowerImpulse float64
	upperImpulse float64

	// Per-step scratch recomputed in Initialize.
	u             mathx.Vector
	r1, r2        mathx.Vector
	length        float64
	invMass       float64 // invK
	mass          float64 // hard mass = 1/invK
	softMass      float64 // 1/(invK+gamma)
}

// NewDistanceJoint constructs a DistanceJoint pinning worldAnchor1 on
// body1 to worldAnchor2 on body2, with RestLength set to their initial
// separation.
func NewDistanceJoint(body1, body2 body.Body, worldAnchor1, worldAnchor2 mathx.Vector) (*DistanceJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	d := &DistanceJoint{
		PairBase:     base,
		LocalAnchor1: body1.LocalPoint(worldAnchor1),
		LocalAnchor2: body2.LocalPoint(worldAnchor2),
		RestLength:   worldAnchor1.Sub(worldAnchor2).Len(),
	}
	return d, nil
}

// NewRopeJoint constructs the limits-only variant (spec §4.D "RopeJoint"):
// identical to DistanceJoint except a spring can never be enabled and at
// least one limit must be enabled.
func NewRopeJoint(body1, body2 body.Body, worldAnchor1, worldAnchor2 mathx.Vector, lower, upper float64, lowerEnabled, upperEnabled bool) (*DistanceJoint, error) {
	if !lowerEnabled && !upperEnabled {
		return nil, fmt.Errorf("%w: rope joint requires at least one limit enabled", ErrInvalidState)
	}
	d, err := NewDistanceJoint(body1, body2, worldAnchor1, worldAnchor2)
	if err != nil {
		return nil, err
	}
	d.isRope = true
	if err := d.SetLimits(lower, upper); err != nil {
		return nil, err
	}
	d.LowerLimitEnabled = lowerEnabled
	d.UpperLimitEnabled = upperEnabled
	return d, nil
}

// SetSpringEnabled toggles the soft-distance feature. Wakes both bodies if
// the value changes. Returns ErrInvalidState for a rope joint.
func (d *DistanceJoint) SetSpringEnabled(enabled bool) error {
	if d.isRope && enabled {
		return fmt.Errorf("%w: rope joints cannot have a spring", ErrInvalidState)
	}
	if d.Spring.Enabled == enabled {
		return nil
	}
	d.Spring.Enabled = enabled
	d.wake()
	return nil
}

// SetFrequency sets the spring's natural frequency in Hz.
func (d *DistanceJoint) SetFrequency(hz float64) error {
	if err := d.Spring.SetFrequency(hz); err != nil {
		return err
	}
	d.wake()
	return nil
}

// SetDampingRatio sets the spring's damping ratio.
func (d *DistanceJoint) SetDampingRatio(zeta float64) error {
	if err := d.Spring.SetDampingRatio(zeta); err != nil {
		return err
	}
	d.wake()
	return nil
}

// SetLimits sets the lower/upper distance limits; lower must not exceed
// upper.
func (d *DistanceJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrOutOfRange, lower, upper)
	}
	if lower == d.LowerLimit && upper == d.UpperLimit {
		return nil
	}
	d.LowerLimit, d.UpperLimit = lower, upper
	d.wake()
	return nil
}

// SetLowerLimitEnabled toggles the lower distance limit.
func (d *DistanceJoint) SetLowerLimitEnabled(enabled bool) {
	if d.LowerLimitEnabled == enabled {
		return
	}
	d.LowerLimitEnabled = enabled
	d.wake()
}

// SetUpperLimitEnabled toggles the upper distance limit.
func (d *DistanceJoint) SetUpperLimitEnabled(enabled bool) {
	if d.UpperLimitEnabled == enabled {
		return
	}
	d.UpperLimitEnabled = enabled
	d.wake()
}

func (d *DistanceJoint) wake() {
	d.Body1.SetAtRest(false)
	d.Body2.SetAtRest(false)
}

func (d *DistanceJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := d.Body1.GetMass(), d.Body2.GetMass()

	d.r1 = d.Body1.TransformedR(d.LocalAnchor1.Sub(m1.LocalCenter))
	d.r2 = d.Body2.TransformedR(d.LocalAnchor2.Sub(m2.LocalCenter))

	p1 := d.Body1.WorldCenter().Add(d.r1)
	p2 := d.Body2.WorldCenter().Add(d.r2)
	n := p1.Sub(p2)
	d.length = n.Len()
	if d.length < set.LinearTolerance {
		d.u = mathx.Vector{}
	} else {
		d.u = n.Mul(1.0 / d.length)
	}

	crA := mathx.Cross(d.r1, d.u)
	crB := mathx.Cross(d.r2, d.u)
	invK := m1.InverseMass + m2.InverseMass + m1.InverseInertia*crA*crA + m2.InverseInertia*crB*crB
	d.invMass = invK
	if invK > mathx.Epsilon {
		d.mass = 1.0 / invK
	} else {
		d.mass = 0
	}

	reducedMass := ReducedMass(m1.InverseMass, m2.InverseMass)
	d.Spring.Derive(reducedMass, step.DeltaTime)
	if invK+d.Spring.Gamma > mathx.Epsilon {
		d.softMass = 1.0 / (invK + d.Spring.Gamma)
	} else {
		d.softMass = 0
	}

	if set.WarmStartingEnabled {
		d.impulse *= step.DeltaTimeRatio
		d.lowerImpulse *= step.DeltaTimeRatio
		d.upperImpulse *= step.DeltaTimeRatio

		P := d.u.Mul(d.impulse + d.lowerImpulse - d.upperImpulse)
		ApplyImpulse(d.Body1, m1.InverseMass, m1.InverseInertia, d.r1, P)
		ApplyImpulse(d.Body2, -m2.InverseMass, -m2.InverseInertia, d.r2, P)
	} else {
		d.impulse, d.lowerImpulse, d.upperImpulse = 0, 0, 0
	}
}

func (d *DistanceJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	if d.length < set.LinearTolerance {
		return
	}
	m1, m2 := d.Body1.GetMass(), d.Body2.GetMass()

	cdot := func() float64 {
		v1 := RelativeVelocityAt(d.Body1, d.r1)
		v2 := RelativeVelocityAt(d.Body2, d.r2)
		return d.u.Dot(v1.Sub(v2))
	}

	hasLimits := d.LowerLimitEnabled || d.UpperLimitEnabled

	if !d.Spring.IsHard() {
		C := d.length - d.RestLength
		bias := C * d.Spring.ERP
		Cdot := cdot()
		lambda := -d.softMass * (Cdot + bias + d.Spring.Gamma*d.impulse)
		d.impulse += lambda
		P := d.u.Mul(lambda)
		ApplyImpulse(d.Body1, m1.InverseMass, m1.InverseInertia, d.r1, P)
		ApplyImpulse(d.Body2, -m2.InverseMass, -m2.InverseInertia, d.r2, P)
	}

	if d.LowerLimitEnabled {
		Cdot := cdot()
		lambda := -d.mass * Cdot
		newImpulse := math.Max(d.lowerImpulse+lambda, 0)
		lambda = newImpulse - d.lowerImpulse
		d.lowerImpulse = newImpulse
		P := d.u.Mul(lambda)
		ApplyImpulse(d.Body1, m1.InverseMass, m1.InverseInertia, d.r1, P)
		ApplyImpulse(d.Body2, -m2.InverseMass, -m2.InverseInertia, d.r2, P)
	}

	if d.UpperLimitEnabled {
		Cdot := -cdot()
		lambda := -d.mass * Cdot
		newImpulse := math.Max(d.upperImpulse+lambda, 0)
		lambda = newImpulse - d.upperImpulse
		d.upperImpulse = newImpulse
		P := d.u.Mul(-lambda)
		ApplyImpulse(d.Body1, m1.InverseMass, m1.InverseInertia, d.r1, P)
		ApplyImpulse(d.Body2, -m2.InverseMass, -m2.InverseInertia, d.r2, P)
	}

	if d.Spring.IsHard() && !hasLimits {
		Cdot := cdot()
		lambda := -d.mass * Cdot
		d.impulse += lambda
		P := d.u.Mul(lambda)
		ApplyImpulse(d.Body1, m1.InverseMass, m1.InverseInertia, d.r1, P)
		ApplyImpulse(d.Body2, -m2.InverseMass, -m2.InverseInertia, d.r2, P)
	}
}

func (d *DistanceJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	if !d.Spring.IsHard() {
		return true
	}
	m1, m2 := d.Body1.GetMass(), d.Body2.GetMass()

	r1 := d.Body1.TransformedR(d.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := d.Body2.TransformedR(d.LocalAnchor2.Sub(m2.LocalCenter))
	p1 := d.Body1.WorldCenter().Add(r1)
	p2 := d.Body2.WorldCenter().Add(r2)
	n := p1.Sub(p2)
	length := n.Len()
	var u mathx.Vector
	if length > mathx.Epsilon {
		u = n.Mul(1.0 / length)
	}

	var C float64
	switch {
	case d.LowerLimitEnabled && length < d.LowerLimit:
		C = length - d.LowerLimit
	case d.UpperLimitEnabled && length > d.UpperLimit:
		C = length - d.UpperLimit
	case !d.LowerLimitEnabled && !d.UpperLimitEnabled:
		C = length - d.RestLength
	default:
		return true
	}

	correction := mathx.Clamp(C, -set.MaximumLinearCorrection, set.MaximumLinearCorrection)

	crA := mathx.Cross(r1, u)
	crB := mathx.Cross(r2, u)
	invK := m1.InverseMass + m2.InverseMass + m1.InverseInertia*crA*crA + m2.InverseInertia*crB*crB
	var lambda float64
	if invK > mathx.Epsilon {
		lambda = -correction / invK
	}
	P := u.Mul(lambda)
	ApplyPositionCorrection(d.Body1, m1.InverseMass, m1.InverseInertia, r1, P)
	ApplyPositionCorrection(d.Body2, -m2.InverseMass, -m2.InverseInertia, r2, P)

	return math.Abs(C) <= set.LinearTolerance
}

func (d *DistanceJoint) Shift(delta mathx.Vector) {}

func (d *DistanceJoint) ReactionForce(invDt float64) mathx.Vector {
	return d.u.Mul((d.impulse + d.lowerImpulse - d.upperImpulse) * invDt)
}

func (d *DistanceJoint) ReactionTorque(invDt float64) float64 { return 0 }

var _ Joint = (*DistanceJoint)(nil)
