package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// PrismaticJoint constrains two bodies to slide along a shared axis with no
// relative rotation: one translational degree of freedom along the axis
// remains, optionally driven by a motor, bounded by limits, or pulled
// toward a rest translation by a spring (spec §4.D "PrismaticJoint"). The
// axis is stored in body1's local frame, so it tracks body1's rotation.
type PrismaticJoint struct {
	PairBase

	LocalAnchor1, LocalAnchor2 mathx.Vector
	LocalAxis                  mathx.Vector // body1-local, unit length
	ReferenceAngle             float64
	RestTranslation            float64

	Spring Spring

	MotorEnabled  bool
	MotorSpeed    float64
	MaxMotorForce float64

	LowerLimitEnabled, UpperLimitEnabled bool
	LowerLimit, UpperLimit               float64

	// Warm-started accumulated impulses.
	impulse       mathx.Vector // (perpendicular, angle)
	springImpulse float64
	motorImpulse  float64
	lowerImpulse  float64
	upperImpulse  float64

	// Per-step scratch recomputed in Initialize.
	axis, perp mathx.Vector
	s1, s2     float64
	a1, a2     float64
	k          mathx.Mat22
	axialMass  float64
}

// NewPrismaticJoint constructs a PrismaticJoint sliding along worldAxis
// (normalized internally), anchored at the bodies' current relative
// position, with ReferenceAngle and RestTranslation captured from the
// current configuration.
func NewPrismaticJoint(body1, body2 body.Body, anchor, worldAxis mathx.Vector) (*PrismaticJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	axisLen := worldAxis.Len()
	if axisLen <= mathx.Epsilon {
		return nil, fmt.Errorf("%w: axis must be nonzero", ErrOutOfRange)
	}
	localAxis := body1.LocalVector(worldAxis.Mul(1.0 / axisLen))

	p := &PrismaticJoint{
		PairBase:       base,
		LocalAnchor1:   body1.LocalPoint(anchor),
		LocalAnchor2:   body2.LocalPoint(anchor),
		LocalAxis:      localAxis,
		ReferenceAngle: body2.RotationAngle() - body1.RotationAngle(),
	}
	p.RestTranslation = p.translation()
	return p, nil
}

func (p *PrismaticJoint) wake() {
	p.Body1.SetAtRest(false)
	p.Body2.SetAtRest(false)
}

// SetSpringEnabled toggles the soft axial pull toward RestTranslation.
func (p *PrismaticJoint) SetSpringEnabled(enabled bool) {
	if p.Spring.Enabled == enabled {
		return
	}
	p.Spring.Enabled = enabled
	p.wake()
}

// SetFrequency sets the spring's natural frequency in Hz.
func (p *PrismaticJoint) SetFrequency(hz float64) error {
	if err := p.Spring.SetFrequency(hz); err != nil {
		return err
	}
	p.wake()
	return nil
}

// SetDampingRatio sets the spring's damping ratio.
func (p *PrismaticJoint) SetDampingRatio(zeta float64) error {
	if err := p.Spring.SetDampingRatio(zeta); err != nil {
		return err
	}
	p.wake()
	return nil
}

// SetRestTranslation sets the translation the spring pulls toward.
func (p *PrismaticJoint) SetRestTranslation(t float64) {
	p.RestTranslation = t
	p.wake()
}

// SetMotorEnabled toggles the axial motor.
func (p *PrismaticJoint) SetMotorEnabled(enabled bool) {
	if p.MotorEnabled == enabled {
		return
	}
	p.MotorEnabled = enabled
	p.wake()
}

// SetMotorSpeed sets the target axial velocity, units/s.
func (p *PrismaticJoint) SetMotorSpeed(speed float64) {
	p.MotorSpeed = speed
	p.wake()
}

// SetMaxMotorForce sets the motor's force budget; negative is rejected.
func (p *PrismaticJoint) SetMaxMotorForce(force float64) error {
	if force < 0 {
		return fmt.Errorf("%w: max motor force %v must be >= 0", ErrOutOfRange, force)
	}
	p.MaxMotorForce = force
	p.wake()
	return nil
}

// SetLimits sets the lower/upper axial translation limits.
func (p *PrismaticJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrOutOfRange, lower, upper)
	}
	p.LowerLimit, p.UpperLimit = lower, upper
	p.wake()
	return nil
}

// SetLowerLimitEnabled toggles the lower translation limit.
func (p *PrismaticJoint) SetLowerLimitEnabled(enabled bool) {
	if p.LowerLimitEnabled == enabled {
		return
	}
	p.LowerLimitEnabled = enabled
	p.wake()
}

// SetUpperLimitEnabled toggles the upper translation limit.
func (p *PrismaticJoint) SetUpperLimitEnabled(enabled bool) {
	if p.UpperLimitEnabled == enabled {
		return
	}
	p.UpperLimitEnabled = enabled
	p.wake()
}

func (p *PrismaticJoint) translation() float64 {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()
	r1 := p.Body1.TransformedR(p.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := p.Body2.TransformedR(p.LocalAnchor2.Sub(m2.LocalCenter))
	d := p.Body2.WorldCenter().Add(r2).Sub(p.Body1.WorldCenter().Add(r1))
	axis := p.Body1.WorldVector(p.LocalAxis)
	return axis.Dot(d)
}

func (p *PrismaticJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()

	r1 := p.Body1.TransformedR(p.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := p.Body2.TransformedR(p.LocalAnchor2.Sub(m2.LocalCenter))
	d := p.Body2.WorldCenter().Add(r2).Sub(p.Body1.WorldCenter().Add(r1))

	p.axis = p.Body1.WorldVector(p.LocalAxis)
	p.perp = mathx.LeftHandOrthogonal(p.axis)

	p.s1 = mathx.Cross(d.Add(r1), p.perp)
	p.s2 = mathx.Cross(r2, p.perp)
	p.a1 = mathx.Cross(d.Add(r1), p.axis)
	p.a2 = mathx.Cross(r2, p.axis)

	k11 := m1.InverseMass + m2.InverseMass + m1.InverseInertia*p.s1*p.s1 + m2.InverseInertia*p.s2*p.s2
	k12 := m1.InverseInertia*p.s1 + m2.InverseInertia*p.s2
	k22 := m1.InverseInertia + m2.InverseInertia
	if k22 <= mathx.Epsilon {
		k22 = 1
	}
	p.k = mathx.NewMat22(k11, k12, k12, k22)

	invMassAxial := m1.InverseMass + m2.InverseMass + m1.InverseInertia*p.a1*p.a1 + m2.InverseInertia*p.a2*p.a2
	if invMassAxial > mathx.Epsilon {
		p.axialMass = 1.0 / invMassAxial
	} else {
		p.axialMass = 0
	}

	reducedMass := ReducedMass(m1.InverseMass, m2.InverseMass)
	p.Spring.Derive(reducedMass, step.DeltaTime)

	if !p.MotorEnabled {
		p.motorImpulse = 0
	}
	if !p.LowerLimitEnabled {
		p.lowerImpulse = 0
	}
	if !p.UpperLimitEnabled {
		p.upperImpulse = 0
	}
	if !p.Spring.Enabled {
		p.springImpulse = 0
	}

	if set.WarmStartingEnabled {
		p.impulse = p.impulse.Mul(step.DeltaTimeRatio)
		p.springImpulse *= step.DeltaTimeRatio
		p.motorImpulse *= step.DeltaTimeRatio
		p.lowerImpulse *= step.DeltaTimeRatio
		p.upperImpulse *= step.DeltaTimeRatio

		axialImpulse := p.springImpulse + p.motorImpulse + p.lowerImpulse - p.upperImpulse
		P := p.perp.Mul(p.impulse[0]).Add(p.axis.Mul(axialImpulse))
		L1 := p.impulse[0]*p.s1 + p.impulse[1] + axialImpulse*p.a1
		L2 := p.impulse[0]*p.s2 + p.impulse[1] + axialImpulse*p.a2
		ApplyImpulse(p.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
		ApplyAngularImpulse(p.Body1, m1.InverseInertia, -L1)
		ApplyImpulse(p.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
		ApplyAngularImpulse(p.Body2, m2.InverseInertia, L2)
	} else {
		p.impulse = mathx.Vector{}
		p.springImpulse, p.motorImpulse, p.lowerImpulse, p.upperImpulse = 0, 0, 0, 0
	}
}

func (p *PrismaticJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()

	if p.Spring.Enabled {
		translation := p.translation()
		axialCdot := p.a2*p.Body2.AngularVelocity() - p.a1*p.Body1.AngularVelocity() +
			p.axis.Dot(p.Body2.LinearVelocity().Sub(p.Body1.LinearVelocity()))
		C := translation - p.RestTranslation
		bias := C * p.Spring.ERP
		var softMass float64
		invK := 1.0 / maxFloat(p.axialMass, mathx.Epsilon)
		if invK+p.Spring.Gamma > mathx.Epsilon {
			softMass = 1.0 / (invK + p.Spring.Gamma)
		}
		lambda := -softMass * (axialCdot + bias + p.Spring.Gamma*p.springImpulse)
		p.springImpulse += lambda
		p.applyAxial(lambda)
	}

	if p.MotorEnabled {
		Cdot := p.axialCdot()
		lambda := -p.axialMass * (Cdot - p.MotorSpeed)
		old := p.motorImpulse
		maxImpulse := p.MaxMotorForce * step.DeltaTime
		p.motorImpulse = mathx.Clamp(old+lambda, -maxImpulse, maxImpulse)
		lambda = p.motorImpulse - old
		p.applyAxial(lambda)
	}

	if p.LowerLimitEnabled {
		translation := p.translation()
		C := translation - p.LowerLimit
		Cdot := p.axialCdot()
		bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
		lambda := -p.axialMass * (Cdot + bias)
		newImpulse := math.Max(p.lowerImpulse+lambda, 0)
		lambda = newImpulse - p.lowerImpulse
		p.lowerImpulse = newImpulse
		p.applyAxial(lambda)
	}

	if p.UpperLimitEnabled {
		translation := p.translation()
		C := p.UpperLimit - translation
		Cdot := -p.axialCdot()
		bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
		lambda := -p.axialMass * (Cdot + bias)
		newImpulse := math.Max(p.upperImpulse+lambda, 0)
		lambda = newImpulse - p.upperImpulse
		p.upperImpulse = newImpulse
		p.applyAxial(-lambda)
	}

	// Perpendicular translation + relative angle: always rigid.
	Cdot := mathx.Vector{
		p.perp.Dot(p.Body2.LinearVelocity().Sub(p.Body1.LinearVelocity())) + p.s2*p.Body2.AngularVelocity() - p.s1*p.Body1.AngularVelocity(),
		p.Body2.AngularVelocity() - p.Body1.AngularVelocity(),
	}
	impulse := p.k.Solve(Cdot.Mul(-1))
	p.impulse = p.impulse.Add(impulse)

	P := p.perp.Mul(impulse[0])
	L1 := impulse[0]*p.s1 + impulse[1]
	L2 := impulse[0]*p.s2 + impulse[1]
	ApplyImpulse(p.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(p.Body1, m1.InverseInertia, -L1)
	ApplyImpulse(p.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(p.Body2, m2.InverseInertia, L2)
}

func (p *PrismaticJoint) axialCdot() float64 {
	return p.axis.Dot(p.Body2.LinearVelocity().Sub(p.Body1.LinearVelocity())) +
		p.a2*p.Body2.AngularVelocity() - p.a1*p.Body1.AngularVelocity()
}

func (p *PrismaticJoint) applyAxial(lambda float64) {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()
	P := p.axis.Mul(lambda)
	L1 := lambda * p.a1
	L2 := lambda * p.a2
	ApplyImpulse(p.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(p.Body1, m1.InverseInertia, -L1)
	ApplyImpulse(p.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(p.Body2, m2.InverseInertia, L2)
}

func (p *PrismaticJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := p.Body1.GetMass(), p.Body2.GetMass()

	r1 := p.Body1.TransformedR(p.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := p.Body2.TransformedR(p.LocalAnchor2.Sub(m2.LocalCenter))
	d := p.Body2.WorldCenter().Add(r2).Sub(p.Body1.WorldCenter().Add(r1))

	axis := p.Body1.WorldVector(p.LocalAxis)
	perp := mathx.LeftHandOrthogonal(axis)

	a1 := mathx.Cross(d.Add(r1), axis)
	a2 := mathx.Cross(r2, axis)
	s1 := mathx.Cross(d.Add(r1), perp)
	s2 := mathx.Cross(r2, perp)
	angleError := p.Body2.RotationAngle() - p.Body1.RotationAngle() - p.ReferenceAngle
	perpError := perp.Dot(d)
	linearError := math.Abs(perpError)

	invMassSum := m1.InverseMass + m2.InverseMass
	k11 := invMassSum + m1.InverseInertia*s1*s1 + m2.InverseInertia*s2*s2
	k12 := m1.InverseInertia*s1 + m2.InverseInertia*s2
	k22 := m1.InverseInertia + m2.InverseInertia
	if k22 <= mathx.Epsilon {
		k22 = 1
	}

	// If a translation limit is violated, add a third row for the axial
	// error and solve the coupled 3x3 (spec §4.D "if any limit is
	// violated add a third row C2 and solve the 3x3; otherwise solve the
	// 2x2"); an equal-limits span collapses to an equality constraint.
	limitViolated := false
	var axialC float64
	if p.LowerLimitEnabled || p.UpperLimitEnabled {
		translation := axis.Dot(d)
		switch {
		case p.LowerLimitEnabled && p.UpperLimitEnabled && p.UpperLimit-p.LowerLimit < 2*set.LinearTolerance:
			axialC = translation - p.LowerLimit
			limitViolated = true
		case p.LowerLimitEnabled && translation <= p.LowerLimit:
			axialC = math.Min(translation-p.LowerLimit, 0)
			limitViolated = true
		case p.UpperLimitEnabled && translation >= p.UpperLimit:
			axialC = math.Max(translation-p.UpperLimit, 0)
			limitViolated = true
		}
		if limitViolated {
			linearError = math.Max(linearError, math.Abs(axialC))
		}
	}

	var impulsePerp, impulseAngle, impulseAxial float64
	if limitViolated {
		correction := mathx.Clamp(axialC, -set.MaximumLinearCorrection, set.MaximumLinearCorrection)
		k13 := m1.InverseInertia*s1*a1 + m2.InverseInertia*s2*a2
		k23 := m1.InverseInertia*a1 + m2.InverseInertia*a2
		k33 := invMassSum + m1.InverseInertia*a1*a1 + m2.InverseInertia*a2*a2
		k := mathx.NewMat33FromRows(
			k11, k12, k13,
			k12, k22, k23,
			k13, k23, k33,
		)
		impulse := k.Solve33(mathx.Vector3{X: -perpError, Y: -angleError, Z: -correction})
		impulsePerp, impulseAngle, impulseAxial = impulse.X, impulse.Y, impulse.Z
	} else {
		k := mathx.NewMat22(k11, k12, k12, k22)
		impulse := k.Solve(mathx.Vector{-perpError, -angleError})
		impulsePerp, impulseAngle = impulse[0], impulse[1]
	}

	P := perp.Mul(impulsePerp).Add(axis.Mul(impulseAxial))
	L1 := impulsePerp*s1 + impulseAngle + impulseAxial*a1
	L2 := impulsePerp*s2 + impulseAngle + impulseAxial*a2
	ApplyPositionCorrection(p.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularPositionCorrection(p.Body1, m1.InverseInertia, -L1)
	ApplyPositionCorrection(p.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularPositionCorrection(p.Body2, m2.InverseInertia, L2)

	return linearError <= set.LinearTolerance && math.Abs(angleError) <= set.AngularTolerance
}

func (p *PrismaticJoint) Shift(delta mathx.Vector) {}

func (p *PrismaticJoint) ReactionForce(invDt float64) mathx.Vector {
	axialImpulse := p.springImpulse + p.motorImpulse + p.lowerImpulse - p.upperImpulse
	return p.perp.Mul(p.impulse[0]).Add(p.axis.Mul(axialImpulse)).Mul(invDt)
}

func (p *PrismaticJoint) ReactionTorque(invDt float64) float64 { return p.impulse[1] * invDt }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

var _ Joint = (*PrismaticJoint)(nil)
