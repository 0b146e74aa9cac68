package joint

import (
	"fmt"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// FrictionJoint drives the relative linear and angular velocity between
// two bodies toward zero, each clamped to a force/torque budget — no
// position correction, purely a velocity-level drag (top-down "surface
// friction" between two bodies, or a damped hinge).
type FrictionJoint struct {
	PairBase

	LocalAnchor1, LocalAnchor2 mathx.Vector
	MaxForce, MaxTorque        float64

	linearImpulse  mathx.Vector
	angularImpulse float64

	r1, r2      mathx.Vector
	linearMass  mathx.Mat22
	angularMass float64
}

// NewFrictionJoint constructs a FrictionJoint anchored at a shared
// world-space point.
func NewFrictionJoint(body1, body2 body.Body, anchor mathx.Vector) (*FrictionJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	return &FrictionJoint{
		PairBase:     base,
		LocalAnchor1: body1.LocalPoint(anchor),
		LocalAnchor2: body2.LocalPoint(anchor),
	}, nil
}

// SetMaxForce sets the linear force budget. Negative is rejected.
func (f *FrictionJoint) SetMaxForce(maxForce float64) error {
	if maxForce < 0 {
		return fmt.Errorf("%w: max force %v must be >= 0", ErrOutOfRange, maxForce)
	}
	f.MaxForce = maxForce
	f.Body1.SetAtRest(false)
	f.Body2.SetAtRest(false)
	return nil
}

// SetMaxTorque sets the angular torque budget. Negative is rejected.
func (f *FrictionJoint) SetMaxTorque(maxTorque float64) error {
	if maxTorque < 0 {
		return fmt.Errorf("%w: max torque %v must be >= 0", ErrOutOfRange, maxTorque)
	}
	f.MaxTorque = maxTorque
	f.Body1.SetAtRest(false)
	f.Body2.SetAtRest(false)
	return nil
}

func (f *FrictionJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := f.Body1.GetMass(), f.Body2.GetMass()

	f.r1 = f.Body1.TransformedR(f.LocalAnchor1.Sub(m1.LocalCenter))
	f.r2 = f.Body2.TransformedR(f.LocalAnchor2.Sub(m2.LocalCenter))

	k11 := m1.InverseMass + m2.InverseMass + m1.InverseInertia*f.r1[1]*f.r1[1] + m2.InverseInertia*f.r2[1]*f.r2[1]
	k12 := -m1.InverseInertia*f.r1[0]*f.r1[1] - m2.InverseInertia*f.r2[0]*f.r2[1]
	k22 := m1.InverseMass + m2.InverseMass + m1.InverseInertia*f.r1[0]*f.r1[0] + m2.InverseInertia*f.r2[0]*f.r2[0]
	f.linearMass = mathx.NewMat22(k11, k12, k12, k22)

	invInertiaSum := m1.InverseInertia + m2.InverseInertia
	if invInertiaSum > mathx.Epsilon {
		f.angularMass = 1.0 / invInertiaSum
	} else {
		f.angularMass = 0
	}

	if set.WarmStartingEnabled {
		f.linearImpulse = f.linearImpulse.Mul(step.DeltaTimeRatio)
		f.angularImpulse *= step.DeltaTimeRatio
		ApplyImpulse(f.Body1, m1.InverseMass, m1.InverseInertia, f.r1, f.linearImpulse.Mul(-1))
		ApplyImpulse(f.Body2, m2.InverseMass, m2.InverseInertia, f.r2, f.linearImpulse)
		ApplyAngularImpulse(f.Body1, m1.InverseInertia, -f.angularImpulse)
		ApplyAngularImpulse(f.Body2, m2.InverseInertia, f.angularImpulse)
	} else {
		f.linearImpulse = mathx.Vector{}
		f.angularImpulse = 0
	}
}

func (f *FrictionJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := f.Body1.GetMass(), f.Body2.GetMass()
	maxForceImpulse := f.MaxForce * step.DeltaTime
	maxTorqueImpulse := f.MaxTorque * step.DeltaTime

	angularCdot := f.Body2.AngularVelocity() - f.Body1.AngularVelocity()
	angularRaw := -f.angularMass * angularCdot
	oldAngular := f.angularImpulse
	newAngular := clampAbs(oldAngular+angularRaw, maxTorqueImpulse)
	angularRaw = newAngular - oldAngular
	f.angularImpulse = newAngular
	ApplyAngularImpulse(f.Body1, m1.InverseInertia, -angularRaw)
	ApplyAngularImpulse(f.Body2, m2.InverseInertia, angularRaw)

	vp1 := RelativeVelocityAt(f.Body1, f.r1)
	vp2 := RelativeVelocityAt(f.Body2, f.r2)
	linearCdot := vp2.Sub(vp1)
	linearRaw := f.linearMass.Solve(linearCdot.Mul(-1))
	newLinear := f.linearImpulse.Add(linearRaw)
	if maxForceImpulse > 0 && newLinear.Len() > maxForceImpulse {
		newLinear = newLinear.Mul(maxForceImpulse / newLinear.Len())
	} else if maxForceImpulse <= 0 {
		newLinear = mathx.Vector{}
	}
	applied := newLinear.Sub(f.linearImpulse)
	f.linearImpulse = newLinear

	ApplyImpulse(f.Body1, m1.InverseMass, m1.InverseInertia, f.r1, applied.Mul(-1))
	ApplyImpulse(f.Body2, m2.InverseMass, m2.InverseInertia, f.r2, applied)
}

// SolvePosition is a no-op: friction is velocity-only and never drifts a
// position error to correct.
func (f *FrictionJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	return true
}

func (f *FrictionJoint) Shift(delta mathx.Vector) {}

func (f *FrictionJoint) ReactionForce(invDt float64) mathx.Vector { return f.linearImpulse.Mul(invDt) }

func (f *FrictionJoint) ReactionTorque(invDt float64) float64 { return f.angularImpulse * invDt }

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

var _ Joint = (*FrictionJoint)(nil)
