package joint

import (
	"fmt"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// MotorJoint drives body2's center toward a target offset from body1's
// center (LinearOffset, in body1's local frame) and body2's rotation
// toward body1's rotation plus AngularOffset, each clamped to a
// force/torque budget. Unlike the rigid joints, the drive toward the
// target is velocity-bias-only (CorrectionFactor scales the positional
// error into the velocity solve each step); there is no separate position
// pass.
type MotorJoint struct {
	PairBase

	LinearOffset     mathx.Vector
	AngularOffset    float64
	MaxForce         float64
	MaxTorque        float64
	CorrectionFactor float64

	linearImpulse  mathx.Vector
	angularImpulse float64

	linearError  mathx.Vector
	angularError float64
	linearMass   mathx.Mat22
	angularMass  float64
}

// NewMotorJoint constructs a MotorJoint with its target offsets taken from
// the bodies' current relative pose; SetLinearOffset/SetAngularOffset move
// the target. MaxForce and MaxTorque start at zero, so the joint
// applies no impulse until they are set.
func NewMotorJoint(body1, body2 body.Body) (*MotorJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	return &MotorJoint{
		PairBase:         base,
		LinearOffset:     body1.LocalVector(body2.WorldCenter().Sub(body1.WorldCenter())),
		AngularOffset:    body2.RotationAngle() - body1.RotationAngle(),
		CorrectionFactor: 0.3,
	}, nil
}

// SetLinearOffset sets the body1-local target offset for body2's center.
func (mj *MotorJoint) SetLinearOffset(offset mathx.Vector) {
	mj.LinearOffset = offset
	mj.Body1.SetAtRest(false)
	mj.Body2.SetAtRest(false)
}

// SetAngularOffset sets the target relative rotation body2 - body1.
func (mj *MotorJoint) SetAngularOffset(offset float64) {
	mj.AngularOffset = offset
	mj.Body1.SetAtRest(false)
	mj.Body2.SetAtRest(false)
}

// SetMaxForce sets the linear force budget. Negative is rejected.
func (mj *MotorJoint) SetMaxForce(maxForce float64) error {
	if maxForce < 0 {
		return fmt.Errorf("%w: max force %v must be >= 0", ErrOutOfRange, maxForce)
	}
	mj.MaxForce = maxForce
	mj.Body1.SetAtRest(false)
	mj.Body2.SetAtRest(false)
	return nil
}

// SetMaxTorque sets the angular torque budget. Negative is rejected.
func (mj *MotorJoint) SetMaxTorque(maxTorque float64) error {
	if maxTorque < 0 {
		return fmt.Errorf("%w: max torque %v must be >= 0", ErrOutOfRange, maxTorque)
	}
	mj.MaxTorque = maxTorque
	mj.Body1.SetAtRest(false)
	mj.Body2.SetAtRest(false)
	return nil
}

// SetCorrectionFactor sets how much of the positional error is fed into
// the velocity bias each step, in [0, 1].
func (mj *MotorJoint) SetCorrectionFactor(factor float64) error {
	if factor < 0 || factor > 1 {
		return fmt.Errorf("%w: correction factor %v must be in [0,1]", ErrOutOfRange, factor)
	}
	mj.CorrectionFactor = factor
	return nil
}

func (mj *MotorJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := mj.Body1.GetMass(), mj.Body2.GetMass()

	invMassSum := m1.InverseMass + m2.InverseMass
	mj.linearMass = mathx.NewMat22(invMassSum, 0, 0, invMassSum)

	invInertiaSum := m1.InverseInertia + m2.InverseInertia
	if invInertiaSum > mathx.Epsilon {
		mj.angularMass = 1.0 / invInertiaSum
	} else {
		mj.angularMass = 0
	}

	worldOffset := mj.Body1.WorldVector(mj.LinearOffset)
	mj.linearError = mj.Body2.WorldCenter().Sub(mj.Body1.WorldCenter()).Sub(worldOffset)
	mj.angularError = mj.Body2.RotationAngle() - mj.Body1.RotationAngle() - mj.AngularOffset

	if set.WarmStartingEnabled {
		mj.linearImpulse = mj.linearImpulse.Mul(step.DeltaTimeRatio)
		mj.angularImpulse *= step.DeltaTimeRatio
		ApplyImpulse(mj.Body1, m1.InverseMass, m1.InverseInertia, mathx.Vector{}, mj.linearImpulse.Mul(-1))
		ApplyImpulse(mj.Body2, m2.InverseMass, m2.InverseInertia, mathx.Vector{}, mj.linearImpulse)
		ApplyAngularImpulse(mj.Body1, m1.InverseInertia, -mj.angularImpulse)
		ApplyAngularImpulse(mj.Body2, m2.InverseInertia, mj.angularImpulse)
	} else {
		mj.linearImpulse = mathx.Vector{}
		mj.angularImpulse = 0
	}
}

func (mj *MotorJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := mj.Body1.GetMass(), mj.Body2.GetMass()
	maxForceImpulse := mj.MaxForce * step.DeltaTime
	maxTorqueImpulse := mj.MaxTorque * step.DeltaTime

	angularCdot := mj.Body2.AngularVelocity() - mj.Body1.AngularVelocity() +
		mj.CorrectionFactor*step.InverseDeltaTime*mj.angularError
	angularRaw := -mj.angularMass * angularCdot
	oldAngular := mj.angularImpulse
	newAngular := clampAbs(oldAngular+angularRaw, maxTorqueImpulse)
	angularRaw = newAngular - oldAngular
	mj.angularImpulse = newAngular
	ApplyAngularImpulse(mj.Body1, m1.InverseInertia, -angularRaw)
	ApplyAngularImpulse(mj.Body2, m2.InverseInertia, angularRaw)

	bias := mj.linearError.Mul(mj.CorrectionFactor * step.InverseDeltaTime)
	linearCdot := mj.Body2.LinearVelocity().Sub(mj.Body1.LinearVelocity()).Add(bias)
	linearRaw := mj.linearMass.Solve(linearCdot.Mul(-1))
	newLinear := mj.linearImpulse.Add(linearRaw)
	if newLinear.Len() > maxForceImpulse {
		if maxForceImpulse > 0 {
			newLinear = newLinear.Mul(maxForceImpulse / newLinear.Len())
		} else {
			newLinear = mathx.Vector{}
		}
	}
	applied := newLinear.Sub(mj.linearImpulse)
	mj.linearImpulse = newLinear

	ApplyImpulse(mj.Body1, m1.InverseMass, m1.InverseInertia, mathx.Vector{}, applied.Mul(-1))
	ApplyImpulse(mj.Body2, m2.InverseMass, m2.InverseInertia, mathx.Vector{}, applied)
}

// SolvePosition is a no-op: the motor's pull toward its target is
// expressed entirely as a velocity bias in SolveVelocity.
func (mj *MotorJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	return true
}

func (mj *MotorJoint) Shift(delta mathx.Vector) {}

func (mj *MotorJoint) ReactionForce(invDt float64) mathx.Vector { return mj.linearImpulse.Mul(invDt) }

func (mj *MotorJoint) ReactionTorque(invDt float64) float64 { return mj.angularImpulse * invDt }

var _ Joint = (*MotorJoint)(nil)
