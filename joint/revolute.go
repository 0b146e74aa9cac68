package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// RevoluteJoint pins a point on body1 to a point on body2 (a "pin" in the
// rigid-body sense: full point-to-point constraint, one rotational degree
// of freedom remaining) with an optional motor and an optional angle limit
// (spec §4.D "RevoluteJoint").
type RevoluteJoint struct {
	PairBase

	LocalAnchor1, LocalAnchor2 mathx.Vector
	ReferenceAngle             float64

	MotorEnabled   bool
	MotorSpeed     float64
	MaxMotorTorque float64

	LowerLimitEnabled, UpperLimitEnabled bool
	LowerLimit, UpperLimit               float64

	linearImpulse mathx.Vector
	motorImpulse  float64
	lowerImpulse  float64
	upperImpulse  float64

	r1, r2    mathx.Vector
	k         mathx.Mat22
	axialMass float64
}

// NewRevoluteJoint constructs a RevoluteJoint pinning body1 to body2 at
// world-space anchor (both bodies' local anchor maps to the same world
// point at construction time), with ReferenceAngle set to the bodies'
// current relative angle.
func NewRevoluteJoint(body1, body2 body.Body, anchor mathx.Vector) (*RevoluteJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	return &RevoluteJoint{
		PairBase:       base,
		LocalAnchor1:   body1.LocalPoint(anchor),
		LocalAnchor2:   body2.LocalPoint(anchor),
		ReferenceAngle: body2.RotationAngle() - body1.RotationAngle(),
	}, nil
}

// SetMotorEnabled toggles the motor.
func (r *RevoluteJoint) SetMotorEnabled(enabled bool) {
	if r.MotorEnabled == enabled {
		return
	}
	r.MotorEnabled = enabled
	r.wake()
}

// SetMotorSpeed sets the target relative angular velocity, rad/s.
func (r *RevoluteJoint) SetMotorSpeed(speed float64) {
	r.MotorSpeed = speed
	r.wake()
}

// SetMaxMotorTorque sets the motor's torque budget; negative is rejected.
func (r *RevoluteJoint) SetMaxMotorTorque(torque float64) error {
	if torque < 0 {
		return fmt.Errorf("%w: max motor torque %v must be >= 0", ErrOutOfRange, torque)
	}
	r.MaxMotorTorque = torque
	r.wake()
	return nil
}

// SetLimits sets the lower/upper relative-angle limits.
func (r *RevoluteJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrOutOfRange, lower, upper)
	}
	r.LowerLimit, r.UpperLimit = lower, upper
	r.wake()
	return nil
}

// SetLowerLimitEnabled toggles the lower angle limit.
func (r *RevoluteJoint) SetLowerLimitEnabled(enabled bool) {
	if r.LowerLimitEnabled == enabled {
		return
	}
	r.LowerLimitEnabled = enabled
	r.wake()
}

// SetUpperLimitEnabled toggles the upper angle limit.
func (r *RevoluteJoint) SetUpperLimitEnabled(enabled bool) {
	if r.UpperLimitEnabled == enabled {
		return
	}
	r.UpperLimitEnabled = enabled
	r.wake()
}

func (r *RevoluteJoint) wake() {
	r.Body1.SetAtRest(false)
	r.Body2.SetAtRest(false)
}

func (r *RevoluteJoint) relativeAngle() float64 {
	return mathx.WrapAngle(r.Body2.RotationAngle() - r.Body1.RotationAngle() - r.ReferenceAngle)
}

func (r *RevoluteJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := r.Body1.GetMass(), r.Body2.GetMass()

	r.r1 = r.Body1.TransformedR(r.LocalAnchor1.Sub(m1.LocalCenter))
	r.r2 = r.Body2.TransformedR(r.LocalAnchor2.Sub(m2.LocalCenter))

	invMassSum := m1.InverseMass + m2.InverseMass
	r.k = mathx.NewMat22(
		invMassSum+m1.InverseInertia*r.r1[1]*r.r1[1]+m2.InverseInertia*r.r2[1]*r.r2[1],
		-m1.InverseInertia*r.r1[0]*r.r1[1]-m2.InverseInertia*r.r2[0]*r.r2[1],
		-m1.InverseInertia*r.r1[0]*r.r1[1]-m2.InverseInertia*r.r2[0]*r.r2[1],
		invMassSum+m1.InverseInertia*r.r1[0]*r.r1[0]+m2.InverseInertia*r.r2[0]*r.r2[0],
	)

	invK := m1.InverseInertia + m2.InverseInertia
	if invK > mathx.Epsilon {
		r.axialMass = 1.0 / invK
	} else {
		r.axialMass = 0
	}

	if !r.MotorEnabled {
		r.motorImpulse = 0
	}
	if !r.LowerLimitEnabled {
		r.lowerImpulse = 0
	}
	if !r.UpperLimitEnabled {
		r.upperImpulse = 0
	}

	if set.WarmStartingEnabled {
		r.linearImpulse = r.linearImpulse.Mul(step.DeltaTimeRatio)
		r.motorImpulse *= step.DeltaTimeRatio
		r.lowerImpulse *= step.DeltaTimeRatio
		r.upperImpulse *= step.DeltaTimeRatio

		angularImpulse := r.motorImpulse + r.lowerImpulse - r.upperImpulse
		ApplyImpulse(r.Body1, -m1.InverseMass, -m1.InverseInertia, r.r1, r.linearImpulse)
		ApplyAngularImpulse(r.Body1, m1.InverseInertia, -angularImpulse)
		ApplyImpulse(r.Body2, m2.InverseMass, m2.InverseInertia, r.r2, r.linearImpulse)
		ApplyAngularImpulse(r.Body2, m2.InverseInertia, angularImpulse)
	} else {
		r.linearImpulse = mathx.Vector{}
		r.motorImpulse, r.lowerImpulse, r.upperImpulse = 0, 0, 0
	}
}

func (r *RevoluteJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := r.Body1.GetMass(), r.Body2.GetMass()

	if r.MotorEnabled {
		Cdot := r.Body2.AngularVelocity() - r.Body1.AngularVelocity() - r.MotorSpeed
		impulse := -r.axialMass * Cdot
		old := r.motorImpulse
		maxImpulse := r.MaxMotorTorque * step.DeltaTime
		r.motorImpulse = mathx.Clamp(old+impulse, -maxImpulse, maxImpulse)
		impulse = r.motorImpulse - old
		ApplyAngularImpulse(r.Body1, m1.InverseInertia, -impulse)
		ApplyAngularImpulse(r.Body2, m2.InverseInertia, impulse)
	}

	if r.LowerLimitEnabled {
		angle := r.relativeAngle()
		C := angle - r.LowerLimit
		Cdot := r.Body2.AngularVelocity() - r.Body1.AngularVelocity()
		bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
		impulse := -r.axialMass * (Cdot + bias)
		newImpulse := math.Max(r.lowerImpulse+impulse, 0)
		impulse = newImpulse - r.lowerImpulse
		r.lowerImpulse = newImpulse
		ApplyAngularImpulse(r.Body1, m1.InverseInertia, -impulse)
		ApplyAngularImpulse(r.Body2, m2.InverseInertia, impulse)
	}

	if r.UpperLimitEnabled {
		angle := r.relativeAngle()
		C := r.UpperLimit - angle
		Cdot := r.Body1.AngularVelocity() - r.Body2.AngularVelocity()
		bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
		impulse := -r.axialMass * (Cdot + bias)
		newImpulse := math.Max(r.upperImpulse+impulse, 0)
		impulse = newImpulse - r.upperImpulse
		r.upperImpulse = newImpulse
		ApplyAngularImpulse(r.Body1, m1.InverseInertia, impulse)
		ApplyAngularImpulse(r.Body2, m2.InverseInertia, -impulse)
	}

	v1 := RelativeVelocityAt(r.Body1, r.r1)
	v2 := RelativeVelocityAt(r.Body2, r.r2)
	Cdot := v2.Sub(v1)
	impulse := r.k.Solve(Cdot.Mul(-1))
	r.linearImpulse = r.linearImpulse.Add(impulse)

	ApplyImpulse(r.Body1, -m1.InverseMass, -m1.InverseInertia, r.r1, impulse)
	ApplyImpulse(r.Body2, m2.InverseMass, m2.InverseInertia, r.r2, impulse)
}

func (r *RevoluteJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := r.Body1.GetMass(), r.Body2.GetMass()
	positionError := 0.0
	angularError := 0.0

	if r.LowerLimitEnabled || r.UpperLimitEnabled {
		invK := m1.InverseInertia + m2.InverseInertia
		var axialMass float64
		if invK > mathx.Epsilon {
			axialMass = 1.0 / invK
		}
		angle := r.relativeAngle()
		var C float64
		switch {
		case r.LowerLimitEnabled && angle < r.LowerLimit:
			C = angle - r.LowerLimit
		case r.UpperLimitEnabled && angle > r.UpperLimit:
			C = angle - r.UpperLimit
		}
		if C != 0 {
			correction := mathx.Clamp(C, -set.MaximumAngularCorrection, set.MaximumAngularCorrection)
			impulse := -axialMass * correction
			ApplyAngularPositionCorrection(r.Body1, m1.InverseInertia, -impulse)
			ApplyAngularPositionCorrection(r.Body2, m2.InverseInertia, impulse)
			angularError = math.Abs(C)
		}
	}

	r1 := r.Body1.TransformedR(r.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := r.Body2.TransformedR(r.LocalAnchor2.Sub(m2.LocalCenter))
	p1 := r.Body1.WorldCenter().Add(r1)
	p2 := r.Body2.WorldCenter().Add(r2)
	C := p2.Sub(p1)
	positionError = C.Len()

	invMassSum := m1.InverseMass + m2.InverseMass
	k := mathx.NewMat22(
		invMassSum+m1.InverseInertia*r1[1]*r1[1]+m2.InverseInertia*r2[1]*r2[1],
		-m1.InverseInertia*r1[0]*r1[1]-m2.InverseInertia*r2[0]*r2[1],
		-m1.InverseInertia*r1[0]*r1[1]-m2.InverseInertia*r2[0]*r2[1],
		invMassSum+m1.InverseInertia*r1[0]*r1[0]+m2.InverseInertia*r2[0]*r2[0],
	)
	impulse := k.Solve(C.Mul(-1))
	ApplyPositionCorrection(r.Body1, -m1.InverseMass, -m1.InverseInertia, r1, impulse)
	ApplyPositionCorrection(r.Body2, m2.InverseMass, m2.InverseInertia, r2, impulse)

	return positionError <= set.LinearTolerance && angularError <= set.AngularTolerance
}

func (r *RevoluteJoint) Shift(delta mathx.Vector) {}

func (r *RevoluteJoint) ReactionForce(invDt float64) mathx.Vector {
	return r.linearImpulse.Mul(invDt)
}

func (r *RevoluteJoint) ReactionTorque(invDt float64) float64 {
	return (r.motorImpulse + r.lowerImpulse - r.upperImpulse) * invDt
}

var _ Joint = (*RevoluteJoint)(nil)
