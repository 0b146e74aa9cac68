package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// WheelJoint keeps a point on body2 on a line through body1 along a
// body1-local axis — like PrismaticJoint's translation freedom, but
// relative rotation is left free rather than locked, and the motor (if
// any) drives that free rotation instead of the axial slide. Used for
// vehicle suspension: the axial direction carries an optional spring
// (suspension), the rotational freedom an optional motor (drive torque),
// and the axial translation optional limits (suspension travel) (spec
// §4.D "WheelJoint").
type WheelJoint struct {
	PairBase

	LocalAnchor1, LocalAnchor2 mathx.Vector
	LocalAxis                  mathx.Vector // body1-local, unit length
	RestTranslation            float64

	Spring Spring

	MotorEnabled   bool
	MotorSpeed     float64
	MaxMotorTorque float64

	LowerLimitEnabled, UpperLimitEnabled bool
	LowerLimit, UpperLimit               float64

	perpImpulse   float64
	springImpulse float64
	motorImpulse  float64
	lowerImpulse  float64
	upperImpulse  float64

	axis, perp mathx.Vector
	s1, s2     float64
	a1, a2     float64
	perpMass   float64
	axialMass  float64
	motorMass  float64
}

// NewWheelJoint constructs a WheelJoint holding body2's anchor on the line
// through body1's anchor along worldAxis (normalized internally).
func NewWheelJoint(body1, body2 body.Body, anchor, worldAxis mathx.Vector) (*WheelJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	axisLen := worldAxis.Len()
	if axisLen <= mathx.Epsilon {
		return nil, fmt.Errorf("%w: axis must be nonzero", ErrOutOfRange)
	}
	localAxis := body1.LocalVector(worldAxis.Mul(1.0 / axisLen))

	w := &WheelJoint{
		PairBase:     base,
		LocalAnchor1: body1.LocalPoint(anchor),
		LocalAnchor2: body2.LocalPoint(anchor),
		LocalAxis:    localAxis,
	}
	w.RestTranslation = w.translation()
	return w, nil
}

func (w *WheelJoint) wake() {
	w.Body1.SetAtRest(false)
	w.Body2.SetAtRest(false)
}

// SetSpringEnabled toggles the suspension spring along the axis.
func (w *WheelJoint) SetSpringEnabled(enabled bool) {
	if w.Spring.Enabled == enabled {
		return
	}
	w.Spring.Enabled = enabled
	w.wake()
}

// SetFrequency sets the suspension spring's natural frequency in Hz.
func (w *WheelJoint) SetFrequency(hz float64) error {
	if err := w.Spring.SetFrequency(hz); err != nil {
		return err
	}
	w.wake()
	return nil
}

// SetDampingRatio sets the suspension spring's damping ratio.
func (w *WheelJoint) SetDampingRatio(zeta float64) error {
	if err := w.Spring.SetDampingRatio(zeta); err != nil {
		return err
	}
	w.wake()
	return nil
}

// SetMotorEnabled toggles the drive motor.
func (w *WheelJoint) SetMotorEnabled(enabled bool) {
	if w.MotorEnabled == enabled {
		return
	}
	w.MotorEnabled = enabled
	w.wake()
}

// SetMotorSpeed sets the target relative angular velocity, rad/s.
func (w *WheelJoint) SetMotorSpeed(speed float64) {
	w.MotorSpeed = speed
	w.wake()
}

// SetMaxMotorTorque sets the motor's torque budget; negative is rejected.
func (w *WheelJoint) SetMaxMotorTorque(torque float64) error {
	if torque < 0 {
		return fmt.Errorf("%w: max motor torque %v must be >= 0", ErrOutOfRange, torque)
	}
	w.MaxMotorTorque = torque
	w.wake()
	return nil
}

// SetLimits sets the lower/upper suspension-travel limits.
func (w *WheelJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrOutOfRange, lower, upper)
	}
	w.LowerLimit, w.UpperLimit = lower, upper
	w.wake()
	return nil
}

// SetLowerLimitEnabled toggles the lower travel limit.
func (w *WheelJoint) SetLowerLimitEnabled(enabled bool) {
	if w.LowerLimitEnabled == enabled {
		return
	}
	w.LowerLimitEnabled = enabled
	w.wake()
}

// SetUpperLimitEnabled toggles the upper travel limit.
func (w *WheelJoint) SetUpperLimitEnabled(enabled bool) {
	if w.UpperLimitEnabled == enabled {
		return
	}
	w.UpperLimitEnabled = enabled
	w.wake()
}

func (w *WheelJoint) translation() float64 {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()
	r1 := w.Body1.TransformedR(w.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := w.Body2.TransformedR(w.LocalAnchor2.Sub(m2.LocalCenter))
	d := w.Body2.WorldCenter().Add(r2).Sub(w.Body1.WorldCenter().Add(r1))
	axis := w.Body1.WorldVector(w.LocalAxis)
	return axis.Dot(d)
}

func (w *WheelJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()

	r1 := w.Body1.TransformedR(w.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := w.Body2.TransformedR(w.LocalAnchor2.Sub(m2.LocalCenter))
	d := w.Body2.WorldCenter().Add(r2).Sub(w.Body1.WorldCenter().Add(r1))

	w.axis = w.Body1.WorldVector(w.LocalAxis)
	w.perp = mathx.LeftHandOrthogonal(w.axis)

	w.s1 = mathx.Cross(d.Add(r1), w.perp)
	w.s2 = mathx.Cross(r2, w.perp)
	w.a1 = mathx.Cross(d.Add(r1), w.axis)
	w.a2 = mathx.Cross(r2, w.axis)

	invPerp := m1.InverseMass + m2.InverseMass + m1.InverseInertia*w.s1*w.s1 + m2.InverseInertia*w.s2*w.s2
	if invPerp > mathx.Epsilon {
		w.perpMass = 1.0 / invPerp
	} else {
		w.perpMass = 0
	}

	invAxial := m1.InverseMass + m2.InverseMass + m1.InverseInertia*w.a1*w.a1 + m2.InverseInertia*w.a2*w.a2
	if invAxial > mathx.Epsilon {
		w.axialMass = 1.0 / invAxial
	} else {
		w.axialMass = 0
	}

	invMotor := m1.InverseInertia + m2.InverseInertia
	if invMotor > mathx.Epsilon {
		w.motorMass = 1.0 / invMotor
	} else {
		w.motorMass = 0
	}

	reducedMass := ReducedMass(m1.InverseMass, m2.InverseMass)
	w.Spring.Derive(reducedMass, step.DeltaTime)

	if !w.MotorEnabled {
		w.motorImpulse = 0
	}
	if !w.LowerLimitEnabled {
		w.lowerImpulse = 0
	}
	if !w.UpperLimitEnabled {
		w.upperImpulse = 0
	}
	if !w.Spring.Enabled {
		w.springImpulse = 0
	}

	if set.WarmStartingEnabled {
		w.perpImpulse *= step.DeltaTimeRatio
		w.springImpulse *= step.DeltaTimeRatio
		w.motorImpulse *= step.DeltaTimeRatio
		w.lowerImpulse *= step.DeltaTimeRatio
		w.upperImpulse *= step.DeltaTimeRatio

		axialImpulse := w.springImpulse + w.lowerImpulse - w.upperImpulse
		P := w.perp.Mul(w.perpImpulse).Add(w.axis.Mul(axialImpulse))
		L1 := w.perpImpulse*w.s1 + axialImpulse*w.a1 + w.motorImpulse
		L2 := w.perpImpulse*w.s2 + axialImpulse*w.a2 + w.motorImpulse
		ApplyImpulse(w.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
		ApplyAngularImpulse(w.Body1, m1.InverseInertia, -L1)
		ApplyImpulse(w.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
		ApplyAngularImpulse(w.Body2, m2.InverseInertia, L2)
	} else {
		w.perpImpulse = 0
		w.springImpulse, w.motorImpulse, w.lowerImpulse, w.upperImpulse = 0, 0, 0, 0
	}
}

func (w *WheelJoint) axialCdot() float64 {
	return w.axis.Dot(w.Body2.LinearVelocity().Sub(w.Body1.LinearVelocity())) +
		w.a2*w.Body2.AngularVelocity() - w.a1*w.Body1.AngularVelocity()
}

func (w *WheelJoint) applyAxial(lambda float64) {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()
	P := w.axis.Mul(lambda)
	ApplyImpulse(w.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(w.Body1, m1.InverseInertia, -lambda*w.a1)
	ApplyImpulse(w.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(w.Body2, m2.InverseInertia, lambda*w.a2)
}

func (w *WheelJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()

	if w.Spring.Enabled {
		translation := w.translation()
		Cdot := w.axialCdot()
		C := translation - w.RestTranslation
		bias := C * w.Spring.ERP
		var softMass float64
		invK := 1.0 / maxFloat(w.axialMass, mathx.Epsilon)
		if invK+w.Spring.Gamma > mathx.Epsilon {
			softMass = 1.0 / (invK + w.Spring.Gamma)
		}
		lambda := -softMass * (Cdot + bias + w.Spring.Gamma*w.springImpulse)
		w.springImpulse += lambda
		w.applyAxial(lambda)
	}

	if w.MotorEnabled {
		Cdot := w.Body2.AngularVelocity() - w.Body1.AngularVelocity() - w.MotorSpeed
		lambda := -w.motorMass * Cdot
		old := w.motorImpulse
		maxImpulse := w.MaxMotorTorque * step.DeltaTime
		w.motorImpulse = mathx.Clamp(old+lambda, -maxImpulse, maxImpulse)
		lambda = w.motorImpulse - old
		ApplyAngularImpulse(w.Body1, m1.InverseInertia, -lambda)
		ApplyAngularImpulse(w.Body2, m2.InverseInertia, lambda)
	}

	if w.LowerLimitEnabled {
		translation := w.translation()
		C := translation - w.LowerLimit
		Cdot := w.axialCdot()
		bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
		lambda := -w.axialMass * (Cdot + bias)
		newImpulse := math.Max(w.lowerImpulse+lambda, 0)
		lambda = newImpulse - w.lowerImpulse
		w.lowerImpulse = newImpulse
		w.applyAxial(lambda)
	}

	if w.UpperLimitEnabled {
		translation := w.translation()
		C := w.UpperLimit - translation
		Cdot := -w.axialCdot()
		bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
		lambda := -w.axialMass * (Cdot + bias)
		newImpulse := math.Max(w.upperImpulse+lambda, 0)
		lambda = newImpulse - w.upperImpulse
		w.upperImpulse = newImpulse
		w.applyAxial(-lambda)
	}

	Cdot := w.perp.Dot(w.Body2.LinearVelocity().Sub(w.Body1.LinearVelocity())) + w.s2*w.Body2.AngularVelocity() - w.s1*w.Body1.AngularVelocity()
	lambda := -w.perpMass * Cdot
	w.perpImpulse += lambda
	P := w.perp.Mul(lambda)
	ApplyImpulse(w.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(w.Body1, m1.InverseInertia, -lambda*w.s1)
	ApplyImpulse(w.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularImpulse(w.Body2, m2.InverseInertia, lambda*w.s2)
}

func (w *WheelJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()

	r1 := w.Body1.TransformedR(w.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := w.Body2.TransformedR(w.LocalAnchor2.Sub(m2.LocalCenter))
	d := w.Body2.WorldCenter().Add(r2).Sub(w.Body1.WorldCenter().Add(r1))
	axis := w.Body1.WorldVector(w.LocalAxis)

	linearError := 0.0

	// Limit correction first (spec §4.D "limit correction (if any
	// violated) then always the point-on-line correction"), as a
	// standalone scalar impulse along the axis.
	if w.LowerLimitEnabled || w.UpperLimitEnabled {
		a1 := mathx.Cross(d.Add(r1), axis)
		a2 := mathx.Cross(r2, axis)
		translation := axis.Dot(d)
		var C float64
		switch {
		case w.LowerLimitEnabled && translation < w.LowerLimit:
			C = translation - w.LowerLimit
		case w.UpperLimitEnabled && translation > w.UpperLimit:
			C = translation - w.UpperLimit
		}
		if C != 0 {
			correction := mathx.Clamp(C, -set.MaximumLinearCorrection, set.MaximumLinearCorrection)
			invK := m1.InverseMass + m2.InverseMass + m1.InverseInertia*a1*a1 + m2.InverseInertia*a2*a2
			var lambda float64
			if invK > mathx.Epsilon {
				lambda = -correction / invK
			}
			P := axis.Mul(lambda)
			ApplyPositionCorrection(w.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
			ApplyAngularPositionCorrection(w.Body1, m1.InverseInertia, -lambda*a1)
			ApplyPositionCorrection(w.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
			ApplyAngularPositionCorrection(w.Body2, m2.InverseInertia, lambda*a2)
			linearError = math.Abs(C)

			// Bodies moved: recompute the lever arms and axis before the
			// point-on-line pass below.
			r1 = w.Body1.TransformedR(w.LocalAnchor1.Sub(m1.LocalCenter))
			r2 = w.Body2.TransformedR(w.LocalAnchor2.Sub(m2.LocalCenter))
			d = w.Body2.WorldCenter().Add(r2).Sub(w.Body1.WorldCenter().Add(r1))
			axis = w.Body1.WorldVector(w.LocalAxis)
		}
	}

	perp := mathx.LeftHandOrthogonal(axis)
	C := perp.Dot(d)

	s1 := mathx.Cross(d.Add(r1), perp)
	s2 := mathx.Cross(r2, perp)
	invK := m1.InverseMass + m2.InverseMass + m1.InverseInertia*s1*s1 + m2.InverseInertia*s2*s2
	var mass float64
	if invK > mathx.Epsilon {
		mass = 1.0 / invK
	}

	lambda := -mass * C
	P := perp.Mul(lambda)
	ApplyPositionCorrection(w.Body1, -m1.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularPositionCorrection(w.Body1, m1.InverseInertia, -lambda*s1)
	ApplyPositionCorrection(w.Body2, m2.InverseMass, 0, mathx.Vector{}, P)
	ApplyAngularPositionCorrection(w.Body2, m2.InverseInertia, lambda*s2)

	linearError = math.Max(linearError, math.Abs(C))
	return linearError <= set.LinearTolerance
}

func (w *WheelJoint) Shift(delta mathx.Vector) {}

func (w *WheelJoint) ReactionForce(invDt float64) mathx.Vector {
	axialImpulse := w.springImpulse + w.lowerImpulse - w.upperImpulse
	return w.perp.Mul(w.perpImpulse).Add(w.axis.Mul(axialImpulse)).Mul(invDt)
}

func (w *WheelJoint) ReactionTorque(invDt float64) float64 { return w.motorImpulse * invDt }

var _ Joint = (*WheelJoint)(nil)
