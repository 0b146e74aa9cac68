package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// AngleJoint constrains the relative angular velocity of two bodies and,
// when limits are enabled, their relative angle (spec §4.D "AngleJoint").
// With limits disabled and a ratio other than 1 it behaves as a gear
// coupling: a velocity-only relationship Cdot = ω1 - ratio·ω2.
type AngleJoint struct {
	PairBase

	ReferenceAngle float64
	Ratio          float64

	LowerLimitEnabled, UpperLimitEnabled bool
	LowerLimit, UpperLimit               float64

	impulse      float64 // bilateral or ratio-coupled
	lowerImpulse float64
	upperImpulse float64

	axialMass float64
}

// NewAngleJoint constructs an AngleJoint with ReferenceAngle set to the
// bodies' current relative angle and Ratio 1 (pure bilateral coupling).
func NewAngleJoint(body1, body2 body.Body) (*AngleJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	return &AngleJoint{
		PairBase:       base,
		ReferenceAngle: body1.RotationAngle() - body2.RotationAngle(),
		Ratio:          1,
	}, nil
}

// SetRatio sets the gear ratio applied to body2's angular velocity. Zero is
// rejected: a zero ratio decouples body2 entirely, which is not a valid
// angle coupling.
func (a *AngleJoint) SetRatio(ratio float64) error {
	if ratio == 0 {
		return fmt.Errorf("%w: ratio must be nonzero", ErrOutOfRange)
	}
	if a.Ratio == ratio {
		return nil
	}
	a.Ratio = ratio
	a.wake()
	return nil
}

// SetReferenceAngle sets the relative angle limits and ratio target are
// measured against.
func (a *AngleJoint) SetReferenceAngle(angle float64) {
	a.ReferenceAngle = angle
	a.wake()
}

// SetLimits sets the lower/upper relative-angle limits; lower must not
// exceed upper.
func (a *AngleJoint) SetLimits(lower, upper float64) error {
	if lower > upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrOutOfRange, lower, upper)
	}
	if lower == a.LowerLimit && upper == a.UpperLimit {
		return nil
	}
	a.LowerLimit, a.UpperLimit = lower, upper
	a.wake()
	return nil
}

// SetLowerLimitEnabled toggles the lower angle limit.
func (a *AngleJoint) SetLowerLimitEnabled(enabled bool) {
	if a.LowerLimitEnabled == enabled {
		return
	}
	a.LowerLimitEnabled = enabled
	a.wake()
}

// SetUpperLimitEnabled toggles the upper angle limit.
func (a *AngleJoint) SetUpperLimitEnabled(enabled bool) {
	if a.UpperLimitEnabled == enabled {
		return
	}
	a.UpperLimitEnabled = enabled
	a.wake()
}

func (a *AngleJoint) wake() {
	a.Body1.SetAtRest(false)
	a.Body2.SetAtRest(false)
}

func (a *AngleJoint) relativeAngle() float64 {
	return mathx.WrapAngle(a.Body1.RotationAngle() - a.Body2.RotationAngle() - a.ReferenceAngle)
}

func (a *AngleJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := a.Body1.GetMass(), a.Body2.GetMass()

	invK := m1.InverseInertia + math.Abs(a.Ratio)*m2.InverseInertia
	if invK > mathx.Epsilon {
		a.axialMass = 1.0 / invK
	} else {
		a.axialMass = 0
	}

	if set.WarmStartingEnabled {
		a.impulse *= step.DeltaTimeRatio
		a.lowerImpulse *= step.DeltaTimeRatio
		a.upperImpulse *= step.DeltaTimeRatio

		hasLimits := a.LowerLimitEnabled || a.UpperLimitEnabled
		if hasLimits {
			lambda := a.lowerImpulse - a.upperImpulse
			ApplyAngularImpulse(a.Body1, m1.InverseInertia, lambda)
			ApplyAngularImpulse(a.Body2, m2.InverseInertia, -lambda)
		} else if a.Ratio != 1 {
			ApplyAngularImpulse(a.Body1, m1.InverseInertia, a.impulse)
			ApplyAngularImpulse(a.Body2, m2.InverseInertia, -math.Copysign(1, a.Ratio)*a.impulse)
		} else {
			ApplyAngularImpulse(a.Body1, m1.InverseInertia, a.impulse)
			ApplyAngularImpulse(a.Body2, m2.InverseInertia, -a.impulse)
		}
	} else {
		a.impulse, a.lowerImpulse, a.upperImpulse = 0, 0, 0
	}
}

func (a *AngleJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := a.Body1.GetMass(), a.Body2.GetMass()
	hasLimits := a.LowerLimitEnabled || a.UpperLimitEnabled

	if hasLimits {
		angle := a.relativeAngle()

		if a.LowerLimitEnabled {
			C := angle - a.LowerLimit
			Cdot := a.Body1.AngularVelocity() - a.Body2.AngularVelocity()
			bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
			lambda := -a.axialMass * (Cdot + bias)
			newImpulse := math.Max(a.lowerImpulse+lambda, 0)
			lambda = newImpulse - a.lowerImpulse
			a.lowerImpulse = newImpulse
			ApplyAngularImpulse(a.Body1, m1.InverseInertia, lambda)
			ApplyAngularImpulse(a.Body2, m2.InverseInertia, -lambda)
		}

		if a.UpperLimitEnabled {
			angle = a.relativeAngle()
			C := a.UpperLimit - angle
			Cdot := a.Body2.AngularVelocity() - a.Body1.AngularVelocity()
			bias := math.Min(C, 0) * set.Baumgarte * step.InverseDeltaTime
			lambda := -a.axialMass * (Cdot + bias)
			newImpulse := math.Max(a.upperImpulse+lambda, 0)
			lambda = newImpulse - a.upperImpulse
			a.upperImpulse = newImpulse
			ApplyAngularImpulse(a.Body1, m1.InverseInertia, -lambda)
			ApplyAngularImpulse(a.Body2, m2.InverseInertia, lambda)
		}
		return
	}

	if a.Ratio != 1 {
		Cdot := a.Body1.AngularVelocity() - a.Ratio*a.Body2.AngularVelocity()
		lambda := -a.axialMass * Cdot
		a.impulse += lambda
		ApplyAngularImpulse(a.Body1, m1.InverseInertia, lambda)
		ApplyAngularImpulse(a.Body2, m2.InverseInertia, -math.Copysign(1, a.Ratio)*lambda)
		return
	}

	Cdot := a.Body1.AngularVelocity() - a.Body2.AngularVelocity()
	lambda := -a.axialMass * Cdot
	a.impulse += lambda
	ApplyAngularImpulse(a.Body1, m1.InverseInertia, lambda)
	ApplyAngularImpulse(a.Body2, m2.InverseInertia, -lambda)
}

func (a *AngleJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := a.Body1.GetMass(), a.Body2.GetMass()
	invK := m1.InverseInertia + m2.InverseInertia
	var axialMass float64
	if invK > mathx.Epsilon {
		axialMass = 1.0 / invK
	}

	hasLimits := a.LowerLimitEnabled || a.UpperLimitEnabled
	if !hasLimits && a.Ratio != 1 {
		return true
	}

	angle := a.relativeAngle()
	var C float64
	switch {
	case a.LowerLimitEnabled && angle < a.LowerLimit:
		C = angle - a.LowerLimit
	case a.UpperLimitEnabled && angle > a.UpperLimit:
		C = angle - a.UpperLimit
	case !hasLimits:
		C = angle
	default:
		return true
	}

	correction := mathx.Clamp(C, -set.MaximumAngularCorrection, set.MaximumAngularCorrection)
	lambda := -axialMass * correction
	ApplyAngularPositionCorrection(a.Body1, m1.InverseInertia, lambda)
	ApplyAngularPositionCorrection(a.Body2, m2.InverseInertia, -lambda)

	return math.Abs(C) <= set.AngularTolerance
}

func (a *AngleJoint) Shift(delta mathx.Vector) {}

func (a *AngleJoint) ReactionForce(invDt float64) mathx.Vector { return mathx.Vector{} }

func (a *AngleJoint) ReactionTorque(invDt float64) float64 {
	return (a.impulse + a.lowerImpulse - a.upperImpulse) * invDt
}

var _ Joint = (*AngleJoint)(nil)
