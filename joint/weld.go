package joint

import (
	"math"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// WeldJoint rigidly fixes body2's position and orientation relative to
// body1: a 3x3 point+angle block when rigid, or a 2x2 point block plus an
// independent soft angular row when Spring is enabled (spec §4.D
// "WeldJoint"). Welding two bodies with both inverse inertias zero would
// leave the angular row singular; that row is floored to 1 the way
// PrismaticJoint floors its own degenerate angular row, since it
// contributes nothing to either body's velocity in that case regardless.
type WeldJoint struct {
	PairBase

	LocalAnchor1, LocalAnchor2 mathx.Vector
	ReferenceAngle             float64

	Spring Spring

	linearImpulse  mathx.Vector
	angularImpulse float64

	r1, r2    mathx.Vector
	k3        mathx.Mat33
	k2        mathx.Mat22
	axialMass float64
}

// NewWeldJoint constructs a WeldJoint welding body1 to body2 at the
// world-space anchor (both bodies' local anchor maps to the same world
// point at construction time), with ReferenceAngle set to the bodies'
// current relative angle.
func NewWeldJoint(body1, body2 body.Body, anchor mathx.Vector) (*WeldJoint, error) {
	base, err := NewPairBase(body1, body2)
	if err != nil {
		return nil, err
	}
	return &WeldJoint{
		PairBase:       base,
		LocalAnchor1:   body1.LocalPoint(anchor),
		LocalAnchor2:   body2.LocalPoint(anchor),
		ReferenceAngle: body2.RotationAngle() - body1.RotationAngle(),
	}, nil
}

func (w *WeldJoint) wake() {
	w.Body1.SetAtRest(false)
	w.Body2.SetAtRest(false)
}

// SetSpringEnabled toggles the soft-angular mode: the weld's orientation
// row becomes a spring instead of a rigid constraint, while the point
// constraint stays rigid.
func (w *WeldJoint) SetSpringEnabled(enabled bool) {
	if w.Spring.Enabled == enabled {
		return
	}
	w.Spring.Enabled = enabled
	w.wake()
}

// SetFrequency sets the soft-angular spring's natural frequency in Hz.
func (w *WeldJoint) SetFrequency(hz float64) error {
	if err := w.Spring.SetFrequency(hz); err != nil {
		return err
	}
	w.wake()
	return nil
}

// SetDampingRatio sets the soft-angular spring's damping ratio.
func (w *WeldJoint) SetDampingRatio(zeta float64) error {
	if err := w.Spring.SetDampingRatio(zeta); err != nil {
		return err
	}
	w.wake()
	return nil
}

func (w *WeldJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()

	w.r1 = w.Body1.TransformedR(w.LocalAnchor1.Sub(m1.LocalCenter))
	w.r2 = w.Body2.TransformedR(w.LocalAnchor2.Sub(m2.LocalCenter))

	invMassSum := m1.InverseMass + m2.InverseMass
	invInertiaSum := m1.InverseInertia + m2.InverseInertia

	if invInertiaSum > mathx.Epsilon {
		w.axialMass = 1.0 / invInertiaSum
	} else {
		w.axialMass = 0
	}
	reducedAxial := w.axialMass
	w.Spring.Derive(reducedAxial, step.DeltaTime)

	if w.Spring.Enabled {
		w.k2 = mathx.NewMat22(
			invMassSum+m1.InverseInertia*w.r1[1]*w.r1[1]+m2.InverseInertia*w.r2[1]*w.r2[1],
			-m1.InverseInertia*w.r1[0]*w.r1[1]-m2.InverseInertia*w.r2[0]*w.r2[1],
			-m1.InverseInertia*w.r1[0]*w.r1[1]-m2.InverseInertia*w.r2[0]*w.r2[1],
			invMassSum+m1.InverseInertia*w.r1[0]*w.r1[0]+m2.InverseInertia*w.r2[0]*w.r2[0],
		)
	} else {
		k33 := invInertiaSum
		if k33 <= mathx.Epsilon {
			k33 = 1
		}
		w.k3 = mathx.NewMat33FromRows(
			invMassSum+m1.InverseInertia*w.r1[1]*w.r1[1]+m2.InverseInertia*w.r2[1]*w.r2[1],
			-m1.InverseInertia*w.r1[0]*w.r1[1]-m2.InverseInertia*w.r2[0]*w.r2[1],
			-m1.InverseInertia*w.r1[1]-m2.InverseInertia*w.r2[1],
			-m1.InverseInertia*w.r1[0]*w.r1[1]-m2.InverseInertia*w.r2[0]*w.r2[1],
			invMassSum+m1.InverseInertia*w.r1[0]*w.r1[0]+m2.InverseInertia*w.r2[0]*w.r2[0],
			m1.InverseInertia*w.r1[0]+m2.InverseInertia*w.r2[0],
			-m1.InverseInertia*w.r1[1]-m2.InverseInertia*w.r2[1],
			m1.InverseInertia*w.r1[0]+m2.InverseInertia*w.r2[0],
			k33,
		)
	}

	if set.WarmStartingEnabled {
		w.linearImpulse = w.linearImpulse.Mul(step.DeltaTimeRatio)
		w.angularImpulse *= step.DeltaTimeRatio

		ApplyImpulse(w.Body1, -m1.InverseMass, -m1.InverseInertia, w.r1, w.linearImpulse)
		ApplyAngularImpulse(w.Body1, m1.InverseInertia, -w.angularImpulse)
		ApplyImpulse(w.Body2, m2.InverseMass, m2.InverseInertia, w.r2, w.linearImpulse)
		ApplyAngularImpulse(w.Body2, m2.InverseInertia, w.angularImpulse)
	} else {
		w.linearImpulse = mathx.Vector{}
		w.angularImpulse = 0
	}
}

func (w *WeldJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()

	if w.Spring.Enabled {
		Cdot := w.Body2.AngularVelocity() - w.Body1.AngularVelocity()
		C := w.Body2.RotationAngle() - w.Body1.RotationAngle() - w.ReferenceAngle
		bias := C * w.Spring.ERP
		var softMass float64
		if w.axialMass > 0 && (1.0/w.axialMass+w.Spring.Gamma) > mathx.Epsilon {
			softMass = 1.0 / (1.0/w.axialMass + w.Spring.Gamma)
		}
		impulse := -softMass * (Cdot + bias + w.Spring.Gamma*w.angularImpulse)
		w.angularImpulse += impulse
		ApplyAngularImpulse(w.Body1, m1.InverseInertia, -impulse)
		ApplyAngularImpulse(w.Body2, m2.InverseInertia, impulse)

		v1 := RelativeVelocityAt(w.Body1, w.r1)
		v2 := RelativeVelocityAt(w.Body2, w.r2)
		pointCdot := v2.Sub(v1)
		pointImpulse := w.k2.Solve(pointCdot.Mul(-1))
		w.linearImpulse = w.linearImpulse.Add(pointImpulse)
		ApplyImpulse(w.Body1, -m1.InverseMass, -m1.InverseInertia, w.r1, pointImpulse)
		ApplyImpulse(w.Body2, m2.InverseMass, m2.InverseInertia, w.r2, pointImpulse)
		return
	}

	v1 := RelativeVelocityAt(w.Body1, w.r1)
	v2 := RelativeVelocityAt(w.Body2, w.r2)
	Cdot := mathx.Vector3{
		X: v2[0] - v1[0],
		Y: v2[1] - v1[1],
		Z: w.Body2.AngularVelocity() - w.Body1.AngularVelocity(),
	}
	impulse := w.k3.Solve33(mathx.Vector3{X: -Cdot.X, Y: -Cdot.Y, Z: -Cdot.Z})
	w.linearImpulse = w.linearImpulse.Add(mathx.Vector{impulse.X, impulse.Y})
	w.angularImpulse += impulse.Z

	P := mathx.Vector{impulse.X, impulse.Y}
	ApplyImpulse(w.Body1, -m1.InverseMass, 0, w.r1, P)
	ApplyAngularImpulse(w.Body1, m1.InverseInertia, -(mathx.Cross(w.r1, P) + impulse.Z))
	ApplyImpulse(w.Body2, m2.InverseMass, 0, w.r2, P)
	ApplyAngularImpulse(w.Body2, m2.InverseInertia, mathx.Cross(w.r2, P)+impulse.Z)
}

func (w *WeldJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	m1, m2 := w.Body1.GetMass(), w.Body2.GetMass()

	r1 := w.Body1.TransformedR(w.LocalAnchor1.Sub(m1.LocalCenter))
	r2 := w.Body2.TransformedR(w.LocalAnchor2.Sub(m2.LocalCenter))

	if w.Spring.Enabled {
		p1 := w.Body1.WorldCenter().Add(r1)
		p2 := w.Body2.WorldCenter().Add(r2)
		C := p2.Sub(p1)

		invMassSum := m1.InverseMass + m2.InverseMass
		k := mathx.NewMat22(
			invMassSum+m1.InverseInertia*r1[1]*r1[1]+m2.InverseInertia*r2[1]*r2[1],
			-m1.InverseInertia*r1[0]*r1[1]-m2.InverseInertia*r2[0]*r2[1],
			-m1.InverseInertia*r1[0]*r1[1]-m2.InverseInertia*r2[0]*r2[1],
			invMassSum+m1.InverseInertia*r1[0]*r1[0]+m2.InverseInertia*r2[0]*r2[0],
		)
		impulse := k.Solve(C.Mul(-1))
		ApplyPositionCorrection(w.Body1, -m1.InverseMass, -m1.InverseInertia, r1, impulse)
		ApplyPositionCorrection(w.Body2, m2.InverseMass, m2.InverseInertia, r2, impulse)
		return C.Len() <= set.LinearTolerance
	}

	p1 := w.Body1.WorldCenter().Add(r1)
	p2 := w.Body2.WorldCenter().Add(r2)
	linearC := p2.Sub(p1)
	angularC := w.Body2.RotationAngle() - w.Body1.RotationAngle() - w.ReferenceAngle

	invMassSum := m1.InverseMass + m2.InverseMass
	invInertiaSum := m1.InverseInertia + m2.InverseInertia

	k2 := mathx.NewMat22(
		invMassSum+m1.InverseInertia*r1[1]*r1[1]+m2.InverseInertia*r2[1]*r2[1],
		-m1.InverseInertia*r1[0]*r1[1]-m2.InverseInertia*r2[0]*r2[1],
		-m1.InverseInertia*r1[0]*r1[1]-m2.InverseInertia*r2[0]*r2[1],
		invMassSum+m1.InverseInertia*r1[0]*r1[0]+m2.InverseInertia*r2[0]*r2[0],
	)

	var impulse mathx.Vector3
	if invInertiaSum <= mathx.Epsilon {
		// Both bodies fixed-rotation: the angular row is singular, so fall
		// back to the 2x2 point solve with zero angular impulse rather
		// than solving a floored, spurious 3x3.
		linear := k2.Solve(mathx.Vector{-linearC[0], -linearC[1]})
		impulse = mathx.Vector3{X: linear[0], Y: linear[1]}
	} else {
		k := mathx.NewMat33FromRows(
			k2.Col1[0], k2.Col2[0], -m1.InverseInertia*r1[1]-m2.InverseInertia*r2[1],
			k2.Col1[1], k2.Col2[1], m1.InverseInertia*r1[0]+m2.InverseInertia*r2[0],
			-m1.InverseInertia*r1[1]-m2.InverseInertia*r2[1], m1.InverseInertia*r1[0]+m2.InverseInertia*r2[0], invInertiaSum,
		)
		impulse = k.Solve33(mathx.Vector3{X: -linearC[0], Y: -linearC[1], Z: -angularC})
	}
	P := mathx.Vector{impulse.X, impulse.Y}
	ApplyPositionCorrection(w.Body1, -m1.InverseMass, 0, r1, P)
	ApplyAngularPositionCorrection(w.Body1, m1.InverseInertia, -(mathx.Cross(r1, P) + impulse.Z))
	ApplyPositionCorrection(w.Body2, m2.InverseMass, 0, r2, P)
	ApplyAngularPositionCorrection(w.Body2, m2.InverseInertia, mathx.Cross(r2, P)+impulse.Z)

	return linearC.Len() <= set.LinearTolerance && math.Abs(angularC) <= set.AngularTolerance
}

func (w *WeldJoint) Shift(delta mathx.Vector) {}

func (w *WeldJoint) ReactionForce(invDt float64) mathx.Vector {
	return w.linearImpulse.Mul(invDt)
}

func (w *WeldJoint) ReactionTorque(invDt float64) float64 { return w.angularImpulse * invDt }

var _ Joint = (*WeldJoint)(nil)
