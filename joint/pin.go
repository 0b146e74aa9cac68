package joint

import (
	"fmt"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// PinJoint drags a single body's anchor point toward a world-space target,
// soft or hard, with the total applied force capped at MaxForce — a
// single-body joint, built on SingleBase rather than PairBase (spec §4.D
// "PinJoint"). Typical use: a cursor/tool drag handle.
type PinJoint struct {
	SingleBase

	LocalAnchor mathx.Vector
	Target      mathx.Vector
	Spring      Spring
	MaxForce    float64 // <= 0 means unclamped

	impulse mathx.Vector

	r    mathx.Vector
	mass mathx.Mat22
}

// NewPinJoint constructs a PinJoint anchored at worldAnchor on b, with
// Target initialized to worldAnchor (no pull until SetTarget moves it).
func NewPinJoint(b body.Body, worldAnchor mathx.Vector) (*PinJoint, error) {
	base, err := NewSingleBase(b)
	if err != nil {
		return nil, err
	}
	return &PinJoint{
		SingleBase:  base,
		LocalAnchor: b.LocalPoint(worldAnchor),
		Target:      worldAnchor,
	}, nil
}

// SetTarget moves the world-space point the anchor is pulled toward.
func (p *PinJoint) SetTarget(target mathx.Vector) {
	p.Target = target
	p.Body.SetAtRest(false)
}

// SetMaxForce sets the force budget; negative is rejected. Zero leaves the
// impulse unclamped: the cap applies only when MaxForce is positive.
func (p *PinJoint) SetMaxForce(maxForce float64) error {
	if maxForce < 0 {
		return fmt.Errorf("%w: max force %v must be >= 0", ErrOutOfRange, maxForce)
	}
	p.MaxForce = maxForce
	p.Body.SetAtRest(false)
	return nil
}

// SetSpringEnabled toggles soft (compliant) vs. hard (rigid, within
// MaxForce) pulling.
func (p *PinJoint) SetSpringEnabled(enabled bool) {
	if p.Spring.Enabled == enabled {
		return
	}
	p.Spring.Enabled = enabled
	p.Body.SetAtRest(false)
}

// SetFrequency sets the spring's natural frequency in Hz.
func (p *PinJoint) SetFrequency(hz float64) error {
	if err := p.Spring.SetFrequency(hz); err != nil {
		return err
	}
	p.Body.SetAtRest(false)
	return nil
}

// SetDampingRatio sets the spring's damping ratio.
func (p *PinJoint) SetDampingRatio(zeta float64) error {
	if err := p.Spring.SetDampingRatio(zeta); err != nil {
		return err
	}
	p.Body.SetAtRest(false)
	return nil
}

func (p *PinJoint) Initialize(step settings.TimeStep, set settings.Settings) {
	m := p.Body.GetMass()
	p.r = p.Body.TransformedR(p.LocalAnchor.Sub(m.LocalCenter))

	k11 := m.InverseMass + m.InverseInertia*p.r[1]*p.r[1]
	k12 := -m.InverseInertia * p.r[0] * p.r[1]
	k22 := m.InverseMass + m.InverseInertia*p.r[0]*p.r[0]
	k := mathx.NewMat22(k11, k12, k12, k22)

	p.Spring.Derive(inverseOrZero(m.InverseMass), step.DeltaTime)
	if p.Spring.Enabled {
		gamma := mathx.NewMat22(p.Spring.Gamma, 0, 0, p.Spring.Gamma)
		p.mass = k.Add(gamma)
	} else {
		p.mass = k
	}

	if set.WarmStartingEnabled {
		p.impulse = p.impulse.Mul(step.DeltaTimeRatio)
		ApplyImpulse(p.Body, m.InverseMass, m.InverseInertia, p.r, p.impulse)
	} else {
		p.impulse = mathx.Vector{}
	}
}

func (p *PinJoint) SolveVelocity(step settings.TimeStep, set settings.Settings) {
	m := p.Body.GetMass()

	worldAnchor := p.Body.WorldCenter().Add(p.r)
	C := worldAnchor.Sub(p.Target)

	v := RelativeVelocityAt(p.Body, p.r)

	var rhs mathx.Vector
	if p.Spring.Enabled {
		bias := C.Mul(p.Spring.ERP)
		rhs = v.Add(bias).Add(p.impulse.Mul(p.Spring.Gamma)).Mul(-1)
	} else {
		bias := C.Mul(set.Baumgarte * step.InverseDeltaTime)
		rhs = v.Add(bias).Mul(-1)
	}

	raw := p.mass.Solve(rhs)
	newTotal := p.impulse.Add(raw)
	if p.MaxForce > 0 {
		maxImpulse := p.MaxForce * step.DeltaTime
		if newTotal.Len() > maxImpulse {
			newTotal = newTotal.Mul(maxImpulse / newTotal.Len())
		}
	}
	applied := newTotal.Sub(p.impulse)
	p.impulse = newTotal

	ApplyImpulse(p.Body, m.InverseMass, m.InverseInertia, p.r, applied)
}

func (p *PinJoint) SolvePosition(step settings.TimeStep, set settings.Settings) bool {
	if p.Spring.Enabled {
		return true
	}
	m := p.Body.GetMass()
	r := p.Body.TransformedR(p.LocalAnchor.Sub(m.LocalCenter))
	worldAnchor := p.Body.WorldCenter().Add(r)
	C := worldAnchor.Sub(p.Target)

	k11 := m.InverseMass + m.InverseInertia*r[1]*r[1]
	k12 := -m.InverseInertia * r[0] * r[1]
	k22 := m.InverseMass + m.InverseInertia*r[0]*r[0]
	k := mathx.NewMat22(k11, k12, k12, k22)

	impulse := k.Solve(C.Mul(-1))
	ApplyPositionCorrection(p.Body, m.InverseMass, m.InverseInertia, r, impulse)

	return C.Len() <= set.LinearTolerance
}

func (p *PinJoint) Shift(delta mathx.Vector) {
	p.Target = p.Target.Add(delta)
}

func (p *PinJoint) ReactionForce(invDt float64) mathx.Vector { return p.impulse.Mul(invDt) }

func (p *PinJoint) ReactionTorque(invDt float64) float64 { return 0 }

var _ Joint = (*PinJoint)(nil)
