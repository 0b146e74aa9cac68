package joint

import (
	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
)

// ApplyImpulse applies impulse P at lever arm r (world vector from the
// body's center of mass to the point of application) to b's velocity:
// Δv = invMass·P, Δω = invInertia·(r×P).
func ApplyImpulse(b body.Body, invMass, invInertia float64, r, P mathx.Vector) {
	if invMass != 0 {
		b.SetLinearVelocity(b.LinearVelocity().Add(P.Mul(invMass)))
	}
	if invInertia != 0 {
		b.SetAngularVelocity(b.AngularVelocity() + invInertia*mathx.Cross(r, P))
	}
}

// ApplyAngularImpulse applies a pure angular impulse (no lever arm), used
// by motors and angular-only constraints.
func ApplyAngularImpulse(b body.Body, invInertia, impulse float64) {
	if invInertia != 0 {
		b.SetAngularVelocity(b.AngularVelocity() + invInertia*impulse)
	}
}

// ApplyPositionCorrection applies a position-level pseudo-impulse P at
// lever arm r directly to the body's transform: the translation and
// rotation a velocity impulse of the same magnitude would produce over one
// (implicit) unit step, without touching velocity. Used by every joint's
// SolvePosition pass.
func ApplyPositionCorrection(b body.Body, invMass, invInertia float64, r, P mathx.Vector) {
	if invMass != 0 {
		b.Translate(P.Mul(invMass))
	}
	if invInertia != 0 {
		b.RotateAboutCenter(invInertia * mathx.Cross(r, P))
	}
}

// ApplyAngularPositionCorrection applies a pure angular position
// correction (no lever arm).
func ApplyAngularPositionCorrection(b body.Body, invInertia, angle float64) {
	if invInertia != 0 {
		b.RotateAboutCenter(invInertia * angle)
	}
}

// RelativeVelocityAt returns the world-space velocity of the material
// point at lever arm r on body b: v + ω×r.
func RelativeVelocityAt(b body.Body, r mathx.Vector) mathx.Vector {
	return b.LinearVelocity().Add(mathx.CrossSV(b.AngularVelocity(), r))
}
