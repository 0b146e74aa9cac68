// Package body defines the capability interface the solver needs from a
// rigid body (spec §4.B) plus a minimal concrete implementation any caller
// can use directly. Shapes, broad/narrow-phase collision, and mass
// computation from geometry are out of scope — only the fields the
// constraint solvers touch are modeled here.
package body

import "github.com/wrenfield/solve2d/mathx"

// Mass is a body's mass record. Masses of zero are expressed as zero
// inverse mass/inertia (infinite mass); the solver must tolerate either or
// both bodies having zero inverse mass/inertia without dividing by zero.
type Mass struct {
	Mass        float64
	InverseMass float64

	Inertia        float64
	InverseInertia float64

	// LocalCenter is the center of mass in the body's local frame.
	LocalCenter mathx.Vector
}

// NewMass builds a Mass record from mass and inertia, deriving the
// inverses (0 for a zero/infinite input, never a divide-by-zero).
func NewMass(mass, inertia float64, localCenter mathx.Vector) Mass {
	m := Mass{Mass: mass, Inertia: inertia, LocalCenter: localCenter}
	if mass > mathx.Epsilon {
		m.InverseMass = 1.0 / mass
	}
	if inertia > mathx.Epsilon {
		m.InverseInertia = 1.0 / inertia
	}
	return m
}

// StaticMass is the zero-mass, zero-inertia record used by immovable
// bodies (ground, anchors, kinematic platforms).
var StaticMass = Mass{}

// Body is the capability interface every joint and the contact solver
// depend on. An engine's own body type needs only to satisfy this to be
// usable with the solver core.
type Body interface {
	// RotationAngle is the body's current world-space rotation, in radians.
	RotationAngle() float64
	// WorldCenter is the center of mass in world space.
	WorldCenter() mathx.Vector
	// LocalCenter is the center of mass in the body's local frame.
	LocalCenter() mathx.Vector

	// LinearVelocity is the world-space linear velocity of the center of mass.
	LinearVelocity() mathx.Vector
	SetLinearVelocity(v mathx.Vector)
	// AngularVelocity is the scalar angular velocity, in radians/second.
	AngularVelocity() float64
	SetAngularVelocity(w float64)

	// Translate shifts the body's position by v.
	Translate(v mathx.Vector)
	// Rotate rotates the body by angle radians about pivot (world space).
	Rotate(angle float64, pivot mathx.Vector)
	// RotateAboutCenter rotates the body by angle radians about its own
	// center of mass, leaving the center in place.
	RotateAboutCenter(angle float64)

	// LocalPoint maps a world-space point into the body's local frame.
	LocalPoint(worldPoint mathx.Vector) mathx.Vector
	// WorldPoint maps a local-space point into world space.
	WorldPoint(localPoint mathx.Vector) mathx.Vector
	// LocalVector maps a world-space direction into the body's local frame
	// (rotation only, no translation).
	LocalVector(worldVector mathx.Vector) mathx.Vector
	// WorldVector maps a local-space direction into world space (rotation
	// only, no translation).
	WorldVector(localVector mathx.Vector) mathx.Vector
	// TransformedR rotates v by the body's current rotation — shorthand
	// for WorldVector used pervasively by the joint catalog to turn a
	// local anchor offset into a world-space lever arm.
	TransformedR(v mathx.Vector) mathx.Vector

	// SetAtRest wakes (false) or idles (true) the body. Joint setters that
	// could change this/next step's impulses must wake affected bodies.
	SetAtRest(atRest bool)
	// IsAtRest reports whether the body is currently idle.
	IsAtRest() bool

	// IsEnabled reports whether the body currently participates in the
	// simulation. A joint is enabled iff every body it constrains is
	// enabled; a disabled joint is skipped by the orchestrator.
	IsEnabled() bool
	SetEnabled(enabled bool)

	// GetMass returns the body's mass record.
	GetMass() Mass
}
