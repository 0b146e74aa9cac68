// Package joint is the joint constraint solver: the shared four-operation
// protocol every joint kind implements (spec §4.C) plus the catalog of
// concrete joint kinds (spec §4.D) — Distance, Rope, Angle, Friction, Pin,
// Revolute, Prismatic, Wheel, Weld, Pulley, Motor. Each kind is its own
// struct; there is no shared abstract base beyond the small PairBase/
// SingleBase helpers below, per the tagged-variant design note in spec §9.
package joint

import (
	"fmt"

	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// Joint is the contract every joint kind satisfies: the four-operation
// per-step protocol (spec §4.C) plus the diagnostic/mutation surface of
// spec §6.
type Joint interface {
	// Initialize recomputes per-step quantities (anchor world vectors,
	// effective mass, soft-constraint bias/gamma) from the current body
	// state, and warm-starts or zeroes the accumulated impulses.
	Initialize(step settings.TimeStep, set settings.Settings)

	// SolveVelocity performs one velocity-iteration pass.
	SolveVelocity(step settings.TimeStep, set settings.Settings)

	// SolvePosition applies one position-correction pass and reports
	// whether the joint's positional error is within tolerance. Soft
	// joints return true immediately — positional error from a spring is
	// not corrected at the position level.
	SolvePosition(step settings.TimeStep, set settings.Settings) bool

	// Shift translates any world-space state the joint holds (pulley
	// anchors, pin targets) by delta. Joints whose state is purely local
	// (ordinary anchors) do nothing.
	Shift(delta mathx.Vector)

	// IsEnabled reports whether every body the joint constrains is
	// enabled; a disabled joint is skipped by the orchestrator.
	IsEnabled() bool

	// IsMember reports whether b is one of the bodies this joint
	// constrains.
	IsMember(b body.Body) bool

	// CollisionAllowed reports whether the broad-phase should still test
	// the joined bodies against each other for collision.
	CollisionAllowed() bool
	SetCollisionAllowed(allowed bool)

	// UserData returns the opaque owner-data slot last set by SetUserData
	// (nil until then).
	UserData() interface{}
	SetUserData(data interface{})

	// ReactionForce returns the constraint force applied in the last
	// completed step, derived from the accumulated impulse and invDt =
	// 1/Δt.
	ReactionForce(invDt float64) mathx.Vector
	// ReactionTorque returns the constraint torque applied in the last
	// completed step.
	ReactionTorque(invDt float64) float64
}

// PairBase is the shared state of every two-body joint in the catalog:
// the two bodies, the collision-allowed flag, and opaque user data. It is
// embedded by value, not inherited from — each joint kind still implements
// the Joint interface itself.
type PairBase struct {
	Body1, Body2     body.Body
	collisionAllowed bool
	userData         interface{}
}

// NewPairBase validates body1/body2 are both non-nil and distinct, per the
// ArgumentNull/SameBody contract of spec §6.
func NewPairBase(body1, body2 body.Body) (PairBase, error) {
	if body1 == nil || body2 == nil {
		return PairBase{}, fmt.Errorf("%w: body1/body2", ErrArgumentNull)
	}
	if body1 == body2 {
		return PairBase{}, fmt.Errorf("%w", ErrSameBody)
	}
	return PairBase{Body1: body1, Body2: body2}, nil
}

func (b *PairBase) IsEnabled() bool {
	return b.Body1.IsEnabled() && b.Body2.IsEnabled()
}

func (b *PairBase) IsMember(target body.Body) bool {
	return target == b.Body1 || target == b.Body2
}

func (b *PairBase) CollisionAllowed() bool { return b.collisionAllowed }

func (b *PairBase) SetCollisionAllowed(allowed bool) { b.collisionAllowed = allowed }

func (b *PairBase) UserData() interface{} { return b.userData }

func (b *PairBase) SetUserData(data interface{}) { b.userData = data }

// SingleBase is the shared state of a joint that pins one body to a
// world-space target (PinJoint).
type SingleBase struct {
	Body             body.Body
	collisionAllowed bool
	userData         interface{}
}

// NewSingleBase validates body is non-nil.
func NewSingleBase(b body.Body) (SingleBase, error) {
	if b == nil {
		return SingleBase{}, fmt.Errorf("%w: body", ErrArgumentNull)
	}
	return SingleBase{Body: b}, nil
}

func (b *SingleBase) IsEnabled() bool { return b.Body.IsEnabled() }

func (b *SingleBase) IsMember(target body.Body) bool { return target == b.Body }

func (b *SingleBase) CollisionAllowed() bool { return b.collisionAllowed }

func (b *SingleBase) SetCollisionAllowed(allowed bool) { b.collisionAllowed = allowed }

func (b *SingleBase) UserData() interface{} { return b.userData }

func (b *SingleBase) SetUserData(data interface{}) { b.userData = data }

// Group is the abstract n-ary joint framework's body collection (spec §4
// component D: "body-count variants (single, paired, n-ary)"). No concrete
// n-ary joint ships in the catalog, but the validation contract — at least
// one body, ArgumentNull on a nil entry — is shared infrastructure a future
// n-ary joint (e.g. a rope/chain constraint spanning more than two bodies)
// would build on.
type Group struct {
	bodies           []body.Body
	collisionAllowed bool
	userData         interface{}
}

// NewGroup validates bodies is non-empty and contains no nil entries.
func NewGroup(bodies ...body.Body) (Group, error) {
	if len(bodies) == 0 {
		return Group{}, fmt.Errorf("%w", ErrEmptyCollection)
	}
	for _, b := range bodies {
		if b == nil {
			return Group{}, fmt.Errorf("%w: bodies", ErrArgumentNull)
		}
	}
	cp := make([]body.Body, len(bodies))
	copy(cp, bodies)
	return Group{bodies: cp}, nil
}

// Bodies returns the joint's participating bodies in construction order.
func (g *Group) Bodies() []body.Body { return g.bodies }

// BodyAt returns the body at index i, or ErrInvalidIndex if out of bounds.
func (g *Group) BodyAt(i int) (body.Body, error) {
	if i < 0 || i >= len(g.bodies) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	return g.bodies[i], nil
}

func (g *Group) IsEnabled() bool {
	for _, b := range g.bodies {
		if !b.IsEnabled() {
			return false
		}
	}
	return true
}

func (g *Group) IsMember(target body.Body) bool {
	for _, b := range g.bodies {
		if b == target {
			return true
		}
	}
	return false
}

func (g *Group) CollisionAllowed() bool { return g.collisionAllowed }

func (g *Group) SetCollisionAllowed(allowed bool) { g.collisionAllowed = allowed }

func (g *Group) UserData() interface{} { return g.userData }

func (g *Group) SetUserData(data interface{}) { g.userData = data }
