package solve2d_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenfield/solve2d"
	"github.com/wrenfield/solve2d/body"
	"github.com/wrenfield/solve2d/contact"
	"github.com/wrenfield/solve2d/joint"
	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

// integrator builds a solve2d.Integrator that applies gravity (and any
// force queued on a body via AddForce) to its velocity, then commits that
// velocity to position, using body.RigidBody.Integrate/Update exactly as
// the teacher's own World.Step calls actor.RigidBody.Integrate/Update.
// This is the only body-integration logic in the module; it is a scenario
// test helper, not part of the solver core (original spec §1 keeps body
// integration an external collaborator).
func integrator(gravity mathx.Vector) solve2d.Integrator {
	return func(b body.Body, ts settings.TimeStep) {
		rb := b.(*body.RigidBody)
		rb.Integrate(ts.DeltaTime, gravity)
		rb.Update(ts.DeltaTime)
	}
}

// TestPendulum is original spec §8 scenario 1: a fixed body, a unit-mass
// bob one meter out on a RevoluteJoint, under gravity. After 120 steps the
// bob must stay within linearTolerance of its orbit radius.
func TestPendulum(t *testing.T) {
	world := solve2d.NewWorld()
	ground := body.NewRigidBody(body.NewTransform(), body.StaticMass)
	bob := body.NewRigidBody(body.Transform{Position: mathx.NewVector(1, 0)}, body.NewMass(1, 0.5, mathx.Zero))
	groundIdx := world.AddBody(ground)
	bobIdx := world.AddBody(bob)

	pin, err := joint.NewRevoluteJoint(ground, bob, mathx.NewVector(0, 0))
	require.NoError(t, err)
	jointIdx := world.AddJoint(pin)

	island := solve2d.Island{BodyIndices: []int{groundIdx, bobIdx}, JointIndices: []int{jointIdx}}
	integrate := integrator(mathx.NewVector(0, -10))

	const dt = 1.0 / 60.0
	for i := 0; i < 120; i++ {
		world.Step(dt, 8, 3, []solve2d.Island{island}, integrate)
	}

	radius := bob.WorldCenter().Len()
	assert.InDelta(t, 1.0, radius, world.Settings.LinearTolerance, "pendulum bob should orbit at radius 1")
}

// TestSoftDistance is original spec §8 scenario 2: a damped spring distance
// joint between two free bodies, converging to its rest length.
func TestSoftDistance(t *testing.T) {
	world := solve2d.NewWorld()
	b1 := body.NewRigidBody(body.Transform{Position: mathx.NewVector(0, 0)}, body.NewMass(1, 1, mathx.Zero))
	b2 := body.NewRigidBody(body.Transform{Position: mathx.NewVector(2, 0)}, body.NewMass(1, 1, mathx.Zero))
	i1 := world.AddBody(b1)
	i2 := world.AddBody(b2)

	dj, err := joint.NewDistanceJoint(b1, b2, mathx.NewVector(0, 0), mathx.NewVector(2, 0))
	require.NoError(t, err)
	dj.RestLength = 1.0
	require.NoError(t, dj.SetSpringEnabled(true))
	require.NoError(t, dj.SetFrequency(4.0))
	require.NoError(t, dj.SetDampingRatio(0.3))
	jIdx := world.AddJoint(dj)

	island := solve2d.Island{BodyIndices: []int{i1, i2}, JointIndices: []int{jIdx}}
	integrate := integrator(mathx.Zero)

	const dt = 1.0 / 60.0
	for i := 0; i < 600; i++ {
		world.Step(dt, 8, 3, []solve2d.Island{island}, integrate)
	}

	distance := b1.WorldCenter().Sub(b2.WorldCenter()).Len()
	assert.InDelta(t, 1.0, distance, 0.05, "soft distance joint should settle at rest length")
}

// TestPrismaticStop is original spec §8 scenario 3: a prismatic joint with
// both translation limits enabled must never let the sliding body travel
// past the upper limit, however hard it is pushed.
func TestPrismaticStop(t *testing.T) {
	world := solve2d.NewWorld()
	frame := body.NewRigidBody(body.NewTransform(), body.StaticMass)
	slider := body.NewRigidBody(body.NewTransform(), body.NewMass(1, 1, mathx.Zero))
	i1 := world.AddBody(frame)
	i2 := world.AddBody(slider)

	pj, err := joint.NewPrismaticJoint(frame, slider, mathx.Zero, mathx.NewVector(1, 0))
	require.NoError(t, err)
	require.NoError(t, pj.SetLimits(0, 2))
	pj.SetLowerLimitEnabled(true)
	pj.SetUpperLimitEnabled(true)
	jIdx := world.AddJoint(pj)

	slider.Velocity = mathx.NewVector(20, 0)

	island := solve2d.Island{BodyIndices: []int{i1, i2}, JointIndices: []int{jIdx}}
	integrate := integrator(mathx.Zero)

	const dt = 1.0 / 60.0
	maxTranslation := 0.0
	for i := 0; i < 200; i++ {
		world.Step(dt, 8, 3, []solve2d.Island{island}, integrate)
		translation := slider.WorldCenter()[0] - frame.WorldCenter()[0]
		if translation > maxTranslation {
			maxTranslation = translation
		}
	}

	assert.LessOrEqual(t, maxTranslation, 2.0+world.Settings.LinearTolerance+0.01,
		"slider must never travel past the upper limit")
}

// TestFrictionCone is original spec §8 scenario 4: a single resting
// contact with mu=0.5. A lateral force under the friction cone must leave
// the body stationary; a force over it must produce sustained motion.
func TestFrictionCone(t *testing.T) {
	const dt = 1.0 / 60.0
	gravity := mathx.NewVector(0, -10)
	integrate := integrator(gravity)
	const bodyMass = 1.0

	run := func(lateralForce float64, steps int) *body.RigidBody {
		world := solve2d.NewWorld()
		ground := body.NewRigidBody(body.NewTransform(), body.StaticMass)
		box := body.NewRigidBody(body.Transform{Position: mathx.NewVector(0, 1)}, body.NewMass(bodyMass, 1, mathx.Zero))
		i1 := world.AddBody(ground)
		i2 := world.AddBody(box)

		cc, err := contact.NewContactConstraint(ground, box, mathx.NewVector(0, 1), 0, 0.5, 0,
			[]contact.Point{{WorldPoint: mathx.NewVector(0, 1), Depth: 0}})
		require.NoError(t, err)

		island := solve2d.Island{BodyIndices: []int{i1, i2}, Contacts: []*contact.ContactConstraint{cc}}

		for i := 0; i < steps; i++ {
			box.AddForce(mathx.NewVector(lateralForce, 0))
			world.Step(dt, 8, 3, []solve2d.Island{island}, integrate)
		}
		return box
	}

	under := run(0.4*bodyMass*10, 120)
	assert.Less(t, math.Abs(under.LinearVelocity()[0]), 0.1, "force under the friction cone should not produce motion")

	over := run(0.6*bodyMass*10, 120)
	assert.Greater(t, math.Abs(over.LinearVelocity()[0]), 0.1, "force over the friction cone should produce sustained motion")
}

// TestTwoContactBlockLCP is original spec §8 scenario 5: a square landing
// flat with a two-point manifold must converge to rest with both normal
// impulses positive and (approximately) equal.
func TestTwoContactBlockLCP(t *testing.T) {
	const dt = 1.0 / 60.0
	set := settings.NewDefaultSettings()
	const mass, inertia = 2.0, 1.0

	ground := body.NewRigidBody(body.NewTransform(), body.StaticMass)
	square := body.NewRigidBody(body.NewTransform(), body.NewMass(mass, inertia, mathx.Zero))
	square.Velocity = mathx.NewVector(0, -10*dt)

	cc, err := contact.NewContactConstraint(ground, square, mathx.NewVector(0, 1), 0, 0.3, 0, []contact.Point{
		{WorldPoint: mathx.NewVector(-0.5, 0), Depth: 0},
		{WorldPoint: mathx.NewVector(0.5, 0), Depth: 0},
	})
	require.NoError(t, err)

	ts := settings.NewTimeStep(dt, dt)
	cc.Initialize(ts, set)
	cc.WarmStart(ts, set)
	for i := 0; i < 10; i++ {
		cc.SolveVelocity(ts, set)
	}

	assert.InDelta(t, 0.0, square.LinearVelocity()[1], 1e-6)
	assert.InDelta(t, 0.0, square.AngularVelocity(), 1e-6)
	assert.Greater(t, cc.Points[0].Jn, 0.0)
	assert.Greater(t, cc.Points[1].Jn, 0.0)
	assert.InDelta(t, cc.Points[0].Jn, cc.Points[1].Jn, 1e-6)
}

// TestPulley is original spec §8 scenario 6: two equal masses over a
// ratio-1 pulley settle at equal heights with l1+l2 equal to the
// configured constant.
func TestPulley(t *testing.T) {
	world := solve2d.NewWorld()
	b1 := body.NewRigidBody(body.Transform{Position: mathx.NewVector(0, 5)}, body.NewMass(1, 1, mathx.Zero))
	b2 := body.NewRigidBody(body.Transform{Position: mathx.NewVector(2, 5)}, body.NewMass(1, 1, mathx.Zero))
	i1 := world.AddBody(b1)
	i2 := world.AddBody(b2)

	groundAnchor1 := mathx.NewVector(0, 10)
	groundAnchor2 := mathx.NewVector(2, 10)
	pj, err := joint.NewPulleyJoint(b1, b2, groundAnchor1, groundAnchor2, mathx.NewVector(0, 5), mathx.NewVector(2, 5), 1.0)
	require.NoError(t, err)
	pj.SetSlackEnabled(false)
	jIdx := world.AddJoint(pj)

	island := solve2d.Island{BodyIndices: []int{i1, i2}, JointIndices: []int{jIdx}}
	integrate := integrator(mathx.NewVector(0, -10))

	const dt = 1.0 / 60.0
	for i := 0; i < 600; i++ {
		world.Step(dt, 8, 3, []solve2d.Island{island}, integrate)
	}

	l1 := groundAnchor1.Sub(b1.WorldCenter()).Len()
	l2 := groundAnchor2.Sub(b2.WorldCenter()).Len()
	assert.InDelta(t, pj.Constant, l1+l2, 0.1, "total rope length should hold at the configured constant")
	assert.InDelta(t, b1.WorldCenter()[1], b2.WorldCenter()[1], 0.1, "equal masses at ratio 1 should settle at equal heights")
}

// TestWorldStepEmitsContactEvents exercises the Events adaptation of
// the teacher's trigger.go pair tracking: a pair present only on the first
// step must fire Enter then Exit, never Stay.
func TestWorldStepEmitsContactEvents(t *testing.T) {
	world := solve2d.NewWorld()
	ground := body.NewRigidBody(body.NewTransform(), body.StaticMass)
	box := body.NewRigidBody(body.Transform{Position: mathx.NewVector(0, 1)}, body.NewMass(1, 1, mathx.Zero))
	i1 := world.AddBody(ground)
	i2 := world.AddBody(box)

	var events []solve2d.EventType
	world.Events.Subscribe(solve2d.ContactEnter, func(e solve2d.Event) { events = append(events, e.Type()) })
	world.Events.Subscribe(solve2d.ContactStay, func(e solve2d.Event) { events = append(events, e.Type()) })
	world.Events.Subscribe(solve2d.ContactExit, func(e solve2d.Event) { events = append(events, e.Type()) })

	cc, err := contact.NewContactConstraint(ground, box, mathx.NewVector(0, 1), 0, 0.5, 0,
		[]contact.Point{{WorldPoint: mathx.NewVector(0, 1), Depth: 0}})
	require.NoError(t, err)

	withContact := solve2d.Island{BodyIndices: []int{i1, i2}, Contacts: []*contact.ContactConstraint{cc}}
	withoutContact := solve2d.Island{BodyIndices: []int{i1, i2}}

	world.Step(1.0/60.0, 4, 2, []solve2d.Island{withContact}, nil)
	world.Step(1.0/60.0, 4, 2, []solve2d.Island{withoutContact}, nil)

	require.Len(t, events, 2)
	assert.Equal(t, solve2d.ContactEnter, events[0])
	assert.Equal(t, solve2d.ContactExit, events[1])
}
