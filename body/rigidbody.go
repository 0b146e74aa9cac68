package body

import "github.com/wrenfield/solve2d/mathx"

// Transform is a 2D rigid transform: a rotation angle plus a translation.
type Transform struct {
	Position mathx.Vector
	Angle    float64
}

// NewTransform creates an identity transform.
func NewTransform() Transform {
	return Transform{}
}

// RigidBody is a minimal, concrete Body implementation adapted from the
// engine's own 3D actor.RigidBody: same integrate/sleep bookkeeping shape,
// collapsed to a scalar rotation angle and scalar inertia for 2D. A
// consuming engine is free to implement Body on its own type instead — this
// exists so the joint/contact packages and the scenario tests in solve2d
// have something concrete to drive.
type RigidBody struct {
	PreviousTransform Transform
	Transform         Transform

	Velocity        mathx.Vector
	angularVelocity float64

	mass Mass

	atRest  bool
	enabled bool

	// accumulatedForce/Torque let an external integrator (out of scope
	// for the solver core, per spec §1) queue forces the same way the
	// teacher's actor.RigidBody.AddForce/AddTorque do.
	accumulatedForce  mathx.Vector
	accumulatedTorque float64
}

// NewRigidBody builds a dynamic or static rigid body. Pass a zero Mass
// (body.StaticMass) for an immovable body.
func NewRigidBody(transform Transform, mass Mass) *RigidBody {
	return &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		mass:              mass,
		enabled:           true,
	}
}

func (rb *RigidBody) RotationAngle() float64 { return rb.Transform.Angle }

func (rb *RigidBody) WorldCenter() mathx.Vector {
	return rb.WorldPoint(rb.mass.LocalCenter)
}

func (rb *RigidBody) LocalCenter() mathx.Vector { return rb.mass.LocalCenter }

func (rb *RigidBody) LinearVelocity() mathx.Vector { return rb.Velocity }

func (rb *RigidBody) SetLinearVelocity(v mathx.Vector) { rb.Velocity = v }

func (rb *RigidBody) AngularVelocity() float64 { return rb.angularVelocity }

func (rb *RigidBody) SetAngularVelocity(w float64) { rb.angularVelocity = w }

func (rb *RigidBody) Translate(v mathx.Vector) {
	rb.Transform.Position = rb.Transform.Position.Add(v)
}

func (rb *RigidBody) Rotate(angle float64, pivot mathx.Vector) {
	center := rb.WorldCenter()
	rotatedCenter := mathx.Rotate(center.Sub(pivot), angle).Add(pivot)
	rb.Transform.Angle += angle
	// Position is the body origin, not the center of mass; place the origin
	// so the center of mass lands where the pivot rotation carries it.
	rb.Transform.Position = rotatedCenter.Sub(mathx.Rotate(rb.mass.LocalCenter, rb.Transform.Angle))
}

func (rb *RigidBody) RotateAboutCenter(angle float64) {
	rb.Rotate(angle, rb.WorldCenter())
}

func (rb *RigidBody) LocalPoint(worldPoint mathx.Vector) mathx.Vector {
	return mathx.Rotate(worldPoint.Sub(rb.Transform.Position), -rb.Transform.Angle)
}

func (rb *RigidBody) WorldPoint(localPoint mathx.Vector) mathx.Vector {
	return mathx.Rotate(localPoint, rb.Transform.Angle).Add(rb.Transform.Position)
}

func (rb *RigidBody) LocalVector(worldVector mathx.Vector) mathx.Vector {
	return mathx.Rotate(worldVector, -rb.Transform.Angle)
}

func (rb *RigidBody) WorldVector(localVector mathx.Vector) mathx.Vector {
	return mathx.Rotate(localVector, rb.Transform.Angle)
}

func (rb *RigidBody) TransformedR(v mathx.Vector) mathx.Vector {
	return mathx.Rotate(v, rb.Transform.Angle)
}

func (rb *RigidBody) SetAtRest(atRest bool) { rb.atRest = atRest }

func (rb *RigidBody) IsAtRest() bool { return rb.atRest }

func (rb *RigidBody) IsEnabled() bool { return rb.enabled }

func (rb *RigidBody) SetEnabled(enabled bool) { rb.enabled = enabled }

func (rb *RigidBody) GetMass() Mass { return rb.mass }

// AddForce queues a world-space force (N) for the next Integrate call.
func (rb *RigidBody) AddForce(force mathx.Vector) {
	if rb.mass.InverseMass == 0 {
		return
	}
	rb.SetAtRest(false)
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddTorque queues a torque (N·m) for the next Integrate call.
func (rb *RigidBody) AddTorque(torque float64) {
	if rb.mass.InverseInertia == 0 {
		return
	}
	rb.SetAtRest(false)
	rb.accumulatedTorque += torque
}

// ClearForces resets the force/torque accumulators.
func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mathx.Vector{}
	rb.accumulatedTorque = 0
}

// Integrate applies accumulated forces/gravity to velocity; Update then
// commits velocity to position — body integration is an external collaborator per spec §1;
// this is provided only so the scenario tests in solve2d can drive a
// complete step without pulling in a separate engine.
func (rb *RigidBody) Integrate(dt float64, gravity mathx.Vector) {
	if rb.mass.InverseMass == 0 && rb.mass.InverseInertia == 0 {
		rb.ClearForces()
		return
	}
	if rb.atRest {
		return
	}

	rb.PreviousTransform = rb.Transform

	if rb.mass.InverseMass > 0 {
		rb.Velocity = rb.Velocity.Add(gravity.Mul(dt))
		rb.Velocity = rb.Velocity.Add(rb.accumulatedForce.Mul(rb.mass.InverseMass * dt))
	}
	if rb.mass.InverseInertia > 0 {
		rb.angularVelocity += rb.accumulatedTorque * rb.mass.InverseInertia * dt
	}

	rb.ClearForces()
}

// Update commits the integrated velocity into the position/orientation.
func (rb *RigidBody) Update(dt float64) {
	if rb.mass.InverseMass == 0 && rb.mass.InverseInertia == 0 {
		return
	}
	if rb.atRest {
		return
	}
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))
	rb.Transform.Angle += rb.angularVelocity * dt
}

// TrySleep mirrors the teacher's actor.RigidBody.TrySleep: idles the body
// once its velocities have stayed below threshold for timeThreshold
// seconds, wakes it otherwise.
func (rb *RigidBody) TrySleep(dt, timeThreshold, velocityThreshold float64, timer *float64) {
	if rb.Velocity.Len() < velocityThreshold && abs(rb.angularVelocity) < velocityThreshold {
		*timer += dt
		if *timer >= timeThreshold {
			rb.SetAtRest(true)
			rb.Velocity = mathx.Vector{}
			rb.angularVelocity = 0
		}
	} else {
		*timer = 0
		rb.SetAtRest(false)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

var _ Body = (*RigidBody)(nil)
