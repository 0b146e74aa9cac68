package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

func TestNewFrictionJointRejectsSameBody(t *testing.T) {
	b := newTestBody(mathx.Vector{}, 1, 1)
	_, err := NewFrictionJoint(b, b, mathx.Vector{})
	if !errors.Is(err, ErrSameBody) {
		t.Errorf("err = %v, want ErrSameBody", err)
	}
}

func TestFrictionJointDampensRelativeVelocity(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	fj, err := NewFrictionJoint(b1, b2, mathx.Vector{0.5, 0})
	if err != nil {
		t.Fatalf("NewFrictionJoint error: %v", err)
	}
	if err := fj.SetMaxForce(100); err != nil {
		t.Fatalf("SetMaxForce error: %v", err)
	}
	if err := fj.SetMaxTorque(100); err != nil {
		t.Fatalf("SetMaxTorque error: %v", err)
	}
	b2.SetLinearVelocity(mathx.Vector{3, 0})
	b2.SetAngularVelocity(2)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 120; i++ {
		fj.Initialize(step, set)
		for j := 0; j < 4; j++ {
			fj.SolveVelocity(step, set)
		}
	}
	relV := b2.LinearVelocity().Sub(b1.LinearVelocity()).Len()
	if relV > 1e-2 {
		t.Errorf("relative linear speed = %v, want ~0", relV)
	}
	if diff := math.Abs(b2.AngularVelocity() - b1.AngularVelocity()); diff > 1e-2 {
		t.Errorf("relative angular speed = %v, want ~0", diff)
	}
}

func TestFrictionJointZeroMaxForceAppliesNoImpulse(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	fj, err := NewFrictionJoint(b1, b2, mathx.Vector{0.5, 0})
	if err != nil {
		t.Fatalf("NewFrictionJoint error: %v", err)
	}
	b2.SetLinearVelocity(mathx.Vector{3, 0})

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	fj.Initialize(step, set)
	fj.SolveVelocity(step, set)

	if fj.linearImpulse.Len() != 0 {
		t.Errorf("linearImpulse = %v, want 0 with MaxForce unset", fj.linearImpulse)
	}
}

func TestFrictionJointSetMaxForceNegativeRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	fj, _ := NewFrictionJoint(b1, b2, mathx.Vector{0.5, 0})
	if err := fj.SetMaxForce(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetMaxForce(-1) err = %v, want ErrOutOfRange", err)
	}
}

func TestFrictionJointSetMaxTorqueNegativeRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	fj, _ := NewFrictionJoint(b1, b2, mathx.Vector{0.5, 0})
	if err := fj.SetMaxTorque(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetMaxTorque(-1) err = %v, want ErrOutOfRange", err)
	}
}
