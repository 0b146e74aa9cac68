package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

func TestNewMotorJointRejectsSameBody(t *testing.T) {
	b := newTestBody(mathx.Vector{}, 1, 1)
	_, err := NewMotorJoint(b, b)
	if !errors.Is(err, ErrSameBody) {
		t.Errorf("err = %v, want ErrSameBody", err)
	}
}

func TestMotorJointDrivesToLinearAndAngularOffset(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0) // static reference
	b2 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	mj, err := NewMotorJoint(b1, b2)
	if err != nil {
		t.Fatalf("NewMotorJoint error: %v", err)
	}
	mj.SetLinearOffset(mathx.Vector{2, 1})
	mj.SetAngularOffset(0.5)
	if err := mj.SetMaxForce(50); err != nil {
		t.Fatalf("SetMaxForce error: %v", err)
	}
	if err := mj.SetMaxTorque(50); err != nil {
		t.Fatalf("SetMaxTorque error: %v", err)
	}

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 240; i++ {
		mj.Initialize(step, set)
		for j := 0; j < 4; j++ {
			mj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
	}

	target := b1.WorldPoint(mathx.Vector{2, 1})
	if dist := b2.WorldCenter().Sub(target).Len(); dist > 5e-2 {
		t.Errorf("b2 center = %v, want near %v (dist %v)", b2.WorldCenter(), target, dist)
	}
	if diff := math.Abs(b2.RotationAngle() - 0.5); diff > 5e-2 {
		t.Errorf("b2 rotation = %v, want ~0.5", b2.RotationAngle())
	}
}

func TestMotorJointSetMaxForceNegativeRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	mj, _ := NewMotorJoint(b1, b2)
	if err := mj.SetMaxForce(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetMaxForce(-1) err = %v, want ErrOutOfRange", err)
	}
}

func TestMotorJointSetCorrectionFactorOutOfRangeRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	mj, _ := NewMotorJoint(b1, b2)
	if err := mj.SetCorrectionFactor(1.5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetCorrectionFactor(1.5) err = %v, want ErrOutOfRange", err)
	}
}
