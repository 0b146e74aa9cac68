package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

func TestNewAngleJointRejectsSameBody(t *testing.T) {
	b := newTestBody(mathx.Vector{}, 1, 1)
	_, err := NewAngleJoint(b, b)
	if !errors.Is(err, ErrSameBody) {
		t.Errorf("err = %v, want ErrSameBody", err)
	}
}

func TestAngleJointBilateralConvergesRelativeVelocity(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{}, 1, 1)
	aj, err := NewAngleJoint(b1, b2)
	if err != nil {
		t.Fatalf("NewAngleJoint error: %v", err)
	}
	b1.SetAngularVelocity(2)
	b2.SetAngularVelocity(-3)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 10; i++ {
		aj.Initialize(step, set)
		for j := 0; j < 4; j++ {
			aj.SolveVelocity(step, set)
		}
	}
	if diff := math.Abs(b1.AngularVelocity() - b2.AngularVelocity()); diff > 1e-6 {
		t.Errorf("relative angular velocity = %v, want ~0", diff)
	}
}

func TestAngleJointRatioZeroRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{}, 1, 1)
	aj, _ := NewAngleJoint(b1, b2)
	if err := aj.SetRatio(0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetRatio(0) err = %v, want ErrOutOfRange", err)
	}
}

func TestAngleJointRatioCouplesVelocity(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{}, 1, 1)
	aj, _ := NewAngleJoint(b1, b2)
	if err := aj.SetRatio(2); err != nil {
		t.Fatalf("SetRatio error: %v", err)
	}
	b1.SetAngularVelocity(0)
	b2.SetAngularVelocity(5)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 10; i++ {
		aj.Initialize(step, set)
		for j := 0; j < 4; j++ {
			aj.SolveVelocity(step, set)
		}
	}
	if diff := math.Abs(b1.AngularVelocity() - 2*b2.AngularVelocity()); diff > 1e-6 {
		t.Errorf("ω1 - ratio·ω2 = %v, want ~0", diff)
	}
}

func TestAngleJointLimitsClampRelativeAngle(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 0, 0)
	b2 := newTestBody(mathx.Vector{}, 1, 1)
	aj, err := NewAngleJoint(b1, b2)
	if err != nil {
		t.Fatalf("NewAngleJoint error: %v", err)
	}
	if err := aj.SetLimits(-0.5, 0.5); err != nil {
		t.Fatalf("SetLimits error: %v", err)
	}
	aj.SetLowerLimitEnabled(true)
	aj.SetUpperLimitEnabled(true)
	b2.SetAngularVelocity(10)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 60; i++ {
		aj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			aj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			aj.SolvePosition(step, set)
		}
	}
	angle := b2.RotationAngle() - b1.RotationAngle()
	if angle > 0.5+set.AngularTolerance*4 {
		t.Errorf("relative angle = %v, want <= 0.5", angle)
	}
}

func TestAngleJointLimitsClampAfterWrapAround(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 0, 0)
	b2 := newTestBody(mathx.Vector{}, 1, 1)
	aj, err := NewAngleJoint(b1, b2)
	if err != nil {
		t.Fatalf("NewAngleJoint error: %v", err)
	}
	if err := aj.SetLimits(-0.5, 0.5); err != nil {
		t.Fatalf("SetLimits error: %v", err)
	}
	aj.SetLowerLimitEnabled(true)
	aj.SetUpperLimitEnabled(true)

	// Start with a relative rotation just past a full turn, where the raw
	// (unwrapped) difference is ~2π+0.2 and would compare as badly out of
	// range against the ±0.5 limits unless relativeAngle wraps it first.
	b2.Transform.Angle = 2*math.Pi + 0.2
	b2.SetAngularVelocity(10)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 60; i++ {
		aj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			aj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			aj.SolvePosition(step, set)
		}
	}
	angle := mathx.WrapAngle(b2.RotationAngle() - b1.RotationAngle())
	if angle > 0.5+set.AngularTolerance*4 {
		t.Errorf("wrapped relative angle = %v, want <= 0.5", angle)
	}
}

func TestAngleJointSetLimitsInvertedRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{}, 1, 1)
	aj, _ := NewAngleJoint(b1, b2)
	if err := aj.SetLimits(1, -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetLimits(1,-1) err = %v, want ErrOutOfRange", err)
	}
}
