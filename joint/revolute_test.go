package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

func TestNewRevoluteJointRejectsSameBody(t *testing.T) {
	b := newTestBody(mathx.Vector{}, 1, 1)
	_, err := NewRevoluteJoint(b, b, mathx.Vector{})
	if !errors.Is(err, ErrSameBody) {
		t.Errorf("err = %v, want ErrSameBody", err)
	}
}

func TestRevoluteJointPendulumKeepsAnchorsCoincident(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0) // static pivot
	b2 := newTestBody(mathx.Vector{2, 0}, 1, 1)
	rj, err := NewRevoluteJoint(b1, b2, mathx.Vector{0, 0})
	if err != nil {
		t.Fatalf("NewRevoluteJoint error: %v", err)
	}

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	gravity := mathx.Vector{0, -9.8}

	for i := 0; i < 120; i++ {
		b2.Integrate(step.DeltaTime, gravity)
		rj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			rj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			rj.SolvePosition(step, set)
		}
	}

	anchor1 := b1.WorldPoint(rj.LocalAnchor1)
	anchor2 := b2.WorldPoint(rj.LocalAnchor2)
	if gap := anchor1.Sub(anchor2).Len(); gap > set.LinearTolerance*4 {
		t.Errorf("anchor gap = %v, want ~0", gap)
	}
}

func TestRevoluteJointMotorDrivesRelativeVelocity(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	rj, err := NewRevoluteJoint(b1, b2, mathx.Vector{0, 0})
	if err != nil {
		t.Fatalf("NewRevoluteJoint error: %v", err)
	}
	rj.SetMotorEnabled(true)
	rj.SetMotorSpeed(2)
	if err := rj.SetMaxMotorTorque(1000); err != nil {
		t.Fatalf("SetMaxMotorTorque error: %v", err)
	}

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 60; i++ {
		rj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			rj.SolveVelocity(step, set)
		}
	}
	if diff := math.Abs(b2.AngularVelocity() - 2); diff > 1e-3 {
		t.Errorf("ω2 = %v, want ~2", b2.AngularVelocity())
	}
}

func TestRevoluteJointMaxMotorTorqueNegativeRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	rj, _ := NewRevoluteJoint(b1, b2, mathx.Vector{0.5, 0})
	if err := rj.SetMaxMotorTorque(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetMaxMotorTorque(-1) err = %v, want ErrOutOfRange", err)
	}
}

func TestRevoluteJointLimitsClampRelativeAngle(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	rj, err := NewRevoluteJoint(b1, b2, mathx.Vector{0, 0})
	if err != nil {
		t.Fatalf("NewRevoluteJoint error: %v", err)
	}
	if err := rj.SetLimits(-0.3, 0.3); err != nil {
		t.Fatalf("SetLimits error: %v", err)
	}
	rj.SetLowerLimitEnabled(true)
	rj.SetUpperLimitEnabled(true)
	b2.SetAngularVelocity(10)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 90; i++ {
		rj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			rj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			rj.SolvePosition(step, set)
		}
	}
	angle := b2.RotationAngle() - b1.RotationAngle()
	if angle > 0.3+set.AngularTolerance*4 {
		t.Errorf("relative angle = %v, want <= 0.3", angle)
	}
}

func TestRevoluteJointLimitsClampAfterWrapAround(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	rj, err := NewRevoluteJoint(b1, b2, mathx.Vector{0, 0})
	if err != nil {
		t.Fatalf("NewRevoluteJoint error: %v", err)
	}
	if err := rj.SetLimits(-0.3, 0.3); err != nil {
		t.Fatalf("SetLimits error: %v", err)
	}
	rj.SetLowerLimitEnabled(true)
	rj.SetUpperLimitEnabled(true)

	// Relative rotation just past a full turn; relativeAngle must wrap this
	// back to ~0.1 rather than comparing the raw ~2π+0.1 against ±0.3.
	b2.Transform.Angle = 2*math.Pi + 0.1
	b2.SetAngularVelocity(10)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 90; i++ {
		rj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			rj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			rj.SolvePosition(step, set)
		}
	}
	angle := mathx.WrapAngle(b2.RotationAngle() - b1.RotationAngle())
	if angle > 0.3+set.AngularTolerance*4 {
		t.Errorf("wrapped relative angle = %v, want <= 0.3", angle)
	}
}

func TestRevoluteJointSetLimitsInvertedRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	rj, _ := NewRevoluteJoint(b1, b2, mathx.Vector{0.5, 0})
	if err := rj.SetLimits(1, -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetLimits(1,-1) err = %v, want ErrOutOfRange", err)
	}
}
