package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/wrenfield/solve2d/mathx"
	"github.com/wrenfield/solve2d/settings"
)

func TestNewPrismaticJointRejectsZeroAxis(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 0, 0)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	_, err := NewPrismaticJoint(b1, b2, mathx.Vector{0, 0}, mathx.Vector{0, 0})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
}

func TestPrismaticJointStopsAtUpperLimit(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	pj, err := NewPrismaticJoint(b1, b2, mathx.Vector{0, 0}, mathx.Vector{1, 0})
	if err != nil {
		t.Fatalf("NewPrismaticJoint error: %v", err)
	}
	if err := pj.SetLimits(0, 1); err != nil {
		t.Fatalf("SetLimits error: %v", err)
	}
	pj.SetLowerLimitEnabled(true)
	pj.SetUpperLimitEnabled(true)

	b2.SetLinearVelocity(mathx.Vector{5, 0})
	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 120; i++ {
		pj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			pj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			pj.SolvePosition(step, set)
		}
	}
	translation := pj.translation()
	if translation > 1+set.LinearTolerance*4 {
		t.Errorf("translation = %v, want <= 1", translation)
	}
}

func TestPrismaticJointKeepsPerpendicularZero(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	pj, err := NewPrismaticJoint(b1, b2, mathx.Vector{0, 0}, mathx.Vector{1, 0})
	if err != nil {
		t.Fatalf("NewPrismaticJoint error: %v", err)
	}
	b2.SetLinearVelocity(mathx.Vector{1, 3}) // drifting off-axis
	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 30; i++ {
		pj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			pj.SolveVelocity(step, set)
		}
		b2.Update(step.DeltaTime)
		for j := 0; j < 4; j++ {
			pj.SolvePosition(step, set)
		}
	}
	perpOffset := b2.WorldCenter()[1]
	if math.Abs(perpOffset) > set.LinearTolerance*4 {
		t.Errorf("perpendicular offset = %v, want ~0", perpOffset)
	}
}

func TestPrismaticJointMotorDrivesTranslation(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	pj, err := NewPrismaticJoint(b1, b2, mathx.Vector{0, 0}, mathx.Vector{1, 0})
	if err != nil {
		t.Fatalf("NewPrismaticJoint error: %v", err)
	}
	pj.SetMotorEnabled(true)
	pj.SetMotorSpeed(2)
	if err := pj.SetMaxMotorForce(1000); err != nil {
		t.Fatalf("SetMaxMotorForce error: %v", err)
	}
	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 60; i++ {
		pj.Initialize(step, set)
		for j := 0; j < 8; j++ {
			pj.SolveVelocity(step, set)
		}
	}
	if diff := math.Abs(b2.LinearVelocity()[0] - 2); diff > 1e-3 {
		t.Errorf("axial velocity = %v, want ~2", b2.LinearVelocity()[0])
	}
}

func TestPrismaticJointSolvePositionPullsBackInsideLimits(t *testing.T) {
	b1 := newTestBody(mathx.Vector{0, 0}, 0, 0)
	b2 := newTestBody(mathx.Vector{0, 0}, 1, 1)
	pj, err := NewPrismaticJoint(b1, b2, mathx.Vector{0, 0}, mathx.Vector{1, 0})
	if err != nil {
		t.Fatalf("NewPrismaticJoint error: %v", err)
	}
	b2.Transform.Position = mathx.Vector{3, 0} // placed 1 unit past the upper limit
	if err := pj.SetLimits(0, 2); err != nil {
		t.Fatalf("SetLimits error: %v", err)
	}
	pj.SetLowerLimitEnabled(true)
	pj.SetUpperLimitEnabled(true)

	set := settings.NewDefaultSettings()
	step := settings.NewTimeStep(1.0/60.0, 0)
	for i := 0; i < 60; i++ {
		pj.SolvePosition(step, set)
	}
	translation := pj.translation()
	if translation > 2+set.LinearTolerance*4 {
		t.Errorf("translation = %v, want <= 2 after position correction alone", translation)
	}
}

func TestPrismaticJointMaxMotorForceNegativeRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	pj, _ := NewPrismaticJoint(b1, b2, mathx.Vector{0.5, 0}, mathx.Vector{1, 0})
	if err := pj.SetMaxMotorForce(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetMaxMotorForce(-1) err = %v, want ErrOutOfRange", err)
	}
}

func TestPrismaticJointSetLimitsInvertedRejected(t *testing.T) {
	b1 := newTestBody(mathx.Vector{}, 1, 1)
	b2 := newTestBody(mathx.Vector{1, 0}, 1, 1)
	pj, _ := NewPrismaticJoint(b1, b2, mathx.Vector{0.5, 0}, mathx.Vector{1, 0})
	if err := pj.SetLimits(1, -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetLimits(1,-1) err = %v, want ErrOutOfRange", err)
	}
}
