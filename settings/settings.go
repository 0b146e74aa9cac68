// Package settings holds the per-step scalars (TimeStep) and engine-wide
// tolerances (Settings) the joint and contact solvers are configured with.
// Neither type carries policy flags beyond warm-start enablement, per
// spec §4.C.
package settings

import "math"

// TimeStep is immutable for the duration of one solver step.
type TimeStep struct {
	// DeltaTime is the step's Δt, in seconds.
	DeltaTime float64
	// InverseDeltaTime is 1/Δt (0 if Δt is 0).
	InverseDeltaTime float64
	// DeltaTimeRatio is the current Δt divided by the previous step's Δt;
	// 1.0 on the first step. Used to rescale warm-start impulses when Δt
	// varies between steps.
	DeltaTimeRatio float64
}

// NewTimeStep builds a TimeStep from the current and previous Δt. Pass 0
// for previousDeltaTime on the very first step (the ratio is then 1.0).
func NewTimeStep(deltaTime, previousDeltaTime float64) TimeStep {
	ts := TimeStep{DeltaTime: deltaTime}
	if deltaTime > 0 {
		ts.InverseDeltaTime = 1.0 / deltaTime
	}
	if previousDeltaTime > 0 {
		ts.DeltaTimeRatio = deltaTime / previousDeltaTime
	} else {
		ts.DeltaTimeRatio = 1.0
	}
	return ts
}

// Settings holds the named scalar tolerances shared by every joint and the
// contact solver.
type Settings struct {
	// LinearTolerance is the position-solve convergence tolerance for
	// linear error, in meters.
	LinearTolerance float64
	// AngularTolerance is the position-solve convergence tolerance for
	// angular error, in radians.
	AngularTolerance float64

	// MaximumLinearCorrection caps the per-step linear position
	// correction, meters.
	MaximumLinearCorrection float64
	// MaximumAngularCorrection caps the per-step angular position
	// correction, radians.
	MaximumAngularCorrection float64

	// Baumgarte is the position-projection bias coefficient in [0, 1].
	Baumgarte float64

	// RestitutionVelocity is the minimum approach speed below which
	// contacts are treated as plastic (no bounce).
	RestitutionVelocity float64

	// WarmStartingEnabled toggles reuse of the previous step's
	// accumulated impulses as this step's initial guess.
	WarmStartingEnabled bool
}

// NewDefaultSettings returns the engine's standard tolerances, matching the
// register of the teacher's own hardcoded material constants.
func NewDefaultSettings() Settings {
	return Settings{
		LinearTolerance:          0.005,
		AngularTolerance:         2.0 * math.Pi / 180.0,
		MaximumLinearCorrection:  0.2,
		MaximumAngularCorrection: 8.0 * math.Pi / 180.0,
		Baumgarte:                0.2,
		RestitutionVelocity:      1.0,
		WarmStartingEnabled:      true,
	}
}
