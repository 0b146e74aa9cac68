package joint

import (
	"fmt"
	"math"

	"github.com/wrenfield/solve2d/mathx"
)

// SpringMode selects which of frequency/stiffness is the canonical input
// for a soft constraint; the other is derived on Initialize (spec §4.C).
type SpringMode int

const (
	// SpringModeFrequency takes frequency (Hz) as the canonical input.
	SpringModeFrequency SpringMode = iota
	// SpringModeStiffness takes stiffness (k) as the canonical input.
	SpringModeStiffness
)

// Spring holds one joint's soft-constraint configuration and the
// per-Initialize derived quantities (CIM/gamma, ERP). It is embedded by
// value in every joint kind that supports a spring feature (Distance,
// Prismatic, Wheel, Weld, Pin).
type Spring struct {
	Enabled       bool
	Mode          SpringMode
	Frequency     float64 // Hz
	Stiffness     float64 // k
	DampingRatio  float64 // ζ ∈ [0, 1]

	// Derived each Initialize:
	Damping float64 // d
	Gamma   float64 // CIM
	ERP     float64
}

// SetFrequency sets the canonical spring input to frequency (Hz) and
// switches Mode to SpringModeFrequency. Negative frequency is rejected.
func (s *Spring) SetFrequency(hz float64) error {
	if hz < 0 {
		return fmt.Errorf("%w: frequency %v must be >= 0", ErrOutOfRange, hz)
	}
	s.Mode = SpringModeFrequency
	s.Frequency = hz
	return nil
}

// SetStiffness sets the canonical spring input to stiffness k and switches
// Mode to SpringModeStiffness. Negative stiffness is rejected.
func (s *Spring) SetStiffness(k float64) error {
	if k < 0 {
		return fmt.Errorf("%w: stiffness %v must be >= 0", ErrOutOfRange, k)
	}
	s.Mode = SpringModeStiffness
	s.Stiffness = k
	return nil
}

// SetDampingRatio sets ζ, the damping ratio; must lie in [0, 1].
func (s *Spring) SetDampingRatio(zeta float64) error {
	if zeta < 0 || zeta > 1 {
		return fmt.Errorf("%w: damping ratio %v must be in [0,1]", ErrOutOfRange, zeta)
	}
	s.DampingRatio = zeta
	return nil
}

// Derive recomputes Stiffness/Frequency (whichever is not canonical),
// Damping, Gamma, and ERP from the current mode and reduced mass m, for
// Δt = dt. Call once per Initialize.
func (s *Spring) Derive(m, dt float64) {
	if !s.Enabled {
		s.Damping, s.Gamma, s.ERP = 0, 0, 0
		return
	}

	omega := NaturalFrequency(s.Frequency)
	switch s.Mode {
	case SpringModeStiffness:
		omega = OmegaFromStiffness(s.Stiffness, m)
		s.Frequency = omega / (2 * math.Pi)
	default:
		s.Stiffness = StiffnessFromOmega(omega, m)
	}

	s.Damping = DampingCoefficient(s.DampingRatio, m, omega)
	s.Gamma = CIM(s.Stiffness, s.Damping, dt)
	s.ERP = ERP(s.Stiffness, s.Damping, dt)
}

// IsHard reports whether the spring feature is off or has zero stiffness,
// i.e. the joint should solve its constraint rigidly rather than softly.
func (s *Spring) IsHard() bool { return !s.Enabled || s.Stiffness == 0 }

// NaturalFrequency converts a frequency in Hz to angular frequency ω = 2πf.
func NaturalFrequency(f float64) float64 { return 2 * math.Pi * f }

// FrequencyFromOmega converts angular frequency back to Hz.
func FrequencyFromOmega(omega float64) float64 { return omega / (2 * math.Pi) }

// OmegaFromStiffness returns ω = sqrt(k/m), or 0 if m <= ε.
func OmegaFromStiffness(k, m float64) float64 {
	if m <= mathx.Epsilon {
		return 0
	}
	return math.Sqrt(k / m)
}

// StiffnessFromOmega returns k = m·ω².
func StiffnessFromOmega(omega, m float64) float64 { return m * omega * omega }

// DampingCoefficient returns d = ζ·2·m·ω (2mω is critical damping).
func DampingCoefficient(zeta, m, omega float64) float64 { return zeta * 2 * m * omega }

// CIM returns γ = 1 / (Δt·(Δt·k + d)), or 0 if the denominator is at or
// below ε.
func CIM(k, d, dt float64) float64 {
	denom := dt * (dt*k + d)
	if denom <= mathx.Epsilon {
		return 0
	}
	return 1.0 / denom
}

// ERP returns the error-reduction parameter k / (Δt·k + d), or 0 if the
// denominator is at or below ε.
func ERP(k, d, dt float64) float64 {
	denom := dt*k + d
	if denom <= mathx.Epsilon {
		return 0
	}
	return k / denom
}

// ReducedMass returns the two-body reduced mass m1*m2/(m1+m2), falling
// back to whichever mass is positive, or 0 if both are zero (infinite
// mass both sides).
func ReducedMass(invMass1, invMass2 float64) float64 {
	m1, m2 := inverseOrZero(invMass1), inverseOrZero(invMass2)
	switch {
	case m1 > 0 && m2 > 0:
		return m1 * m2 / (m1 + m2)
	case m1 > 0:
		return m1
	case m2 > 0:
		return m2
	default:
		return 0
	}
}

func inverseOrZero(invMass float64) float64 {
	if invMass <= mathx.Epsilon {
		return 0
	}
	return 1.0 / invMass
}
