package motion

import "github.com/orsinium-labs/tinymath"

// toleranceV is the residual-vibration tolerance the extra-insensitive
// (EI) shaper is designed against (Singer & Seering 1990). Fixed rather
// than configurable: the robustness/rise-time tradeoff it controls is
// already exposed to the caller via ShaperKind.
const toleranceV = 0.05

// Impulses is a short fixed-size impulse sequence: times (seconds after
// the unshaped command) and amplitudes (sum to 1). Max 4 impulses is
// enough for ZV (2), ZVD (3) and EI (3).
type Impulses struct {
	Times [4]float32
	Amps  [4]float32
	N     int
}

// DeriveImpulses builds the impulse sequence for kind given the
// resonance frequency omega (rad/s) and damping ratio zeta, closed
// form, no iteration (spec.md §4.5).
func DeriveImpulses(kind ShaperKind, omega, zeta float32) Impulses {
	if kind == ShaperNone || omega <= 0 {
		return Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	}
	if zeta < 0 {
		zeta = 0
	}
	if zeta > 0.99 {
		zeta = 0.99
	}
	damped := omega * tinymath.Sqrt(1-zeta*zeta)
	td := TwoPi / damped
	k := tinymath.Exp(-zeta * 3.14159265 / tinymath.Sqrt(1-zeta*zeta))

	switch kind {
	case ShaperZV:
		denom := 1 + k
		return Impulses{
			Times: [4]float32{0, td / 2},
			Amps:  [4]float32{1 / denom, k / denom},
			N:     2,
		}
	case ShaperZVD:
		denom := 1 + 2*k + k*k
		return Impulses{
			Times: [4]float32{0, td / 2, td},
			Amps:  [4]float32{1 / denom, 2 * k / denom, k * k / denom},
			N:     3,
		}
	case ShaperEI:
		return Impulses{
			Times: [4]float32{0, td / 2, td},
			Amps:  [4]float32{0.25 * (1 + toleranceV), 0.5 * (1 - toleranceV), 0.25 * (1 + toleranceV)},
			N:     3,
		}
	default:
		return Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	}
}

// TwoPi is re-declared here (not imported from foc, which would create
// a reverse dependency) matching the same constant.
const TwoPi = 2 * 3.14159265358979323846

// Shape evaluates a shaped reference point at time t by summing
// amplitude-weighted, time-delayed samples of the unshaped trajectory.
// Because Trajectory is a deterministic function of elapsed time, this
// needs no command-history buffer: each delayed sample is just another
// Evaluate call (Evaluate already clamps to [0, Duration], which
// correctly holds position at the start/end points the impulses
// reference before/after the move).
func Shape(tr *Trajectory, imp Impulses, t float32) Point {
	var out Point
	for i := 0; i < imp.N; i++ {
		p := tr.Evaluate(t - imp.Times[i])
		out.Pos += imp.Amps[i] * p.Pos
		out.Vel += imp.Amps[i] * p.Vel
		out.Acc += imp.Amps[i] * p.Acc
	}
	return out
}

// ShapedDuration is how long the shaped reference takes to settle: the
// trajectory's own duration plus the shaper's span.
func ShapedDuration(tr *Trajectory, imp Impulses) float32 {
	span := imp.Times[imp.N-1]
	return tr.Duration + span
}
