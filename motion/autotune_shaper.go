package motion

import "github.com/orsinium-labs/tinymath"

// stepSampleCap bounds the step-response ring used to auto-detect
// resonance: spec.md §5 requires every buffer be statically sized, and
// SPEC_FULL.md's item 4 calls out this specific ring.
const stepSampleCap = 256

// StepSample is one (time, position) observation of a step response
// fed to DetectResonance.
type StepSample struct {
	T, Pos float32
}

// StepResponseRing is the fixed-size buffer a caller fills while a step
// command is in flight, then hands to DetectResonance once the move
// settles. No other package in this module fills one.
type StepResponseRing struct {
	samples [stepSampleCap]StepSample
	n       int
}

// Reset clears the ring for a new step test.
func (r *StepResponseRing) Reset() {
	r.n = 0
}

// Add records one sample; additional samples beyond the cap are
// dropped (the oldest are kept, since resonance identification needs
// the early transient, not the settled tail).
func (r *StepResponseRing) Add(t, pos float32) {
	if r.n >= stepSampleCap {
		return
	}
	r.samples[r.n] = StepSample{T: t, Pos: pos}
	r.n++
}

func (r *StepResponseRing) Len() int { return r.n }

// DetectResonance identifies (omega_n, zeta) from a recorded step
// response against a known step target, following spec.md §4.5's
// "Auto-detection": find successive peaks of the oscillation about the
// target, derive the damped period from their spacing (-> omega_n given
// zeta), and derive zeta from the logarithmic decrement between the
// first overshoot and the undershoot that follows it.
func (r *StepResponseRing) DetectResonance(stepTarget float32) (omegaN, zeta float32, ok bool) {
	if r.n < 3 {
		return 0, 0, false
	}

	var peakT [stepSampleCap]float32
	var peakV [stepSampleCap]float32 // overshoot magnitude above target
	peaks := 0

	for i := 1; i < r.n-1; i++ {
		prev := r.samples[i-1].Pos - stepTarget
		cur := r.samples[i].Pos - stepTarget
		next := r.samples[i+1].Pos - stepTarget
		// A peak is a local extremum with the same sign as its
		// neighbors (over/undershoot about the settled target).
		if cur > prev && cur > next && cur > 0 {
			peakT[peaks] = r.samples[i].T
			peakV[peaks] = cur
			peaks++
		} else if cur < prev && cur < next && cur < 0 {
			peakT[peaks] = r.samples[i].T
			peakV[peaks] = -cur
			peaks++
		}
		if peaks >= stepSampleCap {
			break
		}
	}

	if peaks < 2 {
		return 0, 0, false
	}

	// Damped period from the mean spacing between successive
	// same-direction peaks (every other entry, since peakT alternates
	// overshoot/undershoot for an underdamped response).
	var periodSum float32
	periodCount := 0
	for i := 2; i < peaks; i += 2 {
		periodSum += peakT[i] - peakT[i-2]
		periodCount++
	}
	if periodCount == 0 {
		// Fall back to twice the half-period between the first two
		// opposite-sign peaks.
		periodSum = 2 * (peakT[1] - peakT[0])
		periodCount = 1
	}
	td := periodSum / float32(periodCount)
	if td <= 0 {
		return 0, 0, false
	}

	// Logarithmic decrement between the first two peaks, the first
	// overshoot and the undershoot after it, half a damped period apart
	// (spec.md §4.5 "decrement ratio -> zeta").
	if peakV[0] <= 0 || peakV[1] <= 0 {
		return 0, 0, false
	}
	delta := tinymath.Log(peakV[0] / peakV[1])
	zeta = delta / tinymath.Sqrt(3.14159265*3.14159265+delta*delta)
	if zeta < 0 {
		zeta = 0
	}
	if zeta > 0.99 {
		zeta = 0.99
	}

	damped := TwoPi / td
	omegaN = damped / tinymath.Sqrt(1-zeta*zeta)
	return omegaN, zeta, true
}
