package adaptive

// RelayTuner identifies PI gains via the relay-feedback (Åström–Hägglund)
// method: drive a relay of amplitude Amplitude against the measured
// error, let the loop oscillate, measure the sustained oscillation's
// period and peak-to-peak amplitude, then derive the ultimate gain Ku
// and period Tu and apply the standard Ziegler–Nichols PI rule. It is a
// standalone tuner: the calibration FSM does not call it, and nothing
// outside this package's tests drives it. Not something the teacher or
// the TMC drivers implement directly —
// grounded on the same closed-form, no-iterative-solver constraint the
// rest of this repo follows: once Ku/Tu are measured, the gain formula
// is pure algebra.
type RelayTuner struct {
	Amplitude float32

	lastSign    float32
	cycleStart  float32
	periods     []float32
	peakHigh    float32
	peakLow     float32
	measuring   bool
	cyclesNeeded int
}

// NewRelayTuner prepares a tuner that completes after the given number
// of full oscillation cycles (3-5 is typical).
func NewRelayTuner(amplitude float32, cyclesNeeded int) *RelayTuner {
	return &RelayTuner{Amplitude: amplitude, cyclesNeeded: cyclesNeeded, measuring: true}
}

// Step feeds one (time, measuredError) sample and returns the relay
// output to apply this tick.
func (r *RelayTuner) Step(t, measuredError float32) float32 {
	sign := float32(1)
	if measuredError < 0 {
		sign = -1
	}

	if measuredError > r.peakHigh {
		r.peakHigh = measuredError
	}
	if measuredError < r.peakLow {
		r.peakLow = measuredError
	}

	if r.lastSign != 0 && sign != r.lastSign && sign > 0 {
		// Rising zero-crossing: one full period completed.
		if r.cycleStart != 0 {
			r.periods = append(r.periods, t-r.cycleStart)
		}
		r.cycleStart = t
	}
	r.lastSign = sign

	if len(r.periods) >= r.cyclesNeeded {
		r.measuring = false
	}

	return sign * r.Amplitude
}

// Done reports whether enough oscillation cycles have been observed.
func (r *RelayTuner) Done() bool {
	return !r.measuring
}

// Gains computes the Ziegler-Nichols PI gains from the observed
// oscillation. Only meaningful once Done() is true.
func (r *RelayTuner) Gains() (kp, ki float32) {
	if len(r.periods) == 0 {
		return 0, 0
	}
	var sum float32
	for _, p := range r.periods {
		sum += p
	}
	tu := sum / float32(len(r.periods))

	a := (r.peakHigh - r.peakLow) / 2
	if a <= 0 {
		return 0, 0
	}
	ku := 4 * r.Amplitude / (3.14159265 * a)

	kp = 0.45 * ku
	ti := tu / 1.2
	ki = kp / ti
	return kp, ki
}
