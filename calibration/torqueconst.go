package calibration

// TorqueConstantEstimator refines kt (Nm/A) once inertia and friction
// are known, by averaging (J*accel + frictionTorque) / Iq across a
// constant-current acceleration trial's samples.
type TorqueConstantEstimator struct {
	inertia  float32
	friction func(velocity float32) float32
	samples  []Sample // T, Velocity, Iq
}

func NewTorqueConstantEstimator(inertia float32, friction func(float32) float32) *TorqueConstantEstimator {
	return &TorqueConstantEstimator{inertia: inertia, friction: friction}
}

func (e *TorqueConstantEstimator) AddSample(t, velocity, iq float32) {
	if len(e.samples) >= maxSamples {
		return
	}
	e.samples = append(e.samples, Sample{T: t, Velocity: velocity, Iq: iq})
}

func (e *TorqueConstantEstimator) Len() int { return len(e.samples) }

// Estimate requires at least 3 samples so the central-difference
// acceleration is defined for the interior points; endpoints are
// skipped rather than extrapolated. confidence is 1 minus the
// coefficient of variation of the per-sample kt estimates, clamped to
// [0,1] — low scatter across samples means high confidence
// (spec.md §4.8 "TorqueConstant... report confidence").
func (e *TorqueConstantEstimator) Estimate() (kt, confidence float32) {
	n := len(e.samples)
	if n < 3 {
		return 0, 0
	}
	var sum, sumSq float32
	var count float32
	for i := 1; i < n-1; i++ {
		dt := e.samples[i+1].T - e.samples[i-1].T
		if dt <= 0 {
			continue
		}
		accel := (e.samples[i+1].Velocity - e.samples[i-1].Velocity) / dt
		iq := e.samples[i].Iq
		if iq == 0 {
			continue
		}
		fric := e.friction(e.samples[i].Velocity)
		sample := (e.inertia*accel + fric) / iq
		sum += sample
		sumSq += sample * sample
		count++
	}
	if count == 0 {
		return 0, 0
	}
	mean := sum / count
	if count < 2 || mean == 0 {
		return mean, 0
	}
	variance := sumSq/count - mean*mean
	if variance < 0 {
		variance = 0
	}
	cov := sqrtF(variance) / absF(mean)
	confidence = 1 - cov
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return mean, confidence
}

func sqrtF(v float32) float32 {
	if v <= 0 {
		return 0
	}
	// Newton-Raphson, matching the embedded-path guidance in spec.md §9
	// (avoid a libm sqrt pull on the hot path); this estimator only runs
	// once per calibration phase so a few iterations is ample precision.
	x := v
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
