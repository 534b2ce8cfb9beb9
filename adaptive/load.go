package adaptive

// LoadEstimator keeps a rolling mean of |Iq| as a percent of IqMax,
// the proxy for mechanical load every other adaptive block reacts to
// (spec.md §4.7). A simple exponential average: no ring buffer needed,
// one float of state, evaluated at the adaptive coroutine's cadence.
type LoadEstimator struct {
	iqMax float32
	alpha float32
	mean  float32
}

// NewLoadEstimator builds an estimator with time-constant alpha in
// (0,1]; smaller alpha means a slower, smoother estimate.
func NewLoadEstimator(iqMax, alpha float32) *LoadEstimator {
	return &LoadEstimator{iqMax: iqMax, alpha: alpha}
}

// Update folds in one |Iq| sample and returns the updated load%.
func (l *LoadEstimator) Update(iqMeas float32) float32 {
	abs := iqMeas
	if abs < 0 {
		abs = -abs
	}
	var pct float32
	if l.iqMax > 0 {
		pct = abs / l.iqMax * 100
	}
	l.mean += l.alpha * (pct - l.mean)
	return l.mean
}

// LoadPercent returns the last computed estimate without folding in a
// new sample.
func (l *LoadEstimator) LoadPercent() float32 {
	return l.mean
}
