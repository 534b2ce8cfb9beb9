package calibration

// InertiaEstimator accumulates samples from a known-torque free
// acceleration test and fits J via closed-form linear regression of
// velocity against time (slope = torque/J, since velocity should climb
// linearly while current and hence torque is held constant and
// friction is neglected for this first-pass estimate — the friction
// phase runs afterward and calibration.Validation catches any residual
// error the simplification leaves).
type InertiaEstimator struct {
	torqueConstant float32 // Nm/A, provisional value until TorqueConstant phase refines it
	commandedIq    float32
	samples        []Sample
}

func NewInertiaEstimator(torqueConstant, commandedIq float32) *InertiaEstimator {
	return &InertiaEstimator{torqueConstant: torqueConstant, commandedIq: commandedIq}
}

// AddSample records one (t, velocity) point. Samples beyond maxSamples
// are dropped (oldest retained), not appended without bound.
func (e *InertiaEstimator) AddSample(t, velocity float32) {
	if len(e.samples) >= maxSamples {
		return
	}
	e.samples = append(e.samples, Sample{T: t, Velocity: velocity})
}

func (e *InertiaEstimator) Len() int { return len(e.samples) }

// Estimate fits velocity = slope*t + intercept by least squares and
// returns J = torque / slope, plus the fit's R^2 as a confidence score
// (spec.md §4.8 "Confidence from coefficient of variation across
// trials" — this single continuous run substitutes the linear fit's
// R^2, since trials here are samples along one ramp rather than five
// discrete steps).
func (e *InertiaEstimator) Estimate() (inertia, confidence float32) {
	n := float32(len(e.samples))
	if n < 2 {
		return 0, 0
	}
	var sumT, sumV, sumTT, sumTV, sumVV float32
	for _, s := range e.samples {
		sumT += s.T
		sumV += s.Velocity
		sumTT += s.T * s.T
		sumTV += s.T * s.Velocity
		sumVV += s.Velocity * s.Velocity
	}
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0, 0
	}
	slope := (n*sumTV - sumT*sumV) / denom
	intercept := (sumV - slope*sumT) / n

	var ssRes, ssTot float32
	meanV := sumV / n
	for _, s := range e.samples {
		pred := slope*s.T + intercept
		ssRes += (s.Velocity - pred) * (s.Velocity - pred)
		ssTot += (s.Velocity - meanV) * (s.Velocity - meanV)
	}
	if ssTot > 0 {
		confidence = 1 - ssRes/ssTot
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	if slope == 0 {
		return 0, confidence
	}
	torque := e.commandedIq * e.torqueConstant
	return torque / slope, confidence
}
