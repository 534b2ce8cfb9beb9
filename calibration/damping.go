package calibration

import "github.com/orsinium-labs/tinymath"

// DampingEstimator fits a coastdown test: torque is cut at t=0 with the
// rotor spinning, and velocity decays as v(t) = v0*exp(-(B/J)*t). The
// decay constant comes from a closed-form linear regression of
// ln(v) against t (slope = -B/J), avoiding any iterative exponential
// fit.
type DampingEstimator struct {
	inertia float32
	samples []Sample // T, Velocity
}

func NewDampingEstimator(inertia float32) *DampingEstimator {
	return &DampingEstimator{inertia: inertia}
}

func (e *DampingEstimator) AddSample(t, velocity float32) {
	if len(e.samples) >= maxSamples {
		return
	}
	e.samples = append(e.samples, Sample{T: t, Velocity: velocity})
}

func (e *DampingEstimator) Len() int { return len(e.samples) }

func (e *DampingEstimator) Estimate() float32 {
	n := float32(0)
	var sumT, sumL, sumTT, sumTL float32
	for _, s := range e.samples {
		if s.Velocity <= 0 {
			continue
		}
		l := tinymath.Log(s.Velocity)
		sumT += s.T
		sumL += l
		sumTT += s.T * s.T
		sumTL += s.T * l
		n++
	}
	if n < 2 {
		return 0
	}
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	slope := (n*sumTL - sumT*sumL) / denom
	return -slope * e.inertia
}
