package calibration

import "github.com/orsinium-labs/tinymath"

// FrictionEstimator fits the Stribeck friction model
// T(v) = Coulomb + (StribeckPeak-Coulomb)*exp(-(v/StribeckVel)^2) + Viscous*v
// from a set of constant-velocity holding-torque trials. Coulomb and
// Viscous come from closed-form linear regression over the
// higher-velocity trials (where the Stribeck term has decayed to
// negligible); StribeckPeak is read directly from the lowest-velocity
// trial; StribeckVel is solved algebraically from one mid-velocity
// trial. No iterative curve fit, matching the rest of this package.
type FrictionEstimator struct {
	trials []Sample // Velocity, Iq holds the steady torque in Nm (caller pre-converts)
}

func NewFrictionEstimator() *FrictionEstimator {
	return &FrictionEstimator{}
}

// AddTrial records one constant-velocity holding-torque measurement.
// torqueNm is the steady-state torque needed to hold velocity.
func (e *FrictionEstimator) AddTrial(velocity, torqueNm float32) {
	if len(e.trials) >= maxSamples {
		return
	}
	e.trials = append(e.trials, Sample{Velocity: velocity, Iq: torqueNm})
}

func (e *FrictionEstimator) Len() int { return len(e.trials) }

// linearVelocityThreshold is the fraction of the max trial velocity
// above which the Stribeck dip is assumed to have decayed away.
const linearVelocityThreshold = 0.5

func (e *FrictionEstimator) Estimate() (coulomb, viscous, stribeckPeak, stribeckVel, r2 float32) {
	if len(e.trials) == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := append([]Sample(nil), e.trials...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Velocity < sorted[j-1].Velocity; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	maxVel := sorted[len(sorted)-1].Velocity
	var sumV, sumT, sumVV, sumVT float32
	var n float32
	for _, s := range sorted {
		if maxVel > 0 && s.Velocity >= linearVelocityThreshold*maxVel {
			sumV += s.Velocity
			sumT += s.Iq
			sumVV += s.Velocity * s.Velocity
			sumVT += s.Velocity * s.Iq
			n++
		}
	}
	if n >= 2 {
		denom := n*sumVV - sumV*sumV
		if denom != 0 {
			viscous = (n*sumVT - sumV*sumT) / denom
			coulomb = (sumT - viscous*sumV) / n
		}
	} else if n == 1 {
		coulomb = sumT
	}

	stribeckPeak = sorted[0].Iq

	mid := sorted[len(sorted)/2]
	if stribeckPeak > coulomb && mid.Velocity > 0 {
		ratio := (mid.Iq - coulomb - viscous*mid.Velocity) / (stribeckPeak - coulomb)
		if ratio > 0 && ratio < 1 {
			stribeckVel = mid.Velocity / tinymath.Sqrt(-tinymath.Log(ratio))
		}
	}

	r2 = frictionR2(sorted, coulomb, viscous, stribeckPeak, stribeckVel)
	return coulomb, viscous, stribeckPeak, stribeckVel, r2
}

// frictionR2 reports the fitted Stribeck model's R^2 across all trials
// (spec.md §4.8 Friction phase, "report R²").
func frictionR2(trials []Sample, coulomb, viscous, stribeckPeak, stribeckVel float32) float32 {
	n := float32(len(trials))
	if n == 0 {
		return 0
	}
	var sumT, ssRes, ssTot float32
	for _, s := range trials {
		sumT += s.Iq
	}
	mean := sumT / n
	for _, s := range trials {
		sign := float32(1)
		if s.Velocity < 0 {
			sign = -1
		}
		abs := s.Velocity * sign
		stribeck := float32(0)
		if stribeckVel > 0 {
			stribeck = (stribeckPeak - coulomb) * tinymath.Exp(-(abs*abs)/(stribeckVel*stribeckVel))
		}
		pred := sign*(coulomb+stribeck) + viscous*s.Velocity
		ssRes += (s.Iq - pred) * (s.Iq - pred)
		ssTot += (s.Iq - mean) * (s.Iq - mean)
	}
	if ssTot == 0 {
		return 0
	}
	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		r2 = 0
	}
	if r2 > 1 {
		r2 = 1
	}
	return r2
}
