package foc

import "motorcore/internal/numeric"

// PI is a single-axis PI current regulator with integrator anti-windup:
// the integral is always bounded to ±integralMax, and while the output
// saturates the integral step is only taken if the output was not
// already past the bound before it (conditional integration), matching
// spec.md §4.1 step 5.
type PI struct {
	Kp, Ki      float32
	integralMax float32
	integral    float32
}

// NewPI builds a PI regulator with the given gains and integrator clamp.
func NewPI(kp, ki, integralMax float32) *PI {
	return &PI{Kp: kp, Ki: ki, integralMax: integralMax}
}

// Update advances the regulator by one tick of duration dt (seconds) and
// returns the control output. outMin/outMax bound the output itself;
// when the raw output would exceed them, the output is clamped and the
// integrator keeps its previous value unless the output without this
// tick's integral step was still within the bound.
func (p *PI) Update(setpoint, measured, dt, outMin, outMax float32) float32 {
	err := setpoint - measured
	proposedIntegral := numeric.Clamp(p.integral+err*dt, -p.integralMax, p.integralMax)

	out := p.Kp*err + p.Ki*proposedIntegral
	if out > outMax {
		out = outMax
		// Only accept the integral step if it didn't push us further
		// past the bound than we already were (anti-windup).
		if p.Kp*err+p.Ki*p.integral <= outMax {
			p.integral = proposedIntegral
		}
	} else if out < outMin {
		out = outMin
		if p.Kp*err+p.Ki*p.integral >= outMin {
			p.integral = proposedIntegral
		}
	} else {
		p.integral = proposedIntegral
	}
	return out
}

// Reset clears the integrator, used on lifecycle transitions out of Active.
func (p *PI) Reset() {
	p.integral = 0
}
