package foc

import (
	"motorcore/core"
	"motorcore/internal/numeric"
)

// DualBridgeSVM maps a desired stator voltage vector (valpha, vbeta) onto
// four independent PWM duties for a dual H-bridge topology: two
// electrically independent phases, each driven by one H-bridge (a high
// leg and a low leg), rather than the six-switch three-phase inverter
// classic SVPWM assumes.
//
// spec.md §9 (Open Questions) leaves this mapping unvalidated on
// hardware and asks that it be exposed as a small function and tested
// against known vectors — that is this function. Because alpha/beta is
// already the two-phase-equivalent of a three-phase stator winding, no
// hexagon-sector search is needed: each bridge's modulation index is
// simply the corresponding axis voltage normalized by the bus voltage,
// and duty_high/duty_low are chosen per spec.md §4.1 step 7 so that
// phase voltage = (duty_high - duty_low) * Vbus.
func DualBridgeSVM(valpha, vbeta, vbus float32, top uint32) Pwm4 {
	if vbus <= 0 {
		return Pwm4{}
	}
	ma := numeric.Clamp(valpha/vbus, -1, 1)
	mb := numeric.Clamp(vbeta/vbus, -1, 1)

	topF := float32(top)
	dutyAHigh := clampDuty(uint32((1+ma)/2*topF), top)
	dutyALow := clampDuty(uint32((1-ma)/2*topF), top)
	dutyBHigh := clampDuty(uint32((1+mb)/2*topF), top)
	dutyBLow := clampDuty(uint32((1-mb)/2*topF), top)

	return Pwm4{
		core.PWMValue(dutyAHigh),
		core.PWMValue(dutyALow),
		core.PWMValue(dutyBHigh),
		core.PWMValue(dutyBLow),
	}
}

func clampDuty(d, top uint32) uint32 {
	if d > top {
		return top
	}
	return d
}
