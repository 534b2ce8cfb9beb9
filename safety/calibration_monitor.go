package safety

import (
	"motorcore/internal/numeric"
	"motorcore/irpc"
)

// defaultTempCapC is the fallback temperature ceiling when a
// CalibrationLimits value leaves TempCapC unset (spec.md §4.8
// "temperature <= 80 C").
const defaultTempCapC = 80

// CalibrationLimits configures one calibration.FSM run's safety
// envelope (spec.md §4.8 "Safety monitor (scoped to Calibrating)").
// VelCap and CurrentCap are the configured operating caps; the monitor
// itself applies the 1.1x margin.
type CalibrationLimits struct {
	HomePos       float32
	PosRange      float32
	VelCap        float32
	CurrentCap    float32
	TempCapC      float32
	PhaseTimeoutS float32
}

// CalibrationMonitor runs the five checks spec.md §4.8 names once per
// calibration tick: position excursion, velocity cap, current cap,
// temperature cap, and per-phase timeout. It owns no control outputs;
// on a non-ErrNone result the caller (joint) aborts the whole
// calibration run. The joint is not moved back to the home position.
type CalibrationMonitor struct {
	limits        CalibrationLimits
	phaseElapsedS float32
}

// NewCalibrationMonitor builds a monitor for one calibration run.
func NewCalibrationMonitor(limits CalibrationLimits) *CalibrationMonitor {
	if limits.TempCapC == 0 {
		limits.TempCapC = defaultTempCapC
	}
	return &CalibrationMonitor{limits: limits}
}

// ResetPhaseTimer restarts the per-phase timeout clock; joint's
// calibration driver calls this on every phase transition.
func (m *CalibrationMonitor) ResetPhaseTimer() {
	m.phaseElapsedS = 0
}

// Check advances the phase timer by dtSec and evaluates the envelope
// against one tick of plant state. Returns ErrNone or the first
// violated code, checked in the order spec.md §4.8 lists them.
func (m *CalibrationMonitor) Check(pos, vel, iq, tempC, dtSec float32) irpc.ErrorCode {
	m.phaseElapsedS += dtSec

	switch {
	case numeric.Abs(pos-m.limits.HomePos) > m.limits.PosRange:
		return irpc.ErrPositionLimit
	case numeric.Abs(vel) > m.limits.VelCap*1.1:
		return irpc.ErrVelocityLimit
	case numeric.Abs(iq) > m.limits.CurrentCap*1.1:
		return irpc.ErrCurrentLimit
	case tempC > m.limits.TempCapC:
		return irpc.ErrTemperatureLimit
	case m.limits.PhaseTimeoutS > 0 && m.phaseElapsedS > m.limits.PhaseTimeoutS:
		return irpc.ErrTimeout
	default:
		return irpc.ErrNone
	}
}
