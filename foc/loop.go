package foc

import (
	"motorcore/core"
	"motorcore/internal/numeric"
)

// FaultReason classifies why a tick forced the bridge to a safe state.
type FaultReason uint8

const (
	FaultNone FaultReason = iota
	FaultOverCurrent
	FaultDeadlineMiss
)

// TickInput bundles one sample of raw hardware inputs plus the setpoints
// fed down from the cascaded motion controller (spec.md §4.4) and the
// scale factors fed in from the adaptive coroutine (spec.md §4.7).
type TickInput struct {
	AdcA, AdcB, AdcVbus uint16
	EncRaw              uint16

	IdRef, IqRef float32 // pre-scale current setpoints from the velocity loop
	CurrentScale float32 // adaptive coolStep scale, applied to IqRef

	Enabled bool // gated by lifecycle + safety monitor + driver fault line
	DtSec   float32
}

// TickOutput is everything the caller needs after one tick: the duties to
// write, and the updated public state for telemetry/adaptive/interpolator
// consumption.
type TickOutput struct {
	Duties Pwm4
	State  State
	Fault  FaultReason
}

// Loop is the FOC loop instance. One per joint.
type Loop struct {
	cfg Config

	currentD *PI
	currentQ *PI

	state State

	deadlineWindow []bool // ring of pass/fail over the last N ticks
	windowPos      int
	pwmTop         uint32
}

// NewLoop builds a loop with the given static configuration.
func NewLoop(cfg Config) *Loop {
	if cfg.DeadlineMissWindow == 0 {
		cfg.DeadlineMissWindow = 100
	}
	return &Loop{
		cfg:            cfg,
		currentD:       NewPI(cfg.CurrentKp, cfg.CurrentKi, cfg.IntegralMax),
		currentQ:       NewPI(cfg.CurrentKp, cfg.CurrentKi, cfg.IntegralMax),
		deadlineWindow: make([]bool, cfg.DeadlineMissWindow),
		pwmTop:         PwmMax,
	}
}

// SetPwmTop configures the duty ceiling (returned by
// core.PWMDriver.ConfigureCarrier at startup).
func (l *Loop) SetPwmTop(top uint32) {
	l.pwmTop = top
}

// State returns a snapshot of the loop's public state. Safe to call from
// other cooperative tasks: FOC state has exactly one writer (spec.md §5).
func (l *Loop) State() State {
	return l.state
}

// countsToAmps converts a raw 12-bit ADC count (after offset subtraction)
// to measured phase current using the calibrated sense transfer
// (spec.md §4.1 step 1).
func (l *Loop) countsToAmps(raw, offset uint16) float32 {
	centered := int32(raw) - int32(offset)
	volts := float32(centered) / float32(l.cfg.AdcMaxCount) * l.cfg.AdcRefVolts
	return volts / l.cfg.SenseVoltsPerAmp
}

// Tick runs one full FOC cycle: ADC counts + encoder angle in, four PWM
// duties out. Never allocates, never suspends, never returns early
// without writing a Duties value (spec.md §4.1, §5).
func (l *Loop) Tick(in TickInput) TickOutput {
	start := core.GetTime()

	ia := l.countsToAmps(in.AdcA, l.cfg.OffsetA)
	ib := l.countsToAmps(in.AdcB, l.cfg.OffsetB)
	vbus := float32(in.AdcVbus) / float32(l.cfg.AdcMaxCount) * l.cfg.AdcRefVolts * vbusDividerGain

	// Overcurrent tie-break: latch fault and force safe state before
	// doing anything else with this sample (spec.md §4.1 "Tie-breaks").
	if numeric.Abs(ia) > l.cfg.ITripAmps || numeric.Abs(ib) > l.cfg.ITripAmps {
		l.state.Faulted = true
		l.recordDeadline(true)
		return l.safeOutput(FaultOverCurrent)
	}

	mechAngle := WrapAngle(float32(in.EncRaw)/encoderCounts*TwoPi - l.cfg.AngleOffset)
	elecAngle := ElectricalAngle(mechAngle, l.cfg.PolePairs)

	alpha, beta := Clarke(ia, ib)
	idMeas, iqMeas := Park(alpha, beta, elecAngle)

	iqRef := in.IqRef * in.CurrentScale // adaptive scaling applied before limiting (spec.md §4.1 tie-breaks)

	vbusLimit := vbus
	if vbusLimit <= 0 {
		vbusLimit = l.cfg.VbusNominal
	}

	vd := l.currentD.Update(in.IdRef, idMeas, in.DtSec, -vbusLimit, vbusLimit)
	vq := l.currentQ.Update(iqRef, iqMeas, in.DtSec, -vbusLimit, vbusLimit)

	valpha, vbeta := InversePark(vd, vq, elecAngle)
	duties := DualBridgeSVM(valpha, vbeta, vbusLimit, l.pwmTop)

	// Velocity estimate from angle derivative across the tick.
	dAngle := mechAngle - l.state.MechanicalAngle
	if dAngle > 3.14159265 {
		dAngle -= TwoPi
	} else if dAngle < -3.14159265 {
		dAngle += TwoPi
	}
	if in.DtSec > 0 {
		l.state.Velocity = dAngle / in.DtSec
	}

	l.state.IdSet, l.state.IqSet = in.IdRef, iqRef
	l.state.IdMeas, l.state.IqMeas = idMeas, iqMeas
	l.state.Vd, l.state.Vq = vd, vq
	l.state.ElectricalAngle = elecAngle
	l.state.MechanicalAngle = mechAngle
	l.state.Faulted = false

	elapsed := core.GetTime() - start
	l.state.LoopTimeUs = core.TimerToUS(elapsed)

	missed := l.state.LoopTimeUs >= DeadlineUs
	l.recordDeadline(missed)
	if missed {
		core.RecordTiming(core.EvtFocDeadline, 0, core.GetTime(), l.state.LoopTimeUs, 0)
	}

	if !in.Enabled {
		return l.safeOutput(FaultNone)
	}

	if l.deadlineMissesExceedBudget() {
		return l.safeOutput(FaultDeadlineMiss)
	}

	l.state.DeadlineMisses = l.countDeadlineMisses()
	return TickOutput{Duties: duties, State: l.state, Fault: FaultNone}
}

// DeadlineUs is the FOC tick's hard budget (spec.md §3 invariants).
const DeadlineUs = 100

// vbusDividerGain accounts for the external resistor divider on the
// bus-voltage ADC channel; set to 1 here since the divider ratio is a
// board-level constant folded into AdcRefVolts by the caller in this
// reference configuration.
const vbusDividerGain = 1.0

// encoderCounts is 2^14, the absolute encoder's full-scale count.
const encoderCounts = 16384.0

func (l *Loop) safeOutput(reason FaultReason) TickOutput {
	l.currentD.Reset()
	l.currentQ.Reset()
	return TickOutput{Duties: Pwm4{}, State: l.state, Fault: reason}
}

func (l *Loop) recordDeadline(missed bool) {
	l.deadlineWindow[l.windowPos] = missed
	l.windowPos = (l.windowPos + 1) % len(l.deadlineWindow)
}

func (l *Loop) countDeadlineMisses() uint32 {
	var n uint32
	for _, m := range l.deadlineWindow {
		if m {
			n++
		}
	}
	return n
}

func (l *Loop) deadlineMissesExceedBudget() bool {
	if l.cfg.DeadlineMissBudget == 0 {
		return false
	}
	return l.countDeadlineMisses() >= l.cfg.DeadlineMissBudget
}

