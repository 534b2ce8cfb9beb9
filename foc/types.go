// Package foc implements the field-oriented current control loop: Clarke
// and Park transforms, two PI current regulators, and space-vector
// modulation onto a dual H-bridge, run once per ADC-synchronous interrupt
// at 10 kHz (spec.md §4.1). The loop never allocates and never suspends;
// it is invoked directly from the hard interrupt context, not scheduled
// as a cooperative task (spec.md §5).
package foc

import "motorcore/core"

// PwmMax is the duty ceiling used when no hardware carrier has been
// configured yet (e.g. in unit tests that exercise Tick directly).
const PwmMax = 2048

// State holds everything the FOC loop mutates. Exactly one writer (the
// FOC tick itself); every other task reads it through atomic or
// single-word loads (spec.md §5).
type State struct {
	IdSet, IqSet   float32 // current setpoints (A), post adaptive scaling
	IdMeas, IqMeas float32 // measured d/q currents (A)
	Vd, Vq         float32 // PI outputs before inverse Park (V)
	ElectricalAngle float32 // rad, wrapped to [0, 2pi)
	MechanicalAngle float32 // rad, wrapped to [0, 2pi)
	Velocity        float32 // rad/s, estimated from angle derivative
	LoopTimeUs      uint32  // last tick's wall-clock duration
	DeadlineMisses  uint32  // sliding-window count of ticks over budget
	Faulted         bool
}

// Config is the FOC loop's static configuration, set once from
// joint.Config at Configure time (spec.md §3 "Configuration").
type Config struct {
	PolePairs int

	// Calibrated at startup with the driver disabled (spec.md §4.2).
	OffsetA, OffsetB uint16

	// Sense transfer: volts per amp at the current-sense output (0.2 V/A
	// nominal, spec.md §4.1 step 1).
	SenseVoltsPerAmp float32
	AdcRefVolts      float32
	AdcMaxCount       uint16

	AngleOffset float32 // mechanical angle zero, rad

	CurrentKp, CurrentKi float32
	IntegralMax          float32 // anti-windup clamp on each PI integrator

	VbusNominal float32

	ITripAmps float32 // overcurrent trip threshold (spec.md §4.1 tie-breaks)

	DeadlineMissBudget uint32 // N misses in M ticks trips Error(Timeout)
	DeadlineMissWindow uint32
}

// Pwm4 is re-exported for callers that only import foc.
type Pwm4 = core.Pwm4
