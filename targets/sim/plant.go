// Package sim provides a pure-Go HAL implementation of every core
// capability interface (PWM, ADC, encoder, GPIO, bridge, CAN, flash),
// backed by a simple electrical+mechanical motor model rather than real
// silicon, for bench testing and cmd/simcore. It mirrors the teacher's
// one-target-per-directory layout (targets/rp2040, targets/rp2350) but
// targets no hardware at all.
package sim

import (
	"motorcore/foc"
	"motorcore/internal/numeric"
)

// PlantConfig describes the simulated motor and sense chain. Electrical
// and mechanical constants are plain SI units; Kt doubles as the
// back-EMF constant (Kt[N*m/A] == Ke[V*s/rad] in SI, the standard
// identity for a PM machine), so the plant needs no separate Ke field.
type PlantConfig struct {
	PolePairs int

	PhaseR float32 // ohms
	PhaseL float32 // henries
	Kt     float32 // N*m/A == V*s/rad

	InertiaKgM2 float32
	Damping     float32 // N*m*s/rad, viscous
	Coulomb     float32 // N*m, dry friction
	LoadTorque  float32 // externally applied load, N*m

	SenseVoltsPerAmp float32
	AdcRefVolts      float32
	AdcMaxCount      uint16
	OffsetA, OffsetB uint16

	VbusNominal float32
}

// encoderCounts mirrors foc/loop.go's unexported constant of the same
// name (foc.Tick's encoder decode is not exported for reuse here);
// nothing checks that the two stay equal.
const encoderCounts = 16384.0

const oneOverSqrt3 = 0.5773502691896258

// Plant integrates the dual-H-bridge electrical model (alpha/beta are
// the two physical winding axes the bridges drive directly, per
// foc.DualBridgeSVM's doc comment) and single-inertia mechanical model
// one Euler step at a time.
type Plant struct {
	cfg PlantConfig

	iAlpha, iBeta float32 // stator-frame winding currents, A
	theta         float32 // mechanical angle, rad
	omega         float32 // mechanical velocity, rad/s

	pwmTop uint32
	duties [4]uint32 // last commanded dutyAHigh,ALow,dutyBHigh,BLow
}

// NewPlant builds a plant at rest.
func NewPlant(cfg PlantConfig) *Plant {
	return &Plant{cfg: cfg, pwmTop: foc.PwmMax}
}

// SetPwmTop matches the ceiling the PWM driver reports via
// ConfigureCarrier, so duty-to-voltage recovery below uses the same
// scale foc.DualBridgeSVM wrote duties with.
func (p *Plant) SetPwmTop(top uint32) {
	p.pwmTop = top
}

// setDuties is called by the simulated PWMDriver each tick.
func (p *Plant) setDuties(d [4]uint32) {
	p.duties = d
}

// commandedVoltages recovers (valpha, vbeta) from the last four duties,
// inverting foc.DualBridgeSVM's dutyHigh/dutyLow encoding:
// dutyHigh = (1+m)/2*top, dutyLow = (1-m)/2*top => m = (dutyHigh-dutyLow)/top.
func (p *Plant) commandedVoltages(vbus float32) (valpha, vbeta float32) {
	if p.pwmTop == 0 {
		return 0, 0
	}
	top := float32(p.pwmTop)
	ma := (float32(p.duties[0]) - float32(p.duties[1])) / top
	mb := (float32(p.duties[2]) - float32(p.duties[3])) / top
	return numeric.Clamp(ma, -1, 1) * vbus, numeric.Clamp(mb, -1, 1) * vbus
}

// Step advances the plant by dtSec using the duties last written
// through the simulated PWM driver, the same Clarke/Park/InversePark
// math foc.Loop.Tick uses so the measured currents the ADC driver
// reports round-trip exactly through foc.Clarke.
func (p *Plant) Step(dtSec float32) {
	elecAngle := foc.ElectricalAngle(p.theta, p.cfg.PolePairs)
	omegaE := p.omega * float32(p.cfg.PolePairs)

	valpha, vbeta := p.commandedVoltages(p.cfg.VbusNominal)

	// Back-EMF is purely q-axis in the rotor frame; InversePark projects
	// it onto the stationary alpha/beta axes the windings actually see.
	ealpha, ebeta := foc.InversePark(0, p.cfg.Kt*omegaE, elecAngle)

	if p.cfg.PhaseL > 0 {
		p.iAlpha += dtSec * (valpha - p.cfg.PhaseR*p.iAlpha - ealpha) / p.cfg.PhaseL
		p.iBeta += dtSec * (vbeta - p.cfg.PhaseR*p.iBeta - ebeta) / p.cfg.PhaseL
	}

	_, iq := foc.Park(p.iAlpha, p.iBeta, elecAngle)
	torque := p.cfg.Kt * iq

	friction := p.cfg.Damping*p.omega + coulombTorque(p.cfg.Coulomb, p.omega)
	if p.cfg.InertiaKgM2 > 0 {
		p.omega += dtSec * (torque - friction - p.cfg.LoadTorque) / p.cfg.InertiaKgM2
	}
	p.theta = foc.WrapAngle(p.theta + dtSec*p.omega)
}

func coulombTorque(coulomb, omega float32) float32 {
	switch {
	case omega > 1e-4:
		return coulomb
	case omega < -1e-4:
		return -coulomb
	default:
		return 0
	}
}

// measuredPhaseCurrents inverts foc.Clarke's ia/ib -> alpha/beta map so
// the two values the ADC driver reports decode back to (iAlpha, iBeta)
// exactly when foc.Clarke runs on them.
func (p *Plant) measuredPhaseCurrents() (ia, ib float32) {
	ia = p.iAlpha
	ib = (p.iBeta*1/oneOverSqrt3 - p.iAlpha) / 2
	return ia, ib
}

// encoderRaw returns the absolute encoder's 14-bit count for the
// current mechanical angle.
func (p *Plant) encoderRaw() uint16 {
	return uint16(p.theta / foc.TwoPi * encoderCounts)
}

// currentToCount converts a simulated phase current to a raw ADC count
// around the configured offset, the exact inverse of foc.Loop.countsToAmps.
func (p *Plant) currentToCount(amps float32, offset uint16) uint16 {
	volts := amps * p.cfg.SenseVoltsPerAmp
	centered := volts / p.cfg.AdcRefVolts * float32(p.cfg.AdcMaxCount)
	raw := int32(offset) + int32(centered)
	return clampCount(raw, p.cfg.AdcMaxCount)
}

func (p *Plant) vbusCount() uint16 {
	raw := p.cfg.VbusNominal / p.cfg.AdcRefVolts * float32(p.cfg.AdcMaxCount)
	return clampCount(int32(raw), p.cfg.AdcMaxCount)
}

func clampCount(v int32, max uint16) uint16 {
	if v < 0 {
		return 0
	}
	if v > int32(max) {
		return max
	}
	return uint16(v)
}

// MechanicalAngle and Velocity expose the plant's true state for test
// assertions and cmd/simcore logging; neither is read by the HAL
// drivers themselves (they go through encoderRaw/measuredPhaseCurrents
// so the control loop only ever sees what real hardware would report).
func (p *Plant) MechanicalAngle() float32 { return p.theta }
func (p *Plant) Velocity() float32        { return p.omega }

// SetLoadTorque lets a bench harness apply an external load mid-run.
func (p *Plant) SetLoadTorque(nm float32) { p.cfg.LoadTorque = nm }
