//go:build tinygo

package mcu

import (
	"machine"

	"motorcore/core"
)

// ADCDriver reads the two phase-current channels and the bus-voltage
// divider channel. Grounded on targets/rp2040/adc.go's
// machine.ADC{Pin:}/InitADC pattern, but bundled into one CurrentSample
// per call rather than the teacher's independent per-channel polling.
// SampleSync reads the three channels one after another with Get(); the
// conversions are not triggered by the PWM timer, so they are not
// aligned to the PWM midpoint.
type ADCDriver struct {
	chA, chB, chVbus machine.ADC
}

// NewADCDriver configures all three channels. machine.ADC.Get() returns
// a 16-bit-scaled reading on every TinyGo target; >>4 recovers the
// 12-bit count spec.md §4.2's sense chain assumes.
func NewADCDriver(pinA, pinB, pinVbus machine.Pin) *ADCDriver {
	machine.InitADC()
	d := &ADCDriver{
		chA:    machine.ADC{Pin: pinA},
		chB:    machine.ADC{Pin: pinB},
		chVbus: machine.ADC{Pin: pinVbus},
	}
	d.chA.Configure(machine.ADCConfig{})
	d.chB.Configure(machine.ADCConfig{})
	d.chVbus.Configure(machine.ADCConfig{})
	return d
}

func (d *ADCDriver) SampleSync() core.CurrentSample {
	return core.CurrentSample{
		A:     d.chA.Get() >> 4,
		B:     d.chB.Get() >> 4,
		Vbus:  d.chVbus.Get() >> 4,
		Ready: true,
	}
}

func (d *ADCDriver) CalibrateOffsets(samples int) (offsetA, offsetB uint16) {
	if samples <= 0 {
		return 0, 0
	}
	var sumA, sumB uint32
	for i := 0; i < samples; i++ {
		sumA += uint32(d.chA.Get() >> 4)
		sumB += uint32(d.chB.Get() >> 4)
	}
	return uint16(sumA / uint32(samples)), uint16(sumB / uint32(samples))
}
