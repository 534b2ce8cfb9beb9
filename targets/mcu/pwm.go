//go:build tinygo

package mcu

import (
	"machine"

	"motorcore/core"
)

// PWMGroup is the subset of TinyGo's machine PWM peripheral API this
// driver needs, abstracting over the unexported *pwmGroup type the same
// way targets/rp2040's pwmPeripheral interface does.
type PWMGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// PWMDriver drives all four H-bridge legs off one shared hardware timer
// (TIM2 CH1-4, spec.md §6), so every duty update lands at the same
// timer-update event (core.PWMDriver's "never torn across channels").
// Unlike targets/rp2040's independent-pin slice mapping, every pin here
// shares the one PWMGroup the caller constructs it with.
type PWMDriver struct {
	pwm      PWMGroup
	pins     [4]machine.Pin
	channels [4]uint8
}

// NewPWMDriver takes the four H-bridge-leg pins in
// (dutyAHigh, dutyALow, dutyBHigh, dutyBLow) order, matching
// foc.DualBridgeSVM's Pwm4 layout.
func NewPWMDriver(pwm PWMGroup, phaseAHigh, phaseALow, phaseBHigh, phaseBLow machine.Pin) *PWMDriver {
	return &PWMDriver{pwm: pwm, pins: [4]machine.Pin{phaseAHigh, phaseALow, phaseBHigh, phaseBLow}}
}

func (d *PWMDriver) ConfigureCarrier(carrierHz uint32) (uint32, error) {
	period := uint64(1000000000) / uint64(carrierHz)
	if err := d.pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return 0, err
	}
	for i, pin := range d.pins {
		ch, err := d.pwm.Channel(pin)
		if err != nil {
			return 0, err
		}
		d.channels[i] = ch
	}
	return d.pwm.Top(), nil
}

func (d *PWMDriver) SetDuties(duties core.Pwm4) error {
	for i, ch := range d.channels {
		d.pwm.Set(ch, uint32(duties[i]))
	}
	return nil
}

func (d *PWMDriver) GetMaxValue() uint32 { return d.pwm.Top() }

func (d *PWMDriver) SafeState() {
	for _, ch := range d.channels {
		d.pwm.Set(ch, 0)
	}
}
