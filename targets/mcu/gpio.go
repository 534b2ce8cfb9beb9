//go:build tinygo

package mcu

import (
	"machine"

	"motorcore/core"
)

// GPIODriver adapts core.GPIOPin numbers to machine.Pin, grounded on
// the teacher's RP2040 pin-enumeration convention
// (targets/rp2040/main.go's registerRP2040Pins): a board-specific build
// calls RegisterPin once per physical line it uses (driver enable,
// nFAULT, nRESET, status LEDs, step/dir/enable/error) before anything
// touches core.MustGPIO().
type GPIODriver struct {
	pins map[core.GPIOPin]machine.Pin
}

func NewGPIODriver() *GPIODriver {
	return &GPIODriver{pins: make(map[core.GPIOPin]machine.Pin)}
}

// RegisterPin binds a logical GPIOPin id to a physical machine.Pin.
func (d *GPIODriver) RegisterPin(id core.GPIOPin, mp machine.Pin) {
	d.pins[id] = mp
}

func (d *GPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	d.pins[pin].Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (d *GPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	d.pins[pin].Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (d *GPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	d.pins[pin].Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return nil
}

func (d *GPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	d.pins[pin].Set(value)
	return nil
}

func (d *GPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	return d.pins[pin].Get(), nil
}

func (d *GPIODriver) ReadPin(pin core.GPIOPin) bool {
	return d.pins[pin].Get()
}
