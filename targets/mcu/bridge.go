//go:build tinygo

package mcu

import "motorcore/core"

// BridgeDriver adapts the three dedicated GPIOs spec.md §6 names
// (enable, active-low nFAULT, nRESET) to core.BridgeDriver, grounded on
// the same capability-over-GPIO shape core/gpio_hal.go already
// documents for this interface.
type BridgeDriver struct {
	gpio                          core.GPIODriver
	enablePin, faultPin, resetPin core.GPIOPin
}

// NewBridgeDriver configures the three lines and leaves the bridge
// disabled and out of reset.
func NewBridgeDriver(gpio core.GPIODriver, enable, fault, reset core.GPIOPin) *BridgeDriver {
	gpio.ConfigureOutput(enable)
	gpio.ConfigureInputPullUp(fault)
	gpio.ConfigureOutput(reset)
	gpio.SetPin(enable, false)
	gpio.SetPin(reset, true) // nRESET idles high
	return &BridgeDriver{gpio: gpio, enablePin: enable, faultPin: fault, resetPin: reset}
}

func (d *BridgeDriver) Enable()  { d.gpio.SetPin(d.enablePin, true) }
func (d *BridgeDriver) Disable() { d.gpio.SetPin(d.enablePin, false) }

// Fault polls the active-low nFAULT line.
func (d *BridgeDriver) Fault() bool {
	v, _ := d.gpio.GetPin(d.faultPin)
	return !v
}

// Reset pulses nRESET low then high.
func (d *BridgeDriver) Reset() {
	d.gpio.SetPin(d.resetPin, false)
	d.gpio.SetPin(d.resetPin, true)
}
