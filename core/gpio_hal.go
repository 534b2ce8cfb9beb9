package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)

	// ReadPin reads the current pin state (alias for GetPin for convenience)
	ReadPin(pin GPIOPin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}

// BridgeDriver is the abstract capability "enable/disable the power
// stage and observe its fault line" (spec.md §4.2, §9). It is backed by
// three dedicated GPIOs (enable, active-low nFAULT, nRESET) but exposed
// to the FOC loop and safety monitor as three semantic operations rather
// than raw pin numbers.
type BridgeDriver interface {
	// Enable drives the enable line active. Only legal while the safety
	// monitor has not latched a fault.
	Enable()

	// Disable drives the enable line inactive immediately.
	Disable()

	// Fault polls the active-low fault input; true means a fault is
	// currently asserted by the driver IC.
	Fault() bool

	// Reset pulses the nRESET line.
	Reset()
}

var bridgeDriver BridgeDriver

// SetBridgeDriver is called by target-specific code to register its driver.
func SetBridgeDriver(d BridgeDriver) {
	bridgeDriver = d
}

// MustBridge returns the configured driver or panics if missing.
func MustBridge() BridgeDriver {
	if bridgeDriver == nil {
		panic("bridge driver not configured")
	}
	return bridgeDriver
}
