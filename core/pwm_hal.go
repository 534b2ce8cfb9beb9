package core

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMValue is the duty cycle value (0 to PWM_MAX)
type PWMValue uint32

// Pwm4 is the four independent duty values the FOC loop writes each tick,
// one per H-bridge leg (two phases of two PWM channels each).
type Pwm4 [4]PWMValue

// PWMDriver is the abstract four-channel PWM interface the FOC loop
// consumes. All four channels share a single timer (TIM2 CH1..CH4 in the
// hardware adaptation, spec.md §6) so updates must land atomically at one
// timer-update event, never torn across channels.
type PWMDriver interface {
	// ConfigureCarrier sets up the shared timer for the given carrier
	// frequency (20kHz, edge-aligned up-counting per spec.md §4.2) and
	// returns the duty ceiling (TOP value for 0..TOP range).
	ConfigureCarrier(carrierHz uint32) (top uint32, err error)

	// SetDuties writes all four duty values atomically at the next timer
	// update event. Values above the configured TOP are clamped.
	SetDuties(d Pwm4) error

	// GetMaxValue returns the duty ceiling (TOP) configured by ConfigureCarrier.
	GetMaxValue() uint32

	// SafeState forces all four duties to zero and keeps the timer running
	// in that state; used whenever the driver must be disabled mid-tick.
	SafeState()
}

// Global singleton used by core code.
var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}
