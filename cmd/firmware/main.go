//go:build tinygo

// Command firmware is the on-target entrypoint: it configures the
// physical peripherals (spec.md §6's GPIO/physical boundary), registers
// every HAL driver from targets/mcu with the core singletons, and runs
// the same cooperative main loop shape as the teacher's
// targets/rp2040/main.go — panic-recovering, timer-processing,
// sleep-yielding — except the body drives joint.Joint's FOC/motion
// ticks and protocol dispatch instead of the teacher's Klipper-style
// command transport.
//
// Binding the FOC tick to the TIM2 update interrupt itself (spec.md
// §5's "hard real-time interrupt... never blocks") is chip-specific
// vector registration that differs across the Cortex-M4F parts this
// core could target; this file calls Joint.FocTick from the polling
// loop at the same ~10kHz cadence, matching the teacher's own
// single-loop structure, and leaves the interrupt binding to the board
// bring-up package for the specific part chosen.
package main

import (
	"machine"
	"time"

	"motorcore/core"
	"motorcore/joint"
	"motorcore/targets/mcu"
)

// Pin assignments per spec.md §6's GPIO/physical boundary.
const (
	pinPWMAHigh = machine.Pin(0)
	pinPWMALow  = machine.Pin(1)
	pinPWMBHigh = machine.Pin(2)
	pinPWMBLow  = machine.Pin(3)

	pinCurrentA = machine.Pin(4)
	pinCurrentB = machine.Pin(5)
	pinVbus     = machine.Pin(6)

	pinEncoderCS = machine.Pin(7)

	gpioBridgeEnable core.GPIOPin = 0
	gpioBridgeFault  core.GPIOPin = 1
	gpioBridgeReset  core.GPIOPin = 2
)

func main() {
	core.TimerInit()

	gpio := mcu.NewGPIODriver()
	gpio.RegisterPin(gpioBridgeEnable, machine.Pin(8))
	gpio.RegisterPin(gpioBridgeFault, machine.Pin(9))
	gpio.RegisterPin(gpioBridgeReset, machine.Pin(10))
	core.SetGPIODriver(gpio)
	core.SetBridgeDriver(mcu.NewBridgeDriver(gpio, gpioBridgeEnable, gpioBridgeFault, gpioBridgeReset))

	pwm := mcu.NewPWMDriver(machine.PWM0, pinPWMAHigh, pinPWMALow, pinPWMBHigh, pinPWMBLow)
	if _, err := pwm.ConfigureCarrier(20000); err != nil {
		panic(err)
	}
	core.SetPWMDriver(pwm)

	core.SetADCDriver(mcu.NewADCDriver(pinCurrentA, pinCurrentB, pinVbus))

	machine.SPI1.Configure(machine.SPIConfig{Frequency: 1000000, Mode: 1})
	core.SetEncoderDriver(mcu.NewEncoderDriver(machine.SPI1, pinEncoderCS))

	// CAN-FD and flash adapters need a board-specific CANPeripheral /
	// FlashSector implementation (see targets/mcu/can.go, flash.go);
	// without real silicon this build leaves them unregistered and
	// relies on the joint's own "corrupt/missing record -> Unconfigured"
	// handling (spec.md §6) for the flash side. A production build
	// supplies both before calling joint.New.

	cfg := joint.Config{
		PolePairs:          7,
		CurrentLimitA:      5,
		VelocityLimit:      5,
		PositionLimit:      10,
		CurrentKp:          10,
		CurrentKi:          200,
		VelocityKp:         0.5,
		VelocityKi:         5,
		PositionKp:         20,
		TorqueConstant:     0.15,
		DeadlineMissBudget: 5,
		DeadlineMissWindow: 100,
		SelfID:             1,
		HostID:             2,
	}
	j := joint.New(cfg)

	const focDt = float32(1.0 / 10000)
	const motionDt = float32(1.0 / 1000)

	var ticks uint32
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// spec.md §7: a panic here must not wedge the control
					// loop; the next tick resumes with PWM already safe
					// (foc.Loop.Tick forces a safe state on any fault path
					// before returning).
				}
			}()
			ticks++
			j.FocTick(focDt)
			if ticks%10 == 0 {
				j.MotionTick(motionDt)
			}
			j.Dispatcher().Poll(cfg.HostID)
			core.ProcessTimers()
		}()
		time.Sleep(100 * time.Microsecond)
	}
}
