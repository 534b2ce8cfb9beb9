package sim

import "motorcore/core"

// Attach builds one of every HAL driver backed by p and registers them
// with the core singletons, the pure-Go analogue of targets/rp2040's
// main.go driver-construction block. hostCAN is the CAN endpoint wired
// to the joint; the caller keeps the peer endpoint to act as the bench
// host.
func Attach(p *Plant, hostCAN *CANDriver) {
	core.SetPWMDriver(NewPWMDriver(p))
	core.SetADCDriver(NewADCDriver(p))
	core.SetEncoderDriver(NewEncoderDriver(p))
	core.SetGPIODriver(NewGPIODriver())
	core.SetBridgeDriver(NewBridgeDriver())
	core.SetFlashDriver(NewFlashDriver())
	core.SetCANDriver(hostCAN)
}
