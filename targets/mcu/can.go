//go:build tinygo

package mcu

import "motorcore/core"

// CANPeripheral is the subset of a target's CAN-FD peripheral this
// adapter needs, abstracted the same way PWMGroup abstracts
// machine.PWM in pwm.go: the concrete register-level driver differs by
// silicon family (STM32G4's FDCAN block vs an external MCP2518FD over
// SPI), so targets/mcu only depends on this interface. No CAN driver
// exists anywhere in the retrieval pack this repo was grounded on
// (scottfeldman-drivers is SPI/UART stepper ICs, not a CAN controller);
// a concrete CANPeripheral implementation is board-bring-up work, not
// part of this core.
type CANPeripheral interface {
	Transmit(id uint32, payload []byte) error
	Receive() (id uint32, payload []byte, ok bool)
}

// CANDriver adapts a CANPeripheral to core.CANDriver (spec.md §9's
// "receive/transmit one framed payload" capability).
type CANDriver struct {
	periph CANPeripheral
}

func NewCANDriver(p CANPeripheral) *CANDriver { return &CANDriver{periph: p} }

func (d *CANDriver) Send(f core.CANFrame) error {
	return d.periph.Transmit(f.ID, f.Payload)
}

func (d *CANDriver) Recv() (core.CANFrame, bool) {
	id, payload, ok := d.periph.Receive()
	if !ok {
		return core.CANFrame{}, false
	}
	return core.CANFrame{ID: id, Payload: payload}, true
}
