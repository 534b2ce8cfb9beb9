//go:build tinygo

package mcu

import (
	"machine"

	"motorcore/core"
)

// EncoderDriver reads a SPI absolute magnetic encoder (an AS5047P-class
// part, per spec.md §4.2's 14-bit absolute angle with a parity check),
// grounded on tmc5160/spicomm.go's chip-select-then-Tx pattern: assert
// CS, clock out a 16-bit frame, deassert.
type EncoderDriver struct {
	spi machine.SPI
	cs  machine.Pin
}

func NewEncoderDriver(spi machine.SPI, cs machine.Pin) *EncoderDriver {
	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	cs.High()
	return &EncoderDriver{spi: spi, cs: cs}
}

func (d *EncoderDriver) ReadAngle() core.EncoderSample {
	tx := [2]byte{0xFF, 0xFF} // NOP read-angle command for AS5047P-class parts
	var rx [2]byte

	d.cs.Low()
	err := d.spi.Tx(tx[:], rx[:])
	d.cs.High()
	if err != nil {
		return core.EncoderSample{CRCGood: false}
	}

	word := uint16(rx[0])<<8 | uint16(rx[1])
	return core.EncoderSample{Raw: word & 0x3FFF, CRCGood: evenParity(word)}
}

// evenParity checks the frame's bit-15 even-parity flag against the 15
// data bits below it.
func evenParity(word uint16) bool {
	w := word
	ones := 0
	for i := 0; i < 16; i++ {
		if w&1 == 1 {
			ones++
		}
		w >>= 1
	}
	return ones%2 == 0
}
