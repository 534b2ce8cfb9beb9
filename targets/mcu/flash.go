//go:build tinygo

package mcu

// FlashSector is the subset of a target's flash program/erase API this
// driver needs for the single reserved persisted-parameter sector
// (spec.md §6). Abstracted the same way CANPeripheral and PWMGroup are,
// since erase/program sequencing is flash-part-specific.
type FlashSector interface {
	ReadAt(dst []byte, offset int64) (int, error)
	EraseSector() error
	WriteAt(src []byte, offset int64) (int, error)
}

// FlashDriver adapts a FlashSector to core.FlashDriver.
type FlashDriver struct {
	sector FlashSector
}

func NewFlashDriver(s FlashSector) *FlashDriver { return &FlashDriver{sector: s} }

func (d *FlashDriver) ReadRecord(dst []byte) error {
	_, err := d.sector.ReadAt(dst, 0)
	return err
}

// WriteRecord erases the reserved sector then reprograms it, since
// flash cannot be rewritten in place without an erase cycle.
func (d *FlashDriver) WriteRecord(src []byte) error {
	if err := d.sector.EraseSector(); err != nil {
		return err
	}
	_, err := d.sector.WriteAt(src, 0)
	return err
}
