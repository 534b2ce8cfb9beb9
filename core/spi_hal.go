package core

// SPIBusID identifies a hardware SPI bus configuration
type SPIBusID uint8

// SPIMode represents SPI clock polarity and phase (0-3)
// Mode 0: CPOL=0, CPHA=0 (clock idle low, sample on rising edge)
// Mode 1: CPOL=0, CPHA=1 (clock idle low, sample on falling edge)
// Mode 2: CPOL=1, CPHA=0 (clock idle high, sample on falling edge)
// Mode 3: CPOL=1, CPHA=1 (clock idle high, sample on rising edge)
type SPIMode uint8

// SPIConfig holds the configuration for an SPI bus
type SPIConfig struct {
	BusID SPIBusID // Hardware bus identifier
	Mode  SPIMode  // SPI mode (0-3)
	Rate  uint32   // Clock rate in Hz
}

// SPIDriver is the abstract SPI interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type SPIDriver interface {
	// ConfigureBus sets up a hardware SPI bus with specified parameters
	// Returns an opaque bus handle and any error
	ConfigureBus(config SPIConfig) (interface{}, error)

	// Transfer performs a bidirectional SPI transfer
	// Sends txData and receives rxData simultaneously
	// The busHandle is the value returned by ConfigureBus
	Transfer(busHandle interface{}, txData []byte, rxData []byte) error
}

// Global singleton used by core code
var spiDriver SPIDriver

// SetSPIDriver is called by target-specific code to register its hardware SPI driver
func SetSPIDriver(d SPIDriver) {
	spiDriver = d
}

// MustSPI returns the configured hardware SPI driver or panics if missing
func MustSPI() SPIDriver {
	if spiDriver == nil {
		panic("SPI driver not configured")
	}
	return spiDriver
}

// EncoderSample is one read of the absolute magnetic encoder.
type EncoderSample struct {
	Raw     uint16 // 14-bit absolute angle, 0..16383
	CRCGood bool
}

// EncoderDriver is the abstract capability "read absolute angle with CRC"
// (spec.md §9, Design Notes) that the FOC loop consumes once per tick. It
// is deliberately narrower than SPIDriver: implementations may use the
// shared hardware SPI bus, a dedicated bus, or a simulated source.
type EncoderDriver interface {
	// ReadAngle performs one CRC-checked read of the absolute position.
	ReadAngle() EncoderSample
}

var encoderDriver EncoderDriver

// SetEncoderDriver is called by target-specific code to register its driver.
func SetEncoderDriver(d EncoderDriver) {
	encoderDriver = d
}

// MustEncoder returns the configured driver or panics if missing.
func MustEncoder() EncoderDriver {
	if encoderDriver == nil {
		panic("encoder driver not configured")
	}
	return encoderDriver
}
