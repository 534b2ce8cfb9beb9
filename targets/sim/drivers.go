package sim

import (
	"motorcore/core"
)

// PWMDriver is the simulated four-channel PWM sink: it just latches the
// duties into the plant for the next Step, the same role
// core.PWMDriver's ConfigureCarrier/SetDuties pair plays over real
// silicon (compare targets/rp2040's RP2040PWMDriver, which instead
// drives machine.PWM hardware slices).
type PWMDriver struct {
	plant *Plant
	top   uint32
}

func NewPWMDriver(p *Plant) *PWMDriver {
	return &PWMDriver{plant: p, top: 2047}
}

func (d *PWMDriver) ConfigureCarrier(carrierHz uint32) (uint32, error) {
	d.plant.SetPwmTop(d.top)
	return d.top, nil
}

func (d *PWMDriver) SetDuties(duties core.Pwm4) error {
	d.plant.setDuties([4]uint32{
		uint32(duties[0]), uint32(duties[1]), uint32(duties[2]), uint32(duties[3]),
	})
	return nil
}

func (d *PWMDriver) GetMaxValue() uint32 { return d.top }

func (d *PWMDriver) SafeState() {
	d.plant.setDuties([4]uint32{})
}

// ADCDriver reads the plant's simulated phase currents and bus voltage.
// CalibrateOffsets reports the plant's configured offsets directly,
// since a simulated current-sense amplifier has no real zero-drift to
// measure.
type ADCDriver struct {
	plant *Plant
}

func NewADCDriver(p *Plant) *ADCDriver { return &ADCDriver{plant: p} }

func (d *ADCDriver) SampleSync() core.CurrentSample {
	ia, ib := d.plant.measuredPhaseCurrents()
	return core.CurrentSample{
		A:     d.plant.currentToCount(ia, d.plant.cfg.OffsetA),
		B:     d.plant.currentToCount(ib, d.plant.cfg.OffsetB),
		Vbus:  d.plant.vbusCount(),
		Ready: true,
	}
}

func (d *ADCDriver) CalibrateOffsets(samples int) (offsetA, offsetB uint16) {
	return d.plant.cfg.OffsetA, d.plant.cfg.OffsetB
}

// EncoderDriver reads the plant's true mechanical angle as a 14-bit
// count, always reporting a good CRC (no simulated bus noise).
type EncoderDriver struct {
	plant *Plant
}

func NewEncoderDriver(p *Plant) *EncoderDriver { return &EncoderDriver{plant: p} }

func (d *EncoderDriver) ReadAngle() core.EncoderSample {
	return core.EncoderSample{Raw: d.plant.encoderRaw(), CRCGood: true}
}

// GPIODriver is an in-memory pin-state table, enough for the bridge
// driver below and any bench code that pokes an auxiliary pin.
type GPIODriver struct {
	state map[core.GPIOPin]bool
}

func NewGPIODriver() *GPIODriver {
	return &GPIODriver{state: make(map[core.GPIOPin]bool)}
}

func (d *GPIODriver) ConfigureOutput(pin core.GPIOPin) error         { return nil }
func (d *GPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error    { return nil }
func (d *GPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error  { return nil }
func (d *GPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	d.state[pin] = value
	return nil
}
func (d *GPIODriver) GetPin(pin core.GPIOPin) (bool, error) { return d.state[pin], nil }
func (d *GPIODriver) ReadPin(pin core.GPIOPin) bool         { return d.state[pin] }

// BridgeDriver simulates the enable/fault/reset lines of the gate
// driver IC: Enable/Disable just track a bool, Fault is always false
// since nothing in the plant models a driver-IC fault condition.
type BridgeDriver struct {
	enabled bool
}

func NewBridgeDriver() *BridgeDriver { return &BridgeDriver{} }

func (d *BridgeDriver) Enable()     { d.enabled = true }
func (d *BridgeDriver) Disable()    { d.enabled = false }
func (d *BridgeDriver) Fault() bool { return false }
func (d *BridgeDriver) Reset()      { d.enabled = false }

// FlashDriver is a single in-memory record, standing in for the real
// target's flash-sector persistence (spec.md §6) for bench/simulation
// use where nothing needs to survive a process restart.
type FlashDriver struct {
	record []byte
	valid  bool
}

func NewFlashDriver() *FlashDriver { return &FlashDriver{} }

var errFlashEmpty = flashEmptyError{}

type flashEmptyError struct{}

func (flashEmptyError) Error() string { return "sim flash: no record written yet" }

func (d *FlashDriver) ReadRecord(dst []byte) error {
	if !d.valid || len(d.record) != len(dst) {
		return errFlashEmpty
	}
	copy(dst, d.record)
	return nil
}

func (d *FlashDriver) WriteRecord(src []byte) error {
	d.record = append([]byte(nil), src...)
	d.valid = true
	return nil
}

// CANDriver is a loopback-capable in-memory queue pair: frames sent by
// one side arrive on the peer's Recv. Connect two instances with
// NewCANLink to simulate a joint and a host bench tool sharing a bus.
type CANDriver struct {
	inbox chan core.CANFrame
	peer  *CANDriver
}

// NewCANLink returns two connected CANDriver ends (e.g. joint, host).
func NewCANLink(depth int) (a, b *CANDriver) {
	a = &CANDriver{inbox: make(chan core.CANFrame, depth)}
	b = &CANDriver{inbox: make(chan core.CANFrame, depth)}
	a.peer, b.peer = b, a
	return a, b
}

func (d *CANDriver) Send(f core.CANFrame) error {
	select {
	case d.peer.inbox <- f:
		return nil
	default:
		return errCANFull
	}
}

var errCANFull = canFullError{}

type canFullError struct{}

func (canFullError) Error() string { return "sim CAN: peer inbox full" }

func (d *CANDriver) Recv() (core.CANFrame, bool) {
	select {
	case f := <-d.inbox:
		return f, true
	default:
		return core.CANFrame{}, false
	}
}
