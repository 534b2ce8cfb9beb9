package core

// CANFrame is one CAN-FD frame: up to 64 bytes of payload at nominal
// 1Mbps arbitration / 5Mbps data rate (spec.md §6).
type CANFrame struct {
	ID      uint32
	Payload []byte
}

// CANDriver is the abstract capability "receive/transmit one framed
// payload" (spec.md §9) that the iRPC protocol layer consumes. Chosen as
// a tagged variant at build time like the other HALs, never dispatched
// at runtime, to keep the cooperative protocol task's worst-case latency
// bounded.
type CANDriver interface {
	// Send transmits one frame. Returns an error if the hardware TX
	// mailbox is full; the callers in this module (irpc.Dispatcher,
	// cmd/simcore) discard that error and do not resend the frame.
	Send(f CANFrame) error

	// Recv returns the next received frame and true, or a zero frame and
	// false if none is pending. Never blocks.
	Recv() (CANFrame, bool)
}

var canDriver CANDriver

// SetCANDriver is called by target-specific code to register its driver.
func SetCANDriver(d CANDriver) {
	canDriver = d
}

// MustCAN returns the configured driver or panics if missing.
func MustCAN() CANDriver {
	if canDriver == nil {
		panic("CAN driver not configured")
	}
	return canDriver
}
