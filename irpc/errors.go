// Package irpc implements the iRPC protocol binding: CAN-FD framing,
// the tagged-payload wire codec, the five-state lifecycle FSM, and the
// dispatcher that turns framed messages into lifecycle/motion/
// telemetry/adaptive/calibration commands and acks/nacks/results
// (spec.md §4.6, §6).
package irpc

// ErrorCode enumerates the wire error codes of spec.md §6, used in both
// Nack and CalibrationResult payloads. Crossing the wire as a number
// rather than a Go error, per SPEC_FULL.md's ambient-stack section.
type ErrorCode uint8

const (
	ErrNone ErrorCode = iota
	ErrPositionLimit
	ErrVelocityLimit
	ErrCurrentLimit
	ErrTemperatureLimit
	ErrTimeout
	ErrInvalidState
	ErrConvergenceFailed
	ErrLowConfidence
	ErrUserAbort
	ErrHardwareError
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "success"
	case ErrPositionLimit:
		return "position-limit"
	case ErrVelocityLimit:
		return "velocity-limit"
	case ErrCurrentLimit:
		return "current-limit"
	case ErrTemperatureLimit:
		return "temperature-limit"
	case ErrTimeout:
		return "timeout"
	case ErrInvalidState:
		return "invalid-state"
	case ErrConvergenceFailed:
		return "convergence-failed"
	case ErrLowConfidence:
		return "low-confidence"
	case ErrUserAbort:
		return "user-abort"
	case ErrHardwareError:
		return "hardware-error"
	default:
		return "unknown"
	}
}
