package safety

import (
	"motorcore/foc"
	"motorcore/irpc"
)

// FocFaultCode maps one FOC tick's FaultReason to the wire error code
// it escalates to (spec.md §4.1 "Failure semantics"). ok is false for
// FaultNone, meaning no escalation is needed.
func FocFaultCode(reason foc.FaultReason) (code irpc.ErrorCode, ok bool) {
	switch reason {
	case foc.FaultOverCurrent:
		return irpc.ErrCurrentLimit, true
	case foc.FaultDeadlineMiss:
		return irpc.ErrTimeout, true
	default:
		return irpc.ErrNone, false
	}
}

// LatchFocFault records a non-FaultNone FOC tick outcome onto the bus
// and returns the error code joint.Joint should fault the lifecycle FSM
// with. value carries tick-specific context (e.g. DeadlineMisses).
func (b *FaultBus) LatchFocFault(reason foc.FaultReason, value uint32) (irpc.ErrorCode, bool) {
	code, ok := FocFaultCode(reason)
	if !ok {
		return irpc.ErrNone, false
	}
	b.Latch(code, value)
	return code, true
}
