// Package safety hosts the fault bus and the calibration-scoped safety
// monitor (spec.md §2 "Safety monitor + fault bus", §4.8). Neither owns
// PWM directly; joint.Joint disables the bridge synchronously on a
// breach and latches it onto the bus; nothing in joint reads it back.
package safety

import (
	"motorcore/core"
	"motorcore/irpc"
)

// FaultBusSize bounds the latched-fault ring, matching the teacher's
// core.TimingRingSize fixed-ring idiom rather than growing a slice.
const FaultBusSize = 16

// FaultRecord latches one fault occurrence: the wire error code, the
// system clock (core.GetTime units) it occurred at, and a
// context-dependent value (e.g. the offending measurement x1000).
type FaultRecord struct {
	Code    irpc.ErrorCode
	Clock   uint32
	Context uint32
}

// FaultBus is a fixed-size, non-blocking ring of latched faults, the
// safety-domain counterpart of core.TimingEvent's post-mortem ring.
type FaultBus struct {
	buf  [FaultBusSize]FaultRecord
	head int
	len  int
}

// Latch records a fault, mirroring it into core's timing ring so a
// single post-mortem dump covers both scheduling and safety events.
func (b *FaultBus) Latch(code irpc.ErrorCode, context uint32) FaultRecord {
	clock := core.GetTime()
	rec := FaultRecord{Code: code, Clock: clock, Context: context}
	b.buf[b.head] = rec
	b.head = (b.head + 1) % FaultBusSize
	if b.len < FaultBusSize {
		b.len++
	}
	core.RecordTiming(core.EvtFaultLatched, 0, clock, uint32(code), context)
	return rec
}

// Len reports how many fault records are currently held.
func (b *FaultBus) Len() int { return b.len }

// Last returns the most recently latched fault and true, or a zero
// FaultRecord and false if none have been latched.
func (b *FaultBus) Last() (FaultRecord, bool) {
	if b.len == 0 {
		return FaultRecord{}, false
	}
	idx := (b.head - 1 + FaultBusSize) % FaultBusSize
	return b.buf[idx], true
}

// Snapshot copies up to len(dst) records, oldest first, into dst and
// returns the number copied.
func (b *FaultBus) Snapshot(dst []FaultRecord) int {
	n := b.len
	if n > len(dst) {
		n = len(dst)
	}
	start := (b.head - b.len + FaultBusSize) % FaultBusSize
	for i := 0; i < n; i++ {
		dst[i] = b.buf[(start+i)%FaultBusSize]
	}
	return n
}
