package safety

import (
	"testing"

	"motorcore/foc"
	"motorcore/irpc"
)

func TestFocFaultCodeMapping(t *testing.T) {
	cases := []struct {
		reason foc.FaultReason
		want   irpc.ErrorCode
		ok     bool
	}{
		{foc.FaultNone, irpc.ErrNone, false},
		{foc.FaultOverCurrent, irpc.ErrCurrentLimit, true},
		{foc.FaultDeadlineMiss, irpc.ErrTimeout, true},
	}
	for _, c := range cases {
		code, ok := FocFaultCode(c.reason)
		if ok != c.ok || (ok && code != c.want) {
			t.Fatalf("FocFaultCode(%v) = (%v, %v), want (%v, %v)", c.reason, code, ok, c.want, c.ok)
		}
	}
}

func TestLatchFocFaultRecordsOnlyRealFaults(t *testing.T) {
	var b FaultBus
	if _, ok := b.LatchFocFault(foc.FaultNone, 0); ok {
		t.Fatal("FaultNone must not latch")
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}

	code, ok := b.LatchFocFault(foc.FaultDeadlineMiss, 7)
	if !ok || code != irpc.ErrTimeout {
		t.Fatalf("got (%v, %v), want (ErrTimeout, true)", code, ok)
	}
	last, _ := b.Last()
	if last.Code != irpc.ErrTimeout || last.Context != 7 {
		t.Fatalf("latched record = %+v", last)
	}
}
