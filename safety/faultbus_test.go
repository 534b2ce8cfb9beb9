package safety

import (
	"testing"

	"motorcore/irpc"
)

func TestFaultBusLatchAndSnapshotOrder(t *testing.T) {
	var b FaultBus
	b.Latch(irpc.ErrPositionLimit, 1)
	b.Latch(irpc.ErrCurrentLimit, 2)
	b.Latch(irpc.ErrTimeout, 3)

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	last, ok := b.Last()
	if !ok || last.Code != irpc.ErrTimeout || last.Context != 3 {
		t.Fatalf("Last() = %+v, ok=%v, want ErrTimeout/3", last, ok)
	}

	dst := make([]FaultRecord, 3)
	n := b.Snapshot(dst)
	if n != 3 {
		t.Fatalf("Snapshot copied %d, want 3", n)
	}
	if dst[0].Code != irpc.ErrPositionLimit || dst[2].Code != irpc.ErrTimeout {
		t.Fatalf("snapshot not oldest-first: %+v", dst)
	}
}

func TestFaultBusNeverGrowsPastCapacity(t *testing.T) {
	var b FaultBus
	for i := 0; i < FaultBusSize+5; i++ {
		b.Latch(irpc.ErrHardwareError, uint32(i))
	}
	if b.Len() != FaultBusSize {
		t.Fatalf("Len() = %d, want %d (ring must not grow)", b.Len(), FaultBusSize)
	}
	last, _ := b.Last()
	if last.Context != uint32(FaultBusSize+4) {
		t.Fatalf("Last().Context = %d, want %d", last.Context, FaultBusSize+4)
	}
}

func TestFaultBusEmpty(t *testing.T) {
	var b FaultBus
	if _, ok := b.Last(); ok {
		t.Fatal("Last() on an empty bus must report ok=false")
	}
}
