package irpc

import "testing"

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Header: Header{SourceID: 1, TargetID: 2, MsgID: 0xDEADBEEF, Tag: TagSetTarget}}
	SetTargetPayload{Pos: 1.5, VMax: 2.25}.Encode(&f)

	var scratch [MaxFrameLen]byte
	wire := f.Encode(scratch[:])
	if len(wire) > MaxFrameLen {
		t.Fatalf("frame exceeds CAN-FD payload ceiling: %d bytes", len(wire))
	}

	got, ok := DecodeFrame(wire)
	if !ok {
		t.Fatal("DecodeFrame failed on a frame we just encoded")
	}
	if got.Header != f.Header {
		t.Fatalf("header mismatch: got %+v want %+v", got.Header, f.Header)
	}
	p := DecodeSetTarget(&got)
	if p.Pos != 1.5 || p.VMax != 2.25 {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestDecodeFrameTooShort(t *testing.T) {
	if _, ok := DecodeFrame([]byte{1, 2, 3}); ok {
		t.Fatal("expected DecodeFrame to reject a buffer shorter than the header")
	}
}

func TestFramePoolExhaustion(t *testing.T) {
	var pool FramePool
	var acquired []int
	for i := 0; i < FramePoolSize; i++ {
		idx, _, ok := pool.Acquire()
		if !ok {
			t.Fatalf("pool exhausted early at %d", i)
		}
		acquired = append(acquired, idx)
	}
	if _, _, ok := pool.Acquire(); ok {
		t.Fatal("expected pool to be exhausted after FramePoolSize acquisitions")
	}
	pool.Release(acquired[0])
	if _, _, ok := pool.Acquire(); !ok {
		t.Fatal("expected a released slot to be reusable")
	}
}
