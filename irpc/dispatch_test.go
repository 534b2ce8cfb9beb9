package irpc

import (
	"testing"

	"motorcore/core"
)

// fakeCAN is an in-memory CANDriver double: Poll's injected inbound
// queue and the outbound frames sendPayload produces, so dispatch.go's
// request/response plumbing can be tested without real hardware.
type fakeCAN struct {
	inbound  []core.CANFrame
	outbound []core.CANFrame
}

func (c *fakeCAN) Send(f core.CANFrame) error {
	c.outbound = append(c.outbound, f)
	return nil
}

func (c *fakeCAN) Recv() (core.CANFrame, bool) {
	if len(c.inbound) == 0 {
		return core.CANFrame{}, false
	}
	f := c.inbound[0]
	c.inbound = c.inbound[1:]
	return f, true
}

func newTestDispatcher(t *testing.T, h Handlers) (*Dispatcher, *fakeCAN) {
	t.Helper()
	can := &fakeCAN{}
	core.SetCANDriver(can)
	return NewDispatcher(1, h), can
}

func frameBytes(t *testing.T, f Frame) []byte {
	t.Helper()
	var scratch [MaxFrameLen]byte
	return append([]byte(nil), f.Encode(scratch[:])...)
}

func TestDispatchConfigureProducesAck(t *testing.T) {
	called := false
	h := Handlers{
		Configure: func(p ConfigurePayload) ErrorCode {
			called = true
			if p.PolePairs != 7 {
				t.Fatalf("PolePairs = %d, want 7", p.PolePairs)
			}
			return ErrNone
		},
	}
	d, can := newTestDispatcher(t, h)

	req := Frame{Header: Header{SourceID: 2, TargetID: 1, MsgID: 99, Tag: TagConfigure}}
	ConfigurePayload{PolePairs: 7}.Encode(&req)
	can.inbound = append(can.inbound, core.CANFrame{ID: 2, Payload: frameBytes(t, req)})

	d.Poll(2)

	if !called {
		t.Fatal("Configure handler was not invoked")
	}
	if len(can.outbound) != 1 {
		t.Fatalf("outbound frame count = %d, want 1", len(can.outbound))
	}
	resp, ok := DecodeFrame(can.outbound[0].Payload)
	if !ok {
		t.Fatal("could not decode dispatcher response")
	}
	if resp.Header.Tag != TagAck {
		t.Fatalf("response tag = %v, want TagAck", resp.Header.Tag)
	}
	if ack := DecodeAck(&resp); ack.MsgID != 99 {
		t.Fatalf("ack msg_id = %d, want 99 (spec.md 8 'identified by the original msg_id')", ack.MsgID)
	}
}

func TestDispatchRejectedCommandProducesNackWithCode(t *testing.T) {
	h := Handlers{
		SetTarget: func(p SetTargetPayload) ErrorCode {
			return ErrInvalidState
		},
	}
	d, can := newTestDispatcher(t, h)

	req := Frame{Header: Header{SourceID: 2, TargetID: 1, MsgID: 5, Tag: TagSetTarget}}
	SetTargetPayload{Pos: 1, VMax: 1}.Encode(&req)
	can.inbound = append(can.inbound, core.CANFrame{ID: 2, Payload: frameBytes(t, req)})

	d.Poll(2)

	resp, ok := DecodeFrame(can.outbound[0].Payload)
	if !ok || resp.Header.Tag != TagNack {
		t.Fatalf("expected a Nack frame, got ok=%v tag=%v", ok, resp.Header.Tag)
	}
	nack := DecodeNack(&resp)
	if nack.MsgID != 5 || nack.ErrorCode != ErrInvalidState {
		t.Fatalf("got %+v, want MsgID=5 ErrorCode=ErrInvalidState", nack)
	}
}

func TestDispatchUnknownTagNacksInvalidState(t *testing.T) {
	d, can := newTestDispatcher(t, Handlers{})

	req := Frame{Header: Header{SourceID: 2, TargetID: 1, MsgID: 3, Tag: Tag(0xFE)}}
	can.inbound = append(can.inbound, core.CANFrame{ID: 2, Payload: frameBytes(t, req)})

	d.Poll(2)

	resp, ok := DecodeFrame(can.outbound[0].Payload)
	if !ok || resp.Header.Tag != TagNack {
		t.Fatalf("expected a Nack for an unknown tag, got ok=%v tag=%v", ok, resp.Header.Tag)
	}
	if nack := DecodeNack(&resp); nack.ErrorCode != ErrInvalidState {
		t.Fatalf("error code = %v, want ErrInvalidState", nack.ErrorCode)
	}
}

func TestDispatchRequestTelemetryPushesStreamFrame(t *testing.T) {
	h := Handlers{
		RequestTelemetry: func() TelemetryStreamPayload {
			return TelemetryStreamPayload{Pos: 3.14, FocLoopUs: 42}
		},
	}
	d, can := newTestDispatcher(t, h)

	req := Frame{Header: Header{SourceID: 2, TargetID: 1, MsgID: 11, Tag: TagRequestTelemetry}}
	can.inbound = append(can.inbound, core.CANFrame{ID: 2, Payload: frameBytes(t, req)})

	d.Poll(2)

	resp, ok := DecodeFrame(can.outbound[0].Payload)
	if !ok || resp.Header.Tag != TagTelemetryStream {
		t.Fatalf("expected a telemetry stream frame, got ok=%v tag=%v", ok, resp.Header.Tag)
	}
	sample := DecodeTelemetryStream(&resp)
	if sample.Pos != 3.14 || sample.FocLoopUs != 42 {
		t.Fatalf("got %+v", sample)
	}
}

func TestDispatchNilHandlerIsNotActiveOnReply(t *testing.T) {
	d, can := newTestDispatcher(t, Handlers{})

	req := Frame{Header: Header{SourceID: 2, TargetID: 1, MsgID: 1, Tag: TagActivate}}
	can.inbound = append(can.inbound, core.CANFrame{ID: 2, Payload: frameBytes(t, req)})

	d.Poll(2)

	resp, ok := DecodeFrame(can.outbound[0].Payload)
	if !ok || resp.Header.Tag != TagNack {
		t.Fatalf("expected Nack when no Activate handler is wired, got ok=%v tag=%v", ok, resp.Header.Tag)
	}
	if nack := DecodeNack(&resp); nack.ErrorCode != ErrInvalidState {
		t.Fatalf("error code = %v, want ErrInvalidState", nack.ErrorCode)
	}
}

func TestDispatchPollWithNoPendingFrameIsANoop(t *testing.T) {
	d, can := newTestDispatcher(t, Handlers{})
	d.Poll(2)
	if len(can.outbound) != 0 {
		t.Fatalf("expected no outbound traffic, got %d frames", len(can.outbound))
	}
}
