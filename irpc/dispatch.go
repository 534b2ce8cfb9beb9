package irpc

import "motorcore/core"

// Handlers bundles one callback per payload class the dispatcher can
// receive (spec.md §4.6 "Payload classes handled"). joint.Joint
// populates this once at construction; Dispatcher never imports
// joint, keeping the dependency one-directional like
// motion.Interpolator's relationship to foc.
//
// Every handler that represents a host request returns an ErrorCode:
// ErrNone triggers an Ack, anything else a Nack carrying that code
// (spec.md §7 "Command-level problems ... produce a Nack with code").
type Handlers struct {
	Configure     func(ConfigurePayload) ErrorCode
	Activate      func() ErrorCode
	Deactivate    func() ErrorCode
	Reset         func() ErrorCode
	EmergencyStop func() ErrorCode

	SetTarget   func(SetTargetPayload) ErrorCode
	SetTargetV2 func(SetTargetV2Payload) ErrorCode

	ConfigureTelemetry func(ConfigureTelemetryPayload) ErrorCode
	RequestTelemetry   func() TelemetryStreamPayload

	ConfigureAdaptive     func(ConfigureAdaptivePayload) ErrorCode
	RequestAdaptiveStatus func() AdaptiveStatusPayload

	StartCalibration func(StartCalibrationPayload) ErrorCode
	StopCalibration  func() ErrorCode

	RequestDictionary func() DictionaryResponsePayload
}

// Dispatcher is the cooperative protocol task (spec.md §5 class 2):
// it suspends on frame reception, decodes the tag, calls the matching
// Handlers entry, and sends exactly one terminal response per request
// (spec.md §3, §8).
type Dispatcher struct {
	selfID   uint16
	handlers Handlers
	pool     FramePool
	nextMsg  uint32
	scratch  [MaxFrameLen]byte
}

// NewDispatcher builds a dispatcher that identifies itself as selfID
// on the bus and routes decoded payloads to h.
func NewDispatcher(selfID uint16, h Handlers) *Dispatcher {
	return &Dispatcher{selfID: selfID, handlers: h}
}

// Poll drains at most one pending CAN-FD frame from core.MustCAN() and
// dispatches it. Never blocks (spec.md §5's "never suspends" is the
// FOC tick's rule; this task suspends only at the scheduler's ticker,
// not inside Poll itself).
func (d *Dispatcher) Poll(source uint16) {
	frame, ok := core.MustCAN().Recv()
	if !ok {
		return
	}
	f, ok := DecodeFrame(frame.Payload)
	if !ok {
		return
	}
	d.handle(f)
}

func (d *Dispatcher) handle(f Frame) {
	switch f.Header.Tag {
	case TagConfigure:
		d.respond(f, call(d.handlers.Configure, DecodeConfigure(&f)))
	case TagActivate:
		d.respond(f, d.call0(d.handlers.Activate))
	case TagDeactivate:
		d.respond(f, d.call0(d.handlers.Deactivate))
	case TagReset:
		d.respond(f, d.call0(d.handlers.Reset))
	case TagEmergencyStop:
		d.respond(f, d.call0(d.handlers.EmergencyStop))
	case TagSetTarget:
		d.respond(f, call(d.handlers.SetTarget, DecodeSetTarget(&f)))
	case TagSetTargetV2:
		d.respond(f, call(d.handlers.SetTargetV2, DecodeSetTargetV2(&f)))
	case TagConfigureTelemetry:
		d.respond(f, call(d.handlers.ConfigureTelemetry, DecodeConfigureTelemetry(&f)))
	case TagRequestTelemetry:
		if d.handlers.RequestTelemetry != nil {
			d.sendPayload(f.Header.SourceID, f.Header.MsgID, TagTelemetryStream, d.handlers.RequestTelemetry())
		}
	case TagConfigureAdaptive:
		d.respond(f, call(d.handlers.ConfigureAdaptive, DecodeConfigureAdaptive(&f)))
	case TagRequestAdaptiveStatus:
		if d.handlers.RequestAdaptiveStatus != nil {
			d.sendPayload(f.Header.SourceID, f.Header.MsgID, TagAdaptiveStatus, d.handlers.RequestAdaptiveStatus())
		}
	case TagStartCalibration:
		d.respond(f, call(d.handlers.StartCalibration, DecodeStartCalibration(&f)))
	case TagStopCalibration:
		d.respond(f, d.call0(d.handlers.StopCalibration))
	case TagRequestDictionary:
		if d.handlers.RequestDictionary != nil {
			d.sendPayload(f.Header.SourceID, f.Header.MsgID, TagDictionaryResponse, d.handlers.RequestDictionary())
		}
	default:
		d.sendNack(f.Header.SourceID, f.Header.MsgID, ErrInvalidState)
	}
}

func (d *Dispatcher) call0(h func() ErrorCode) ErrorCode {
	if h == nil {
		return ErrInvalidState
	}
	return h()
}

// call dispatches to any of the single-payload handler fields in
// Handlers; generic over the payload type since Configure, SetTarget,
// SetTargetV2, ConfigureTelemetry, ConfigureAdaptive and
// StartCalibration all share the same func(P) ErrorCode shape but with
// different P.
func call[P any](h func(P) ErrorCode, p P) ErrorCode {
	if h == nil {
		return ErrInvalidState
	}
	return h(p)
}

func (d *Dispatcher) respond(f Frame, code ErrorCode) {
	if code == ErrNone {
		d.sendAck(f.Header.SourceID, f.Header.MsgID)
	} else {
		d.sendNack(f.Header.SourceID, f.Header.MsgID, code)
	}
}

func (d *Dispatcher) sendAck(dest uint16, msgID uint32) {
	d.sendPayload(dest, msgID, TagAck, AckPayload{MsgID: msgID})
}

func (d *Dispatcher) sendNack(dest uint16, msgID uint32, code ErrorCode) {
	d.sendPayload(dest, msgID, TagNack, NackPayload{MsgID: msgID, ErrorCode: code})
}

// encodable is implemented by every payload type's value receiver
// Encode method; used to keep sendPayload generic over payload kind
// without reflection.
type encodable interface {
	Encode(*Frame)
}

// sendPayload builds a frame from self to dest with the given tag and
// payload, then hands it to the CAN driver. msgID is reused from the
// originating request for acks/nacks/request-responses (spec.md §8
// "identified by the original msg_id"); push-style telemetry/status
// frames pass a freshly minted id via NextMsgID. The frame itself comes
// from d.pool, a statically-sized pool (spec.md §5 "protocol frame
// buffers (<=8)"); only this outbound path uses it, while Poll decodes
// inbound frames into a local Frame value.
func (d *Dispatcher) sendPayload(dest uint16, msgID uint32, tag Tag, payload encodable) {
	idx, f, ok := d.pool.Acquire()
	if !ok {
		// Pool exhausted: drop rather than block (spec.md §5 "no open-ended waits").
		return
	}
	defer d.pool.Release(idx)

	f.Header = Header{SourceID: d.selfID, TargetID: dest, MsgID: msgID, Tag: tag}
	payload.Encode(f)
	wire := f.Encode(d.scratch[:])
	_ = core.MustCAN().Send(core.CANFrame{ID: uint32(d.selfID), Payload: append([]byte(nil), wire...)})
}

// NextMsgID mints a monotonic id for dispatcher-originated pushes
// (telemetry streams, calibration status, heartbeat) that aren't
// replies to a specific request.
func (d *Dispatcher) NextMsgID() uint32 {
	d.nextMsg++
	return d.nextMsg
}

// SendTelemetry/SendAdaptiveStatus/SendCalibrationStatus/
// SendCalibrationResult/SendHeartbeat are dispatcher-originated pushes
// the joint's periodic cooperative tasks call directly, outside the
// request/response flow above.

func (d *Dispatcher) SendTelemetry(dest uint16, p TelemetryStreamPayload) {
	d.sendPayload(dest, d.NextMsgID(), TagTelemetryStream, p)
}

func (d *Dispatcher) SendAdaptiveStatus(dest uint16, p AdaptiveStatusPayload) {
	d.sendPayload(dest, d.NextMsgID(), TagAdaptiveStatus, p)
}

func (d *Dispatcher) SendCalibrationStatus(dest uint16, p CalibrationStatusPayload) {
	d.sendPayload(dest, d.NextMsgID(), TagCalibrationStatus, p)
}

func (d *Dispatcher) SendCalibrationResult(dest uint16, p CalibrationResultPayload) {
	d.sendPayload(dest, d.NextMsgID(), TagCalibrationResult, p)
}

func (d *Dispatcher) SendHeartbeat(dest uint16, p HeartbeatPayload) {
	d.sendPayload(dest, d.NextMsgID(), TagHeartbeat, p)
}

func (d *Dispatcher) SendNack(dest uint16, msgID uint32, code ErrorCode) {
	d.sendNack(dest, msgID, code)
}
