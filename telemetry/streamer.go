package telemetry

import "motorcore/irpc"

// Mode selects the emission policy (spec.md §4.9).
type Mode uint8

const (
	ModeOnDemand Mode = iota
	ModePeriodic
	ModeStreaming
	ModeOnChange
	ModeAdaptive
)

// streamingPeriodUs is Streaming mode's 1kHz ceiling (spec.md §4.9
// "maximum rate (1 kHz)").
const streamingPeriodUs = 1000

// adaptiveIdlePeriodUs / adaptiveActivePeriodUs are Adaptive mode's two
// rates (spec.md §4.9 "1 kHz while trajectory active or |v| above
// motion threshold, else 100 Hz").
const (
	adaptiveActivePeriodUs = 1000
	adaptiveIdlePeriodUs   = 10000
)

// defaultAdaptiveVelThreshold is the |v| cutoff Adaptive mode uses to
// decide "moving" absent an explicit ConfigureTelemetry override.
const defaultAdaptiveVelThreshold = 0.05 // rad/s

// Streamer samples FOC-rate state into a Ring and decides, per its
// configured Mode, when a sample should be pushed onto the wire
// (spec.md §4.9). It is a cooperative task: joint.Joint calls Sample
// every FOC tick and ShouldEmit right after it in the same tick.
type Streamer struct {
	mode            Mode
	rateHz          float32
	changeThreshold float32
	velThreshold    float32
	torqueConstant  float32

	ring Ring

	lastVel  float32
	lastTs   uint64
	haveLast bool

	lastEmitTs  uint64
	lastEmitted Sample
	haveEmitted bool
}

// NewStreamer builds a Streamer in OnDemand mode, the safe default
// until a ConfigureTelemetry command selects something else.
func NewStreamer(torqueConstant float32) *Streamer {
	return &Streamer{
		mode:           ModeOnDemand,
		torqueConstant: torqueConstant,
		velThreshold:   defaultAdaptiveVelThreshold,
	}
}

// Configure applies a ConfigureTelemetry command's parameters.
func (s *Streamer) Configure(mode Mode, rateHz, changeThreshold float32) {
	s.mode = mode
	s.rateHz = rateHz
	s.changeThreshold = changeThreshold
	s.haveEmitted = false
}

// Ring exposes the backing ring for diagnostics/snapshotting.
func (s *Streamer) Ring() *Ring { return &s.ring }

// Sample derives a Sample from in, pushes it to the ring, and returns
// it. Acceleration is the discrete derivative of velocity across
// successive calls; torque and electrical power are the only other
// derived fields (spec.md §4.9, §3).
func (s *Streamer) Sample(in Input) Sample {
	var acc float32
	if s.haveLast && in.TsUs > s.lastTs {
		dt := float32(in.TsUs-s.lastTs) / 1e6
		acc = (in.Vel - s.lastVel) / dt
	}
	s.lastVel, s.lastTs, s.haveLast = in.Vel, in.TsUs, true

	sample := Sample{
		Pos: in.Pos, Vel: in.Vel, Acc: acc,
		Id: in.Id, Iq: in.Iq, Vd: in.Vd, Vq: in.Vq,
		Torque:     s.torqueConstant * in.Iq,
		Power:      in.Vd*in.Id + in.Vq*in.Iq,
		LoadPct:    in.LoadPct, Temp: in.Temp,
		LoopTimeUs: in.LoopTimeUs, Warnings: in.Warnings,
		TrajActive: in.TrajActive, TsUs: in.TsUs,
	}
	s.ring.Push(sample)
	return sample
}

// ShouldEmit reports whether sample should go out now under the
// current mode, and updates emission bookkeeping if so. requested is
// true exactly on the tick a RequestTelemetry command arrived, the only
// thing that ever triggers emission in OnDemand mode.
func (s *Streamer) ShouldEmit(sample Sample, requested bool) bool {
	switch s.mode {
	case ModeOnDemand:
		if !requested {
			return false
		}
	case ModePeriodic:
		if s.rateHz <= 0 || (s.haveEmitted && !s.elapsedAtLeast(sample.TsUs, uint64(1e6/s.rateHz))) {
			return false
		}
	case ModeStreaming:
		if s.haveEmitted && !s.elapsedAtLeast(sample.TsUs, streamingPeriodUs) {
			return false
		}
	case ModeOnChange:
		if s.haveEmitted && !s.changed(sample) {
			return false
		}
	case ModeAdaptive:
		period := uint64(adaptiveIdlePeriodUs)
		if sample.TrajActive || absF(sample.Vel) > s.velThreshold {
			period = adaptiveActivePeriodUs
		}
		if s.haveEmitted && !s.elapsedAtLeast(sample.TsUs, period) {
			return false
		}
	default:
		return false
	}
	s.lastEmitTs = sample.TsUs
	s.lastEmitted = sample
	s.haveEmitted = true
	return true
}

func (s *Streamer) elapsedAtLeast(nowUs, periodUs uint64) bool {
	return nowUs-s.lastEmitTs >= periodUs
}

func (s *Streamer) changed(sample Sample) bool {
	return absF(sample.Pos-s.lastEmitted.Pos) > s.changeThreshold ||
		absF(sample.Vel-s.lastEmitted.Vel) > s.changeThreshold ||
		absF(sample.Iq-s.lastEmitted.Iq) > s.changeThreshold ||
		absF(sample.Temp-s.lastEmitted.Temp) > s.changeThreshold
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Wire converts a Sample to its iRPC wire payload (spec.md §6
// "TelemetryStream{pos, vel, acc, i_d, i_q, v_d, v_q, torque, power,
// load_pct, temp, foc_loop_us, warnings, traj_active, ts_us}").
func (s Sample) Wire() irpc.TelemetryStreamPayload {
	return irpc.TelemetryStreamPayload{
		Pos: s.Pos, Vel: s.Vel, Acc: s.Acc,
		Id: s.Id, Iq: s.Iq, Vd: s.Vd, Vq: s.Vq,
		Torque: s.Torque, Power: s.Power,
		LoadPct: s.LoadPct, Temp: s.Temp,
		FocLoopUs: s.LoopTimeUs, Warnings: s.Warnings,
		TrajActive: s.TrajActive, TsUs: uint32(s.TsUs),
	}
}
