// Package telemetry samples FOC-rate state into a fixed ring buffer and
// drains it per one of five streaming policies (spec.md §4.9). Sampling
// itself stays cheap enough to call every FOC tick; the derived metrics
// (torque, power, acceleration) are computed here rather than in
// foc.Loop so the hard real-time tick's budget isn't spent on them.
package telemetry

// Input is the raw per-tick state a Sample is derived from. joint.Joint
// assembles one from foc.Loop.State(), the adaptive controller's last
// Status and the interpolator's active flag; it passes Temp as 0, having
// no temperature sensor to read.
type Input struct {
	Pos, Vel       float32
	Id, Iq, Vd, Vq float32
	LoopTimeUs     uint32
	LoadPct        float32
	Temp           float32
	Warnings       uint16
	TrajActive     bool
	TsUs           uint64 // monotonic microseconds
}

// Sample is the packed record spec.md §3 names: "position, velocity,
// acceleration, i_d, i_q, v_d, v_q, temperature, load%, loop-time,
// active-trajectory flag, monotonic timestamp".
type Sample struct {
	Pos, Vel, Acc  float32
	Id, Iq, Vd, Vq float32
	Torque, Power  float32
	LoadPct, Temp  float32
	LoopTimeUs     uint32
	Warnings       uint16
	TrajActive     bool
	TsUs           uint64
}
