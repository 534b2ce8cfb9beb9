package irpc

// payloads.go defines every payload class spec.md §6 enumerates, each
// with Encode (into a Frame's body) and Decode (from a Frame's body).
// All fields are fixed-size; the only variable-length fields in the
// whole core are DictionaryResponse's bounded firmware-version string
// and its bounded supported-tag list, both length-prefixed
// (spec.md §6 "bounded strings are length-prefixed").

// --- Lifecycle ---------------------------------------------------------

// ConfigurePayload carries joint.Config's wire-relevant subset
// (spec.md §3 "Configuration").
type ConfigurePayload struct {
	PolePairs      uint16
	EncoderZeroRad float32
	CurrentLimitA  float32
	VelocityLimit  float32 // rad/s
	PositionLimit  float32 // rad, symmetric about home
	CurrentKp      float32
	CurrentKi      float32
	VelocityKp     float32
	VelocityKi     float32
	PositionKp     float32
	TorqueConstant float32
	DefaultProfile uint8
}

func (p ConfigurePayload) Encode(f *Frame) {
	b := f.Body[:]
	off := 0
	off = putU16(b, off, p.PolePairs)
	off = putF32(b, off, p.EncoderZeroRad)
	off = putF32(b, off, p.CurrentLimitA)
	off = putF32(b, off, p.VelocityLimit)
	off = putF32(b, off, p.PositionLimit)
	off = putF32(b, off, p.CurrentKp)
	off = putF32(b, off, p.CurrentKi)
	off = putF32(b, off, p.VelocityKp)
	off = putF32(b, off, p.VelocityKi)
	off = putF32(b, off, p.PositionKp)
	off = putF32(b, off, p.TorqueConstant)
	off = putU8(b, off, p.DefaultProfile)
	f.BodyLen = off
}

func DecodeConfigure(f *Frame) ConfigurePayload {
	b := f.Body[:]
	var p ConfigurePayload
	off := 0
	p.PolePairs, off = getU16(b, off)
	p.EncoderZeroRad, off = getF32(b, off)
	p.CurrentLimitA, off = getF32(b, off)
	p.VelocityLimit, off = getF32(b, off)
	p.PositionLimit, off = getF32(b, off)
	p.CurrentKp, off = getF32(b, off)
	p.CurrentKi, off = getF32(b, off)
	p.VelocityKp, off = getF32(b, off)
	p.VelocityKi, off = getF32(b, off)
	p.PositionKp, off = getF32(b, off)
	p.TorqueConstant, off = getF32(b, off)
	p.DefaultProfile, _ = getU8(b, off)
	return p
}

// AckPayload / NackPayload: every accepted or rejected request gets
// exactly one terminal response (spec.md §3, §8).
type AckPayload struct {
	MsgID uint32
}

func (p AckPayload) Encode(f *Frame) {
	f.BodyLen = putU32(f.Body[:], 0, p.MsgID)
}

func DecodeAck(f *Frame) AckPayload {
	v, _ := getU32(f.Body[:], 0)
	return AckPayload{MsgID: v}
}

type NackPayload struct {
	MsgID     uint32
	ErrorCode ErrorCode
}

func (p NackPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putU32(b, 0, p.MsgID)
	off = putU8(b, off, uint8(p.ErrorCode))
	f.BodyLen = off
}

func DecodeNack(f *Frame) NackPayload {
	b := f.Body[:]
	msgID, off := getU32(b, 0)
	code, _ := getU8(b, off)
	return NackPayload{MsgID: msgID, ErrorCode: ErrorCode(code)}
}

// --- Motion --------------------------------------------------------------

type SetTargetPayload struct {
	Pos   float32
	VMax  float32
}

func (p SetTargetPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putF32(b, 0, p.Pos)
	off = putF32(b, off, p.VMax)
	f.BodyLen = off
}

func DecodeSetTarget(f *Frame) SetTargetPayload {
	b := f.Body[:]
	pos, off := getF32(b, 0)
	vmax, _ := getF32(b, off)
	return SetTargetPayload{Pos: pos, VMax: vmax}
}

// SetTargetV2Payload adds profile and shaper selection (spec.md §6).
type SetTargetV2Payload struct {
	Pos        float32
	VMax       float32
	AMax       float32
	JMax       float32
	Profile    uint8
	ShaperKind uint8
	ShaperFreq float32
	ShaperZeta float32
	Flags      uint8
}

func (p SetTargetV2Payload) Encode(f *Frame) {
	b := f.Body[:]
	off := putF32(b, 0, p.Pos)
	off = putF32(b, off, p.VMax)
	off = putF32(b, off, p.AMax)
	off = putF32(b, off, p.JMax)
	off = putU8(b, off, p.Profile)
	off = putU8(b, off, p.ShaperKind)
	off = putF32(b, off, p.ShaperFreq)
	off = putF32(b, off, p.ShaperZeta)
	off = putU8(b, off, p.Flags)
	f.BodyLen = off
}

func DecodeSetTargetV2(f *Frame) SetTargetV2Payload {
	b := f.Body[:]
	var p SetTargetV2Payload
	off := 0
	p.Pos, off = getF32(b, off)
	p.VMax, off = getF32(b, off)
	p.AMax, off = getF32(b, off)
	p.JMax, off = getF32(b, off)
	p.Profile, off = getU8(b, off)
	p.ShaperKind, off = getU8(b, off)
	p.ShaperFreq, off = getF32(b, off)
	p.ShaperZeta, off = getF32(b, off)
	p.Flags, _ = getU8(b, off)
	return p
}

// --- Telemetry -------------------------------------------------------------

type ConfigureTelemetryPayload struct {
	Mode            uint8
	RateHz          float32
	ChangeThreshold float32
}

func (p ConfigureTelemetryPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putU8(b, 0, p.Mode)
	off = putF32(b, off, p.RateHz)
	off = putF32(b, off, p.ChangeThreshold)
	f.BodyLen = off
}

func DecodeConfigureTelemetry(f *Frame) ConfigureTelemetryPayload {
	b := f.Body[:]
	mode, off := getU8(b, 0)
	rate, off2 := getF32(b, off)
	thresh, _ := getF32(b, off2)
	return ConfigureTelemetryPayload{Mode: mode, RateHz: rate, ChangeThreshold: thresh}
}

// TelemetryStreamPayload mirrors telemetry.Sample plus the derived
// fields the streamer computes (spec.md §6, §4.9). TsUs is carried as
// microseconds-since-boot truncated to u32 (wraps ~71 minutes) rather
// than telemetry.Sample's internal u64, so the whole payload (44B of
// floats + 4B FocLoopUs + 2B Warnings + 1B TrajActive + 4B TsUs = 55B)
// fits MaxBodyLen exactly within the single CAN-FD frame spec.md §6
// requires.
type TelemetryStreamPayload struct {
	Pos, Vel, Acc     float32
	Id, Iq            float32
	Vd, Vq            float32
	Torque, Power     float32
	LoadPct, Temp     float32
	FocLoopUs         uint32
	Warnings          uint16
	TrajActive        bool
	TsUs              uint32
}

func (p TelemetryStreamPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := 0
	for _, v := range []float32{p.Pos, p.Vel, p.Acc, p.Id, p.Iq, p.Vd, p.Vq, p.Torque, p.Power, p.LoadPct, p.Temp} {
		off = putF32(b, off, v)
	}
	off = putU32(b, off, p.FocLoopUs)
	off = putU16(b, off, p.Warnings)
	off = putBool(b, off, p.TrajActive)
	off = putU32(b, off, p.TsUs)
	f.BodyLen = off
}

func DecodeTelemetryStream(f *Frame) TelemetryStreamPayload {
	b := f.Body[:]
	var vals [11]float32
	off := 0
	for i := range vals {
		vals[i], off = getF32(b, off)
	}
	focLoopUs, off2 := getU32(b, off)
	warnings, off3 := getU16(b, off2)
	trajActive, off4 := getBool(b, off3)
	tsUs, _ := getU32(b, off4)
	return TelemetryStreamPayload{
		Pos: vals[0], Vel: vals[1], Acc: vals[2],
		Id: vals[3], Iq: vals[4],
		Vd: vals[5], Vq: vals[6],
		Torque: vals[7], Power: vals[8],
		LoadPct: vals[9], Temp: vals[10],
		FocLoopUs: focLoopUs, Warnings: warnings,
		TrajActive: trajActive, TsUs: tsUs,
	}
}

// --- Adaptive --------------------------------------------------------------

type ConfigureAdaptivePayload struct {
	CoolStepEnable  bool
	CoolStepMinScale float32
	CoolStepThresh  float32

	DCStepEnable   bool
	DCStepThresh   float32
	DCStepMaxDerate float32

	StallGuardEnable  bool
	StallGuardIThresh float32
	StallGuardVThresh float32
}

func (p ConfigureAdaptivePayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putBool(b, 0, p.CoolStepEnable)
	off = putF32(b, off, p.CoolStepMinScale)
	off = putF32(b, off, p.CoolStepThresh)
	off = putBool(b, off, p.DCStepEnable)
	off = putF32(b, off, p.DCStepThresh)
	off = putF32(b, off, p.DCStepMaxDerate)
	off = putBool(b, off, p.StallGuardEnable)
	off = putF32(b, off, p.StallGuardIThresh)
	off = putF32(b, off, p.StallGuardVThresh)
	f.BodyLen = off
}

func DecodeConfigureAdaptive(f *Frame) ConfigureAdaptivePayload {
	b := f.Body[:]
	var p ConfigureAdaptivePayload
	off := 0
	p.CoolStepEnable, off = getBool(b, off)
	p.CoolStepMinScale, off = getF32(b, off)
	p.CoolStepThresh, off = getF32(b, off)
	p.DCStepEnable, off = getBool(b, off)
	p.DCStepThresh, off = getF32(b, off)
	p.DCStepMaxDerate, off = getF32(b, off)
	p.StallGuardEnable, off = getBool(b, off)
	p.StallGuardIThresh, off = getF32(b, off)
	p.StallGuardVThresh, _ = getF32(b, off)
	return p
}

// AdaptiveStatusPayload mirrors adaptive.Status plus energy-saved and a
// packed flags byte (spec.md §6). StallStatus is 0=Normal, 1=Warning,
// 2=Stalled (spec.md §4.7's three-state machine).
type AdaptiveStatusPayload struct {
	LoadPct         float32
	CurrentScale    float32
	VelocityScale   float32
	EnergySavedWh   float32
	StallStatus     uint8
	StallConfidence float32
	Flags           uint8
}

func (p AdaptiveStatusPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putF32(b, 0, p.LoadPct)
	off = putF32(b, off, p.CurrentScale)
	off = putF32(b, off, p.VelocityScale)
	off = putF32(b, off, p.EnergySavedWh)
	off = putU8(b, off, p.StallStatus)
	off = putF32(b, off, p.StallConfidence)
	off = putU8(b, off, p.Flags)
	f.BodyLen = off
}

func DecodeAdaptiveStatus(f *Frame) AdaptiveStatusPayload {
	b := f.Body[:]
	var p AdaptiveStatusPayload
	off := 0
	p.LoadPct, off = getF32(b, off)
	p.CurrentScale, off = getF32(b, off)
	p.VelocityScale, off = getF32(b, off)
	p.EnergySavedWh, off = getF32(b, off)
	p.StallStatus, off = getU8(b, off)
	p.StallConfidence, off = getF32(b, off)
	p.Flags, _ = getU8(b, off)
	return p
}

// --- Calibration -----------------------------------------------------------

type StartCalibrationPayload struct {
	PhasesMask    uint8
	IMax          float32
	VMax          float32
	PosRange      float32
	PhaseTimeoutS float32
	ReturnHome    bool
}

func (p StartCalibrationPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putU8(b, 0, p.PhasesMask)
	off = putF32(b, off, p.IMax)
	off = putF32(b, off, p.VMax)
	off = putF32(b, off, p.PosRange)
	off = putF32(b, off, p.PhaseTimeoutS)
	off = putBool(b, off, p.ReturnHome)
	f.BodyLen = off
}

func DecodeStartCalibration(f *Frame) StartCalibrationPayload {
	b := f.Body[:]
	var p StartCalibrationPayload
	off := 0
	p.PhasesMask, off = getU8(b, off)
	p.IMax, off = getF32(b, off)
	p.VMax, off = getF32(b, off)
	p.PosRange, off = getF32(b, off)
	p.PhaseTimeoutS, off = getF32(b, off)
	p.ReturnHome, _ = getBool(b, off)
	return p
}

type CalibrationStatusPayload struct {
	Phase    uint8
	Progress float32
	EtaS     float32
	Pos      float32
	Vel      float32
	Iq       float32
}

func (p CalibrationStatusPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putU8(b, 0, p.Phase)
	off = putF32(b, off, p.Progress)
	off = putF32(b, off, p.EtaS)
	off = putF32(b, off, p.Pos)
	off = putF32(b, off, p.Vel)
	off = putF32(b, off, p.Iq)
	f.BodyLen = off
}

func DecodeCalibrationStatus(f *Frame) CalibrationStatusPayload {
	b := f.Body[:]
	var p CalibrationStatusPayload
	off := 0
	p.Phase, off = getU8(b, off)
	p.Progress, off = getF32(b, off)
	p.EtaS, off = getF32(b, off)
	p.Pos, off = getF32(b, off)
	p.Vel, off = getF32(b, off)
	p.Iq, _ = getF32(b, off)
	return p
}

// CalibrationResultPayload is the terminal calibration response
// (spec.md §6): params + confidence metrics + total time + error code.
type CalibrationResultPayload struct {
	Success bool

	InertiaKgM2    float32
	TorqueConstant float32
	DampingCoeff   float32
	FrictionCoulomb float32
	FrictionStribeckPeak float32
	FrictionStribeckVel  float32
	FrictionViscous      float32

	ConfOverall       float32
	ConfInertia       float32
	ConfFriction      float32
	ConfKt            float32
	ConfValidationRMS float32

	TotalS    float32
	ErrorCode ErrorCode
}

func (p CalibrationResultPayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putBool(b, 0, p.Success)
	for _, v := range []float32{
		p.InertiaKgM2, p.TorqueConstant, p.DampingCoeff,
		p.FrictionCoulomb, p.FrictionStribeckPeak, p.FrictionStribeckVel, p.FrictionViscous,
		p.ConfOverall, p.ConfInertia, p.ConfFriction, p.ConfKt, p.ConfValidationRMS,
		p.TotalS,
	} {
		off = putF32(b, off, v)
	}
	off = putU8(b, off, uint8(p.ErrorCode))
	f.BodyLen = off
}

func DecodeCalibrationResult(f *Frame) CalibrationResultPayload {
	b := f.Body[:]
	var p CalibrationResultPayload
	off := 0
	p.Success, off = getBool(b, off)
	var vals [13]float32
	for i := range vals {
		vals[i], off = getF32(b, off)
	}
	p.InertiaKgM2, p.TorqueConstant, p.DampingCoeff = vals[0], vals[1], vals[2]
	p.FrictionCoulomb, p.FrictionStribeckPeak, p.FrictionStribeckVel, p.FrictionViscous = vals[3], vals[4], vals[5], vals[6]
	p.ConfOverall, p.ConfInertia, p.ConfFriction, p.ConfKt, p.ConfValidationRMS = vals[7], vals[8], vals[9], vals[10], vals[11]
	p.TotalS = vals[12]
	code, _ := getU8(b, off)
	p.ErrorCode = ErrorCode(code)
	return p
}

// --- Heartbeat / dictionary --------------------------------------------

type HeartbeatPayload struct {
	UptimeS float32
}

func (p HeartbeatPayload) Encode(f *Frame) {
	f.BodyLen = putF32(f.Body[:], 0, p.UptimeS)
}

func DecodeHeartbeat(f *Frame) HeartbeatPayload {
	v, _ := getF32(f.Body[:], 0)
	return HeartbeatPayload{UptimeS: v}
}

// DictionaryResponsePayload is the self-description response
// (SPEC_FULL.md item 1, modeled on the teacher's core/dictionary.go
// build-time command table): firmware version, pole-pair count, and
// the tags this build supports.
type DictionaryResponsePayload struct {
	FirmwareVersion string
	PolePairs       uint16
	SupportedTags   []Tag
}

func (p DictionaryResponsePayload) Encode(f *Frame) {
	b := f.Body[:]
	off := putString(b, 0, p.FirmwareVersion)
	off = putU16(b, off, p.PolePairs)
	off = putTagList(b, off, p.SupportedTags)
	f.BodyLen = off
}

func DecodeDictionaryResponse(f *Frame, scratch []Tag) DictionaryResponsePayload {
	b := f.Body[:]
	var p DictionaryResponsePayload
	var off int
	p.FirmwareVersion, off = getString(b, 0)
	p.PolePairs, off = getU16(b, off)
	p.SupportedTags, _ = getTagList(b, off, scratch)
	return p
}
