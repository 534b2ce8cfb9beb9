package joint

import (
	"motorcore/adaptive"
	"motorcore/calibration"
	"motorcore/core"
	"motorcore/internal/numeric"
	"motorcore/irpc"
	"motorcore/motion"
	"motorcore/safety"
	"motorcore/telemetry"
)

// firmwareVersion answers RequestDictionary (spec.md §6); bumped by
// hand, not derived from any build tooling this core doesn't carry.
const firmwareVersion = "0.1.0-core"

// defaultAccelRatio fills in the acceleration a v1 SetTarget never
// carries (spec.md §6 "SetTarget{pos, v_max}") as a fixed multiple of
// v_max, and backstops SetTargetV2 when a_max is left at zero.
const defaultAccelRatio = 4.0 // accel = v_max * defaultAccelRatio

// supportedTags lists every payload tag this build's dispatcher
// handles, for RequestDictionary (spec.md §6, SPEC_FULL.md item 1).
var supportedTags = []irpc.Tag{
	irpc.TagConfigure, irpc.TagActivate, irpc.TagDeactivate, irpc.TagReset, irpc.TagEmergencyStop,
	irpc.TagAck, irpc.TagNack,
	irpc.TagSetTarget, irpc.TagSetTargetV2,
	irpc.TagConfigureTelemetry, irpc.TagRequestTelemetry, irpc.TagTelemetryStream,
	irpc.TagConfigureAdaptive, irpc.TagRequestAdaptiveStatus, irpc.TagAdaptiveStatus,
	irpc.TagStartCalibration, irpc.TagStopCalibration, irpc.TagCalibrationStatus, irpc.TagCalibrationResult,
	irpc.TagHeartbeat,
	irpc.TagRequestDictionary, irpc.TagDictionaryResponse,
}

// Handlers builds the dispatcher callback table bound to this Joint
// (spec.md §4.6's payload classes). Called from New and again from
// buildSubsystems; every closure below captures j, not a snapshot of it.
func (j *Joint) Handlers() irpc.Handlers {
	return irpc.Handlers{
		Configure:     j.handleConfigure,
		Activate:      j.handleActivate,
		Deactivate:    j.handleDeactivate,
		Reset:         j.handleReset,
		EmergencyStop: j.handleEmergencyStop,

		SetTarget:   j.handleSetTarget,
		SetTargetV2: j.handleSetTargetV2,

		ConfigureTelemetry: j.handleConfigureTelemetry,
		RequestTelemetry:   j.handleRequestTelemetry,

		ConfigureAdaptive:     j.handleConfigureAdaptive,
		RequestAdaptiveStatus: j.handleRequestAdaptiveStatus,

		StartCalibration: j.handleStartCalibration,
		StopCalibration:  j.handleStopCalibration,

		RequestDictionary: j.handleRequestDictionary,
	}
}

// handleConfigure applies a ConfigurePayload's wire-relevant subset
// onto j.cfg and (re)builds every subsystem from it, legal only from
// Unconfigured (spec.md §3 "Configuration").
func (j *Joint) handleConfigure(p irpc.ConfigurePayload) irpc.ErrorCode {
	if _, code := j.lifecycle.Apply(irpc.EvConfigure); code != irpc.ErrNone {
		return code
	}
	j.cfg.PolePairs = int(p.PolePairs)
	j.cfg.EncoderZeroRad = p.EncoderZeroRad
	j.cfg.CurrentLimitA = p.CurrentLimitA
	j.cfg.VelocityLimit = p.VelocityLimit
	j.cfg.PositionLimit = p.PositionLimit
	j.cfg.CurrentKp = p.CurrentKp
	j.cfg.CurrentKi = p.CurrentKi
	j.cfg.VelocityKp = p.VelocityKp
	j.cfg.VelocityKi = p.VelocityKi
	j.cfg.PositionKp = p.PositionKp
	j.cfg.TorqueConstant = p.TorqueConstant
	j.cfg.DefaultProfile = motion.Profile(p.DefaultProfile)
	applyDefaults(&j.cfg)
	j.buildSubsystems()
	return irpc.ErrNone
}

// loadPersistedCalibration restores the flash-resident calibration
// record, if any, onto j.cfg before buildSubsystems ever runs (spec.md
// §6 "Loaded at boot"). Called once from New, not per-Configure: a
// missing or corrupt record just leaves New's caller-supplied defaults
// in place, matching "corruption -> Unconfigured" (the lifecycle is
// already Unconfigured at this point and nothing here changes that).
func (j *Joint) loadPersistedCalibration() {
	// MustFlash panics when no flash driver is registered; that case
	// leaves the defaults in place, the same as a blank record.
	defer func() { _ = recover() }()
	record := calibration.Persisted{}.Encode()
	if err := core.MustFlash().ReadRecord(record[:]); err != nil {
		return
	}
	p, err := calibration.Decode(record[:])
	if err != nil {
		return
	}
	j.cfg.TorqueConstant = p.TorqueConstant
	j.cfg.InertiaKgM2 = p.InertiaKgM2
	j.cfg.HomePos = p.HomeOffset
}

func (j *Joint) handleActivate() irpc.ErrorCode {
	_, code := j.lifecycle.Apply(irpc.EvActivate)
	if code == irpc.ErrNone {
		j.adaptive.ClearStall()
	}
	return code
}

func (j *Joint) handleDeactivate() irpc.ErrorCode {
	_, code := j.lifecycle.Apply(irpc.EvDeactivate)
	return code
}

func (j *Joint) handleReset() irpc.ErrorCode {
	_, code := j.lifecycle.Apply(irpc.EvReset)
	j.faultBus = safety.FaultBus{}
	j.encoderErrors = 0
	return code
}

// handleEmergencyStop disables PWM synchronously and latches Error
// from any state (spec.md §7 test 6 "PWM disabled within one FOC tick
// ... state=Error"); unlike the other lifecycle events this never goes
// through the FSM's Apply transition table since it must never be
// rejected.
func (j *Joint) handleEmergencyStop() irpc.ErrorCode {
	j.torqueCmd = motion.TorqueCommand{Done: true}
	core.MustBridge().Disable()
	j.faultBus.Latch(irpc.ErrUserAbort, 0)
	j.lifecycle.Fault()
	return irpc.ErrNone
}

// checkMotionLimits validates a requested target against the
// configured envelope (spec.md §7 test 2 "Nack(VelocityLimit)"),
// common to both SetTarget and SetTargetV2.
func (j *Joint) checkMotionLimits(pos, vMax float32) irpc.ErrorCode {
	if !j.lifecycle.CanMove() {
		return irpc.ErrInvalidState
	}
	if vMax <= 0 || vMax > j.cfg.VelocityLimit {
		return irpc.ErrVelocityLimit
	}
	if numeric.Abs(pos-j.cfg.HomePos) > j.cfg.PositionLimit {
		return irpc.ErrPositionLimit
	}
	return irpc.ErrNone
}

// beginMove installs a freshly planned trajectory/shaper and resets
// the interpolator, the common tail of SetTarget and SetTargetV2
// (spec.md §3 "last-writer-wins: a new Command supersedes whatever the
// planner was executing").
func (j *Joint) beginMove(cmd motion.Command) {
	state := j.foc.State()
	j.trajectory = motion.Plan(state.MechanicalAngle, cmd)
	j.impulses = motion.DeriveImpulses(cmd.ShaperKind, cmd.ShaperFreq, cmd.ShaperZeta)
	j.interp.Reset()
	j.torqueCmd = motion.TorqueCommand{}
}

func (j *Joint) handleSetTarget(p irpc.SetTargetPayload) irpc.ErrorCode {
	if code := j.checkMotionLimits(p.Pos, p.VMax); code != irpc.ErrNone {
		return code
	}
	j.beginMove(motion.Command{
		ID:        j.dispatcher.NextMsgID(),
		TargetPos: p.Pos,
		VelMax:    p.VMax,
		AccelMax:  p.VMax * defaultAccelRatio,
		Profile:   motion.Trapezoidal,
	})
	return irpc.ErrNone
}

func (j *Joint) handleSetTargetV2(p irpc.SetTargetV2Payload) irpc.ErrorCode {
	if code := j.checkMotionLimits(p.Pos, p.VMax); code != irpc.ErrNone {
		return code
	}
	amax := p.AMax
	if amax <= 0 {
		amax = p.VMax * defaultAccelRatio
	}
	j.beginMove(motion.Command{
		ID:         j.dispatcher.NextMsgID(),
		TargetPos:  p.Pos,
		VelMax:     p.VMax,
		AccelMax:   amax,
		JerkMax:    p.JMax,
		Profile:    motion.Profile(p.Profile),
		ShaperKind: motion.ShaperKind(p.ShaperKind),
		ShaperFreq: p.ShaperFreq,
		ShaperZeta: p.ShaperZeta,
	})
	return irpc.ErrNone
}

func (j *Joint) handleConfigureTelemetry(p irpc.ConfigureTelemetryPayload) irpc.ErrorCode {
	j.streamer.Configure(telemetry.Mode(p.Mode), p.RateHz, p.ChangeThreshold)
	return irpc.ErrNone
}

// handleRequestTelemetry answers synchronously from the ring's most
// recent FOC-rate sample rather than blocking for the next tick
// (spec.md §5's cooperative tasks never make open-ended waits).
func (j *Joint) handleRequestTelemetry() irpc.TelemetryStreamPayload {
	if last, ok := j.streamer.Ring().Last(); ok {
		return last.Wire()
	}
	return irpc.TelemetryStreamPayload{}
}

// handleConfigureAdaptive applies the per-block tuning and enable
// flags (spec.md §4.7) and rebuilds the controller, since
// adaptive.Controller snapshots its sub-block state from Config at
// construction time and has no live setter.
func (j *Joint) handleConfigureAdaptive(p irpc.ConfigureAdaptivePayload) irpc.ErrorCode {
	j.adaptiveFlags = adaptiveFlags{
		CoolStep:   p.CoolStepEnable,
		DCStep:     p.DCStepEnable,
		StallGuard: p.StallGuardEnable,
	}

	cfg := j.adaptiveCfg
	cfg.CoolStepMinScale = p.CoolStepMinScale
	cfg.CoolStepHighLoad = p.CoolStepThresh
	cfg.CoolStepLowLoad = p.CoolStepThresh * 0.5
	cfg.DCStepVelThreshold = p.DCStepThresh
	cfg.DCStepMinScale = numeric.Clamp(1-p.DCStepMaxDerate, 0, 1)
	cfg.StallGuardThreshold = p.StallGuardIThresh
	// StallGuardVThresh has no corresponding adaptive.Config field:
	// stallGuard keys off sustained load%, not a velocity threshold
	// (see adaptive/controller.go), so it's accepted on the wire but
	// has nothing to bind to.
	j.adaptiveCfg = cfg
	j.adaptive = adaptive.NewController(j.adaptiveCfg, 0.1)
	return irpc.ErrNone
}

func (j *Joint) handleRequestAdaptiveStatus() irpc.AdaptiveStatusPayload {
	return j.AdaptiveStatusWire()
}

// handleStartCalibration applies the run's overrides onto the static
// safety envelope, seeds the FSM and driver, and enters Calibrating
// (spec.md §4.8, §3 "entry to Calibrating requires Active").
func (j *Joint) handleStartCalibration(p irpc.StartCalibrationPayload) irpc.ErrorCode {
	if _, code := j.lifecycle.Apply(irpc.EvStartCalibration); code != irpc.ErrNone {
		return code
	}

	limits := j.calibLimits
	if p.PosRange > 0 {
		limits.PosRange = p.PosRange
	}
	vmax := j.cfg.VelocityLimit
	if p.VMax > 0 {
		vmax = p.VMax
		limits.VelCap = p.VMax
	}
	imax := j.cfg.CurrentLimitA * 0.5
	if p.IMax > 0 {
		imax = p.IMax
		limits.CurrentCap = p.IMax
	}
	if p.PhaseTimeoutS > 0 {
		limits.PhaseTimeoutS = p.PhaseTimeoutS
	}
	j.calibLimits = limits
	j.calibMon = safety.NewCalibrationMonitor(limits)
	j.calibDriver = newCalibrationDriver(imax, vmax)

	var vels [len(frictionTrialVelocities)]float32
	for i, v := range frictionTrialVelocities {
		vels[i] = v * (vmax / 16)
	}
	j.calib.Start(j.cfg.TorqueConstant, vels[:])
	return irpc.ErrNone
}

// handleStopCalibration is idempotent outside Calibrating (spec.md §8
// "Idempotence"); inside it, it aborts with ErrUserAbort, the same
// path a tripped safety monitor takes.
func (j *Joint) handleStopCalibration() irpc.ErrorCode {
	if j.lifecycle.State() != irpc.Calibrating {
		return irpc.ErrNone
	}
	j.abortCalibration(irpc.ErrUserAbort)
	return irpc.ErrNone
}

func (j *Joint) handleRequestDictionary() irpc.DictionaryResponsePayload {
	return irpc.DictionaryResponsePayload{
		FirmwareVersion: firmwareVersion,
		PolePairs:       uint16(j.cfg.PolePairs),
		SupportedTags:   supportedTags,
	}
}
