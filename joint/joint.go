package joint

import (
	"motorcore/adaptive"
	"motorcore/calibration"
	"motorcore/core"
	"motorcore/foc"
	"motorcore/internal/numeric"
	"motorcore/irpc"
	"motorcore/motion"
	"motorcore/safety"
	"motorcore/telemetry"
)

// encoderCRCFaultThreshold is the consecutive-bad-CRC count that
// escalates to a latched hardware fault (spec.md §4.2 "invalid CRC
// latches fault after N consecutive errors").
const encoderCRCFaultThreshold = 5

// Joint is the single-joint orchestrator: one instance per controller
// process, holding every subsystem this spec names (spec.md §2's data
// flow diagram) and the glue between them.
type Joint struct {
	cfg Config

	lifecycle *irpc.FSM
	foc       *foc.Loop

	interp    *motion.Interpolator
	trajectory motion.Trajectory
	impulses  motion.Impulses
	torqueCmd motion.TorqueCommand

	adaptiveCfg    adaptive.Config
	adaptiveFlags  adaptiveFlags
	adaptive       *adaptive.Controller
	adaptiveStatus adaptive.Status
	energySavedWh  float32

	calib       *calibration.FSM
	calibDriver *calibrationDriver
	calibLimits safety.CalibrationLimits
	calibMon    *safety.CalibrationMonitor

	faultBus safety.FaultBus
	streamer *telemetry.Streamer

	dispatcher *irpc.Dispatcher

	encoderErrors int
}

// adaptiveFlags tracks the per-block enable bits ConfigureAdaptive
// carries (spec.md §6) that adaptive.Config itself has no room for;
// Joint applies them by neutralizing a disabled block's contribution
// to Status after Evaluate runs (see applyAdaptiveFlags).
type adaptiveFlags struct {
	CoolStep, DCStep, StallGuard bool
}

// New builds a Joint from cfg. The FOC loop's ADC/encoder calibration
// offsets are filled in later by Configure (spec.md §4.2 "calibrated at
// startup with driver disabled").
func New(cfg Config) *Joint {
	applyDefaults(&cfg)
	j := &Joint{cfg: cfg, lifecycle: irpc.NewFSM()}
	j.loadPersistedCalibration() // spec.md §6 "Loaded at boot"; no-op if flash is blank/corrupt
	j.dispatcher = irpc.NewDispatcher(cfg.SelfID, j.Handlers())
	return j
}

// Dispatcher exposes the protocol task the entrypoints' main loops poll.
func (j *Joint) Dispatcher() *irpc.Dispatcher { return j.dispatcher }

// Lifecycle exposes the current lifecycle state for diagnostics/tests.
func (j *Joint) Lifecycle() irpc.Lifecycle { return j.lifecycle.State() }

// buildSubsystems (re)constructs every subsystem from j.cfg; called
// once from the Configure handler, matching spec.md §3 "configuration
// is only legal from Unconfigured".
func (j *Joint) buildSubsystems() {
	offsetA, offsetB := core.MustADC().CalibrateOffsets(64)
	j.foc = foc.NewLoop(foc.Config{
		PolePairs:          j.cfg.PolePairs,
		OffsetA:            offsetA,
		OffsetB:            offsetB,
		SenseVoltsPerAmp:   j.cfg.SenseVoltsPerAmp,
		AdcRefVolts:        j.cfg.AdcRefVolts,
		AdcMaxCount:        j.cfg.AdcMaxCount,
		AngleOffset:        j.cfg.EncoderZeroRad,
		CurrentKp:          j.cfg.CurrentKp,
		CurrentKi:          j.cfg.CurrentKi,
		IntegralMax:        j.cfg.CurrentLimitA,
		VbusNominal:        j.cfg.VbusNominal,
		ITripAmps:          j.cfg.ITripAmps,
		DeadlineMissBudget: j.cfg.DeadlineMissBudget,
		DeadlineMissWindow: j.cfg.DeadlineMissWindow,
	})

	j.interp = motion.NewInterpolator(motion.Gains{
		PosKp:          j.cfg.PositionKp,
		VelKp:          j.cfg.VelocityKp,
		VelKi:          j.cfg.VelocityKi,
		VelIntegralMax: j.cfg.VelIntegralMax,
		IqMax:          j.cfg.CurrentLimitA,
		VelLimit:       j.cfg.VelocityLimit,
		TorqueConstant: j.cfg.TorqueConstant,
		JEstKgM2:       j.cfg.InertiaKgM2,
	})
	j.impulses = motion.Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}

	j.adaptiveCfg = j.cfg.Adaptive
	j.adaptiveFlags = adaptiveFlags{CoolStep: true, DCStep: true, StallGuard: true}
	j.adaptive = adaptive.NewController(j.adaptiveCfg, 0.1)

	j.calib = calibration.NewFSM(0, calibration.ValidationConfig{
		MoveDistance: 1, VelMax: j.cfg.VelocityLimit * 0.5, AccelMax: j.cfg.VelocityLimit,
		Dt:    0.001,
		Gains: motion.Gains{PosKp: j.cfg.PositionKp, VelKp: j.cfg.VelocityKp, VelKi: j.cfg.VelocityKi, VelIntegralMax: j.cfg.VelIntegralMax, IqMax: j.cfg.CurrentLimitA, TorqueConstant: j.cfg.TorqueConstant},
		ToleranceRMS: 0.05,
	})
	j.calibLimits = safety.CalibrationLimits{
		HomePos: j.cfg.HomePos, PosRange: j.cfg.PositionLimit,
		VelCap: j.cfg.VelocityLimit, CurrentCap: j.cfg.CurrentLimitA,
		PhaseTimeoutS: 120,
	}
	j.calibMon = safety.NewCalibrationMonitor(j.calibLimits)
	j.calibDriver = newCalibrationDriver(j.cfg.CurrentLimitA*0.5, j.cfg.VelocityLimit)

	j.streamer = telemetry.NewStreamer(j.cfg.TorqueConstant)

	j.dispatcher = irpc.NewDispatcher(j.cfg.SelfID, j.Handlers())
}

// FocTick is invoked directly from the hard-interrupt context at
// 10kHz (spec.md §5 class 1): it never suspends and reads/writes
// exactly the HAL singletons and j.foc's single-writer state.
func (j *Joint) FocTick(dtSec float32) {
	if j.foc == nil {
		return // nothing to drive until Configure builds the loop
	}
	sample := core.MustADC().SampleSync()
	enc := core.MustEncoder().ReadAngle()

	if enc.CRCGood {
		j.encoderErrors = 0
	} else {
		j.encoderErrors++
	}

	enabled := j.lifecycle.PWMPermitted() && !core.MustBridge().Fault() && j.encoderErrors < encoderCRCFaultThreshold

	out := j.foc.Tick(foc.TickInput{
		AdcA: sample.A, AdcB: sample.B, AdcVbus: sample.Vbus,
		EncRaw:       enc.Raw,
		IdRef:        0,
		IqRef:        j.torqueCmd.IqRef,
		CurrentScale: j.adaptiveStatus.CurrentScale,
		Enabled:      enabled,
		DtSec:        dtSec,
	})
	core.MustPWM().SetDuties(out.Duties)

	if j.encoderErrors >= encoderCRCFaultThreshold {
		j.faultBus.Latch(irpc.ErrHardwareError, uint32(j.encoderErrors))
		j.lifecycle.Fault()
		core.MustBridge().Disable()
	}

	if out.Fault != foc.FaultNone {
		if _, ok := j.faultBus.LatchFocFault(out.Fault, out.State.DeadlineMisses); ok {
			j.lifecycle.Fault()
			core.MustBridge().Disable()
		}
	}

	state := out.State
	sampleOut := j.streamer.Sample(telemetry.Input{
		Pos: state.MechanicalAngle, Vel: state.Velocity,
		Id: state.IdMeas, Iq: state.IqMeas, Vd: state.Vd, Vq: state.Vq,
		LoopTimeUs: state.LoopTimeUs, LoadPct: j.adaptiveStatus.LoadPercent,
		Temp:       0,
		TrajActive: !j.torqueCmd.Done,
		TsUs:       uint64(core.TimerToUS(core.GetTime())),
	})

	// RequestTelemetry answers synchronously from the dispatcher's
	// request/response path (see Handlers.RequestTelemetry), so the push
	// path here never needs the "requested" flag: OnDemand mode simply
	// never emits a push.
	if j.streamer.ShouldEmit(sampleOut, false) {
		j.dispatcher.SendTelemetry(j.cfg.HostID, sampleOut.Wire())
	}
}

// MotionTick runs the cooperative 1kHz motion/adaptive coroutine
// (spec.md §5 class 2). When calibration owns the control chain, the
// calibration driver steps instead of the cascaded interpolator
// (spec.md §4.8 "seizes the control chain").
func (j *Joint) MotionTick(dtSec float32) {
	if j.foc == nil {
		return // nothing to drive until Configure builds the loop
	}
	state := j.foc.State()

	if j.lifecycle.State() == irpc.Calibrating {
		j.stepCalibration(dtSec, state)
		return
	}

	if !j.lifecycle.CanMove() {
		return
	}

	j.interp.SetVelocityScale(j.adaptiveStatus.VelocityScale)
	j.torqueCmd = j.interp.Step(&j.trajectory, j.impulses, state.MechanicalAngle, state.Velocity, dtSec)

	status := j.adaptive.Evaluate(state.IqMeas, state.Velocity)
	j.applyAdaptiveFlags(&status)
	j.adaptiveStatus = status

	j.energySavedWh += (1 - status.CurrentScale) * numeric.Abs(state.Vq*state.IqMeas) * dtSec / 3600
}

// applyAdaptiveFlags neutralizes any block ConfigureAdaptive disabled,
// since adaptive.Config has no enable bits of its own (see
// adaptiveFlags's doc comment).
func (j *Joint) applyAdaptiveFlags(s *adaptive.Status) {
	if !j.adaptiveFlags.CoolStep {
		s.CurrentScale = 1
	}
	if !j.adaptiveFlags.DCStep {
		s.VelocityScale = 1
	}
	if !j.adaptiveFlags.StallGuard {
		s.Stalled = false
		s.StallConfidence = 0
	}
}

// stallStatus maps adaptive.Status's bool+confidence pair to the wire's
// tri-state {Normal, Warning, Stalled} (spec.md §4.7's three-state
// machine): Stalled -> 2, any partial confidence -> Warning, else
// Normal.
func stallStatus(s adaptive.Status) uint8 {
	switch {
	case s.Stalled:
		return 2
	case s.StallConfidence > 0:
		return 1
	default:
		return 0
	}
}

// AdaptiveStatusWire builds the wire payload for the current adaptive
// status, reconciling the fields adaptive.Status doesn't carry
// (tri-state stall, energy saved) at this integration layer.
func (j *Joint) AdaptiveStatusWire() irpc.AdaptiveStatusPayload {
	return irpc.AdaptiveStatusPayload{
		LoadPct:         j.adaptiveStatus.LoadPercent,
		CurrentScale:    j.adaptiveStatus.CurrentScale,
		VelocityScale:   j.adaptiveStatus.VelocityScale,
		EnergySavedWh:   j.energySavedWh,
		StallStatus:     stallStatus(j.adaptiveStatus),
		StallConfidence: j.adaptiveStatus.StallConfidence,
	}
}
