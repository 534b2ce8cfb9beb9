package joint

import (
	"motorcore/calibration"
	"motorcore/core"
	"motorcore/foc"
	"motorcore/irpc"
)

// calibration phase timing (spec.md §4.8): each trial/phase runs for a
// fixed duration rather than waiting for a convergence signal, keeping
// the driver itself free of iteration or heap growth.
const (
	inertiaTrialS  = 1.5
	frictionTrialS = 4.0
	torqueConstS   = 3.0
	dampingS       = 3.0
)

var frictionTrialVelocities = [4]float32{2, 4, 8, 16} // rad/s

// calibrationDriver steps the commanded current/velocity during each
// calibration.FSM phase and feeds measured samples back in, playing
// the role the host would otherwise have to play over the wire
// (spec.md §4.8 "runs autonomously once started").
type calibrationDriver struct {
	iMax, vMax float32

	phaseElapsed  float32
	trialElapsed  float32
	trialVelIndex int
	trialSum      float32 // running sum of Iq samples for the current friction trial
	trialCount    int     // running count, so the mean needs no sample buffer (spec.md §5, no heap growth)
}

func newCalibrationDriver(iMax, vMax float32) *calibrationDriver {
	return &calibrationDriver{iMax: iMax, vMax: vMax}
}

func (d *calibrationDriver) reset() {
	d.phaseElapsed = 0
	d.trialElapsed = 0
	d.trialVelIndex = 0
	d.trialSum = 0
	d.trialCount = 0
}

// stepCalibration advances the calibration FSM by one motion-tick
// period, driving commandedIq (inertia/torque-constant excitation) or
// commandedVel (friction/damping trials) from the current phase, and
// gates every tick through the calibration safety monitor.
func (j *Joint) stepCalibration(dtSec float32, state foc.State) {
	if code := j.calibMon.Check(state.MechanicalAngle, state.Velocity, state.IqMeas, 0, dtSec); code != irpc.ErrNone {
		j.abortCalibration(code)
		return
	}

	d := j.calibDriver
	phase := j.calib.Phase()
	d.phaseElapsed += dtSec

	switch phase {
	case calibration.PhaseInertia:
		j.torqueCmd.IqRef = d.iMax
		j.calib.FeedInertiaSample(d.phaseElapsed, state.Velocity)
		if d.phaseElapsed >= inertiaTrialS {
			j.calib.AdvanceInertia()
			j.calibMon.ResetPhaseTimer()
			d.phaseElapsed = 0
		}

	case calibration.PhaseFriction:
		target := frictionTrialVelocities[d.trialVelIndex] * (d.vMax / 16)
		j.torqueCmd.IqRef = velocityHoldIq(target, state.Velocity)
		d.trialElapsed += dtSec
		if d.trialElapsed > frictionTrialS*0.5 {
			d.trialSum += state.IqMeas
			d.trialCount++
		}
		if d.trialElapsed >= frictionTrialS {
			mean := float32(0)
			if d.trialCount > 0 {
				mean = d.trialSum / float32(d.trialCount)
			}
			j.calib.FeedFrictionTrial(mean)
			d.trialSum = 0
			d.trialCount = 0
			d.trialElapsed = 0
			d.trialVelIndex++
			if d.trialVelIndex >= len(frictionTrialVelocities) {
				j.calibMon.ResetPhaseTimer()
			}
		}

	case calibration.PhaseTorqueConstant:
		j.torqueCmd.IqRef = d.iMax
		j.calib.FeedTorqueSample(d.phaseElapsed, state.Velocity, state.IqMeas)
		if d.phaseElapsed >= torqueConstS {
			j.calib.AdvanceTorqueConstant()
			j.calibMon.ResetPhaseTimer()
			d.phaseElapsed = 0
		}

	case calibration.PhaseDamping:
		j.torqueCmd.IqRef = 0 // coastdown from whatever velocity the prior phase left
		j.calib.FeedDampingSample(d.phaseElapsed, state.Velocity)
		if d.phaseElapsed >= dampingS {
			j.calib.AdvanceDamping()
			j.calibMon.ResetPhaseTimer()
			d.phaseElapsed = 0
		}

	case calibration.PhaseValidation:
		j.torqueCmd.IqRef = 0
		result := j.calib.RunValidation()
		j.finishCalibration(result)

	default:
		j.torqueCmd.IqRef = 0
	}
}

// velocityHoldIq is a minimal P-only velocity-to-current map used only
// to hold a steady trial velocity during the friction phase; the
// cascaded interpolator isn't used here since no trajectory or target
// position applies during system identification.
func velocityHoldIq(target, measured float32) float32 {
	const kp = 0.2
	return kp * (target - measured)
}

// abortCalibration is called when the scoped safety monitor trips
// mid-run; it forces the FSM back to Active and reports the violation
// as the terminal result's error code (spec.md §4.8 "a violation
// aborts the phase").
func (j *Joint) abortCalibration(code irpc.ErrorCode) {
	j.calib.Abort()
	j.lifecycle.Apply(irpc.EvCalibrationFailed)
	j.dispatcher.SendCalibrationResult(j.cfg.HostID, irpc.CalibrationResultPayload{
		Success:   false,
		ErrorCode: code,
	})
}

// finishCalibration reports the terminal result over the wire and
// returns the FSM to Active (or leaves it for a retry on failure),
// matching EvCalibrationDone/EvCalibrationFailed's shared "back to
// Active" semantics (spec.md §4.6).
func (j *Joint) finishCalibration(result calibration.Result) {
	if result.ValidationPass {
		j.lifecycle.Apply(irpc.EvCalibrationDone)
		j.cfg.InertiaKgM2 = result.InertiaKgM2
		j.interp.SetInertiaEstimate(result.InertiaKgM2)
		// shaperKind 0 is motion.ShaperNone's wire value; resonance
		// identification isn't part of this FSM's five phases, so the
		// persisted record carries no shaping until a later run sets
		// one via SetTargetV2 (not persisted today).
		record := calibration.FromResult(result, j.cfg.HomePos, 0, 0, 0).Encode()
		_ = core.MustFlash().WriteRecord(record[:])
	} else {
		j.lifecycle.Apply(irpc.EvCalibrationFailed)
	}
	j.dispatcher.SendCalibrationResult(j.cfg.HostID, irpc.CalibrationResultPayload{
		Success:               result.ValidationPass,
		InertiaKgM2:           result.InertiaKgM2,
		TorqueConstant:        result.TorqueConstant,
		DampingCoeff:          result.DampingCoeff,
		FrictionCoulomb:       result.Coulomb,
		FrictionStribeckPeak:  result.StribeckPeak,
		FrictionStribeckVel:   result.StribeckVel,
		FrictionViscous:       result.Viscous,
		ConfOverall:           result.Confidence.Overall,
		ConfInertia:           result.Confidence.Inertia,
		ConfFriction:          result.Confidence.Friction,
		ConfKt:                result.Confidence.TorqueConst,
		ConfValidationRMS:     result.Confidence.ValidationRMS,
	})
}
