package calibration

// FSM drives the five-phase calibration sequence end to end
// (spec.md §4.8). It owns one estimator per phase; the caller feeds
// samples through the Feed* methods and moves it from phase to phase
// with the Advance* methods and RunValidation.
type FSM struct {
	phase   Phase
	cfg     ValidationConfig
	commandedIq float32

	inertiaEst *InertiaEstimator
	frictionEst *FrictionEstimator
	torqueEst  *TorqueConstantEstimator
	dampingEst *DampingEstimator

	result Result

	phaseStart float32
	trialVelocities []float32
	trialIndex      int
}

// NewFSM builds an idle FSM. commandedIq is the constant current used
// during the inertia and torque-constant excitation phases.
func NewFSM(commandedIq float32, cfg ValidationConfig) *FSM {
	return &FSM{phase: PhaseIdle, cfg: cfg, commandedIq: commandedIq}
}

func (f *FSM) Status() Status {
	n, target := 0, 0
	switch f.phase {
	case PhaseInertia:
		n, target = f.inertiaEst.Len(), maxSamples
	case PhaseFriction:
		n, target = f.frictionEst.Len(), len(f.trialVelocities)
	case PhaseTorqueConstant:
		n, target = f.torqueEst.Len(), maxSamples
	case PhaseDamping:
		n, target = f.dampingEst.Len(), maxSamples
	}
	return Status{Phase: f.phase, SampleCount: n, SampleTarget: target}
}

// Start begins the sequence, provisionally assuming torqueConstant0
// (Nm/A, a nameplate or default value) until the TorqueConstant phase
// refines it.
func (f *FSM) Start(torqueConstant0 float32, frictionTrialVelocities []float32) {
	f.phase = PhaseInertia
	f.inertiaEst = NewInertiaEstimator(torqueConstant0, f.commandedIq)
	f.result = Result{TorqueConstant: torqueConstant0}
	f.trialVelocities = frictionTrialVelocities
	f.trialIndex = 0
}

// Abort cancels an in-progress run; the FSM returns to Idle and
// discards all partial estimates.
func (f *FSM) Abort() {
	*f = FSM{phase: PhaseIdle, cfg: f.cfg, commandedIq: f.commandedIq}
}

// FeedInertiaSample records one (t, velocity) point during the
// free-acceleration test. Call AdvanceInertia once enough samples are
// in to move to the next phase.
func (f *FSM) FeedInertiaSample(t, velocity float32) {
	if f.phase != PhaseInertia {
		return
	}
	f.inertiaEst.AddSample(t, velocity)
}

func (f *FSM) AdvanceInertia() {
	if f.phase != PhaseInertia {
		return
	}
	f.result.InertiaKgM2, f.result.Confidence.Inertia = f.inertiaEst.Estimate()
	f.frictionEst = NewFrictionEstimator()
	f.phase = PhaseFriction
}

// FeedFrictionTrial records the steady-state holding torque for the
// current trial velocity and advances to the next trial, or to the
// TorqueConstant phase once all configured velocities are done.
func (f *FSM) FeedFrictionTrial(torqueNm float32) {
	if f.phase != PhaseFriction || f.trialIndex >= len(f.trialVelocities) {
		return
	}
	f.frictionEst.AddTrial(f.trialVelocities[f.trialIndex], torqueNm)
	f.trialIndex++
	if f.trialIndex >= len(f.trialVelocities) {
		f.result.Coulomb, f.result.Viscous, f.result.StribeckPeak, f.result.StribeckVel, f.result.Confidence.Friction = f.frictionEst.Estimate()
		friction := func(v float32) float32 { return friction(f.result, v) }
		f.torqueEst = NewTorqueConstantEstimator(f.result.InertiaKgM2, friction)
		f.phase = PhaseTorqueConstant
	}
}

func (f *FSM) FeedTorqueSample(t, velocity, iq float32) {
	if f.phase != PhaseTorqueConstant {
		return
	}
	f.torqueEst.AddSample(t, velocity, iq)
}

func (f *FSM) AdvanceTorqueConstant() {
	if f.phase != PhaseTorqueConstant {
		return
	}
	if kt, confidence := f.torqueEst.Estimate(); kt > 0 {
		f.result.TorqueConstant = kt
		f.result.Confidence.TorqueConst = confidence
	}
	f.dampingEst = NewDampingEstimator(f.result.InertiaKgM2)
	f.phase = PhaseDamping
}

func (f *FSM) FeedDampingSample(t, velocity float32) {
	if f.phase != PhaseDamping {
		return
	}
	f.dampingEst.AddSample(t, velocity)
}

func (f *FSM) AdvanceDamping() {
	if f.phase != PhaseDamping {
		return
	}
	f.result.DampingCoeff = f.dampingEst.Estimate()
	f.phase = PhaseValidation
}

// RunValidation executes the final check move against the simulated
// plant and latches Done or Failed.
func (f *FSM) RunValidation() Result {
	if f.phase != PhaseValidation {
		return f.result
	}
	rms, pass := Validate(f.result, f.cfg)
	f.result.ValidationRMS = rms
	f.result.ValidationPass = pass
	f.result.Confidence.ValidationRMS = rms
	f.result.Confidence.Overall = overallConfidence(f.result.Confidence)
	if pass {
		f.phase = PhaseDone
	} else {
		f.phase = PhaseFailed
	}
	return f.result
}

// overallConfidence takes the minimum of the three 0-1 phase scores;
// ValidationRMS is a distance, not a score, so it is excluded here (the
// caller separately gates success on cfg.ToleranceRMS).
func overallConfidence(c Confidence) float32 {
	overall := c.Inertia
	if c.Friction < overall {
		overall = c.Friction
	}
	if c.TorqueConst < overall {
		overall = c.TorqueConst
	}
	return overall
}

func (f *FSM) Phase() Phase   { return f.phase }
func (f *FSM) Result() Result { return f.result }
