package motion

import "motorcore/internal/numeric"

// TorqueCommand is the interpolator's output: a current-loop setpoint
// in the "motion" sense (a torque demand), handed to the FOC tick by
// the caller (joint glues TorqueCommand.IqRef into foc.TickInput.IqRef,
// keeping motion free of a foc import).
type TorqueCommand struct {
	IqRef float32
	Done  bool // trajectory (plus shaper settling time) has fully elapsed
}

// Gains holds the cascaded position(P)/velocity(PI) interpolator's
// tuning (spec.md §4.4). VelKi accumulates against velocity error;
// torque output is clamped to +/-IqMax before being handed down.
type Gains struct {
	PosKp           float32
	VelKp, VelKi    float32
	VelIntegralMax  float32
	IqMax           float32
	VelLimit        float32 // rad/s, the configured velocity cap the dcStep scale derates (spec.md §4.4)
	TorqueConstant  float32 // Nm/A; also k_t in the feedforward term's k_t^-1 factor
	JEstKgM2        float32 // identified inertia (spec.md §4.8); 0 until calibration has run, which disables feedforward
}

// Interpolator runs the 1kHz cascaded loop against one Trajectory
// (optionally shaped). One instance per joint; not safe for concurrent
// use from more than one cooperative task (spec.md §5).
type Interpolator struct {
	gains Gains

	velIntegral float32
	elapsed     float32
	velScale    float32 // dcStep's adaptive derating factor, applied each tick (spec.md §4.4, §4.7)
}

// NewInterpolator builds an interpolator with the given gains.
func NewInterpolator(gains Gains) *Interpolator {
	return &Interpolator{gains: gains, velScale: 1}
}

// SetVelocityScale updates the dcStep derating factor the adaptive
// coroutine publishes each evaluation (spec.md §4.7 "Velocity scaling
// multiplies the velocity setpoint feeding into §4.4"). Read here, not
// written, to keep the single-writer discipline (spec.md §5).
func (it *Interpolator) SetVelocityScale(scale float32) {
	it.velScale = scale
}

// SetInertiaEstimate updates the feedforward term's J_est coefficient
// once calibration identifies it (spec.md §4.8), the same single-writer
// plain-field-write pattern as SetVelocityScale.
func (it *Interpolator) SetInertiaEstimate(kgM2 float32) {
	it.gains.JEstKgM2 = kgM2
}

// Reset clears the integrator and elapsed-time clock; called whenever a
// new Command supersedes the one currently executing (last-writer-wins,
// spec.md §3).
func (it *Interpolator) Reset() {
	it.velIntegral = 0
	it.elapsed = 0
}

// Step advances the interpolator by dt seconds against tr (optionally
// shaped via imp — pass Impulses{N:1, Amps:[1]} for no shaping) and the
// live measured position/velocity, returning the torque command for
// this tick.
func (it *Interpolator) Step(tr *Trajectory, imp Impulses, measuredPos, measuredVel, dt float32) TorqueCommand {
	it.elapsed += dt
	dur := ShapedDuration(tr, imp)
	ref := Shape(tr, imp, it.elapsed)

	posErr := ref.Pos - measuredPos
	velSetpoint := ref.Vel + it.gains.PosKp*posErr
	if limit := it.gains.VelLimit * it.velScale; limit > 0 {
		velSetpoint = numeric.Clamp(velSetpoint, -limit, limit)
	}

	velErr := velSetpoint - measuredVel
	proposed := numeric.Clamp(it.velIntegral+velErr*dt, -it.gains.VelIntegralMax, it.gains.VelIntegralMax)

	// Feedforward: k_t^-1 * acc_ref * J_est (spec.md §4.4). Zero
	// TorqueConstant (unconfigured) or zero JEstKgM2 (not yet
	// calibrated) both collapse this to 0, leaving the PI terms alone.
	var iqFF float32
	if it.gains.TorqueConstant != 0 {
		iqFF = ref.Acc * it.gains.JEstKgM2 / it.gains.TorqueConstant
	}

	iq := it.gains.VelKp*velErr + it.gains.VelKi*proposed + iqFF
	clamped := numeric.Clamp(iq, -it.gains.IqMax, it.gains.IqMax)
	if clamped == iq {
		it.velIntegral = proposed
	}

	return TorqueCommand{
		IqRef: clamped,
		Done:  it.elapsed >= dur,
	}
}
