package calibration

import (
	"github.com/orsinium-labs/tinymath"
	"motorcore/motion"
)

// ValidationConfig parameterizes the check move run against the
// simulated plant built from the just-identified Result.
type ValidationConfig struct {
	MoveDistance float32 // rad
	VelMax       float32
	AccelMax     float32
	Dt           float32 // sim step, seconds
	Gains        motion.Gains
	ToleranceRMS float32 // rad
}

// Validate replays a trapezoidal move through a first-order simulated
// plant built from r (J, friction, kt) and the cascaded interpolator,
// returning the RMS position tracking error and pass/fail against
// cfg.ToleranceRMS (spec.md §4.8's final phase).
func Validate(r Result, cfg ValidationConfig) (rms float32, pass bool) {
	tr := motion.Plan(0, motion.Command{
		TargetPos: cfg.MoveDistance,
		VelMax:    cfg.VelMax,
		AccelMax:  cfg.AccelMax,
		Profile:   motion.Trapezoidal,
	})

	gains := cfg.Gains
	gains.JEstKgM2 = r.InertiaKgM2 // exercise spec.md §4.4's feedforward with the just-identified J
	it := motion.NewInterpolator(gains)
	identity := motion.Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}

	var pos, vel float32
	var sumSq float32
	var steps int

	duration := motion.ShapedDuration(&tr, identity)
	for t := float32(0); t <= duration+0.05; t += cfg.Dt {
		cmd := it.Step(&tr, identity, pos, vel, cfg.Dt)
		torque := cmd.IqRef * r.TorqueConstant
		fric := friction(r, vel)
		accel := (torque - fric - r.DampingCoeff*vel) / r.InertiaKgM2
		vel += accel * cfg.Dt
		pos += vel * cfg.Dt

		ref := tr.Evaluate(t)
		err := ref.Pos - pos
		sumSq += err * err
		steps++

		if cmd.Done && t > duration {
			break
		}
	}

	if steps == 0 {
		return 0, false
	}
	rms = tinymath.Sqrt(sumSq / float32(steps))
	return rms, rms <= cfg.ToleranceRMS
}

func friction(r Result, velocity float32) float32 {
	sign := float32(1)
	if velocity < 0 {
		sign = -1
	}
	abs := velocity * sign
	stribeck := float32(0)
	if r.StribeckVel > 0 {
		stribeck = (r.StribeckPeak - r.Coulomb) * tinymath.Exp(-(abs*abs)/(r.StribeckVel*r.StribeckVel))
	}
	return sign*(r.Coulomb+stribeck) + r.Viscous*velocity
}
