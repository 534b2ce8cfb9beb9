package motion

import "testing"

func defaultGains() Gains {
	return Gains{
		PosKp:          20,
		VelKp:          0.5,
		VelKi:          5,
		VelIntegralMax: 10,
		IqMax:          8,
		TorqueConstant: 0.05,
	}
}

func TestInterpolatorTracksTowardTarget(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 5, VelMax: 3, AccelMax: 10, Profile: Trapezoidal})
	identity := Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	it := NewInterpolator(defaultGains())

	var pos, vel float32
	const dt = 0.001
	steps := int(tr.Duration/dt) + 200
	for i := 0; i < steps; i++ {
		cmd := it.Step(&tr, identity, pos, vel, dt)
		accel := cmd.IqRef * defaultGains().TorqueConstant / 0.001 // crude inertia model
		vel += accel * dt
		pos += vel * dt
	}
	if !approxEq(pos, 5, 0.2) {
		t.Fatalf("final pos = %v, want close to 5", pos)
	}
}

func TestInterpolatorTorqueClampedToIqMax(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 1000, VelMax: 50, AccelMax: 500, Profile: Trapezoidal})
	identity := Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	it := NewInterpolator(defaultGains())

	cmd := it.Step(&tr, identity, 0, 0, 0.001)
	if cmd.IqRef > defaultGains().IqMax || cmd.IqRef < -defaultGains().IqMax {
		t.Fatalf("IqRef = %v, exceeds IqMax %v", cmd.IqRef, defaultGains().IqMax)
	}
}

func TestInterpolatorReportsDoneAfterDuration(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 1, VelMax: 10, AccelMax: 50, Profile: Trapezoidal})
	identity := Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	it := NewInterpolator(defaultGains())

	var done bool
	for i := 0; i < int(tr.Duration/0.001)+10; i++ {
		cmd := it.Step(&tr, identity, 1, 0, 0.001)
		if cmd.Done {
			done = true
			break
		}
	}
	if !done {
		t.Fatalf("interpolator never reported Done within trajectory duration")
	}
}

func TestInterpolatorFeedforwardAddsTorqueDuringAcceleration(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 5, VelMax: 3, AccelMax: 10, Profile: Trapezoidal})
	identity := Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}

	gains := defaultGains()
	gains.IqMax = 1000 // keep the comparison below the clamp

	withoutFF := NewInterpolator(gains)
	iqNoFF := withoutFF.Step(&tr, identity, 0, 0, 0.001).IqRef

	gains.JEstKgM2 = 0.02
	withFF := NewInterpolator(gains)
	iqFF := withFF.Step(&tr, identity, 0, 0, 0.001).IqRef

	if iqFF <= iqNoFF {
		t.Fatalf("feedforward did not add torque during acceleration: without=%v with=%v", iqNoFF, iqFF)
	}
}

func TestInterpolatorResetClearsIntegrator(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 5, VelMax: 3, AccelMax: 10, Profile: Trapezoidal})
	identity := Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	it := NewInterpolator(defaultGains())
	it.Step(&tr, identity, 0, 0, 0.001)
	it.Reset()
	if it.velIntegral != 0 || it.elapsed != 0 {
		t.Fatalf("Reset did not clear state: velIntegral=%v elapsed=%v", it.velIntegral, it.elapsed)
	}
}
