package motion

import "testing"

func approxEq(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestPlanTrapezoidalReachesTargetAtRest(t *testing.T) {
	cmd := Command{TargetPos: 10, VelMax: 5, AccelMax: 20, Profile: Trapezoidal}
	tr := Plan(0, cmd)
	end := tr.Evaluate(tr.Duration)
	if !approxEq(end.Pos, 10, 1e-2) {
		t.Fatalf("end pos = %v, want 10", end.Pos)
	}
	if !approxEq(end.Vel, 0, 1e-2) {
		t.Fatalf("end vel = %v, want 0", end.Vel)
	}
	if !approxEq(end.Acc, 0, 1e-2) {
		t.Fatalf("end acc = %v, want 0", end.Acc)
	}
}

func TestPlanTrapezoidalTriangleShortMove(t *testing.T) {
	// Distance too short to reach vmax: accelDist*2 >= dist.
	cmd := Command{TargetPos: 0.1, VelMax: 100, AccelMax: 20, Profile: Trapezoidal}
	tr := Plan(0, cmd)
	if tr.Tv != 0 {
		t.Fatalf("expected no cruise phase for a triangle profile, got Tv=%v", tr.Tv)
	}
	if tr.CruiseV >= 100 {
		t.Fatalf("triangle peak velocity %v should be below VelMax 100", tr.CruiseV)
	}
	end := tr.Evaluate(tr.Duration)
	if !approxEq(end.Pos, 0.1, 1e-2) {
		t.Fatalf("end pos = %v, want 0.1", end.Pos)
	}
}

func TestPlanSCurveReachesTargetAtRest(t *testing.T) {
	cmd := Command{TargetPos: 20, VelMax: 4, AccelMax: 10, JerkMax: 200, Profile: SCurve}
	tr := Plan(0, cmd)
	end := tr.Evaluate(tr.Duration)
	if !approxEq(end.Pos, 20, 0.05) {
		t.Fatalf("end pos = %v, want 20", end.Pos)
	}
	if !approxEq(end.Vel, 0, 0.05) {
		t.Fatalf("end vel = %v, want 0", end.Vel)
	}
}

func TestPlanSCurveVelocityNeverExceedsCap(t *testing.T) {
	cmd := Command{TargetPos: 50, VelMax: 6, AccelMax: 15, JerkMax: 300, Profile: SCurve}
	tr := Plan(0, cmd)
	const steps = 200
	for i := 0; i <= steps; i++ {
		tt := tr.Duration * float32(i) / steps
		p := tr.Evaluate(tt)
		if p.Vel > 6.01 {
			t.Fatalf("vel %v at t=%v exceeds VelMax 6", p.Vel, tt)
		}
	}
}

func TestPlanSCurveShortMoveNeverReachesAmax(t *testing.T) {
	cmd := Command{TargetPos: 0.02, VelMax: 50, AccelMax: 1000, JerkMax: 50000, Profile: SCurve}
	tr := Plan(0, cmd)
	if tr.Accel >= 1000 {
		t.Fatalf("Accel = %v should stay below AccelMax 1000 for a tiny move", tr.Accel)
	}
	end := tr.Evaluate(tr.Duration)
	if !approxEq(end.Pos, 0.02, 1e-3) {
		t.Fatalf("end pos = %v, want 0.02", end.Pos)
	}
}

func TestPlanNegativeDirection(t *testing.T) {
	cmd := Command{TargetPos: -5, VelMax: 3, AccelMax: 10, Profile: Trapezoidal}
	tr := Plan(0, cmd)
	if tr.Dir != -1 {
		t.Fatalf("Dir = %v, want -1", tr.Dir)
	}
	mid := tr.Evaluate(tr.Duration / 2)
	if mid.Vel > 0 {
		t.Fatalf("velocity should be negative moving toward -5, got %v", mid.Vel)
	}
	end := tr.Evaluate(tr.Duration)
	if !approxEq(end.Pos, -5, 1e-2) {
		t.Fatalf("end pos = %v, want -5", end.Pos)
	}
}

func TestPlanZeroDistanceIsInstantlyDone(t *testing.T) {
	cmd := Command{TargetPos: 3, VelMax: 3, AccelMax: 10, Profile: Trapezoidal}
	tr := Plan(3, cmd)
	if tr.Duration != 0 {
		t.Fatalf("Duration = %v, want 0 for zero-distance move", tr.Duration)
	}
}
