package adaptive

import "testing"

func approxEq(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func testConfig() Config {
	return Config{
		IqMaxAmps:          10,
		CoolStepLowLoad:    30,
		CoolStepHighLoad:   70,
		CoolStepMinScale:   0.3,
		CoolStepMaxScale:   1.0,
		CoolStepStep:       0.05,
		DCStepVelThreshold: 5,
		DCStepMinScale:     0.2,
		StallGuardThreshold: 90,
		StallGuardWindow:    5,
	}
}

func TestCoolStepReducesScaleUnderLightLoad(t *testing.T) {
	c := NewCoolStep(testConfig())
	var scale float32
	for i := 0; i < 20; i++ {
		scale = c.Evaluate(10) // well below CoolStepLowLoad
	}
	if scale >= 1.0 {
		t.Fatalf("scale = %v, expected reduction under light load", scale)
	}
	if scale < testConfig().CoolStepMinScale {
		t.Fatalf("scale = %v, below configured floor", scale)
	}
}

func TestCoolStepIncreasesScaleUnderHeavyLoad(t *testing.T) {
	cfg := testConfig()
	c := NewCoolStep(cfg)
	c.scale = 0.5
	scale := c.Evaluate(95)
	if scale <= 0.5 {
		t.Fatalf("scale = %v, expected increase under heavy load", scale)
	}
}

func TestDCStepDeratesAtSaturatedCurrent(t *testing.T) {
	cfg := testConfig()
	d := NewDCStep(cfg)
	var scale float32
	for i := 0; i < 10; i++ {
		scale = d.Evaluate(10, 0.99) // fast and current-saturated
	}
	if scale >= 1.0 {
		t.Fatalf("scale = %v, expected derating", scale)
	}
	if scale < cfg.DCStepMinScale {
		t.Fatalf("scale = %v, below configured floor", scale)
	}
}

func TestStallGuardRequiresSustainedLoad(t *testing.T) {
	cfg := testConfig()
	s := NewStallGuard(cfg)
	for i := 0; i < cfg.StallGuardWindow-1; i++ {
		stalled, _ := s.Evaluate(95)
		if stalled {
			t.Fatalf("stalled too early at iteration %d", i)
		}
	}
	stalled, conf := s.Evaluate(95)
	if !stalled {
		t.Fatalf("expected stall latched after %d sustained samples", cfg.StallGuardWindow)
	}
	if !approxEq(conf, 1.0, 1e-6) {
		t.Fatalf("confidence = %v, want 1.0 at full window", conf)
	}
}

func TestStallGuardClearsOnLoadDrop(t *testing.T) {
	cfg := testConfig()
	s := NewStallGuard(cfg)
	for i := 0; i < cfg.StallGuardWindow; i++ {
		s.Evaluate(95)
	}
	stalled, _ := s.Evaluate(10)
	if stalled {
		t.Fatalf("stall should clear once load drops below threshold")
	}
}

func TestStallGuardClearResetsState(t *testing.T) {
	cfg := testConfig()
	s := NewStallGuard(cfg)
	for i := 0; i < cfg.StallGuardWindow; i++ {
		s.Evaluate(95)
	}
	s.Clear()
	if s.stalled || s.aboveCount != 0 {
		t.Fatalf("Clear did not reset FSM state")
	}
}

func TestLoadEstimatorConvergesToStep(t *testing.T) {
	l := NewLoadEstimator(10, 0.2)
	var pct float32
	for i := 0; i < 200; i++ {
		pct = l.Update(5) // 50% of IqMax
	}
	if !approxEq(pct, 50, 1) {
		t.Fatalf("load%% = %v, want ~50", pct)
	}
}

func TestRelayTunerProducesPositiveGainsAfterCycles(t *testing.T) {
	tuner := NewRelayTuner(2.0, 3)
	var t2 float32
	// Simulate a sinusoidal error with period 1s and amplitude 1.
	for i := 0; i < 6000; i++ {
		t2 = float32(i) * 0.001
		err := sinApprox(t2 * 2 * 3.14159265)
		tuner.Step(t2, err)
		if tuner.Done() {
			break
		}
	}
	if !tuner.Done() {
		t.Fatalf("tuner did not complete within simulated window")
	}
	kp, ki := tuner.Gains()
	if kp <= 0 || ki <= 0 {
		t.Fatalf("expected positive gains, got kp=%v ki=%v", kp, ki)
	}
}

// sinApprox avoids importing tinymath into the test for a simple
// periodic signal; a Taylor/Bhaskara approximation is plenty for
// generating zero crossings at a known period.
func sinApprox(x float32) float32 {
	for x > 2*3.14159265 {
		x -= 2 * 3.14159265
	}
	for x < 0 {
		x += 2 * 3.14159265
	}
	// Bhaskara I approximation, accurate to ~0.002 over [0, pi].
	if x > 3.14159265 {
		return -sinApprox(x - 3.14159265)
	}
	return 16 * x * (3.14159265 - x) / (5*3.14159265*3.14159265 - 4*x*(3.14159265-x))
}

func TestControllerEvaluateProducesStatus(t *testing.T) {
	c := NewController(testConfig(), 0.3)
	st := c.Evaluate(8, 2)
	if st.CurrentScale <= 0 {
		t.Fatalf("CurrentScale = %v, expected positive", st.CurrentScale)
	}
}

func TestControllerClearStall(t *testing.T) {
	c := NewController(testConfig(), 0.3)
	for i := 0; i < 10; i++ {
		c.Evaluate(9.9, 1)
	}
	c.ClearStall()
	if c.stall.stalled {
		t.Fatalf("ClearStall did not clear underlying stallguard state")
	}
}
