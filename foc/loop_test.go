package foc

import "testing"

func testConfig() Config {
	return Config{
		PolePairs:          7,
		OffsetA:            2048,
		OffsetB:            2048,
		SenseVoltsPerAmp:   0.2,
		AdcRefVolts:        3.3,
		AdcMaxCount:        4095,
		CurrentKp:          2.0,
		CurrentKi:          50.0,
		IntegralMax:        20,
		VbusNominal:        24,
		ITripAmps:          15,
		DeadlineMissBudget: 5,
		DeadlineMissWindow: 10,
	}
}

func TestTickDisabledForcesSafeDuties(t *testing.T) {
	l := NewLoop(testConfig())
	out := l.Tick(TickInput{
		AdcA: 2048, AdcB: 2048, AdcVbus: 4095,
		EncRaw: 0, IqRef: 2.0, CurrentScale: 1.0,
		Enabled: false, DtSec: 0.0001,
	})
	if out.Duties != (Pwm4{}) {
		t.Fatalf("disabled tick produced nonzero duties: %v", out.Duties)
	}
	if out.Fault != FaultNone {
		t.Fatalf("disabled tick should not itself be a fault: %v", out.Fault)
	}
}

func TestTickOvercurrentLatchesFaultAndZerosDuties(t *testing.T) {
	cfg := testConfig()
	cfg.ITripAmps = 5 // full-scale count reads 8.25 A with this sense transfer
	l := NewLoop(cfg)
	out := l.Tick(TickInput{
		AdcA: 4095, AdcB: 2048, AdcVbus: 4095, // full-scale count -> well over ITripAmps
		Enabled: true, DtSec: 0.0001,
	})
	if out.Fault != FaultOverCurrent {
		t.Fatalf("Fault = %v, want FaultOverCurrent", out.Fault)
	}
	if out.Duties != (Pwm4{}) {
		t.Fatalf("overcurrent tick produced nonzero duties: %v", out.Duties)
	}
	if !out.State.Faulted {
		t.Fatalf("State.Faulted not set")
	}
}

func TestTickDeadlineMissBudgetTripsFault(t *testing.T) {
	cfg := testConfig()
	cfg.DeadlineMissBudget = 3
	cfg.DeadlineMissWindow = 5
	l := NewLoop(cfg)
	l.state.LoopTimeUs = 0
	for i := 0; i < 5; i++ {
		l.recordDeadline(true)
	}
	if !l.deadlineMissesExceedBudget() {
		t.Fatalf("expected deadline miss budget exceeded after 5 consecutive misses with budget 3")
	}
	out := l.Tick(TickInput{AdcA: 2048, AdcB: 2048, AdcVbus: 4095, Enabled: true, DtSec: 0.0001})
	if out.Fault != FaultDeadlineMiss {
		t.Fatalf("Fault = %v, want FaultDeadlineMiss", out.Fault)
	}
}

func TestTickNormalOperationProducesNonFaultedOutput(t *testing.T) {
	l := NewLoop(testConfig())
	out := l.Tick(TickInput{
		AdcA: 2048, AdcB: 2048, AdcVbus: 4095,
		EncRaw: 1000, IqRef: 1.0, CurrentScale: 1.0,
		Enabled: true, DtSec: 0.0001,
	})
	if out.Fault != FaultNone {
		t.Fatalf("Fault = %v, want FaultNone for nominal input", out.Fault)
	}
	if out.State.Faulted {
		t.Fatalf("State.Faulted should be false for nominal input")
	}
}

func TestSetPwmTopAffectsDutyRange(t *testing.T) {
	l := NewLoop(testConfig())
	l.SetPwmTop(1000)
	out := l.Tick(TickInput{AdcA: 2048, AdcB: 2048, AdcVbus: 4095, Enabled: true, DtSec: 0.0001})
	for _, d := range out.Duties {
		if uint32(d) > 1000 {
			t.Fatalf("duty %v exceeds configured top 1000", d)
		}
	}
}
