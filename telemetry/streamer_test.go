package telemetry

import "testing"

func TestSampleComputesDerivedMetrics(t *testing.T) {
	s := NewStreamer(0.15)
	s.Sample(Input{Vel: 1, TsUs: 1000})
	got := s.Sample(Input{Vel: 2, Iq: 3, Vd: 4, Id: 5, Vq: 6, TsUs: 2000})

	wantAcc := float32(1) / (float32(1000) / 1e6) // dv=1 over dt=1ms
	if got.Acc != wantAcc {
		t.Fatalf("Acc = %v, want %v", got.Acc, wantAcc)
	}
	wantTorque := float32(0.15) * 3
	if got.Torque != wantTorque {
		t.Fatalf("Torque = %v, want %v", got.Torque, wantTorque)
	}
	wantPower := float32(4*5 + 6*3)
	if got.Power != wantPower {
		t.Fatalf("Power = %v, want %v", got.Power, wantPower)
	}
}

func TestRingIsBoundedAndOldestFirst(t *testing.T) {
	s := NewStreamer(0.1)
	for i := 0; i < RingCapacity+10; i++ {
		s.Sample(Input{Pos: float32(i), TsUs: uint64(i) * 1000})
	}
	if s.Ring().Len() != RingCapacity {
		t.Fatalf("ring len = %d, want %d (no growth past capacity)", s.Ring().Len(), RingCapacity)
	}
	dst := make([]Sample, RingCapacity)
	n := s.Ring().Snapshot(dst)
	if n != RingCapacity {
		t.Fatalf("snapshot copied %d, want %d", n, RingCapacity)
	}
	if dst[0].Pos != 10 {
		t.Fatalf("oldest retained sample Pos = %v, want 10 (first 10 overwritten)", dst[0].Pos)
	}
	if dst[RingCapacity-1].Pos != float32(RingCapacity+9) {
		t.Fatalf("newest sample Pos = %v, want %v", dst[RingCapacity-1].Pos, RingCapacity+9)
	}
}

func TestOnDemandOnlyEmitsWhenRequested(t *testing.T) {
	s := NewStreamer(0.1)
	s.Configure(ModeOnDemand, 0, 0)
	sample := s.Sample(Input{TsUs: 1000})
	if s.ShouldEmit(sample, false) {
		t.Fatal("OnDemand must not emit without a request")
	}
	if !s.ShouldEmit(sample, true) {
		t.Fatal("OnDemand must emit when requested")
	}
}

func TestPeriodicRespectsRate(t *testing.T) {
	s := NewStreamer(0.1)
	s.Configure(ModePeriodic, 100, 0) // 100Hz -> 10ms period
	sample := s.Sample(Input{TsUs: 0})
	if !s.ShouldEmit(sample, false) {
		t.Fatal("first periodic sample should always emit")
	}
	sample = s.Sample(Input{TsUs: 5000})
	if s.ShouldEmit(sample, false) {
		t.Fatal("periodic emit before the configured period elapsed")
	}
	sample = s.Sample(Input{TsUs: 10000})
	if !s.ShouldEmit(sample, false) {
		t.Fatal("periodic should emit once the period has elapsed")
	}
}

func TestStreamingCapsAtOneKilohertz(t *testing.T) {
	s := NewStreamer(0.1)
	s.Configure(ModeStreaming, 0, 0)
	sample := s.Sample(Input{TsUs: 0})
	s.ShouldEmit(sample, false)
	sample = s.Sample(Input{TsUs: 500}) // 0.5ms later, faster than 1kHz ceiling
	if s.ShouldEmit(sample, false) {
		t.Fatal("streaming mode must not exceed 1kHz")
	}
	sample = s.Sample(Input{TsUs: 1000})
	if !s.ShouldEmit(sample, false) {
		t.Fatal("streaming mode should emit once 1ms has elapsed")
	}
}

func TestOnChangeOnlyEmitsPastThreshold(t *testing.T) {
	s := NewStreamer(0.1)
	s.Configure(ModeOnChange, 0, 0.5)
	sample := s.Sample(Input{Pos: 0, TsUs: 0})
	s.ShouldEmit(sample, false)
	sample = s.Sample(Input{Pos: 0.1, TsUs: 1000})
	if s.ShouldEmit(sample, false) {
		t.Fatal("change below threshold must not emit")
	}
	sample = s.Sample(Input{Pos: 1, TsUs: 2000})
	if !s.ShouldEmit(sample, false) {
		t.Fatal("change past threshold must emit")
	}
}

func TestAdaptiveSwitchesRateOnActivity(t *testing.T) {
	s := NewStreamer(0.1)
	s.Configure(ModeAdaptive, 0, 0)
	sample := s.Sample(Input{TrajActive: false, TsUs: 0})
	s.ShouldEmit(sample, false)

	sample = s.Sample(Input{TrajActive: false, TsUs: 2000}) // 2ms idle: below 100Hz rate
	if s.ShouldEmit(sample, false) {
		t.Fatal("idle adaptive mode should throttle to 100Hz")
	}

	sample = s.Sample(Input{TrajActive: true, TsUs: 3000})
	if !s.ShouldEmit(sample, false) {
		t.Fatal("active trajectory should unlock the 1kHz adaptive rate")
	}
}

func TestWireRoundTripsThroughPayload(t *testing.T) {
	s := NewStreamer(0.15)
	sample := s.Sample(Input{Pos: 1, Vel: 2, Iq: 3, TsUs: 1000})
	p := sample.Wire()
	if p.Pos != sample.Pos || p.Vel != sample.Vel || p.Torque != sample.Torque {
		t.Fatalf("wire payload mismatch: %+v vs %+v", p, sample)
	}
}
