package motion

import "testing"

func TestDeriveImpulsesAmplitudesSumToOne(t *testing.T) {
	kinds := []ShaperKind{ShaperNone, ShaperZV, ShaperZVD, ShaperEI}
	for _, k := range kinds {
		imp := DeriveImpulses(k, 100, 0.05)
		var sum float32
		for i := 0; i < imp.N; i++ {
			sum += imp.Amps[i]
		}
		if !approxEq(sum, 1.0, 1e-3) {
			t.Errorf("kind %v: amplitude sum = %v, want 1.0", k, sum)
		}
	}
}

func TestDeriveImpulsesTimesAreNonNegativeAndOrdered(t *testing.T) {
	imp := DeriveImpulses(ShaperZVD, 50, 0.1)
	for i := 1; i < imp.N; i++ {
		if imp.Times[i] <= imp.Times[i-1] {
			t.Fatalf("impulse times not strictly increasing: %v", imp.Times)
		}
	}
	if imp.Times[0] != 0 {
		t.Fatalf("first impulse should be at t=0, got %v", imp.Times[0])
	}
}

func TestDeriveImpulsesNoneIsIdentity(t *testing.T) {
	imp := DeriveImpulses(ShaperNone, 100, 0.05)
	if imp.N != 1 || imp.Amps[0] != 1 || imp.Times[0] != 0 {
		t.Fatalf("ShaperNone should be a single unit impulse at t=0, got %+v", imp)
	}
}

func TestShapeMatchesUnshapedForIdentityImpulse(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 10, VelMax: 5, AccelMax: 20, Profile: Trapezoidal})
	identity := Impulses{Times: [4]float32{0}, Amps: [4]float32{1}, N: 1}
	for _, tt := range []float32{0, tr.Duration / 3, tr.Duration} {
		got := Shape(&tr, identity, tt)
		want := tr.Evaluate(tt)
		if !approxEq(got.Pos, want.Pos, 1e-4) {
			t.Errorf("Shape at t=%v: pos = %v, want %v", tt, got.Pos, want.Pos)
		}
	}
}

func TestShapeSettlesAtFinalPosition(t *testing.T) {
	tr := Plan(0, Command{TargetPos: 7, VelMax: 4, AccelMax: 10, Profile: Trapezoidal})
	imp := DeriveImpulses(ShaperZVD, 80, 0.05)
	end := Shape(&tr, imp, ShapedDuration(&tr, imp))
	if !approxEq(end.Pos, 7, 1e-2) {
		t.Fatalf("shaped end pos = %v, want 7", end.Pos)
	}
}
