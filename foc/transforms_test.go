package foc

import "testing"

func approxEq(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestClarkeBalancedThreePhase(t *testing.T) {
	// Balanced set: ia + ib + ic = 0, ia = 1, ib = -0.5, ic = -0.5 (120deg apart, peak on phase A)
	alpha, beta := Clarke(1.0, -0.5)
	if !approxEq(alpha, 1.0, 1e-4) {
		t.Fatalf("alpha = %v, want 1.0", alpha)
	}
	if !approxEq(beta, 0, 1e-3) {
		t.Fatalf("beta = %v, want ~0 for phase A aligned with alpha axis", beta)
	}
}

func TestParkInverseParkRoundTrip(t *testing.T) {
	cases := []struct{ alpha, beta, theta float32 }{
		{1, 0, 0},
		{0, 1, 1.2},
		{-0.7, 0.3, 3.1},
		{0.2, -0.9, 5.9},
	}
	for _, c := range cases {
		d, q := Park(c.alpha, c.beta, c.theta)
		a2, b2 := InversePark(d, q, c.theta)
		if !approxEq(a2, c.alpha, 1e-3) || !approxEq(b2, c.beta, 1e-3) {
			t.Errorf("round trip failed for %+v: got alpha=%v beta=%v", c, a2, b2)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{0, 0},
		{TwoPi, 0},
		{-0.1, TwoPi - 0.1},
		{TwoPi*3 + 0.5, 0.5},
	}
	for _, c := range cases {
		got := WrapAngle(c.in)
		if !approxEq(got, c.want, 1e-3) {
			t.Errorf("WrapAngle(%v) = %v, want %v", c.in, got, c.want)
		}
		if got < 0 || got >= TwoPi {
			t.Errorf("WrapAngle(%v) = %v, out of [0,2pi)", c.in, got)
		}
	}
}

func TestElectricalAngleScalesByPolePairs(t *testing.T) {
	got := ElectricalAngle(1.0, 7)
	want := WrapAngle(7.0)
	if !approxEq(got, want, 1e-3) {
		t.Fatalf("ElectricalAngle = %v, want %v", got, want)
	}
}
