package foc

import "github.com/orsinium-labs/tinymath"

const TwoPi = 2 * 3.14159265358979323846

// WrapAngle wraps theta into [0, 2pi).
func WrapAngle(theta float32) float32 {
	for theta < 0 {
		theta += TwoPi
	}
	for theta >= TwoPi {
		theta -= TwoPi
	}
	return theta
}

// Clarke transforms three-phase currents into the stationary (alpha,
// beta) frame. The third phase is reconstructed as ic = -(ia+ib),
// assuming a star connection with floating neutral (spec.md §9 Open
// Questions — both this two-current form and a reduced two-phase
// treatment must satisfy the §8 invariants; this implementation takes
// the three-phase star-connected form since that is what spec.md §4.1
// step 1 describes).
func Clarke(ia, ib float32) (alpha, beta float32) {
	ic := -(ia + ib)
	_ = ic // reconstructed for documentation; the standard 2-input Clarke
	// form below is algebraically equivalent to using all three phases
	// when ia+ib+ic=0.
	alpha = ia
	beta = (ia + 2*ib) * oneOverSqrt3
	return alpha, beta
}

const oneOverSqrt3 = 0.5773502691896258

// Park rotates the stationary (alpha, beta) frame into the rotor-aligned
// (d, q) frame using the electrical angle theta.
func Park(alpha, beta, theta float32) (d, q float32) {
	s := tinymath.Sin(theta)
	c := tinymath.Cos(theta)
	d = alpha*c + beta*s
	q = -alpha*s + beta*c
	return d, q
}

// InversePark rotates (d, q) voltages back into the stationary frame.
func InversePark(d, q, theta float32) (alpha, beta float32) {
	s := tinymath.Sin(theta)
	c := tinymath.Cos(theta)
	alpha = d*c - q*s
	beta = d*s + q*c
	return alpha, beta
}

// ElectricalAngle derives the electrical angle from the mechanical angle
// and pole-pair count, wrapped to [0, 2pi) (spec.md §4.1 step 3).
func ElectricalAngle(mechanical float32, polePairs int) float32 {
	return WrapAngle(mechanical * float32(polePairs))
}
