// Package motion implements the cascaded motion layer: a trapezoidal /
// S-curve trajectory planner, an input shaper that cancels mechanical
// resonance, and the position->velocity cascaded controller that feeds
// the FOC current loop (spec.md §4.3, §4.4, §4.5).
package motion

// Profile selects which trajectory shape the planner produces.
type Profile uint8

const (
	Trapezoidal Profile = iota
	SCurve
	Adaptive
)

// ShaperKind selects the input-shaping impulse sequence (spec.md §4.5).
type ShaperKind uint8

const (
	ShaperNone ShaperKind = iota
	ShaperZV
	ShaperZVD
	ShaperEI
)

// Command is an immutable motion request. Last-writer-wins: a new
// Command supersedes whatever the planner was executing (spec.md §3).
type Command struct {
	ID         uint32
	TargetPos  float32 // rad
	VelMax     float32 // rad/s
	AccelMax   float32 // rad/s^2
	JerkMax    float32 // rad/s^3, 0 selects a profile default
	Profile    Profile
	ShaperKind ShaperKind
	ShaperFreq float32 // rad/s, identified or configured resonance omega_n
	ShaperZeta float32 // damping ratio
}

// Point is one control point on a trajectory: enough to interpolate at
// 1kHz for the move's duration (spec.md §3).
type Point struct {
	Pos, Vel, Acc float32
}
