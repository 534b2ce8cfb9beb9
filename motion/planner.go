package motion

import "github.com/orsinium-labs/tinymath"

// defaultJerk is used when a Command leaves JerkMax at zero and selects
// SCurve or Adaptive; chosen so a full-speed, full-accel move still
// spends a small fraction of its ramp in the jerk phases.
const defaultJerk = 1000.0 // rad/s^3

// Plan produces a closed-form Trajectory for cmd starting from startPos,
// entirely in constant time: no iteration, no lookahead queue, matching
// the one-command-in-flight model (spec.md §4.3, §3). Plan must
// complete within the caller's 1ms planning budget; every branch below
// is O(1) algebra plus a handful of sqrt/cbrt calls.
func Plan(startPos float32, cmd Command) Trajectory {
	dist := cmd.TargetPos - startPos
	dir := float32(1)
	if dist < 0 {
		dir = -1
		dist = -dist
	}

	vmax := cmd.VelMax
	amax := cmd.AccelMax
	jmax := cmd.JerkMax

	profile := cmd.Profile
	if profile == Adaptive {
		// Short, fast moves don't benefit from jerk limiting and only
		// add planning-time sqrt/cbrt calls; long moves ring the
		// structure less when jerk-limited. Pick S-curve once the move
		// is long enough that the cruise phase would dominate anyway.
		if dist > 4*vmax*vmax/amax {
			profile = SCurve
		} else {
			profile = Trapezoidal
		}
	}
	if profile == SCurve && jmax == 0 {
		jmax = defaultJerk
	}

	tr := Trajectory{StartPos: startPos, Dir: dir}

	if dist == 0 || vmax <= 0 || amax <= 0 {
		tr.CruiseV = 0
		tr.Accel = 0
		tr.Duration = 0
		return tr
	}

	if profile == Trapezoidal || jmax == 0 {
		planTrapezoidal(&tr, dist, vmax, amax)
	} else {
		planSCurve(&tr, dist, vmax, amax, jmax)
	}
	return tr
}

// planTrapezoidal fills tr with a pure constant-acceleration ramp,
// grounded on the teacher's calculateTrapezoid accel/cruise/decel split.
func planTrapezoidal(tr *Trajectory, dist, vmax, amax float32) {
	accelDist := (vmax * vmax) / (2 * amax)
	if accelDist*2 >= dist {
		// Triangle profile: never reaches vmax.
		accelDist = dist / 2
		peak := tinymath.Sqrt(amax * dist)
		tr.Ta = peak / amax
		tr.Tv = 0
		tr.CruiseV = peak
	} else {
		tr.Ta = vmax / amax
		tr.Tv = (dist - 2*accelDist) / vmax
		tr.CruiseV = vmax
	}
	tr.Tj = 0
	tr.Jerk = 0
	tr.Accel = amax
	tr.Duration = 2*tr.Ta + tr.Tv
}

// planSCurve fills tr with a jerk-limited ramp using the standard
// symmetric seven-segment equations (ramp distance = CruiseV*Ta/2
// regardless of whether the constant-acceleration plateau is reached).
func planSCurve(tr *Trajectory, dist, vmax, amax, jmax float32) {
	tj := amax / jmax
	fullRampDist := func(v float32) float32 {
		// distance for one full ramp to velocity v, used only to decide
		// which closed-form branch applies.
		if v >= amax*tj {
			ta := tj + v/amax
			return v * ta / 2
		}
		tjReduced := tinymath.Sqrt(v / jmax)
		ta := 2 * tjReduced
		return v * ta / 2
	}

	if 2*fullRampDist(vmax) <= dist {
		// Cruise phase present; full vmax reached.
		if vmax >= amax*tj {
			tr.Ta = tj + vmax/amax
		} else {
			tj = tinymath.Sqrt(vmax / jmax)
			tr.Ta = 2 * tj
		}
		tr.Tj = tj
		tr.CruiseV = vmax
		tr.Accel = jmax * tj
		da := vmax * tr.Ta / 2
		tr.Tv = (dist - 2*da) / vmax
	} else {
		// Move too short to reach vmax: solve the reduced peak velocity
		// in closed form.
		tr.Tv = 0
		if amax*amax/jmax <= vmax { // room to reach amax before vmax would have capped it
			// v^2/amax + tj*v - dist = 0 (quadratic in v)
			tjFull := amax / jmax
			a := float32(1) / amax
			b := tjFull
			c := -dist
			v := (-b + tinymath.Sqrt(b*b-4*a*c)) / (2 * a)
			if v >= amax*tjFull {
				tr.CruiseV = v
				tr.Tj = tjFull
				tr.Accel = amax
				tr.Ta = tjFull + v/amax
			} else {
				// amax isn't actually reached at this distance either;
				// fall through to the pure-jerk branch below.
				tr.CruiseV = cbrtPeakVel(dist, jmax)
				tr.Tj = tinymath.Sqrt(tr.CruiseV / jmax)
				tr.Accel = jmax * tr.Tj
				tr.Ta = 2 * tr.Tj
			}
		} else {
			tr.CruiseV = cbrtPeakVel(dist, jmax)
			tr.Tj = tinymath.Sqrt(tr.CruiseV / jmax)
			tr.Accel = jmax * tr.Tj
			tr.Ta = 2 * tr.Tj
		}
	}
	tr.Jerk = jmax
	tr.Duration = 2*tr.Ta + tr.Tv
}

// cbrtPeakVel solves v^1.5 = dist*sqrt(jmax)/2 for v (the pure-jerk,
// amax-never-reached triangular profile): v = rhs^(2/3) = cbrt(rhs)^2.
func cbrtPeakVel(dist, jmax float32) float32 {
	rhs := dist * tinymath.Sqrt(jmax) / 2
	if rhs <= 0 {
		return 0
	}
	c := tinymath.Cbrt(rhs)
	return c * c
}
