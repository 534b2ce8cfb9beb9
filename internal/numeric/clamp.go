// Package numeric holds small generic helpers shared across the control
// loops. Grounded on tmc5160/utils.go's constrain() from the driver pack,
// generalized with golang.org/x/exp/constraints instead of repeating the
// clamp inline at every call site.
package numeric

import "golang.org/x/exp/constraints"

// Clamp restricts v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns the absolute value of v for any signed ordered type.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
