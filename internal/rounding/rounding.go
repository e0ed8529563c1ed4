package rounding

import "math"

// HalfAwayFromZero rounds x to the nearest whole number, sending .5 away from zero
// in both directions: 2.5 -> 3, -2.5 -> -3. The result is truncated after adding
// (or subtracting) one half, which is not the same as math.Round for inputs just
// below a half (0.49999999999999994 rounds to 1 here).
func HalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return math.Trunc(x + 0.5)
	}
	return math.Trunc(x - 0.5)
}
