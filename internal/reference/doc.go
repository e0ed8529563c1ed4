// Package reference holds the K-value correction table used by the overnight
// minimum temperature forecast.
//
// # Table layout
//
// The canonical table is a wide grid of wind-speed buckets (knots) by cloud-cover
// buckets (oktas):
//
//	Wind Speed (knots)   0-2    2-4    4-6    6-8
//	0-12                -2.2   -1.7   -0.6    0.0
//	13-25               -1.1    0.0    0.6    1.1
//	26-38               -0.6    0.0    0.6    1.1
//	39-51                1.1    1.7    2.8     -
//
// The wind 39-51 / cloud 6-8 cell is missing. It never becomes an entry, so a
// lookup that lands there fails with a NoMatchingCombinationError rather than
// silently using zero.
//
// Lookups work on the long form: one Entry per defined cell, in row-major order.
//
// # Bucket matching
//
// A value v matches a range [lower, upper] when either
//
//	lower <= v <= upper                 (raw value, closed interval)
//	lower <= round(v) < upper           (rounded value, half-open interval)
//
// where round is rounding.HalfAwayFromZero. The first entry in table order
// wins. The rounded test bridges the integer gaps between wind buckets
// (12.5 rounds to 13 and lands in 13-25), but it is asymmetric: 51.4 matches
// neither test for 39-51 and is rejected.
package reference
