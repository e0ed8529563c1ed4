package reference

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range is a closed interval [Lower, Upper] parsed from a "<lower>-<upper>" string.
type Range struct {
	Lower float64
	Upper float64
}

// Contains reports whether v lies in [Lower, Upper].
func (r Range) Contains(v float64) bool {
	return r.Lower <= v && v <= r.Upper
}

// containsHalfOpen reports whether v lies in [Lower, Upper).
func (r Range) containsHalfOpen(v float64) bool {
	return r.Lower <= v && v < r.Upper
}

func (r Range) String() string {
	return strconv.FormatFloat(r.Lower, 'f', -1, 64) + "-" + strconv.FormatFloat(r.Upper, 'f', -1, 64)
}

// ParseRange parses a range string such as "13-25". The string is split on the
// first "-"; negative bounds are not supported. Both halves must be finite
// numbers with lower <= upper.
func ParseRange(s string) (Range, error) {
	lowerStr, upperStr, found := strings.Cut(s, "-")
	if !found {
		return Range{}, &MalformedRangeError{Input: s, Err: errors.New("missing '-' separator")}
	}
	lower, err := parseBound(lowerStr)
	if err != nil {
		return Range{}, &MalformedRangeError{Input: s, Err: fmt.Errorf("lower bound: %w", err)}
	}
	upper, err := parseBound(upperStr)
	if err != nil {
		return Range{}, &MalformedRangeError{Input: s, Err: fmt.Errorf("upper bound: %w", err)}
	}
	if lower > upper {
		return Range{}, &MalformedRangeError{Input: s, Err: errors.New("lower bound exceeds upper bound")}
	}
	return Range{Lower: lower, Upper: upper}, nil
}

func parseBound(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}
