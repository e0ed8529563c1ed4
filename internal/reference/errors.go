package reference

import "fmt"

// MalformedRangeError is returned when a range string in the table is not "<number>-<number>".
// It indicates a broken reference file and is reported when the table is loaded.
type MalformedRangeError struct {
	Input string
	Err   error
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("malformed range %q: %v", e.Input, e.Err)
}

func (e *MalformedRangeError) Unwrap() error { return e.Err }

// NoMatchingRangeError is returned when a value falls outside every bucket of a dimension.
type NoMatchingRangeError struct {
	Dimension Dimension
	Value     float64
	Rounded   float64
}

func (e *NoMatchingRangeError) Error() string {
	return fmt.Sprintf("%s value %g (rounded %g) does not fall into any defined range", e.Dimension, e.Value, e.Rounded)
}

// NoMatchingCombinationError is returned when both dimensions resolve to a bucket
// but the table has no cell for that pair.
type NoMatchingCombinationError struct {
	WindRange  string
	CloudRange string
}

func (e *NoMatchingCombinationError) Error() string {
	return fmt.Sprintf("combination of wind range %s and cloud range %s is not in the reference table", e.WindRange, e.CloudRange)
}
