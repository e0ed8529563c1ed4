package reference

import "github.com/kjstillabower/overnight-forecast-service/internal/rounding"

// FindRange returns the range string of the first row whose bucket in dim
// matches value. See the package documentation for the matching rule.
func (t *Table) FindRange(value float64, dim Dimension) (string, error) {
	rounded := rounding.HalfAwayFromZero(value)
	for _, e := range t.entries {
		r, s := e.wind, e.WindRange
		if dim == Cloud {
			r, s = e.cloud, e.CloudRange
		}
		if r.Contains(value) || r.containsHalfOpen(rounded) {
			return s, nil
		}
	}
	return "", &NoMatchingRangeError{Dimension: dim, Value: value, Rounded: rounded}
}

// LookupK resolves the wind and cloud buckets independently, then returns the K
// value of the first row holding exactly that pair. The table is expected to hold
// each pair at most once.
func (t *Table) LookupK(wind, cloud float64) (float64, error) {
	windRange, err := t.FindRange(wind, Wind)
	if err != nil {
		return 0, err
	}
	cloudRange, err := t.FindRange(cloud, Cloud)
	if err != nil {
		return 0, err
	}
	for _, e := range t.entries {
		if e.WindRange == windRange && e.CloudRange == cloudRange {
			return e.K, nil
		}
	}
	return 0, &NoMatchingCombinationError{WindRange: windRange, CloudRange: cloudRange}
}
