// Package validation checks manually entered observations before they reach the
// forecast engine. Uploaded files are not range-checked; out-of-range values
// there surface as reference lookup failures instead.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

// ErrTemperatureOutOfRange is returned when the midday temperature is outside (-50, 60) °C.
var ErrTemperatureOutOfRange = errors.New("midday temperature must be between -50 and 60 °C")

// ErrDewPointOutOfRange is returned when the midday dew point is outside (-50, 50) °C.
var ErrDewPointOutOfRange = errors.New("midday dew point must be between -50 and 50 °C")

// ErrWindOutOfRange is returned when the wind speed is outside (0, 52) knots.
var ErrWindOutOfRange = errors.New("wind speed must be between 0 and 52 knots")

// ErrCloudInvalid is returned when cloud cover is not a whole number of oktas from 0 to 8.
var ErrCloudInvalid = errors.New("cloud cover must be a whole number of oktas from 0 to 8")

// ErrFieldRequired is returned, wrapped with the JSON field name, for each field
// left out of the input or sent as null.
var ErrFieldRequired = errors.New("field is required")

// ManualInput is a single observation typed in by a user. Every field is required.
type ManualInput struct {
	MiddayTemperature *float64 `json:"middayTemperature"`
	MiddayDewPoint    *float64 `json:"middayDewPoint"`
	WindSpeed         *float64 `json:"windSpeed"`
	CloudCover        *float64 `json:"cloudCover"`
}

// ValidateManual checks every field and reports all violations at once, joined
// with errors.Join so each sentinel can be matched with errors.Is.
func ValidateManual(in ManualInput) (models.Observation, error) {
	var errs []error
	check := func(name string, v *float64, ok func(float64) bool, rangeErr error) float64 {
		if v == nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrFieldRequired))
			return 0
		}
		if !ok(*v) {
			errs = append(errs, rangeErr)
		}
		return *v
	}
	obs := models.Observation{
		MiddayTemperature: check("middayTemperature", in.MiddayTemperature, between(-50, 60), ErrTemperatureOutOfRange),
		MiddayDewPoint:    check("middayDewPoint", in.MiddayDewPoint, between(-50, 50), ErrDewPointOutOfRange),
		WindSpeed:         check("windSpeed", in.WindSpeed, between(0, 52), ErrWindOutOfRange),
		CloudCover:        check("cloudCover", in.CloudCover, validOktas, ErrCloudInvalid),
	}
	if err := errors.Join(errs...); err != nil {
		return models.Observation{}, err
	}
	return obs, nil
}

func between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return openInterval(v, lo, hi) }
}

// openInterval is false for NaN.
func openInterval(v, lo, hi float64) bool {
	return v > lo && v < hi
}

func validOktas(v float64) bool {
	return v >= 0 && v <= 8 && v == math.Trunc(v)
}
