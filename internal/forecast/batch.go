package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

// KLookup resolves the correction factor for a wind speed and cloud cover.
// *reference.Table implements it.
type KLookup interface {
	LookupK(wind, cloud float64) (float64, error)
}

// ErrNonFiniteInput is wrapped by RowError when a reading is NaN or infinite.
var ErrNonFiniteInput = errors.New("observation contains a non-finite value")

// RowError reports which observation aborted a batch. It wraps the lookup error
// so callers can still match the reference error types with errors.As.
type RowError struct {
	Index       int
	Observation models.Observation
	Err         error
}

func (e *RowError) Error() string {
	o := e.Observation
	return fmt.Sprintf("row %d (midday temperature %g, dew point %g, wind %g, cloud %g): %v",
		e.Index, o.MiddayTemperature, o.MiddayDewPoint, o.WindSpeed, o.CloudCover, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Process computes a forecast for every observation in order. The first failing
// row aborts the batch and no rows are returned. Inputs are not modified.
func Process(observations []models.Observation, lookup KLookup) ([]models.ForecastRow, error) {
	rows := make([]models.ForecastRow, 0, len(observations))
	for i, obs := range observations {
		if !finite(obs.MiddayTemperature, obs.MiddayDewPoint, obs.WindSpeed, obs.CloudCover) {
			return nil, &RowError{Index: i, Observation: obs, Err: ErrNonFiniteInput}
		}
		k, err := lookup.LookupK(obs.WindSpeed, obs.CloudCover)
		if err != nil {
			return nil, &RowError{Index: i, Observation: obs, Err: err}
		}
		rows = append(rows, models.ForecastRow{
			Observation:             obs,
			OvernightMinTemperature: OvernightMinimum(obs.MiddayTemperature, obs.MiddayDewPoint, k),
		})
	}
	return rows, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
