package forecast

import "github.com/kjstillabower/overnight-forecast-service/internal/rounding"

// Empirical coefficients of the overnight minimum estimate.
const (
	temperatureCoefficient = 0.316
	dewPointCoefficient    = 0.548
	intercept              = -1.24
)

// OvernightMinimum estimates the overnight minimum (°C) from the midday
// temperature, the midday dew point and the K correction. The result is rounded
// half away from zero and is always a whole number.
func OvernightMinimum(middayTemp, middayDew, k float64) float64 {
	return rounding.HalfAwayFromZero(temperatureCoefficient*middayTemp + dewPointCoefficient*middayDew + intercept + k)
}
