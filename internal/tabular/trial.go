package tabular

import "github.com/kjstillabower/overnight-forecast-service/internal/models"

// TrialData returns the sample dataset shipped with the reference files: four
// observations across two dates and three locations.
func TrialData() ([]string, []models.Observation) {
	columns := append([]string{"Date", "Location"}, requiredColumns...)
	row := func(date, loc string, temp, dew, wind, cloud float64) models.Observation {
		return models.Observation{
			MiddayTemperature: temp,
			MiddayDewPoint:    dew,
			WindSpeed:         wind,
			CloudCover:        cloud,
			Passthrough:       []models.Column{{Name: "Date", Value: date}, {Name: "Location", Value: loc}},
		}
	}
	return columns, []models.Observation{
		row("1", "A", 22.4, 10.9, 14.56, 3.9),
		row("1", "B", 18.6, 12.65, 3.4, 6.0),
		row("2", "B", 26.0, 8.5, 0.0, 0.0),
		row("2", "C", 13.2, 9.4, 12.5, 4.1),
	}
}
