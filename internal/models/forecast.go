package models

import "time"

// Batch sources.
const (
	SourceUpload = "upload"
	SourceManual = "manual"
)

// Column is a passthrough cell (e.g. Date, Location) carried unchanged from input to output.
type Column struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Observation is one midday reading. Wind is in knots, cloud cover in oktas.
type Observation struct {
	MiddayTemperature float64  `json:"middayTemperature"`
	MiddayDewPoint    float64  `json:"middayDewPoint"`
	WindSpeed         float64  `json:"windSpeed"`
	CloudCover        float64  `json:"cloudCover"`
	Passthrough       []Column `json:"passthrough,omitempty"`
}

// ForecastRow is an Observation plus the derived overnight minimum (always a whole number).
type ForecastRow struct {
	Observation
	OvernightMinTemperature float64 `json:"overnightMinTemperature"`
}

// ForecastBatch is the result of one forecast run, as held by the last-forecast cache.
// Columns records the input header order used when exporting.
type ForecastBatch struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Filename   string        `json:"filename,omitempty"`
	Columns    []string      `json:"columns"`
	Rows       []ForecastRow `json:"rows"`
	ComputedAt time.Time     `json:"computedAt"`
}
