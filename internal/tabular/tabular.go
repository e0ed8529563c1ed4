// Package tabular reads observation CSV files and writes forecast CSV files.
// Required columns are parsed into typed fields; every other column is carried
// through unchanged and keeps its position in the header.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

// Column headers used by upload and export files.
const (
	ColumnMiddayTemperature = "Midday Temperature (°C)"
	ColumnMiddayDewPoint    = "Midday Dew Point (°C)"
	ColumnWind              = "Wind (Kn)"
	ColumnCloud             = "Cloud (oktas)"
	ColumnOvernightMin      = "Overnight Min Temperature (°C)"
)

// ErrMissingColumns is returned when an upload lacks one of the required columns.
var ErrMissingColumns = errors.New("missing required columns")

// ErrEmptyFile is returned when an upload has no header row.
var ErrEmptyFile = errors.New("file is empty")

// ErrDuplicateColumn is returned when a header name appears more than once.
var ErrDuplicateColumn = errors.New("duplicate column")

// ErrNotFinite is wrapped by ParseError for NaN and infinite cells.
var ErrNotFinite = errors.New("not a finite number")

var requiredColumns = []string{ColumnMiddayTemperature, ColumnMiddayDewPoint, ColumnWind, ColumnCloud}

// DefaultColumns is the layout used for manually entered observations.
func DefaultColumns() []string {
	return append([]string(nil), requiredColumns...)
}

// ParseError points at the cell that failed numeric parsing. Line is 1-based and counts the header.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %q: invalid number %q", e.Line, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadObservations parses an observation CSV. It returns the header in file order
// (for export) and one Observation per data row.
func ReadObservations(r io.Reader) ([]string, []models.Observation, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		if first, dup := pos[h]; dup {
			return nil, nil, fmt.Errorf("%w %q at positions %d and %d", ErrDuplicateColumn, h, first+1, i+1)
		}
		pos[h] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var observations []models.Observation
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line, err)
		}
		obs, err := parseRecord(header, pos, rec, line)
		if err != nil {
			return nil, nil, err
		}
		observations = append(observations, obs)
	}
	return header, observations, nil
}

func parseRecord(header []string, pos map[string]int, rec []string, line int) (models.Observation, error) {
	var obs models.Observation
	targets := []struct {
		name string
		dst  *float64
	}{
		{ColumnMiddayTemperature, &obs.MiddayTemperature},
		{ColumnMiddayDewPoint, &obs.MiddayDewPoint},
		{ColumnWind, &obs.WindSpeed},
		{ColumnCloud, &obs.CloudCover},
	}
	for _, t := range targets {
		raw := strings.TrimSpace(rec[pos[t.name]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Observation{}, &ParseError{Line: line, Column: t.name, Value: raw, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Observation{}, &ParseError{Line: line, Column: t.name, Value: raw, Err: ErrNotFinite}
		}
		*t.dst = v
	}
	for i, h := range header {
		if isRequired(h) {
			continue
		}
		obs.Passthrough = append(obs.Passthrough, models.Column{Name: h, Value: rec[i]})
	}
	return obs, nil
}

func isRequired(name string) bool {
	for _, c := range requiredColumns {
		if c == name {
			return true
		}
	}
	return false
}

// WriteObservations writes observations in the given column order.
func WriteObservations(w io.Writer, columns []string, observations []models.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, obs := range observations {
		if err := cw.Write(observationRecord(columns, obs)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteForecasts writes rows in the given column order with the overnight
// minimum appended as the last column.
func WriteForecasts(w io.Writer, columns []string, rows []models.ForecastRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string(nil), columns...), ColumnOvernightMin)); err != nil {
		return err
	}
	for _, row := range rows {
		rec := append(observationRecord(columns, row.Observation), formatFloat(row.OvernightMinTemperature))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func observationRecord(columns []string, obs models.Observation) []string {
	rec := make([]string, 0, len(columns)+1)
	next := 0
	for _, c := range columns {
		var v string
		switch c {
		case ColumnMiddayTemperature:
			v = formatFloat(obs.MiddayTemperature)
		case ColumnMiddayDewPoint:
			v = formatFloat(obs.MiddayDewPoint)
		case ColumnWind:
			v = formatFloat(obs.WindSpeed)
		case ColumnCloud:
			v = formatFloat(obs.CloudCover)
		default:
			v, next = passthroughValue(obs.Passthrough, c, next)
		}
		rec = append(rec, v)
	}
	return rec
}

// passthroughValue returns the value for column name, scanning from hint first
// since passthrough columns are stored in header order.
func passthroughValue(cols []models.Column, name string, hint int) (string, int) {
	if hint < len(cols) && cols[hint].Name == name {
		return cols[hint].Value, hint + 1
	}
	for i, c := range cols {
		if c.Name == name {
			return c.Value, i + 1
		}
	}
	return "", hint
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
