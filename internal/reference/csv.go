package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Column headers of the persisted reference files.
const (
	ColumnWindRange  = "Wind Speed Range (kn)"
	ColumnCloudRange = "Cloud Cover Range (oktas)"
	ColumnK          = "K Value"
	ColumnGridWind   = "Wind Speed (knots)"
)

// ReadTable reads a long-form reference CSV and builds a Table from it.
func ReadTable(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read reference csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read reference csv: empty file")
	}
	idx, err := columnIndex(records[0], ColumnWindRange, ColumnCloudRange, ColumnK)
	if err != nil {
		return nil, fmt.Errorf("read reference csv: %w", err)
	}
	entries := make([]Entry, 0, len(records)-1)
	for n, rec := range records[1:] {
		kStr := strings.TrimSpace(rec[idx[2]])
		if kStr == "" {
			continue
		}
		kv, err := parseK(kStr)
		if err != nil {
			return nil, fmt.Errorf("read reference csv: line %d: K value %q: %w", n+2, kStr, err)
		}
		entries = append(entries, Entry{
			WindRange:  strings.TrimSpace(rec[idx[0]]),
			CloudRange: strings.TrimSpace(rec[idx[1]]),
			K:          kv,
		})
	}
	return NewTable(entries)
}

// LoadTable reads a long-form reference CSV from path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference file: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// WriteTable writes entries as a long-form reference CSV.
func WriteTable(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnWindRange, ColumnCloudRange, ColumnK}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.WindRange, e.CloudRange, formatK(e.K)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGrid writes the wide grid. Missing cells are written as empty fields.
func WriteGrid(w io.Writer, g Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{ColumnGridWind}, g.CloudRanges...)); err != nil {
		return err
	}
	for _, row := range g.Rows {
		rec := make([]string, 1, len(g.CloudRanges)+1)
		rec[0] = row.WindRange
		for i := range g.CloudRanges {
			var v string
			if i < len(row.Cells) && row.Cells[i].Valid {
				v = formatK(row.Cells[i].K)
			}
			rec = append(rec, v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadGrid reads a wide grid written by WriteGrid (or the equivalent spreadsheet export).
func ReadGrid(r io.Reader) (Grid, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Grid{}, fmt.Errorf("read reference grid: %w", err)
	}
	if len(records) == 0 || len(records[0]) == 0 || strings.TrimSpace(records[0][0]) != ColumnGridWind {
		return Grid{}, fmt.Errorf("read reference grid: first column must be %q", ColumnGridWind)
	}
	g := Grid{CloudRanges: records[0][1:]}
	for n, rec := range records[1:] {
		row := GridRow{WindRange: strings.TrimSpace(rec[0]), Cells: make([]Cell, len(g.CloudRanges))}
		for i, v := range rec[1:] {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			kv, err := parseK(v)
			if err != nil {
				return Grid{}, fmt.Errorf("read reference grid: line %d: K value %q: %w", n+2, v, err)
			}
			row.Cells[i] = k(kv)
		}
		g.Rows = append(g.Rows, row)
	}
	return g, nil
}

func parseK(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not finite")
	}
	return v, nil
}

func formatK(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func columnIndex(header []string, names ...string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		p, ok := pos[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}
