package reference

import (
	"fmt"
	"math"
)

// Dimension selects which range column of the table a lookup scans.
type Dimension int

const (
	Wind Dimension = iota
	Cloud
)

func (d Dimension) String() string {
	switch d {
	case Wind:
		return "wind"
	case Cloud:
		return "cloud"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Entry is one long-form cell: a wind bucket, a cloud bucket and its K value.
type Entry struct {
	WindRange  string  `json:"windRange"`
	CloudRange string  `json:"cloudRange"`
	K          float64 `json:"k"`
}

type parsedEntry struct {
	Entry
	wind  Range
	cloud Range
}

// Table is an immutable, ordered reference table. Row order matters: lookups
// take the first match.
type Table struct {
	entries []parsedEntry
}

// NewTable validates every range string and returns a Table over a copy of entries.
// A malformed range anywhere in the table fails the whole load.
func NewTable(entries []Entry) (*Table, error) {
	parsed := make([]parsedEntry, 0, len(entries))
	for i, e := range entries {
		wind, err := ParseRange(e.WindRange)
		if err != nil {
			return nil, fmt.Errorf("reference row %d wind range: %w", i, err)
		}
		cloud, err := ParseRange(e.CloudRange)
		if err != nil {
			return nil, fmt.Errorf("reference row %d cloud range: %w", i, err)
		}
		if math.IsNaN(e.K) || math.IsInf(e.K, 0) {
			return nil, fmt.Errorf("reference row %d: K value %v is not finite", i, e.K)
		}
		parsed = append(parsed, parsedEntry{Entry: e, wind: wind, cloud: cloud})
	}
	return &Table{entries: parsed}, nil
}

// Entries returns a copy of the table rows in order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Entry
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entries)
}
