package reference

import "encoding/json"

// Cell is one grid value. Valid is false for cells the source table leaves empty.
type Cell struct {
	K     float64
	Valid bool
}

// MarshalJSON encodes a missing cell as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.K)
}

// GridRow is one wind bucket of the wide grid; Cells align with Grid.CloudRanges.
type GridRow struct {
	WindRange string `json:"windRange"`
	Cells     []Cell `json:"cells"`
}

// Grid is the wide (wind × cloud) form of the reference table.
type Grid struct {
	CloudRanges []string  `json:"cloudRanges"`
	Rows        []GridRow `json:"rows"`
}

func k(v float64) Cell { return Cell{K: v, Valid: true} }

// BuildGrid returns the canonical 4×4 reference grid. Wind 39-51 with cloud 6-8
// has no value.
func BuildGrid() Grid {
	return Grid{
		CloudRanges: []string{"0-2", "2-4", "4-6", "6-8"},
		Rows: []GridRow{
			{WindRange: "0-12", Cells: []Cell{k(-2.2), k(-1.7), k(-0.6), k(0.0)}},
			{WindRange: "13-25", Cells: []Cell{k(-1.1), k(0.0), k(0.6), k(1.1)}},
			{WindRange: "26-38", Cells: []Cell{k(-0.6), k(0.0), k(0.6), k(1.1)}},
			{WindRange: "39-51", Cells: []Cell{k(1.1), k(1.7), k(2.8), {}}},
		},
	}
}

// Long reshapes the grid into row-major long-form entries, skipping missing cells.
func (g Grid) Long() []Entry {
	var out []Entry
	for _, row := range g.Rows {
		for i, cell := range row.Cells {
			if !cell.Valid || i >= len(g.CloudRanges) {
				continue
			}
			out = append(out, Entry{WindRange: row.WindRange, CloudRange: g.CloudRanges[i], K: cell.K})
		}
	}
	return out
}

// Wide reshapes long-form entries back into a grid. Wind and cloud buckets keep
// their order of first appearance; pairs with no entry become invalid cells.
// When a pair repeats, the first entry wins, matching LookupK.
func Wide(entries []Entry) Grid {
	var g Grid
	cloudIdx := make(map[string]int)
	windIdx := make(map[string]int)
	for _, e := range entries {
		if _, ok := cloudIdx[e.CloudRange]; !ok {
			cloudIdx[e.CloudRange] = len(g.CloudRanges)
			g.CloudRanges = append(g.CloudRanges, e.CloudRange)
		}
		if _, ok := windIdx[e.WindRange]; !ok {
			windIdx[e.WindRange] = len(g.Rows)
			g.Rows = append(g.Rows, GridRow{WindRange: e.WindRange})
		}
	}
	for i := range g.Rows {
		g.Rows[i].Cells = make([]Cell, len(g.CloudRanges))
	}
	for _, e := range entries {
		cell := &g.Rows[windIdx[e.WindRange]].Cells[cloudIdx[e.CloudRange]]
		if !cell.Valid {
			*cell = k(e.K)
		}
	}
	return g
}

// CanonicalTable builds the lookup table from BuildGrid.
func CanonicalTable() (*Table, error) {
	return NewTable(BuildGrid().Long())
}
