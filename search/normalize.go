package search

import (
	"github.com/poiesic/cvrank/core"
)

// Normalize min-max rescales each category independently across the table.
// When a category's max does not exceed its min every value becomes 0.
func Normalize(table core.OccurrenceTable) core.OccurrenceTable {
	if len(table) == 0 {
		return table
	}

	normalized := make(core.OccurrenceTable, len(table))
	for id := range table {
		normalized[id] = core.CategoryScores{}
	}

	for _, c := range core.Categories {
		first := true
		var lo, hi float64
		for _, row := range table {
			v := row.Get(c)
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
		if hi <= lo {
			continue
		}
		span := hi - lo
		for id, row := range table {
			normalized[id] = normalized[id].With(c, (row.Get(c)-lo)/span)
		}
	}
	return normalized
}
