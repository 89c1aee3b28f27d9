package search

import (
	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
)

// Blend weights for combining signals. Both blends are fixed even splits.
const (
	// SemanticBlendWeight is the share of the semantic signal when merging
	// semantic and metadata occurrence tables.
	SemanticBlendWeight = 0.5

	// ConstraintBlendWeight is the share of the years-of-experience constraint
	// score when boosting the experience category.
	ConstraintBlendWeight = 0.5
)

// FindOccurrences reduces retrieval hits to the best similarity per document and
// category. Every document seen in any category gets a row; categories with no
// hit for it stay 0.
func FindOccurrences(result core.RetrievalResult) core.OccurrenceTable {
	table := make(core.OccurrenceTable)
	for _, category := range core.Categories {
		best := make(map[uuid.UUID]float64)
		for _, hit := range result[category] {
			if hit.DocumentID == uuid.Nil {
				continue
			}
			if prev, ok := best[hit.DocumentID]; !ok || hit.Similarity > prev {
				best[hit.DocumentID] = hit.Similarity
			}
		}
		for id, sim := range best {
			table[id] = table[id].With(category, sim)
		}
	}
	return table
}

// MergeOccurrences blends semantic and metadata tables category by category.
// A document missing from one table contributes 0 from that side.
func MergeOccurrences(semantic, metadata core.OccurrenceTable) core.OccurrenceTable {
	merged := make(core.OccurrenceTable, max(len(semantic), len(metadata)))
	ids := make(map[uuid.UUID]struct{}, len(semantic)+len(metadata))
	for id := range semantic {
		ids[id] = struct{}{}
	}
	for id := range metadata {
		ids[id] = struct{}{}
	}

	for id := range ids {
		a, b := semantic[id], metadata[id]
		var row core.CategoryScores
		for _, c := range core.Categories {
			row = row.With(c, SemanticBlendWeight*a.Get(c)+(1-SemanticBlendWeight)*b.Get(c))
		}
		merged[id] = row
	}
	return merged
}

// ApplyExperienceBoost blends each document's experience value with its
// constraint score. Documents absent from scores blend with 0. An empty score
// map leaves the table unchanged.
func ApplyExperienceBoost(table core.OccurrenceTable, scores map[uuid.UUID]float64) core.OccurrenceTable {
	if len(scores) == 0 {
		return table
	}
	boosted := make(core.OccurrenceTable, len(table))
	for id, row := range table {
		exp := (1-ConstraintBlendWeight)*row.Experience + ConstraintBlendWeight*scores[id]
		boosted[id] = row.With(core.CategoryExperience, exp)
	}
	return boosted
}
