package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/cvrank/core"
)

// fieldLabels returns the ts_rank weight labels for raw text and metadata.
func fieldLabels(category core.Category) (text, metadata string) {
	switch category {
	case core.CategoryExperience:
		return "A", "B"
	case core.CategoryEducation:
		return "B", "A"
	default:
		return "A", "A"
	}
}

// SearchMetadata ranks documents with ts_rank over their raw text and metadata.
func (s *Store) SearchMetadata(ctx context.Context, query string, category core.Category, k int) ([]core.ChunkHit, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []core.ChunkHit{}, nil
	}
	textLabel, metaLabel := fieldLabels(category)

	rows, err := s.pool.Query(ctx,
		`SELECT id, raw_text, rank FROM (
		     SELECT id, raw_text, ts_rank(
		         setweight(to_tsvector(coalesce(raw_text, '')), $2::text::"char") ||
		         setweight(to_tsvector(coalesce(metadata::text, '')), $3::text::"char"),
		         plainto_tsquery($1)) AS rank
		     FROM cv_documents
		 ) ranked
		 WHERE rank > 0
		 ORDER BY rank DESC
		 LIMIT $4`,
		query, textLabel, metaLabel, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search metadata: %w", err)
	}
	defer rows.Close()

	hits := make([]core.ChunkHit, 0, k)
	for rows.Next() {
		var (
			hit  core.ChunkHit
			rank float32
		)
		if err := rows.Scan(&hit.DocumentID, &hit.Text, &rank); err != nil {
			return nil, err
		}
		hit.Similarity = float64(rank)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
