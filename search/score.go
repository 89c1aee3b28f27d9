package search

import (
	"bytes"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
)

// CalculateScores combines normalized category values with weights, one
// candidate per document found in docs. Documents in the table but absent from
// docs are skipped. Output is ordered by document ID.
func CalculateScores(table core.OccurrenceTable, weights core.Weights, docs []*core.CVDocument, logger *slog.Logger) []core.ScoredCandidate {
	if logger == nil {
		logger = slog.Default()
	}
	byID := make(map[uuid.UUID]*core.CVDocument, len(docs))
	for _, doc := range docs {
		if doc != nil {
			byID[doc.ID] = doc
		}
	}

	ids := make([]uuid.UUID, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	results := make([]core.ScoredCandidate, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			logger.Debug("document not found, skipping", "documentID", id)
			continue
		}
		row := table[id]
		var score float64
		for _, c := range core.Categories {
			score += weights.Get(c) * row.Get(c)
		}
		results = append(results, core.ScoredCandidate{
			DocumentID:     doc.ID,
			CandidateName:  candidateName(doc),
			CVText:         doc.RawText,
			CandidateEmail: candidateEmail(doc),
			Score:          score,
		})
	}
	return results
}

func candidateName(doc *core.CVDocument) string {
	if doc.CandidateName != "" {
		return doc.CandidateName
	}
	return doc.Metadata.Name()
}

func candidateEmail(doc *core.CVDocument) string {
	if doc.Email != "" {
		return doc.Email
	}
	return doc.Metadata.Email()
}
