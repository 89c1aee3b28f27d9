package badger

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/cvrank/core"
	"golang.org/x/text/unicode/norm"
)

// Field weights for full-text ranking, matching the PostgreSQL A and B labels.
const (
	weightA = 1.0
	weightB = 0.4
)

// rankNormalizer is sum(1/i^2) for i >= 1, used to keep per-term ranks below 1.
const rankNormalizer = 1.64493406685

// Stop words dropped from both queries and documents.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "than": true, "into": true, "who": true,
}

// fieldWeights returns the raw text and metadata weights for a category.
func fieldWeights(category core.Category) (text, metadata float64) {
	switch category {
	case core.CategoryExperience:
		return weightA, weightB
	case core.CategoryEducation:
		return weightB, weightA
	default:
		return weightA, weightA
	}
}

// tokenize NFKC-normalizes and lowercases text, splits it on anything that is
// not a letter or digit, and drops stop words. Words are not stemmed, so
// "developers" does not match "developer" the way Postgres' english config does.
func tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	filtered := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// queryTerms returns the distinct tokens of a query in first-seen order.
func queryTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range tokenize(query) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

func countTokens(text string) map[string]int {
	counts := make(map[string]int)
	for _, t := range tokenize(text) {
		counts[t]++
	}
	return counts
}

// rankDocument scores a document against query terms. Every term must occur in
// either field, otherwise the rank is 0. Each term's occurrences are weighted
// with text occurrences ahead of metadata ones and decay by 1/(j+1)^2; the
// heaviest occurrence counts in full. The result is averaged over the terms.
func rankDocument(terms []string, text, metadata map[string]int, textWeight, metaWeight float64) float64 {
	if len(terms) == 0 {
		return 0
	}

	var res float64
	for _, term := range terms {
		inText, inMeta := text[term], metadata[term]
		if inText+inMeta == 0 {
			return 0
		}

		var resj, wjm float64
		jm := 0
		for j := 0; j < inText+inMeta; j++ {
			w := textWeight
			if j >= inText {
				w = metaWeight
			}
			d := float64(j + 1)
			resj += w / (d * d)
			if w > wjm {
				wjm = w
				jm = j
			}
		}
		d := float64(jm + 1)
		res += (wjm + resj - wjm/(d*d)) / rankNormalizer
	}
	return res / float64(len(terms))
}

// SearchMetadata ranks documents by full-text relevance of query against their
// raw text and metadata JSON, weighting the fields by category.
func (s *Store) SearchMetadata(ctx context.Context, query string, category core.Category, k int) ([]core.ChunkHit, error) {
	terms := queryTerms(query)
	if len(terms) == 0 || k <= 0 {
		return []core.ChunkHit{}, nil
	}
	textWeight, metaWeight := fieldWeights(category)

	hits := make([]core.ChunkHit, 0)
	err := s.scanDocuments(ctx, func(doc *core.CVDocument) error {
		metaJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return err
		}
		rank := rankDocument(terms, countTokens(doc.RawText), countTokens(string(metaJSON)), textWeight, metaWeight)
		if rank > 0 {
			hits = append(hits, core.ChunkHit{
				DocumentID: doc.ID,
				Similarity: rank,
				Text:       doc.RawText,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	s.logger.Debug("metadata search", "category", category, "terms", len(terms), "hits", len(hits))
	return hits, nil
}
