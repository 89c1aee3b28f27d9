package search

import (
	"sort"
	"strings"

	"github.com/poiesic/cvrank/core"
)

// identityKey groups candidates by email, then name, then document ID.
func identityKey(c core.ScoredCandidate) string {
	if email := strings.ToLower(strings.TrimSpace(c.CandidateEmail)); email != "" {
		return "email:" + email
	}
	if name := strings.ToLower(strings.TrimSpace(c.CandidateName)); name != "" {
		return "name:" + name
	}
	return "id:" + c.DocumentID.String()
}

// Deduplicate keeps the best-scoring candidate per identity and sorts the
// survivors by score, highest first. On equal scores the first seen is kept.
func Deduplicate(candidates []core.ScoredCandidate) []core.ScoredCandidate {
	index := make(map[string]int, len(candidates))
	kept := make([]core.ScoredCandidate, 0, len(candidates))

	for _, c := range candidates {
		key := identityKey(c)
		if i, ok := index[key]; ok {
			if c.Score > kept[i].Score {
				kept[i] = c
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}
