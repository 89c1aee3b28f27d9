package search

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// trailingPlus matches a number immediately followed by '+', as in "5+ years".
var trailingPlus = regexp.MustCompile(`\d+(?:\.\d+)?\s*\+`)

var (
	upperBoundPhrases = []string{"less than", "under", "max", "up to", "no more than"}
	lowerBoundPhrases = []string{"more than", "at least", "over"}
	rangeIndicators   = []string{"-", " to ", "between", "from"}
)

// ParseExperienceConstraint extracts a years-of-experience range from free text.
// Keyword rules are checked in priority order; when the text carries no number the
// seniority words senior, mid and junior map to default ranges.
func ParseExperienceConstraint(text string) core.Constraint {
	lower := strings.ToLower(text)

	var numbers []float64
	for _, m := range numberPattern.FindAllString(lower, -1) {
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return seniorityConstraint(lower)
	}

	first := numbers[0]
	switch {
	case containsAny(lower, upperBoundPhrases):
		return core.Constraint{Max: &first}
	case containsAny(lower, lowerBoundPhrases):
		return core.Constraint{Min: &first}
	case trailingPlus.MatchString(lower):
		return core.Constraint{Min: &first}
	case len(numbers) >= 2 && containsAny(lower, rangeIndicators):
		lo, hi := min(numbers[0], numbers[1]), max(numbers[0], numbers[1])
		return core.Constraint{Min: &lo, Max: &hi}
	case len(numbers) == 1:
		return core.Constraint{Min: &first}
	}
	return core.Constraint{}
}

func seniorityConstraint(lower string) core.Constraint {
	bound := func(v float64) *float64 { return &v }
	switch {
	case strings.Contains(lower, "senior"):
		return core.Constraint{Min: bound(5)}
	case strings.Contains(lower, "mid"):
		return core.Constraint{Min: bound(2), Max: bound(6)}
	case strings.Contains(lower, "junior"):
		return core.Constraint{Max: bound(3)}
	}
	return core.Constraint{}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ScoreYears rates how well a years-of-experience value fits a constraint, in [0,1].
// An unbounded constraint scores 0. Values outside a bound decay proportionally
// to the distance from it.
func ScoreYears(years float64, c core.Constraint) float64 {
	// Negative and NaN estimates count as zero years.
	v := years
	if !(v > 0) {
		v = 0
	}

	switch {
	case c.Min == nil && c.Max == nil:
		return 0
	case c.Min != nil && c.Max != nil:
		lo, hi := *c.Min, *c.Max
		switch {
		case v < lo:
			if lo == 0 {
				return 1
			}
			return v / lo
		case v > hi:
			if v == 0 {
				return 1
			}
			return hi / v
		}
		return 1
	case c.Min != nil:
		if *c.Min == 0 {
			return 1
		}
		return min(1, v / *c.Min)
	default:
		hi := *c.Max
		if v <= hi {
			return 1
		}
		if v == 0 {
			return 0
		}
		return hi / v
	}
}

// ExperienceScores scores every document with a years estimate against c.
// Documents without an estimate are left out. An unbounded constraint yields an
// empty map.
func ExperienceScores(docs []core.DocumentMetadata, c core.Constraint) map[uuid.UUID]float64 {
	scores := make(map[uuid.UUID]float64)
	if c.IsUnbounded() {
		return scores
	}
	for _, doc := range docs {
		years, ok := doc.Metadata.YearsOfExperience()
		if !ok {
			continue
		}
		scores[doc.ID] = ScoreYears(years, c)
	}
	return scores
}
