// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// WeightSumTolerance is the allowed deviation of the weight sum from 1.0.
const WeightSumTolerance = 1e-6

var validate = validator.New()

// ValidateWeights checks that weights are non-negative and sum to 1.0.
func ValidateWeights(w Weights) error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("%w: %w: %s", ErrValidation, ErrInvalidWeights, describe(err))
	}
	if math.IsNaN(w.Sum()) || math.Abs(w.Sum()-1.0) > WeightSumTolerance {
		return fmt.Errorf("%w: %w: sum is %g, expected 1.0", ErrValidation, ErrInvalidWeights, w.Sum())
	}
	return nil
}

// WeightsFromMap builds Weights from a category-keyed map.
// Exactly the keys skill, education and experience are accepted.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	var w Weights
	if len(m) != len(Categories) {
		return w, fmt.Errorf("%w: %w: expected keys skill, education, experience", ErrValidation, ErrInvalidWeights)
	}
	for key, value := range m {
		c, ok := ParseCategory(key)
		if !ok {
			return w, fmt.Errorf("%w: %w: unknown key %q", ErrValidation, ErrInvalidWeights, key)
		}
		switch c {
		case CategorySkill:
			w.Skill = value
		case CategoryEducation:
			w.Education = value
		case CategoryExperience:
			w.Experience = value
		}
	}
	return w, ValidateWeights(w)
}

// ValidateSearchRequest validates a search request at the system boundary.
//
// Validation rules:
//   - JobOfferText must contain non-whitespace characters
//   - TopK must be greater than 0
//   - Weights must pass ValidateWeights
func ValidateSearchRequest(req SearchRequest) error {
	if strings.TrimSpace(req.JobOfferText) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyJobOffer)
	}
	if err := validate.Var(req.TopK, "gt=0"); err != nil {
		return fmt.Errorf("%w: %w: got %d", ErrValidation, ErrInvalidTopK, req.TopK)
	}
	return ValidateWeights(req.Weights)
}

// ValidateDocument validates a CVDocument before it is persisted.
//
// Validation rules:
//   - ID must not be nil
//   - RawText must not be empty
//
// NOT validated:
//   - Metadata (extraction may legitimately return an empty object)
func ValidateDocument(doc *CVDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingID)
	}
	if strings.TrimSpace(doc.RawText) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	return nil
}

// ValidateChunk validates a Chunk against the store dimensionality.
func ValidateChunk(chunk *Chunk, dimensions int) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.ID == uuid.Nil || chunk.DocumentID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingID)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyEmbedding)
	}
	if err := ValidateEmbedding(chunk.Embedding, dimensions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}
	return nil
}

// ValidateEmbedding checks a vector length against the expected dimensionality.
func ValidateEmbedding(vector []float32, dimensions int) error {
	if len(vector) != dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), dimensions)
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
