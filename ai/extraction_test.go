package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionResponse(t *testing.T) {
	t.Run("text and metadata", func(t *testing.T) {
		raw := "FULL_TEXT:\nMario Rossi CV\n\nMETADATA_JSON:\n" +
			`{"candidate_name":"Mario Rossi","contact":{"email":"mario.rossi@example.com"}}`

		ext, metaRaw := ParseExtractionResponse(raw)

		assert.Equal(t, "Mario Rossi CV", ext.Text)
		assert.Equal(t, "Mario Rossi", ext.Metadata.Name())
		assert.Equal(t, "mario.rossi@example.com", ext.Metadata.Email())
		assert.NotEmpty(t, metaRaw)
	})

	t.Run("invalid metadata json", func(t *testing.T) {
		ext, metaRaw := ParseExtractionResponse("FULL_TEXT:\nCV content\n\nMETADATA_JSON:\n{invalid_json}")

		assert.Equal(t, "CV content", ext.Text)
		assert.Empty(t, ext.Metadata.Name())
		assert.Nil(t, metaRaw)
	})

	t.Run("metadata is not an object", func(t *testing.T) {
		ext, metaRaw := ParseExtractionResponse("FULL_TEXT:\nCV\nMETADATA_JSON:\n[1, 2]")

		assert.Equal(t, "CV", ext.Text)
		assert.Nil(t, metaRaw)
	})

	t.Run("missing full text marker", func(t *testing.T) {
		ext, metaRaw := ParseExtractionResponse("  just the cv text  ")

		assert.Equal(t, "just the cv text", ext.Text)
		assert.Nil(t, metaRaw)
	})

	t.Run("full text without metadata", func(t *testing.T) {
		ext, _ := ParseExtractionResponse("FULL_TEXT:\nline one\nline two\n")
		assert.Equal(t, "line one\nline two", ext.Text)
	})

	t.Run("years estimate parsed", func(t *testing.T) {
		ext, _ := ParseExtractionResponse(`FULL_TEXT: x METADATA_JSON: {"seniority":{"years_experience_estimate":6}}`)

		years, ok := ext.Metadata.YearsOfExperience()
		require.True(t, ok)
		assert.Equal(t, 6.0, years)
	})
}

func TestValidateMetadataJSON(t *testing.T) {
	t.Run("valid metadata", func(t *testing.T) {
		problems, err := ValidateMetadataJSON([]byte(`{
			"candidate_name": "Ada",
			"contact": {"email": null, "links": ["https://example.com"]},
			"seniority": {"level": "senior", "years_experience_estimate": 9},
			"education": [{"degree": "MSc", "field": "CS"}]
		}`))
		require.NoError(t, err)
		assert.Empty(t, problems)
	})

	t.Run("mistyped fields", func(t *testing.T) {
		problems, err := ValidateMetadataJSON([]byte(`{
			"candidate_name": 42,
			"seniority": {"level": "wizard", "years_experience_estimate": "ten"}
		}`))
		require.NoError(t, err)
		joined := strings.Join(problems, "\n")
		assert.Contains(t, joined, "candidate_name")
		assert.Contains(t, joined, "seniority.level")
		assert.Contains(t, joined, "seniority.years_experience_estimate")
	})

	t.Run("unparseable document", func(t *testing.T) {
		_, err := ValidateMetadataJSON([]byte(`{not json`))
		assert.Error(t, err)
	})
}

func TestCategoryQuery(t *testing.T) {
	q := CategoryQuery("python, less than 3 years")
	assert.Contains(t, q, "Job request: python, less than 3 years")
	assert.Contains(t, q, "Do not relax constraints")
}
