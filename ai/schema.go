package ai

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// CVMetadataSchema is the JSON schema extracted CV metadata is checked against.
// Every field is optional; present fields must have the documented type.
const CVMetadataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "nullableString": {"type": ["string", "null"]},
    "stringList": {"type": "array", "items": {"type": "string"}}
  },
  "properties": {
    "candidate_name": {"$ref": "#/definitions/nullableString"},
    "contact": {
      "type": "object",
      "properties": {
        "email": {"$ref": "#/definitions/nullableString"},
        "phone": {"$ref": "#/definitions/nullableString"},
        "location": {"$ref": "#/definitions/nullableString"},
        "links": {"$ref": "#/definitions/stringList"}
      }
    },
    "seniority": {
      "type": "object",
      "properties": {
        "level": {
          "enum": ["intern", "junior", "mid", "senior", "staff", "principal", "lead", "manager", "director", "executive", null]
        },
        "years_experience_estimate": {"type": ["number", "null"], "minimum": 0},
        "rationale": {"$ref": "#/definitions/nullableString"}
      }
    },
    "skills": {
      "type": "object",
      "properties": {
        "hard_skills": {"$ref": "#/definitions/stringList"},
        "soft_skills": {"$ref": "#/definitions/stringList"},
        "tools_technologies": {"$ref": "#/definitions/stringList"},
        "languages": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "language": {"type": "string"},
              "proficiency": {"$ref": "#/definitions/nullableString"}
            },
            "required": ["language"]
          }
        },
        "certifications": {"$ref": "#/definitions/stringList"}
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "degree": {"$ref": "#/definitions/nullableString"},
          "field": {"$ref": "#/definitions/nullableString"},
          "institution": {"$ref": "#/definitions/nullableString"},
          "location": {"$ref": "#/definitions/nullableString"},
          "start_date": {"$ref": "#/definitions/nullableString"},
          "end_date": {"$ref": "#/definitions/nullableString"},
          "grade": {"$ref": "#/definitions/nullableString"},
          "notes": {"$ref": "#/definitions/nullableString"}
        }
      }
    },
    "experience_summary": {
      "type": "object",
      "properties": {
        "current_title": {"$ref": "#/definitions/nullableString"},
        "current_company": {"$ref": "#/definitions/nullableString"},
        "industries": {"$ref": "#/definitions/stringList"},
        "top_roles": {"$ref": "#/definitions/stringList"}
      }
    },
    "extraction_quality": {
      "type": "object",
      "properties": {
        "is_text_complete": {"type": "boolean"},
        "suspected_columns_or_tables": {"type": "boolean"},
        "missing_sections_guess": {"$ref": "#/definitions/stringList"},
        "notes": {"type": "string"}
      }
    }
  }
}`

var metadataSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(CVMetadataSchema))
})

// ValidateMetadataJSON checks raw metadata JSON against CVMetadataSchema.
// It returns one message per violated field. The error is non-nil only when
// the document cannot be loaded at all.
func ValidateMetadataJSON(data []byte) ([]string, error) {
	schema, err := metadataSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate metadata: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, field+": "+desc.Description())
	}
	return problems, nil
}
