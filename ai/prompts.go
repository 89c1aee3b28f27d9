package ai

import "fmt"

// SplitterPrompt instructs a chat model to decompose a job offer.
// The model answers with a JSON object holding skill, education and experience.
const SplitterPrompt = `Extract search-focused fields from the job offer.
Return short query strings: skill, education, experience.
For skill, prefer concrete technical/domain terms (e.g. backend python fastapi), not only generic words like 'engineer'.
Do not invent requirements not present in the input.

Output ONLY a JSON object of the form {"skill": "...", "education": "...", "experience": "..."}.
Use an empty string for a field the job offer does not mention.`

// RewriterPrompt instructs a chat model to rewrite a sub-query for retrieval.
const RewriterPrompt = `Rewrite the user query for CV retrieval.
Preserve every hard constraint exactly (skills, years of experience, seniority, location, education).
Never relax constraints and never invert numeric ranges.
If query says '<3 years' or 'less than 3 years', keep that exact limit.
Return one concise retrieval query only.`

// ExtractionPrompt instructs a chat model to return the CV text and its metadata.
const ExtractionPrompt = `You analyze CV/resume documents. The input is the text of one CV.

Tasks:
1) Return the complete CV text faithfully. Do not summarize.
2) Extract structured metadata as one strictly valid JSON object.

Rules:
- Do not invent information. Use null or an empty array when a field is absent.
- Reconstruct the natural reading order when the CV uses columns.
- Keep the original language of the CV, except for enumerated fields such as seniority.level.
- Serialize tables into readable rows using " | " as separator.

Answer with exactly two sections, in this order:

FULL_TEXT:
<complete CV text>

METADATA_JSON:
<JSON object>

The JSON object has this structure:

{
  "candidate_name": string|null,
  "contact": {"email": string|null, "phone": string|null, "location": string|null, "links": [string]},
  "seniority": {
    "level": "intern"|"junior"|"mid"|"senior"|"staff"|"principal"|"lead"|"manager"|"director"|"executive"|null,
    "years_experience_estimate": number|null,
    "rationale": string|null
  },
  "skills": {
    "hard_skills": [string],
    "soft_skills": [string],
    "tools_technologies": [string],
    "languages": [{"language": string, "proficiency": string|null}],
    "certifications": [string]
  },
  "education": [{
    "degree": string|null, "field": string|null, "institution": string|null, "location": string|null,
    "start_date": string|null, "end_date": string|null, "grade": string|null, "notes": string|null
  }],
  "experience_summary": {
    "current_title": string|null, "current_company": string|null,
    "industries": [string], "top_roles": [string]
  },
  "extraction_quality": {
    "is_text_complete": boolean, "suspected_columns_or_tables": boolean,
    "missing_sections_guess": [string], "notes": string
  }
}

Seniority: use explicitly stated total years when present, otherwise estimate from the
employment timeline only when it can be reconstructed. Dates use "YYYY-MM" or "YYYY".`

// CategoryQuery wraps a category sub-query before it is rewritten for semantic retrieval.
func CategoryQuery(query string) string {
	return fmt.Sprintf("Retrieve CVs that satisfy ALL hard requirements in this job request. "+
		"Do not relax constraints such as max years of experience. Job request: %s", query)
}
