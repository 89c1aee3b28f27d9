package core

// CVMetadata is the structured data extracted from a CV.
type CVMetadata struct {
	CandidateName     *string           `json:"candidate_name"`
	Contact           Contact           `json:"contact"`
	Seniority         Seniority         `json:"seniority"`
	Skills            Skills            `json:"skills"`
	Education         []EducationEntry  `json:"education"`
	ExperienceSummary ExperienceSummary `json:"experience_summary"`
	ExtractionQuality ExtractionQuality `json:"extraction_quality"`
}

type Contact struct {
	Email    *string  `json:"email"`
	Phone    *string  `json:"phone"`
	Location *string  `json:"location"`
	Links    []string `json:"links"`
}

type Seniority struct {
	Level                   *string  `json:"level"`
	YearsExperienceEstimate *float64 `json:"years_experience_estimate"`
	Rationale               *string  `json:"rationale"`
}

type Skills struct {
	HardSkills        []string        `json:"hard_skills"`
	SoftSkills        []string        `json:"soft_skills"`
	ToolsTechnologies []string        `json:"tools_technologies"`
	Languages         []LanguageSkill `json:"languages"`
	Certifications    []string        `json:"certifications"`
}

type LanguageSkill struct {
	Language    string  `json:"language"`
	Proficiency *string `json:"proficiency"`
}

type EducationEntry struct {
	Degree      *string `json:"degree"`
	Field       *string `json:"field"`
	Institution *string `json:"institution"`
	Location    *string `json:"location"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Grade       *string `json:"grade"`
	Notes       *string `json:"notes"`
}

type ExperienceSummary struct {
	CurrentTitle   *string  `json:"current_title"`
	CurrentCompany *string  `json:"current_company"`
	Industries     []string `json:"industries"`
	TopRoles       []string `json:"top_roles"`
}

type ExtractionQuality struct {
	IsTextComplete           bool     `json:"is_text_complete"`
	SuspectedColumnsOrTables bool     `json:"suspected_columns_or_tables"`
	MissingSectionsGuess     []string `json:"missing_sections_guess"`
	Notes                    string   `json:"notes"`
}

// Name returns the candidate name or "".
func (m CVMetadata) Name() string {
	return deref(m.CandidateName)
}

// Email returns the contact email or "".
func (m CVMetadata) Email() string {
	return deref(m.Contact.Email)
}

// YearsOfExperience returns the estimated years of experience, if known.
func (m CVMetadata) YearsOfExperience() (float64, bool) {
	if m.Seniority.YearsExperienceEstimate == nil {
		return 0, false
	}
	return *m.Seniority.YearsExperienceEstimate, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
