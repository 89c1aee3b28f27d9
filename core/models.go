package core

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies one scoring dimension of a candidate.
type Category string

const (
	CategorySkill      Category = "skill"
	CategoryEducation  Category = "education"
	CategoryExperience Category = "experience"
)

// Categories lists every category in canonical order.
var Categories = []Category{CategorySkill, CategoryEducation, CategoryExperience}

// ParseCategory converts a name into a Category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// JobRequirementSplit holds the per-category search queries derived from a job offer.
type JobRequirementSplit struct {
	Skill      string `json:"skill"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
}

// Query returns the sub-query for a category.
func (s JobRequirementSplit) Query(c Category) string {
	switch c {
	case CategorySkill:
		return s.Skill
	case CategoryEducation:
		return s.Education
	case CategoryExperience:
		return s.Experience
	}
	return ""
}

// CategoryScores is one document's signal vector across the categories.
type CategoryScores struct {
	Skill      float64
	Education  float64
	Experience float64
}

// Get returns the value for a category.
func (s CategoryScores) Get(c Category) float64 {
	switch c {
	case CategorySkill:
		return s.Skill
	case CategoryEducation:
		return s.Education
	case CategoryExperience:
		return s.Experience
	}
	return 0
}

// With returns a copy of s with the category set to v.
func (s CategoryScores) With(c Category, v float64) CategoryScores {
	switch c {
	case CategorySkill:
		s.Skill = v
	case CategoryEducation:
		s.Education = v
	case CategoryExperience:
		s.Experience = v
	}
	return s
}

// OccurrenceTable maps a document to its per-category scores.
type OccurrenceTable map[uuid.UUID]CategoryScores

// ChunkHit is a single retrieval hit. For full-text retrieval Similarity holds the rank.
type ChunkHit struct {
	ChunkID    uuid.UUID
	DocumentID uuid.UUID
	Similarity float64
	Text       string
}

// RetrievalResult groups retrieval hits by the category that produced them.
type RetrievalResult map[Category][]ChunkHit

// Weights are the caller-supplied category weights.
type Weights struct {
	Skill      float64 `json:"skill" validate:"gte=0"`
	Education  float64 `json:"education" validate:"gte=0"`
	Experience float64 `json:"experience" validate:"gte=0"`
}

// Get returns the weight for a category.
func (w Weights) Get(c Category) float64 {
	switch c {
	case CategorySkill:
		return w.Skill
	case CategoryEducation:
		return w.Education
	case CategoryExperience:
		return w.Experience
	}
	return 0
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Skill + w.Education + w.Experience
}

// Constraint is a years-of-experience range. A nil bound is absent.
type Constraint struct {
	Min *float64
	Max *float64
}

// IsUnbounded reports whether neither bound is present.
func (c Constraint) IsUnbounded() bool {
	return c.Min == nil && c.Max == nil
}

// SearchRequest is the input of a search run.
type SearchRequest struct {
	JobOfferText string  `validate:"required"`
	Weights      Weights
	TopK         int     `validate:"gt=0"`
}

// ScoredCandidate is one ranked search result.
type ScoredCandidate struct {
	DocumentID     uuid.UUID `json:"document_id"`
	CandidateName  string    `json:"candidate_name"`
	CVText         string    `json:"cv_text"`
	CandidateEmail string    `json:"candidate_email"`
	Score          float64   `json:"score"`
}

// CVDocument is an ingested CV with its extracted text and metadata.
type CVDocument struct {
	ID             uuid.UUID
	CandidateName  string
	Email          string
	SourceFile     string
	SourceChecksum string
	RawText        string
	Metadata       CVMetadata
	IngestedAt     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DocumentMetadata is the id/metadata projection of a CVDocument.
type DocumentMetadata struct {
	ID       uuid.UUID
	Metadata CVMetadata
}

// Chunk is a slice of a CV's text with its embedding.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
}

// ChunkID derives a stable chunk identifier from its document and position.
func ChunkID(documentID uuid.UUID, index int) uuid.UUID {
	return uuid.NewSHA1(documentID, []byte{byte(index >> 24), byte(index >> 16), byte(index >> 8), byte(index)})
}

// UploadStatus is the lifecycle state of an upload batch or item.
type UploadStatus string

const (
	UploadStatusPending UploadStatus = "PENDING"
	UploadStatusRunning UploadStatus = "RUNNING"
	UploadStatusSuccess UploadStatus = "SUCCESS"
	UploadStatusFailed  UploadStatus = "FAILED"
	UploadStatusPartial UploadStatus = "PARTIAL"
)

// UploadBatch tracks a bulk ingestion request.
type UploadBatch struct {
	ID             uuid.UUID
	Status         UploadStatus
	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	CreatedAt      time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
}

// UploadItem tracks one file of an upload batch.
type UploadItem struct {
	ID           uuid.UUID
	BatchID      uuid.UUID
	DocumentID   uuid.UUID // uuid.Nil until the document exists
	Filename     string
	Status       UploadStatus
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    time.Time
	CompletedAt  time.Time
}
