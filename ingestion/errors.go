package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid option")

	// ErrEmptySource is returned when a source file holds no text.
	ErrEmptySource = errors.New("source file is empty")

	// ErrEmptyBatch is returned when an upload batch has no files.
	ErrEmptyBatch = errors.New("upload batch has no files")
)
