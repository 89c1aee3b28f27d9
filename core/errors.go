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

import "errors"

// Boundary errors
var (
	// ErrValidation indicates a search request was rejected before any work started.
	ErrValidation = errors.New("validation error")

	// ErrInvalidWeights indicates weights are negative, unknown, or do not sum to 1.
	ErrInvalidWeights = errors.New("invalid weights")

	// ErrEmptyJobOffer indicates the job offer text is blank.
	ErrEmptyJobOffer = errors.New("job offer text cannot be empty")

	// ErrInvalidTopK indicates top_k is not positive.
	ErrInvalidTopK = errors.New("top_k must be greater than 0")
)

// Collaborator errors
var (
	// ErrDimensionMismatch indicates an embedding length differs from the store dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUpstreamService indicates a splitter, rewriter, embedder, or store call failed.
	ErrUpstreamService = errors.New("upstream service error")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a CVDocument failed validation.
	ErrInvalidDocument = errors.New("invalid cv document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrMissingID indicates an entity has a nil identifier.
	ErrMissingID = errors.New("id cannot be nil")

	// ErrEmptyContent indicates a text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyEmbedding indicates a chunk has no embedding.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")
)
