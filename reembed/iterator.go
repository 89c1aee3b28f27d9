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


package reembed

import (
	"context"

	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

const (
	// DefaultBatchSize is the default number of chunks embedded per call
	DefaultBatchSize = 100
)

// ChunkIterator walks every stored chunk in batches.
// The chunk list is read once and reused by later calls.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
	chunks    []*core.Chunk
	loaded    bool
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks per batch; non-positive values select DefaultBatchSize
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ChunkIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// Load reads the chunk list if needed and returns its length.
func (it *ChunkIterator) Load(ctx context.Context) (int, error) {
	if it.loaded {
		return len(it.chunks), nil
	}
	chunks, err := it.repo.ListChunks(ctx)
	if err != nil {
		return 0, err
	}
	it.chunks = chunks
	it.loaded = true
	return len(chunks), nil
}

// ForEach calls fn with consecutive batches of chunks.
// Iteration stops on the first error from fn or on context cancellation,
// which is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := it.Load(ctx); err != nil {
		return err
	}

	for i := 0; i < len(it.chunks); i += it.batchSize {
		end := min(i+it.batchSize, len(it.chunks))
		if err := fn(it.chunks[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
