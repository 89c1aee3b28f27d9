package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

// ReplaceChunks swaps the stored chunks of a document for the given ones.
func (s *Store) ReplaceChunks(ctx context.Context, documentID uuid.UUID, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if chunk.DocumentID != documentID {
			return fmt.Errorf("%w: chunk %s has document %s, want %s",
				storage.ErrDocumentMismatch, chunk.ID, chunk.DocumentID, documentID)
		}
		if err := core.ValidateChunk(chunk, s.dimensions); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return s.backend.update(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(documentID))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := deleteDocumentChunks(tx, documentID); err != nil {
			return err
		}
		for _, chunk := range chunks {
			if chunk.CreatedAt.IsZero() {
				chunk.CreatedAt = now
			}
			if err := writeChunk(tx, chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetChunks returns a document's chunks ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID uuid.UUID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := s.scanChunks(ctx, makeDocumentChunksPrefix(documentID), func(chunk *core.Chunk) error {
		results = append(results, chunk)
		return nil
	})
	return results, err
}

// ListChunks returns every stored chunk.
func (s *Store) ListChunks(ctx context.Context) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := s.scanChunks(ctx, []byte(chunkPrefix), func(chunk *core.Chunk) error {
		results = append(results, chunk)
		return nil
	})
	return results, err
}

// UpdateChunks overwrites existing chunks in place.
func (s *Store) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk, s.dimensions); err != nil {
			return err
		}
	}

	return s.backend.update(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key, err := readValue(tx, makeChunkIDKey(chunk.ID))
			if err != nil {
				return err
			}
			if key == nil {
				return fmt.Errorf("%w: chunk %s", storage.ErrNotFound, chunk.ID)
			}
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Search scans every chunk and returns the k most similar to vector.
// Negative cosine similarities are clamped to 0.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]core.ChunkHit, error) {
	if err := core.ValidateEmbedding(vector, s.dimensions); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []core.ChunkHit{}, nil
	}

	hits := make([]core.ChunkHit, 0)
	err := s.scanChunks(ctx, []byte(chunkPrefix), func(chunk *core.Chunk) error {
		hits = append(hits, core.ChunkHit{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			Similarity: max(0, cosineSimilarity(vector, chunk.Embedding)),
			Text:       chunk.Text,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *Store) scanChunks(ctx context.Context, prefix []byte, fn func(chunk *core.Chunk) error) error {
	return s.backend.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk *core.Chunk
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeChunk(tx *badger.Txn, chunk *core.Chunk) error {
	key := makeChunkKey(chunk.DocumentID, chunk.Index)
	if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
		return err
	}
	return tx.Set(makeChunkIDKey(chunk.ID), key)
}

// deleteDocumentChunks removes every chunk of a document and its id index entries.
func deleteDocumentChunks(tx *badger.Txn, documentID uuid.UUID) error {
	type entry struct {
		key []byte
		id  uuid.UUID
	}
	var entries []entry

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeDocumentChunksPrefix(documentID)
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		var chunk *core.Chunk
		if err := item.Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalChunk(val)
			return err
		}); err != nil {
			iter.Close()
			return err
		}
		entries = append(entries, entry{key: item.KeyCopy(nil), id: chunk.ID})
	}
	iter.Close()

	for _, e := range entries {
		if err := tx.Delete(e.key); err != nil {
			return err
		}
		if err := tx.Delete(makeChunkIDKey(e.id)); err != nil {
			return err
		}
	}
	return nil
}
