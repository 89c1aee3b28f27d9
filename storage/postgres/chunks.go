package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

// ReplaceChunks deletes a document's chunks and inserts the given ones in one transaction.
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
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM cv_documents WHERE id = $1)`, documentID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
			return fmt.Errorf("failed to delete chunks: %w", err)
		}

		batch := &pgx.Batch{}
		for _, chunk := range chunks {
			if chunk.CreatedAt.IsZero() {
				chunk.CreatedAt = now
			}
			batch.Queue(
				`INSERT INTO chunks (id, document_id, chunk_index, text_chunk, embedding, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5::vector, $6, $7)`,
				chunk.ID, chunk.DocumentID, chunk.Index, chunk.Text, vectorLiteral(chunk.Embedding), chunk.CreatedAt, now,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert chunks: %w", translateError(err))
		}
		return nil
	})
}

// GetChunks returns a document's chunks ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID uuid.UUID) ([]*core.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, chunk_index, text_chunk, embedding::text, created_at
		 FROM chunks WHERE document_id = $1 ORDER BY chunk_index`, documentID)
}

// ListChunks returns every chunk ordered by document and index.
func (s *Store) ListChunks(ctx context.Context) ([]*core.Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, chunk_index, text_chunk, embedding::text, created_at
		 FROM chunks ORDER BY document_id, chunk_index`)
}

// UpdateChunks overwrites the text and embedding of existing chunks.
func (s *Store) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk, s.dimensions); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, chunk := range chunks {
			tag, err := tx.Exec(ctx,
				`UPDATE chunks SET text_chunk = $2, embedding = $3::vector, updated_at = NOW() WHERE id = $1`,
				chunk.ID, chunk.Text, vectorLiteral(chunk.Embedding),
			)
			if err != nil {
				return fmt.Errorf("failed to update chunk: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: chunk %s", storage.ErrNotFound, chunk.ID)
			}
		}
		return nil
	})
}

// Search returns the k chunks nearest to vector by cosine distance.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]core.ChunkHit, error) {
	if err := core.ValidateEmbedding(vector, s.dimensions); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []core.ChunkHit{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, text_chunk, embedding <=> $1::vector AS distance
		 FROM chunks ORDER BY distance LIMIT $2`,
		vectorLiteral(vector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	hits := make([]core.ChunkHit, 0, k)
	for rows.Next() {
		var (
			hit      core.ChunkHit
			distance float64
		)
		if err := rows.Scan(&hit.ChunkID, &hit.DocumentID, &hit.Text, &distance); err != nil {
			return nil, err
		}
		hit.Similarity = similarityFromDistance(distance)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (s *Store) queryChunks(ctx context.Context, sql string, args ...any) ([]*core.Chunk, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []*core.Chunk
	for rows.Next() {
		var (
			chunk     core.Chunk
			embedding string
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Text, &embedding, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		if chunk.Embedding, err = parseVector(embedding); err != nil {
			return nil, err
		}
		chunk.CreatedAt = chunk.CreatedAt.UTC()
		results = append(results, &chunk)
	}
	return results, rows.Err()
}
