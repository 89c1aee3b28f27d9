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

// CreateBatch inserts a batch and its items in one transaction.
func (s *Store) CreateBatch(ctx context.Context, batch *core.UploadBatch, items ...*core.UploadItem) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	if batch.Status == "" {
		batch.Status = core.UploadStatusPending
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO upload_batches (id, status, total_files, processed_files, failed_files, created_at, started_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			batch.ID, string(batch.Status), batch.TotalFiles, batch.ProcessedFiles, batch.FailedFiles,
			batch.CreatedAt, nullTime(batch.StartedAt), nullTime(batch.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert batch: %w", translateError(err))
		}

		for _, item := range items {
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			item.BatchID = batch.ID
			if item.Status == "" {
				item.Status = core.UploadStatusPending
			}
			if item.CreatedAt.IsZero() {
				item.CreatedAt = now
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO upload_items (id, batch_id, document_id, filename, status, error_message, created_at, started_at, completed_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				item.ID, item.BatchID, nullUUID(item.DocumentID), item.Filename, string(item.Status),
				item.ErrorMessage, item.CreatedAt, nullTime(item.StartedAt), nullTime(item.CompletedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", translateError(err))
			}
		}
		return nil
	})
}

// GetBatch retrieves a batch by ID.
func (s *Store) GetBatch(ctx context.Context, id uuid.UUID) (*core.UploadBatch, error) {
	var (
		batch                  core.UploadBatch
		status                 string
		startedAt, completedAt *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, total_files, processed_files, failed_files, created_at, started_at, completed_at
		 FROM upload_batches WHERE id = $1`, id,
	).Scan(&batch.ID, &status, &batch.TotalFiles, &batch.ProcessedFiles, &batch.FailedFiles,
		&batch.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, translateError(err)
	}
	batch.Status = core.UploadStatus(status)
	batch.CreatedAt = batch.CreatedAt.UTC()
	batch.StartedAt = fromNullTime(startedAt)
	batch.CompletedAt = fromNullTime(completedAt)
	return &batch, nil
}

// UpdateBatch overwrites an existing batch.
func (s *Store) UpdateBatch(ctx context.Context, batch *core.UploadBatch) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE upload_batches
		 SET status = $2, total_files = $3, processed_files = $4, failed_files = $5, started_at = $6, completed_at = $7
		 WHERE id = $1`,
		batch.ID, string(batch.Status), batch.TotalFiles, batch.ProcessedFiles, batch.FailedFiles,
		nullTime(batch.StartedAt), nullTime(batch.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateItem overwrites an existing item.
func (s *Store) UpdateItem(ctx context.Context, item *core.UploadItem) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE upload_items
		 SET document_id = $2, filename = $3, status = $4, error_message = $5, started_at = $6, completed_at = $7
		 WHERE id = $1`,
		item.ID, nullUUID(item.DocumentID), item.Filename, string(item.Status), item.ErrorMessage,
		nullTime(item.StartedAt), nullTime(item.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", storage.ErrNotFound, item.ID)
	}
	return nil
}

// ListItems returns the items of a batch in creation order.
func (s *Store) ListItems(ctx context.Context, batchID uuid.UUID) ([]*core.UploadItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, batch_id, document_id, filename, status, error_message, created_at, started_at, completed_at
		 FROM upload_items WHERE batch_id = $1 ORDER BY seq`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var results []*core.UploadItem
	for rows.Next() {
		var (
			item                   core.UploadItem
			documentID             *uuid.UUID
			status                 string
			startedAt, completedAt *time.Time
		)
		if err := rows.Scan(&item.ID, &item.BatchID, &documentID, &item.Filename, &status,
			&item.ErrorMessage, &item.CreatedAt, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		if documentID != nil {
			item.DocumentID = *documentID
		}
		item.Status = core.UploadStatus(status)
		item.CreatedAt = item.CreatedAt.UTC()
		item.StartedAt = fromNullTime(startedAt)
		item.CompletedAt = fromNullTime(completedAt)
		results = append(results, &item)
	}
	return results, rows.Err()
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
