package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

const documentColumns = `id, candidate_name, email, source_file, source_checksum, raw_text,
	metadata, ingested_at, created_at, updated_at`

// AddDocument inserts a new document.
func (s *Store) AddDocument(ctx context.Context, doc *core.CVDocument) (*core.CVDocument, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = now
	}
	doc.UpdatedAt = now

	_, err = s.pool.Exec(ctx,
		`INSERT INTO cv_documents (`+documentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.ID, doc.CandidateName, doc.Email, doc.SourceFile, doc.SourceChecksum, doc.RawText,
		metadata, nullTime(doc.IngestedAt), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", translateError(err))
	}
	return doc, nil
}

// UpdateDocument replaces a stored document, keeping its creation time.
func (s *Store) UpdateDocument(ctx context.Context, doc *core.CVDocument) (*core.CVDocument, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	doc.UpdatedAt = time.Now().UTC()
	err = s.pool.QueryRow(ctx,
		`UPDATE cv_documents
		 SET candidate_name = $2, email = $3, source_file = $4, source_checksum = $5,
		     raw_text = $6, metadata = $7, ingested_at = $8, updated_at = $9
		 WHERE id = $1
		 RETURNING created_at`,
		doc.ID, doc.CandidateName, doc.Email, doc.SourceFile, doc.SourceChecksum, doc.RawText,
		metadata, nullTime(doc.IngestedAt), doc.UpdatedAt,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*core.CVDocument, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM cv_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, translateError(err)
	}
	return doc, nil
}

// GetDocuments retrieves the documents that exist among ids, in the order given.
func (s *Store) GetDocuments(ctx context.Context, ids ...uuid.UUID) ([]*core.CVDocument, error) {
	if len(ids) == 0 {
		return []*core.CVDocument{}, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT `+documentColumns+` FROM cv_documents WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*core.CVDocument, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		byID[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]*core.CVDocument, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			results = append(results, doc)
		}
	}
	return results, nil
}

// ListDocumentMetadata returns the id and metadata of every document.
func (s *Store) ListDocumentMetadata(ctx context.Context) ([]core.DocumentMetadata, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, metadata FROM cv_documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	var results []core.DocumentMetadata
	for rows.Next() {
		var (
			dm  core.DocumentMetadata
			raw []byte
		)
		if err := rows.Scan(&dm.ID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &dm.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		results = append(results, dm)
	}
	return results, rows.Err()
}

// FindByChecksum returns the most recent document with the given source checksum.
func (s *Store) FindByChecksum(ctx context.Context, checksum string) (*core.CVDocument, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM cv_documents
		 WHERE source_checksum = $1 AND source_checksum <> ''
		 ORDER BY created_at DESC LIMIT 1`,
		checksum,
	)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, translateError(err)
	}
	return doc, nil
}

// DeleteDocument removes a document; chunks go with it through ON DELETE CASCADE.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cv_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*core.CVDocument, error) {
	var (
		doc        core.CVDocument
		metadata   []byte
		ingestedAt *time.Time
	)
	err := row.Scan(&doc.ID, &doc.CandidateName, &doc.Email, &doc.SourceFile, &doc.SourceChecksum,
		&doc.RawText, &metadata, &ingestedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
	}
	doc.IngestedAt = fromNullTime(ingestedAt)
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return &doc, nil
}
