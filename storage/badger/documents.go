package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

// AddDocument stores a new document and indexes its source checksum.
func (s *Store) AddDocument(ctx context.Context, doc *core.CVDocument) (*core.CVDocument, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = now
	}
	doc.UpdatedAt = now

	err := s.backend.update(func(tx *badger.Txn) error {
		existing, err := readDocument(tx, makeDocumentKey(doc.ID))
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}
		if err := writeDocument(tx, doc); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument replaces a stored document.
func (s *Store) UpdateDocument(ctx context.Context, doc *core.CVDocument) (*core.CVDocument, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := s.backend.update(func(tx *badger.Txn) error {
		old, err := readDocument(tx, makeDocumentKey(doc.ID))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		doc.CreatedAt = old.CreatedAt
		doc.UpdatedAt = time.Now().UTC()

		if old.SourceChecksum != "" && old.SourceChecksum != doc.SourceChecksum {
			if err := tx.Delete(makeChecksumKey(old.SourceChecksum)); err != nil {
				return err
			}
		}
		if err := writeDocument(tx, doc); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a single document by ID.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*core.CVDocument, error) {
	var result *core.CVDocument
	err := s.backend.view(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// GetDocuments retrieves the documents that exist among ids, in the order given.
func (s *Store) GetDocuments(ctx context.Context, ids ...uuid.UUID) ([]*core.CVDocument, error) {
	results := make([]*core.CVDocument, 0, len(ids))
	err := s.backend.view(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	})
	return results, err
}

// ListDocumentMetadata returns the id and metadata of every stored document.
func (s *Store) ListDocumentMetadata(ctx context.Context) ([]core.DocumentMetadata, error) {
	var results []core.DocumentMetadata
	err := s.scanDocuments(ctx, func(doc *core.CVDocument) error {
		results = append(results, core.DocumentMetadata{ID: doc.ID, Metadata: doc.Metadata})
		return nil
	})
	return results, err
}

// FindByChecksum looks up a document through the checksum index.
func (s *Store) FindByChecksum(ctx context.Context, checksum string) (*core.CVDocument, error) {
	var result *core.CVDocument
	err := s.backend.view(func(tx *badger.Txn) error {
		val, err := readValue(tx, makeChecksumKey(checksum))
		if err != nil {
			return err
		}
		if val == nil {
			return storage.ErrNotFound
		}
		id, err := storage.UnmarshalUUID(val)
		if err != nil {
			return err
		}
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// DeleteDocument removes a document, its chunks, and its index entries.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return s.backend.update(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := deleteDocumentChunks(tx, id); err != nil {
			return err
		}
		if doc.SourceChecksum != "" {
			if err := tx.Delete(makeChecksumKey(doc.SourceChecksum)); err != nil {
				return err
			}
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return nil
	})
}

// scanDocuments calls fn for every stored document.
func (s *Store) scanDocuments(ctx context.Context, fn func(doc *core.CVDocument) error) error {
	return s.backend.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc *core.CVDocument
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			}); err != nil {
				return err
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeDocument(tx *badger.Txn, doc *core.CVDocument) error {
	value, err := storage.MarshalDocument(doc)
	if err != nil {
		return err
	}
	if err := tx.Set(makeDocumentKey(doc.ID), value); err != nil {
		return err
	}
	if doc.SourceChecksum == "" {
		return nil
	}
	return tx.Set(makeChecksumKey(doc.SourceChecksum), storage.MarshalUUID(doc.ID))
}

// readDocument reads a document, returning nil if it doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (*core.CVDocument, error) {
	val, err := readValue(tx, key)
	if err != nil || val == nil {
		return nil, err
	}
	return storage.UnmarshalDocument(val)
}
