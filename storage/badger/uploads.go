package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
)

// CreateBatch stores a batch and its items. Missing IDs are generated and
// items inherit the batch ID.
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

	return s.backend.update(func(tx *badger.Txn) error {
		existing, err := readValue(tx, makeBatchKey(batch.ID))
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}
		if err := tx.Set(makeBatchKey(batch.ID), storage.MarshalUploadBatch(batch)); err != nil {
			return err
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

			seq, err := s.nextItemSeq()
			if err != nil {
				return err
			}
			key := makeItemKey(batch.ID, seq)
			if err := tx.Set(key, storage.MarshalUploadItem(item)); err != nil {
				return err
			}
			if err := tx.Set(makeItemIDKey(item.ID), key); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBatch retrieves a batch by ID.
func (s *Store) GetBatch(ctx context.Context, id uuid.UUID) (*core.UploadBatch, error) {
	var result *core.UploadBatch
	err := s.backend.view(func(tx *badger.Txn) error {
		val, err := readValue(tx, makeBatchKey(id))
		if err != nil {
			return err
		}
		if val == nil {
			return storage.ErrNotFound
		}
		result, err = storage.UnmarshalUploadBatch(val)
		return err
	})
	return result, err
}

// UpdateBatch overwrites an existing batch.
func (s *Store) UpdateBatch(ctx context.Context, batch *core.UploadBatch) error {
	return s.backend.update(func(tx *badger.Txn) error {
		key := makeBatchKey(batch.ID)
		val, err := readValue(tx, key)
		if err != nil {
			return err
		}
		if val == nil {
			return storage.ErrNotFound
		}
		if err := tx.Set(key, storage.MarshalUploadBatch(batch)); err != nil {
			return err
		}
		return nil
	})
}

// UpdateItem overwrites an existing item.
func (s *Store) UpdateItem(ctx context.Context, item *core.UploadItem) error {
	return s.backend.update(func(tx *badger.Txn) error {
		key, err := readValue(tx, makeItemIDKey(item.ID))
		if err != nil {
			return err
		}
		if key == nil {
			return fmt.Errorf("%w: item %s", storage.ErrNotFound, item.ID)
		}
		if err := tx.Set(key, storage.MarshalUploadItem(item)); err != nil {
			return err
		}
		return nil
	})
}

// ListItems returns the items of a batch in creation order.
func (s *Store) ListItems(ctx context.Context, batchID uuid.UUID) ([]*core.UploadItem, error) {
	var results []*core.UploadItem
	err := s.backend.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeBatchItemsPrefix(batchID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.UploadItem
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalUploadItem(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, item)
		}
		return nil
	})
	return results, err
}
