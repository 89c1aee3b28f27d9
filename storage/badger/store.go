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


package badger

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cvrank/storage"
)

// Store implements storage.Store on top of BadgerDB.
type Store struct {
	backend    *Backend
	dimensions int
	itemSeq    *badger.Sequence
	logger     *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store over an open backend.
// The store takes ownership of the backend and closes it on Close.
func NewStore(backend *Backend, dimensions int, opts ...StoreOption) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: got %d", storage.ErrInvalidDimensions, dimensions)
	}

	itemSeq, err := backend.Sequence(itemSeq)
	if err != nil {
		return nil, err
	}

	s := &Store{
		backend:    backend,
		dimensions: dimensions,
		itemSeq:    itemSeq,
		logger:     slog.Default().With("component", "badger-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open opens (or creates) a persistent store at path.
func Open(path string, dimensions int, opts ...StoreOption) (*Store, error) {
	backend, err := OpenBackend(path)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(backend, dimensions, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}

// Dimensions returns the embedding dimensionality enforced by the store.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close releases the item sequence and closes the backend.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return errors.Join(s.itemSeq.Release(), s.backend.Close())
}

// nextItemSeq returns the next item sequence number, skipping the initial 0.
func (s *Store) nextItemSeq() (uint64, error) {
	next, err := s.itemSeq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return s.itemSeq.Next()
	}
	return next, nil
}

// readValue returns a copy of the value at key, or nil if the key doesn't exist.
func readValue(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
