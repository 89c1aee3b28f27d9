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


// Package storage provides the storage abstraction layer for cvrank.
//
// It defines the repository interfaces used by ingestion and search, and the
// binary encoding shared by key-value backends. Two backends implement Store:
//
//   - storage/badger: embedded BadgerDB with in-process cosine and full-text ranking
//   - storage/postgres: PostgreSQL with pgvector and ts_rank
//
// # Usage
//
//	store, err := badger.Open("/path/to/db", 1536)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore(3)
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. Search issues several
// retrievals against the same store at once.
package storage
