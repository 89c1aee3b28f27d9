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


package cvrank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/ai/gemini"
	"github.com/poiesic/cvrank/ai/openai"
	"github.com/poiesic/cvrank/ingestion"
	"github.com/poiesic/cvrank/reembed"
	"github.com/poiesic/cvrank/search"
	"github.com/poiesic/cvrank/storage"
	"github.com/poiesic/cvrank/storage/badger"
	"github.com/poiesic/cvrank/storage/postgres"
)

// Database bundles a store with the AI provider its embeddings come from.
type Database struct {
	store    storage.Store
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	databaseURL string
}

// WithAIConfig sets the provider configuration. Its EmbeddingDim is also the
// dimensionality of the store.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses an already constructed provider instead of building one
// from the AI config.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithDatabaseURL stores data in PostgreSQL instead of a local badger directory.
func WithDatabaseURL(url string) DatabaseOption {
	return func(o *databaseOptions) {
		o.databaseURL = url
	}
}

// NewDatabase opens the store at filePath, or the PostgreSQL database given
// by WithDatabaseURL, and creates the configured AI provider.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.provider == nil {
		if err := options.aiConfig.Validate(); err != nil {
			return nil, err
		}
	}
	dims := options.aiConfig.EmbeddingDim

	var (
		store storage.Store
		err   error
	)
	if options.databaseURL != "" {
		store, err = postgres.Connect(ctx, options.databaseURL, dims)
	} else {
		store, err = badger.Open(filePath, dims)
	}
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = newProvider(ctx, options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Database{
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func newProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Close closes the AI provider, then the store.
func (db *Database) Close() error {
	var errs []error
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Store() storage.Store {
	return db.store
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.store, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.store, db.provider, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.store, db.provider.Embedder(), config, progress)
}
