package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
)

// VectorStore provides the retrieval operations used by search.
// Implementations must be safe for concurrent readers.
type VectorStore interface {
	// Dimensions returns the configured embedding dimensionality.
	Dimensions() int

	// Search returns up to k chunks nearest to vector by cosine distance.
	// Similarity is max(0, 1 - distance). Results are ordered by similarity, highest first.
	// Returns core.ErrDimensionMismatch if len(vector) != Dimensions().
	Search(ctx context.Context, vector []float32, k int) ([]core.ChunkHit, error)

	// SearchMetadata ranks documents by full-text relevance of query against
	// their raw text and serialized metadata, weighting the two fields by category.
	// Only positive ranks are returned, highest first, up to k hits.
	// Similarity holds the rank and ChunkID is uuid.Nil.
	SearchMetadata(ctx context.Context, query string, category core.Category, k int) ([]core.ChunkHit, error)
}

// DocumentRepository provides operations for managing CV documents.
type DocumentRepository interface {
	// AddDocument stores a new document. A nil ID is replaced with a new one.
	// CreatedAt, UpdatedAt and IngestedAt are set if not already set.
	AddDocument(ctx context.Context, doc *core.CVDocument) (*core.CVDocument, error)

	// UpdateDocument replaces an existing document and refreshes UpdatedAt.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocument(ctx context.Context, doc *core.CVDocument) (*core.CVDocument, error)

	// GetDocument retrieves a single document.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id uuid.UUID) (*core.CVDocument, error)

	// GetDocuments retrieves multiple documents.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...uuid.UUID) ([]*core.CVDocument, error)

	// ListDocumentMetadata returns the id and metadata of every document.
	ListDocumentMetadata(ctx context.Context) ([]core.DocumentMetadata, error)

	// FindByChecksum finds the document ingested from a source with the given checksum.
	// Returns ErrNotFound if none exists.
	FindByChecksum(ctx context.Context, checksum string) (*core.CVDocument, error)

	// DeleteDocument removes a document together with its chunks.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// ChunkRepository provides operations for managing embedded chunks.
type ChunkRepository interface {
	// ReplaceChunks removes every chunk of a document and stores the given ones.
	// Each chunk must belong to documentID and match Dimensions().
	ReplaceChunks(ctx context.Context, documentID uuid.UUID, chunks ...*core.Chunk) error

	// GetChunks returns the chunks of a document ordered by index.
	GetChunks(ctx context.Context, documentID uuid.UUID) ([]*core.Chunk, error)

	// ListChunks returns every stored chunk ordered by document and index.
	ListChunks(ctx context.Context) ([]*core.Chunk, error)

	// UpdateChunks overwrites existing chunks, typically with new embeddings.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) error
}

// UploadRepository tracks bulk upload batches and their items.
type UploadRepository interface {
	// CreateBatch stores a batch and its items.
	CreateBatch(ctx context.Context, batch *core.UploadBatch, items ...*core.UploadItem) error

	// GetBatch retrieves a batch.
	// Returns ErrNotFound if the batch doesn't exist.
	GetBatch(ctx context.Context, id uuid.UUID) (*core.UploadBatch, error)

	// UpdateBatch overwrites a batch.
	// Returns ErrNotFound if the batch doesn't exist.
	UpdateBatch(ctx context.Context, batch *core.UploadBatch) error

	// UpdateItem overwrites an item.
	// Returns ErrNotFound if the item doesn't exist.
	UpdateItem(ctx context.Context, item *core.UploadItem) error

	// ListItems returns the items of a batch in creation order.
	ListItems(ctx context.Context, batchID uuid.UUID) ([]*core.UploadItem, error)
}

// Store aggregates every repository of a backend.
type Store interface {
	VectorStore
	DocumentRepository
	ChunkRepository
	UploadRepository

	// Close closes the storage backend and releases resources.
	Close() error
}
