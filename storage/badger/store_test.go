package badger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemoryStore(3)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func addDoc(t *testing.T, s *Store, text string, mutate func(*core.CVDocument)) *core.CVDocument {
	t.Helper()
	doc := &core.CVDocument{RawText: text}
	if mutate != nil {
		mutate(doc)
	}
	added, err := s.AddDocument(context.Background(), doc)
	require.NoError(t, err)
	return added
}

func makeChunk(docID uuid.UUID, index int, text string, vec ...float32) *core.Chunk {
	return &core.Chunk{
		ID:         core.ChunkID(docID, index),
		DocumentID: docID,
		Index:      index,
		Text:       text,
		Embedding:  vec,
	}
}

func TestNewStore_RejectsInvalidDimensions(t *testing.T) {
	backend, err := OpenBackend("")
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewStore(backend, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidDimensions)
}

func TestStoreClose(t *testing.T) {
	s, err := NewMemoryStore(3)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), storage.ErrStorageClosed)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := addDoc(t, s, "Jane Doe, Go developer", func(d *core.CVDocument) {
		d.CandidateName = "Jane Doe"
		d.SourceChecksum = "sum-1"
		d.Metadata.CandidateName = strPtr("Jane Doe")
	})
	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.False(t, doc.IngestedAt.IsZero())

	t.Run("get", func(t *testing.T) {
		got, err := s.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", got.CandidateName)
		assert.Equal(t, "Jane Doe", got.Metadata.Name())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.GetDocument(ctx, uuid.New())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get many skips missing", func(t *testing.T) {
		docs, err := s.GetDocuments(ctx, uuid.New(), doc.ID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, doc.ID, docs[0].ID)
	})

	t.Run("add duplicate id", func(t *testing.T) {
		_, err := s.AddDocument(ctx, &core.CVDocument{ID: doc.ID, RawText: "again"})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("add invalid", func(t *testing.T) {
		_, err := s.AddDocument(ctx, &core.CVDocument{RawText: "   "})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})

	t.Run("find by checksum", func(t *testing.T) {
		got, err := s.FindByChecksum(ctx, "sum-1")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)

		_, err = s.FindByChecksum(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update moves checksum index", func(t *testing.T) {
		updated := *doc
		updated.SourceChecksum = "sum-2"
		updated.RawText = "Jane Doe, senior Go developer"
		_, err := s.UpdateDocument(ctx, &updated)
		require.NoError(t, err)

		_, err = s.FindByChecksum(ctx, "sum-1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		got, err := s.FindByChecksum(ctx, "sum-2")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe, senior Go developer", got.RawText)
		assert.True(t, got.CreatedAt.Equal(doc.CreatedAt))
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := s.UpdateDocument(ctx, &core.CVDocument{ID: uuid.New(), RawText: "x"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("list metadata", func(t *testing.T) {
		metas, err := s.ListDocumentMetadata(ctx)
		require.NoError(t, err)
		require.Len(t, metas, 1)
		assert.Equal(t, doc.ID, metas[0].ID)
		assert.Equal(t, "Jane Doe", metas[0].Metadata.Name())
	})
}

func TestDeleteDocument_Cascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	doc := addDoc(t, s, "cv text", func(d *core.CVDocument) { d.SourceChecksum = "sum" })
	other := addDoc(t, s, "other cv", nil)
	require.NoError(t, s.ReplaceChunks(ctx, doc.ID, makeChunk(doc.ID, 0, "a", 1, 0, 0), makeChunk(doc.ID, 1, "b", 0, 1, 0)))
	require.NoError(t, s.ReplaceChunks(ctx, other.ID, makeChunk(other.ID, 0, "c", 0, 0, 1)))

	require.NoError(t, s.DeleteDocument(ctx, doc.ID))

	_, err := s.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindByChecksum(ctx, "sum")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := s.ListChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, other.ID, chunks[0].DocumentID)

	err = s.UpdateChunks(ctx, makeChunk(doc.ID, 0, "a", 1, 0, 0))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.DeleteDocument(ctx, doc.ID), storage.ErrNotFound)
}

func TestReplaceChunks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	doc := addDoc(t, s, "cv text", nil)

	require.NoError(t, s.ReplaceChunks(ctx, doc.ID,
		makeChunk(doc.ID, 1, "second", 0, 1, 0),
		makeChunk(doc.ID, 0, "first", 1, 0, 0),
		makeChunk(doc.ID, 2, "third", 0, 0, 1),
	))

	chunks, err := s.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "first", chunks[0].Text)
	assert.Equal(t, "third", chunks[2].Text)
	assert.False(t, chunks[0].CreatedAt.IsZero())

	require.NoError(t, s.ReplaceChunks(ctx, doc.ID, makeChunk(doc.ID, 0, "only", 1, 1, 0)))
	chunks, err = s.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "only", chunks[0].Text)

	t.Run("dimension mismatch", func(t *testing.T) {
		err := s.ReplaceChunks(ctx, doc.ID, makeChunk(doc.ID, 0, "bad", 1, 0))
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("foreign chunk", func(t *testing.T) {
		err := s.ReplaceChunks(ctx, doc.ID, makeChunk(uuid.New(), 0, "x", 1, 0, 0))
		assert.ErrorIs(t, err, storage.ErrDocumentMismatch)
	})

	t.Run("unknown document", func(t *testing.T) {
		id := uuid.New()
		err := s.ReplaceChunks(ctx, id, makeChunk(id, 0, "x", 1, 0, 0))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUpdateChunks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	doc := addDoc(t, s, "cv text", nil)
	require.NoError(t, s.ReplaceChunks(ctx, doc.ID, makeChunk(doc.ID, 0, "text", 1, 0, 0)))

	chunks, err := s.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	chunks[0].Embedding = []float32{0, 0, 1}
	require.NoError(t, s.UpdateChunks(ctx, chunks...))

	got, err := s.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, got[0].Embedding)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := addDoc(t, s, "doc a", nil)
	b := addDoc(t, s, "doc b", nil)
	require.NoError(t, s.ReplaceChunks(ctx, a.ID,
		makeChunk(a.ID, 0, "close", 1, 0.1, 0),
		makeChunk(a.ID, 1, "opposite", -1, 0, 0),
	))
	require.NoError(t, s.ReplaceChunks(ctx, b.ID, makeChunk(b.ID, 0, "exact", 1, 0, 0)))

	hits, err := s.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].Text)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, b.ID, hits[0].DocumentID)
	assert.Equal(t, "close", hits[1].Text)
	assert.Equal(t, 0.0, hits[2].Similarity)

	hits, err = s.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = s.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestSearch_Empty(t *testing.T) {
	s := newTestStore(t)
	hits, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUploads(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	batch := &core.UploadBatch{TotalFiles: 3}
	items := []*core.UploadItem{{Filename: "a.txt"}, {Filename: "b.txt"}, {Filename: "c.txt"}}
	require.NoError(t, s.CreateBatch(ctx, batch, items...))
	assert.NotEqual(t, uuid.Nil, batch.ID)
	assert.Equal(t, core.UploadStatusPending, batch.Status)

	listed, err := s.ListItems(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, item := range listed {
		assert.Equal(t, items[i].Filename, item.Filename)
		assert.Equal(t, batch.ID, item.BatchID)
		assert.Equal(t, core.UploadStatusPending, item.Status)
	}

	items[1].Status = core.UploadStatusFailed
	items[1].ErrorMessage = "boom"
	require.NoError(t, s.UpdateItem(ctx, items[1]))

	batch.Status = core.UploadStatusPartial
	batch.ProcessedFiles = 3
	batch.FailedFiles = 1
	require.NoError(t, s.UpdateBatch(ctx, batch))

	got, err := s.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, core.UploadStatusPartial, got.Status)
	assert.Equal(t, 1, got.FailedFiles)

	listed, err = s.ListItems(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", listed[1].ErrorMessage)

	_, err = s.GetBatch(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateItem(ctx, &core.UploadItem{ID: uuid.New()}), storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateBatch(ctx, &core.UploadBatch{ID: uuid.New()}), storage.ErrNotFound)
	assert.ErrorIs(t, s.CreateBatch(ctx, batch), storage.ErrDuplicateKey)
}
