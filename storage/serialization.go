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


package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/cvrank/core"
)

// Records are encoded field by field with mus-go primitives. Identifiers are
// stored as strings, times as Unix microseconds (0 for the zero time) and
// CV metadata as its JSON text.

type encoder struct {
	bs []byte
}

func (e *encoder) grow(size int) []byte {
	off := len(e.bs)
	e.bs = append(e.bs, make([]byte, size)...)
	return e.bs[off:]
}

func (e *encoder) string(v string) {
	ord.String.Marshal(v, e.grow(ord.String.Size(v)))
}

func (e *encoder) int64(v int64) {
	varint.Int64.Marshal(v, e.grow(varint.Int64.Size(v)))
}

func (e *encoder) bool(v bool) {
	ord.Bool.Marshal(v, e.grow(ord.Bool.Size(v)))
}

func (e *encoder) uuid(v uuid.UUID) {
	e.string(v.String())
}

func (e *encoder) time(v time.Time) {
	if v.IsZero() {
		e.int64(0)
		return
	}
	e.int64(v.UnixMicro())
}

func (e *encoder) vector(v []float32) {
	e.int64(int64(len(v)))
	for _, f := range v {
		raw.Float32.Marshal(f, e.grow(raw.Float32.Size(f)))
	}
}

type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) bool() bool {
	if d.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) uuid() uuid.UUID {
	s := d.string()
	if d.err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		d.err = err
	}
	return id
}

func (d *decoder) time() time.Time {
	v := d.int64()
	if d.err != nil || v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

func (d *decoder) vector() []float32 {
	length := d.int64()
	if d.err != nil {
		return nil
	}
	if length < 0 || int(length)*4 > len(d.bs)-d.n {
		d.err = fmt.Errorf("vector length %d exceeds remaining data", length)
		return nil
	}
	v := make([]float32, length)
	for i := range v {
		f, n, err := raw.Float32.Unmarshal(d.bs[d.n:])
		d.n += n
		if err != nil {
			d.err = err
			return nil
		}
		v[i] = f
	}
	return v
}

func (d *decoder) finish(kind string) error {
	if d.err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, kind, d.err)
	}
	return nil
}

// MarshalUUID serializes an identifier to bytes.
func MarshalUUID(id uuid.UUID) []byte {
	e := &encoder{}
	e.uuid(id)
	return e.bs
}

// UnmarshalUUID deserializes an identifier from bytes.
func UnmarshalUUID(data []byte) (uuid.UUID, error) {
	d := &decoder{bs: data}
	id := d.uuid()
	return id, d.finish("uuid")
}

// MarshalDocument serializes a CVDocument to bytes.
func MarshalDocument(doc *core.CVDocument) ([]byte, error) {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: document metadata: %w", ErrSerializationFailed, err)
	}

	e := &encoder{}
	e.uuid(doc.ID)
	e.string(doc.CandidateName)
	e.string(doc.Email)
	e.string(doc.SourceFile)
	e.string(doc.SourceChecksum)
	e.string(doc.RawText)
	e.string(string(metadata))
	e.time(doc.IngestedAt)
	e.time(doc.CreatedAt)
	e.time(doc.UpdatedAt)
	return e.bs, nil
}

// UnmarshalDocument deserializes a CVDocument from bytes.
func UnmarshalDocument(data []byte) (*core.CVDocument, error) {
	d := &decoder{bs: data}
	doc := &core.CVDocument{
		ID:             d.uuid(),
		CandidateName:  d.string(),
		Email:          d.string(),
		SourceFile:     d.string(),
		SourceChecksum: d.string(),
		RawText:        d.string(),
	}
	metadata := d.string()
	doc.IngestedAt = d.time()
	doc.CreatedAt = d.time()
	doc.UpdatedAt = d.time()
	if err := d.finish("document"); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("%w: document metadata: %w", ErrSerializationFailed, err)
	}
	return doc, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	e := &encoder{}
	e.uuid(chunk.ID)
	e.uuid(chunk.DocumentID)
	e.int64(int64(chunk.Index))
	e.string(chunk.Text)
	e.vector(chunk.Embedding)
	e.time(chunk.CreatedAt)
	return e.bs
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	d := &decoder{bs: data}
	chunk := &core.Chunk{
		ID:         d.uuid(),
		DocumentID: d.uuid(),
		Index:      int(d.int64()),
		Text:       d.string(),
		Embedding:  d.vector(),
		CreatedAt:  d.time(),
	}
	if err := d.finish("chunk"); err != nil {
		return nil, err
	}
	return chunk, nil
}

// MarshalUploadBatch serializes an UploadBatch to bytes.
func MarshalUploadBatch(batch *core.UploadBatch) []byte {
	e := &encoder{}
	e.uuid(batch.ID)
	e.string(string(batch.Status))
	e.int64(int64(batch.TotalFiles))
	e.int64(int64(batch.ProcessedFiles))
	e.int64(int64(batch.FailedFiles))
	e.time(batch.CreatedAt)
	e.time(batch.StartedAt)
	e.time(batch.CompletedAt)
	return e.bs
}

// UnmarshalUploadBatch deserializes an UploadBatch from bytes.
func UnmarshalUploadBatch(data []byte) (*core.UploadBatch, error) {
	d := &decoder{bs: data}
	batch := &core.UploadBatch{
		ID:             d.uuid(),
		Status:         core.UploadStatus(d.string()),
		TotalFiles:     int(d.int64()),
		ProcessedFiles: int(d.int64()),
		FailedFiles:    int(d.int64()),
		CreatedAt:      d.time(),
		StartedAt:      d.time(),
		CompletedAt:    d.time(),
	}
	if err := d.finish("upload batch"); err != nil {
		return nil, err
	}
	return batch, nil
}

// MarshalUploadItem serializes an UploadItem to bytes.
func MarshalUploadItem(item *core.UploadItem) []byte {
	e := &encoder{}
	e.uuid(item.ID)
	e.uuid(item.BatchID)
	e.bool(item.DocumentID != uuid.Nil)
	if item.DocumentID != uuid.Nil {
		e.uuid(item.DocumentID)
	}
	e.string(item.Filename)
	e.string(string(item.Status))
	e.string(item.ErrorMessage)
	e.time(item.CreatedAt)
	e.time(item.StartedAt)
	e.time(item.CompletedAt)
	return e.bs
}

// UnmarshalUploadItem deserializes an UploadItem from bytes.
func UnmarshalUploadItem(data []byte) (*core.UploadItem, error) {
	d := &decoder{bs: data}
	item := &core.UploadItem{
		ID:      d.uuid(),
		BatchID: d.uuid(),
	}
	if d.bool() {
		item.DocumentID = d.uuid()
	}
	item.Filename = d.string()
	item.Status = core.UploadStatus(d.string())
	item.ErrorMessage = d.string()
	item.CreatedAt = d.time()
	item.StartedAt = d.time()
	item.CompletedAt = d.time()
	if err := d.finish("upload item"); err != nil {
		return nil, err
	}
	return item, nil
}
