package badger

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Key prefixes for different data types
const (
	documentPrefix      = "doc:"
	checksumIndexPrefix = "docsum:"
	chunkPrefix         = "chk:"
	chunkIDIndexPrefix  = "chkid:"
	batchPrefix         = "upb:"
	itemPrefix          = "upi:"
	itemIDIndexPrefix   = "upid:"
	itemSeq             = "upiseq"
)

func makeDocumentKey(id uuid.UUID) []byte {
	return append([]byte(documentPrefix), id[:]...)
}

func makeChecksumKey(checksum string) []byte {
	return []byte(checksumIndexPrefix + checksum)
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:documentID:index, index in BigEndian so chunks iterate in order.
func makeChunkKey(documentID uuid.UUID, index int) []byte {
	buf := makeDocumentChunksPrefix(documentID)
	return binary.BigEndian.AppendUint32(buf, uint32(index))
}

// makeDocumentChunksPrefix generates the prefix shared by all chunks of a document.
func makeDocumentChunksPrefix(documentID uuid.UUID) []byte {
	buf := make([]byte, 0, len(chunkPrefix)+16+4)
	buf = append(buf, chunkPrefix...)
	return append(buf, documentID[:]...)
}

func makeChunkIDKey(id uuid.UUID) []byte {
	return append([]byte(chunkIDIndexPrefix), id[:]...)
}

func makeBatchKey(id uuid.UUID) []byte {
	return append([]byte(batchPrefix), id[:]...)
}

// makeItemKey generates a composite key for an upload item.
// Format: prefix:batchID:sequence, so items list in creation order.
func makeItemKey(batchID uuid.UUID, seq uint64) []byte {
	buf := makeBatchItemsPrefix(batchID)
	return binary.BigEndian.AppendUint64(buf, seq)
}

func makeBatchItemsPrefix(batchID uuid.UUID) []byte {
	buf := make([]byte, 0, len(itemPrefix)+16+8)
	buf = append(buf, itemPrefix...)
	return append(buf, batchID[:]...)
}

func makeItemIDKey(id uuid.UUID) []byte {
	return append([]byte(itemIDIndexPrefix), id[:]...)
}
