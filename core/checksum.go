package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Checksum returns the hex BLAKE2b-256 digest of a source file.
// Identical uploads produce identical checksums.
func Checksum(data []byte) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
