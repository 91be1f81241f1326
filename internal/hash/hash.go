// Package hash provides content hashing for baseline and post-image tracking.
//
// Llmps records SHA-256 hashes of file content on both sides of a patch
// transaction: baseline hashes tie a verified plan to the exact bytes it was
// planned against, and post-image hashes guard undo/redo against files that
// changed after the transaction. Hashing is always over in-memory content;
// by the time anything needs a hash the bytes have already been read
// through the filesystem abstraction.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher computes content hashes for baseline and blob tracking.
type Hasher interface {
	// HashBytes computes the hash of in-memory content.
	HashBytes(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashBytes computes the SHA-256 hash of in-memory content.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
