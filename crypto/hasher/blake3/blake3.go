// Package blake3 registers the BLAKE3 tree hasher (256-bit output).
package blake3

import (
	"hash"

	"github.com/recordseal/recordseal-go/crypto/hasher"
	"github.com/zeebo/blake3"
)

func init() {
	hasher.RegisterHasher(BLAKE3, New)
}

// BLAKE3 is the identity of the BLAKE3 tree hasher.
const BLAKE3 = "BLAKE3"

// New returns an instance of the BLAKE3 tree hasher.
func New() hasher.TreeHasher {
	return hasher.FromHash(BLAKE3, func() hash.Hash { return blake3.New() })
}
