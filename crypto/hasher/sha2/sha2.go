// Package sha2 registers the SHA-2 family tree hashers.
// SHA-256 is the default hasher of recordseal.
package sha2

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/recordseal/recordseal-go/crypto/hasher"
)

func init() {
	hasher.RegisterHasher(SHA256, New)
	hasher.RegisterHasher(SHA512_256, New512_256)
}

const (
	// SHA256 is the identity of the SHA-256 tree hasher.
	SHA256 = hasher.DefaultHasher
	// SHA512_256 is the identity of the SHA-512/256 tree hasher.
	SHA512_256 = "SHA-512/256"
)

// New returns an instance of the SHA-256 tree hasher.
func New() hasher.TreeHasher {
	return hasher.FromHash(SHA256, sha256.New)
}

// New512_256 returns an instance of the SHA-512/256 tree hasher.
func New512_256() hasher.TreeHasher {
	return hasher.FromHash(SHA512_256, sha512.New512_256)
}
