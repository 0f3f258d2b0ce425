// Package sha3 registers the SHA-3 family tree hashers:
// SHA3-256 and SHAKE128 with a 32-byte output.
package sha3

import (
	"github.com/recordseal/recordseal-go/crypto"
	"github.com/recordseal/recordseal-go/crypto/hasher"
	"golang.org/x/crypto/sha3"
)

func init() {
	hasher.RegisterHasher(SHA3_256, New256)
	hasher.RegisterHasher(SHAKE128, NewShake128)
}

const (
	// SHA3_256 is the identity of the SHA3-256 tree hasher.
	SHA3_256 = "SHA3-256"
	// SHAKE128 is the identity of the SHAKE128 tree hasher.
	SHAKE128 = "SHAKE128"
)

// New256 returns an instance of the SHA3-256 tree hasher.
func New256() hasher.TreeHasher {
	return hasher.FromHash(SHA3_256, sha3.New256)
}

type shakeHasher struct{}

// NewShake128 returns an instance of the SHAKE128 tree hasher.
func NewShake128() hasher.TreeHasher {
	return shakeHasher{}
}

func (shakeHasher) ID() string {
	return SHAKE128
}

func (shakeHasher) Size() int {
	return crypto.DefaultHashSizeByte
}

func (shakeHasher) Digest(ms ...[]byte) []byte {
	h := sha3.NewShake128()
	for _, m := range ms {
		h.Write(m)
	}
	ret := make([]byte, crypto.DefaultHashSizeByte)
	h.Read(ret)
	return ret
}

func (sh shakeHasher) HashLeaf(encoded []byte) []byte {
	return sh.Digest(encoded)
}

func (sh shakeHasher) HashInterior(left, right []byte) []byte {
	return sh.Digest(left, right)
}
