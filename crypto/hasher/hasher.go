package hasher

import (
	"fmt"
	"sort"
)

// DefaultHasher is the ID of the hasher used when none is configured.
const DefaultHasher = "SHA-256"

// TreeHasher provides the hash functions for the record tree, and
// defines the way leaf and interior hashes are constructed.
type TreeHasher interface {
	// ID returns the name of the cryptographic hash function.
	ID() string
	// Size returns the size of the hash output in bytes.
	Size() int
	// Digest hashes all passed byte slices. The passed slices won't be mutated.
	Digest(ms ...[]byte) []byte

	// HashLeaf computes the hash of a leaf as: H(encoded record)
	HashLeaf(encoded []byte) []byte

	// HashInterior computes the hash of an interior node as: H(left || right)
	HashInterior(left, right []byte) []byte
}

var hashers = make(map[string]TreeHasher)

// RegisterHasher registers a hasher for use.
func RegisterHasher(h string, f func() TreeHasher) {
	if _, ok := hashers[h]; ok {
		panic(fmt.Sprintf("RegisterHasher(%v) is already registered", h))
	}
	hashers[h] = f()
}

// Hasher returns the TreeHasher registered under h.
func Hasher(h string) (TreeHasher, error) {
	if f, ok := hashers[h]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("Hasher(%v) is unknown hasher", h)
}

// Registered returns the sorted IDs of all registered hashers.
func Registered() []string {
	ids := make([]string, 0, len(hashers))
	for id := range hashers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Default returns the DefaultHasher. It panics if no package has
// registered it, which is the case unless crypto/hasher/sha2 is linked.
func Default() TreeHasher {
	h, err := Hasher(DefaultHasher)
	if err != nil {
		panic(err)
	}
	return h
}
