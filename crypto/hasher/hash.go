package hasher

import "hash"

// hashHasher adapts any hash.Hash constructor to a TreeHasher.
type hashHasher struct {
	id      string
	newHash func() hash.Hash
	size    int
}

// FromHash returns a TreeHasher named id whose digest is computed by a
// fresh hash.Hash returned from newHash.
func FromHash(id string, newHash func() hash.Hash) TreeHasher {
	return &hashHasher{
		id:      id,
		newHash: newHash,
		size:    newHash().Size(),
	}
}

func (hh *hashHasher) ID() string {
	return hh.id
}

func (hh *hashHasher) Size() int {
	return hh.size
}

func (hh *hashHasher) Digest(ms ...[]byte) []byte {
	h := hh.newHash()
	for _, m := range ms {
		h.Write(m)
	}
	return h.Sum(nil)
}

func (hh *hashHasher) HashLeaf(encoded []byte) []byte {
	return hh.Digest(encoded)
}

func (hh *hashHasher) HashInterior(left, right []byte) []byte {
	return hh.Digest(left, right)
}
