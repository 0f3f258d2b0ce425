package merkletree

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recordseal/recordseal-go/crypto"
	"github.com/recordseal/recordseal-go/crypto/hasher"
	"github.com/recordseal/recordseal-go/crypto/sign"
	"github.com/recordseal/recordseal-go/utils"
)

var (
	// ErrBrokenChain indicates that a snapshot does not extend
	// its predecessor.
	ErrBrokenChain = errors.New("[merkletree] Snapshot hash chain is broken")
	// ErrBadSignature indicates that a snapshot is unsigned or its
	// signature does not verify under the given public key.
	ErrBadSignature = errors.New("[merkletree] Bad snapshot signature")
)

// ApexSnapshot is the published record of one tree build: the apex
// digest of a dataset at some version, with enough metadata to audit it.
// Version counts from 1 and increases by 1 with every publish of the
// same dataset. Each snapshot after the first carries the hash of its
// predecessor in PreviousHash, which chains all versions together.
// A snapshot is never modified once published, except for being signed.
type ApexSnapshot struct {
	ID           uuid.UUID `json:"id"`
	Version      uint64    `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
	RootHash     string    `json:"root_hash"`
	RecordCount  int       `json:"record_count"`
	Dataset      string    `json:"dataset"`
	TreeHeight   int       `json:"tree_height"`
	Hasher       string    `json:"hasher"`
	PreviousHash string    `json:"previous_hash,omitempty"`
	Signature    string    `json:"signature,omitempty"`
}

// NewApexSnapshot describes the apex of t as the next version of dataset
// after prev, or as version 1 if prev is nil. The returned snapshot is
// unsigned.
func NewApexSnapshot(t *Tree, dataset string, prev *ApexSnapshot, now time.Time) (*ApexSnapshot, error) {
	s := &ApexSnapshot{
		ID:          uuid.New(),
		Version:     1,
		Timestamp:   now.UTC(),
		RootHash:    t.Apex(),
		RecordCount: t.Len(),
		Dataset:     dataset,
		TreeHeight:  t.Height(),
		Hasher:      t.Hasher().ID(),
	}
	if prev != nil {
		prevHash, err := prev.hashWith(t.Hasher())
		if err != nil {
			return nil, err
		}
		s.Version = prev.Version + 1
		s.PreviousHash = crypto.ToHex(prevHash)
	}
	return s, nil
}

// Serialize serializes the snapshot into the byte string that is signed
// and hashed. Variable length fields are length prefixed.
func (s *ApexSnapshot) Serialize() ([]byte, error) {
	root, err := crypto.FromHex(s.RootHash)
	if err != nil {
		return nil, fmt.Errorf("root hash: %w", err)
	}
	var prev []byte
	if s.PreviousHash != "" {
		if prev, err = crypto.FromHex(s.PreviousHash); err != nil {
			return nil, fmt.Errorf("previous hash: %w", err)
		}
	}
	var b []byte
	b = append(b, s.ID[:]...)
	b = append(b, utils.ULongToBytes(s.Version)...)
	b = append(b, utils.LongToBytes(s.Timestamp.UnixNano())...)
	b = append(b, utils.ULongToBytes(uint64(s.RecordCount))...)
	b = append(b, utils.UInt32ToBytes(uint32(s.TreeHeight))...)
	b = utils.AppendPrefixed(b, []byte(s.Dataset))
	b = utils.AppendPrefixed(b, []byte(s.Hasher))
	b = utils.AppendPrefixed(b, root)
	b = utils.AppendPrefixed(b, prev)
	return b, nil
}

// Sign signs the serialized snapshot with key and stores the hex
// signature in s.
func (s *ApexSnapshot) Sign(key sign.PrivateKey) error {
	msg, err := s.Serialize()
	if err != nil {
		return err
	}
	s.Signature = crypto.ToHex(key.Sign(msg))
	return nil
}

// VerifySignature returns nil if s carries a valid signature by pk.
func (s *ApexSnapshot) VerifySignature(pk sign.PublicKey) error {
	if s.Signature == "" {
		return fmt.Errorf("%w: version %d is unsigned", ErrBadSignature, s.Version)
	}
	sig, err := crypto.FromHex(s.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	msg, err := s.Serialize()
	if err != nil {
		return err
	}
	if !pk.Verify(msg, sig) {
		return fmt.Errorf("%w: version %d", ErrBadSignature, s.Version)
	}
	return nil
}

// Hash returns the digest of the serialized snapshot and its signature
// under the snapshot's own hasher.
func (s *ApexSnapshot) Hash() ([]byte, error) {
	h, err := hasher.Hasher(s.Hasher)
	if err != nil {
		return nil, err
	}
	return s.hashWith(h)
}

func (s *ApexSnapshot) hashWith(h hasher.TreeHasher) ([]byte, error) {
	msg, err := s.Serialize()
	if err != nil {
		return nil, err
	}
	sig, err := hexOrEmpty(s.Signature)
	if err != nil {
		return nil, err
	}
	return h.Digest(msg, sig), nil
}

// VerifyHashChain reports whether s directly extends saved: the versions
// are consecutive, both describe the same dataset, and PreviousHash is
// the hash of saved under the hasher of s.
func (s *ApexSnapshot) VerifyHashChain(saved *ApexSnapshot) bool {
	if saved == nil || s.Dataset != saved.Dataset || s.Version != saved.Version+1 {
		return false
	}
	h, err := hasher.Hasher(s.Hasher)
	if err != nil {
		return false
	}
	want, err := saved.hashWith(h)
	if err != nil {
		return false
	}
	got, err := crypto.FromHex(s.PreviousHash)
	if err != nil {
		return false
	}
	return bytes.Equal(want, got)
}

func hexOrEmpty(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return crypto.FromHex(s)
}
