package merkletree

import (
	"errors"
	"fmt"

	"github.com/recordseal/recordseal-go/crypto"
	"github.com/recordseal/recordseal-go/crypto/hasher"
	"github.com/recordseal/recordseal-go/record"
)

var (
	// ErrEmptyInput indicates that a tree was requested over zero records.
	// No apex is defined for an empty record set.
	ErrEmptyInput = errors.New("[merkletree] No records to build from")
	// ErrNotFound indicates that no leaf of the tree carries the
	// requested record identifier or position.
	ErrNotFound = errors.New("[merkletree] Record not found")
	// ErrInvalidTree is the panic value raised when a walk of the node
	// graph finds it inconsistent with the leaves it was built from.
	ErrInvalidTree = errors.New("[merkletree] Invalid tree")
)

// Tree is a built record tree. It owns the node graph rooted at the
// apex and the leaves (terminals) in the order of the input records,
// so that terminals[i] was built from records[i].
// A Tree is immutable and safe for concurrent use.
type Tree struct {
	hasher     hasher.TreeHasher
	apex       *node
	terminals  []*node
	height     int
	vertices   int
	peakMemory uint64
}

// Apex returns the hex encoding of the apex digest.
func (t *Tree) Apex() string {
	return crypto.ToHex(t.apex.digest)
}

// ApexDigest returns a copy of the raw apex digest.
func (t *Tree) ApexDigest() []byte {
	return append([]byte{}, t.apex.digest...)
}

// Len returns the number of leaves, which is the number of records
// the tree was built from.
func (t *Tree) Len() int {
	return len(t.terminals)
}

// Height returns the number of reduction rounds from the leaves
// to the apex. A single-record tree has height 0.
func (t *Tree) Height() int {
	return t.height
}

// Vertices returns the number of distinct leaf and interior nodes.
func (t *Tree) Vertices() int {
	return t.vertices
}

// PeakMemory returns the estimated peak working set of the build in bytes.
func (t *Tree) PeakMemory() uint64 {
	return t.peakMemory
}

// Hasher returns the hasher the tree was built with.
func (t *Tree) Hasher() hasher.TreeHasher {
	return t.hasher
}

// TerminalDigest returns a copy of the digest of the leaf at index.
func (t *Tree) TerminalDigest(index int) ([]byte, error) {
	if index < 0 || index >= len(t.terminals) {
		return nil, fmt.Errorf("%w: leaf index %d", ErrNotFound, index)
	}
	return append([]byte{}, t.terminals[index].digest...), nil
}

// IndexOf returns the position of the first leaf built from the record
// with the given identifier.
func (t *Tree) IndexOf(recordID string) (int, bool) {
	for i, leaf := range t.terminals {
		if leaf.id == recordID {
			return i, true
		}
	}
	return -1, false
}

// LocatePath returns the AuthenticationPath of the record with the given
// identifier. It returns ErrNotFound if no leaf carries recordID.
func (t *Tree) LocatePath(recordID string) (*AuthenticationPath, error) {
	index, ok := t.IndexOf(recordID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, recordID)
	}
	return t.LocateIndex(index)
}

// LocateIndex returns the AuthenticationPath of the leaf at index.
//
// The ancestor of leaf i at level k is node i>>k of that level, so the
// pairing used during the build is recovered by following the owned
// child links from the apex down along the bits of i.
func (t *Tree) LocateIndex(index int) (*AuthenticationPath, error) {
	if index < 0 || index >= len(t.terminals) {
		return nil, fmt.Errorf("%w: leaf index %d", ErrNotFound, index)
	}
	steps := make([]PathStep, t.height)
	nodePointer := t.apex
	for level := t.height; level > 0; level-- {
		if nodePointer.isLeaf() {
			panic(ErrInvalidTree)
		}
		// steps is ordered leaf-to-apex
		step := &steps[level-1]
		if (index>>uint(level-1))&1 == 0 {
			step.Position = Left
			step.Sibling = append([]byte{}, nodePointer.right.digest...)
			nodePointer = nodePointer.left
		} else {
			step.Position = Right
			step.Sibling = append([]byte{}, nodePointer.left.digest...)
			nodePointer = nodePointer.right
		}
	}
	if nodePointer != t.terminals[index] {
		panic(ErrInvalidTree)
	}
	return &AuthenticationPath{
		RecordID:  nodePointer.id,
		LeafIndex: index,
		TreeSize:  len(t.terminals),
		HasherID:  t.hasher.ID(),
		Steps:     steps,
	}, nil
}

// LeafDigest returns the digest r would have as a leaf of t.
func (t *Tree) LeafDigest(r record.Record) ([]byte, error) {
	encoded, err := record.Encode(r)
	if err != nil {
		return nil, err
	}
	return t.hasher.HashLeaf(encoded), nil
}
