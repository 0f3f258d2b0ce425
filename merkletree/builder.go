package merkletree

import (
	"fmt"
	"unsafe"

	"github.com/recordseal/recordseal-go/crypto/hasher"
	"github.com/recordseal/recordseal-go/crypto/hasher/sha2"
	"github.com/recordseal/recordseal-go/record"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the smallest level that is split across workers.
const parallelThreshold = 512

const (
	nodeSize    = uint64(unsafe.Sizeof(node{}))
	pointerSize = uint64(unsafe.Sizeof(uintptr(0)))
)

// A Builder builds record trees. The zero value is not usable;
// use NewBuilder.
type Builder struct {
	// Hasher is the tree hash function.
	Hasher hasher.TreeHasher
	// IDField is the name of the record field holding the identifier.
	IDField string
	// Workers is the number of goroutines hashing a level.
	// Values below 2 build sequentially.
	Workers int
}

// NewBuilder returns a Builder with the given hasher, identifier field
// and worker count. A nil hasher selects SHA-256 and an empty idField
// selects record.DefaultIDField.
func NewBuilder(h hasher.TreeHasher, idField string, workers int) *Builder {
	if h == nil {
		h = sha2.New()
	}
	if idField == "" {
		idField = record.DefaultIDField
	}
	return &Builder{
		Hasher:  h,
		IDField: idField,
		Workers: workers,
	}
}

// Build returns the hex apex digest and the estimated peak working set
// of a tree built from records with the default Builder.
func Build(records []record.Record) (string, uint64, error) {
	t, err := NewBuilder(nil, "", 1).Build(records)
	if err != nil {
		return "", 0, err
	}
	return t.Apex(), t.PeakMemory(), nil
}

// LeafDigest returns the leaf digest of r under the default hasher.
func LeafDigest(r record.Record) ([]byte, error) {
	return NewBuilder(nil, "", 1).LeafDigest(r)
}

// LeafDigest returns the digest the leaf of r has in any tree built by b.
func (b *Builder) LeafDigest(r record.Record) ([]byte, error) {
	encoded, err := record.Encode(r)
	if err != nil {
		return nil, err
	}
	return b.Hasher.HashLeaf(encoded), nil
}

// Build builds the tree of records. The records are not retained.
// It returns ErrEmptyInput for an empty record set, and an error
// wrapping record.ErrEncoding if a record has no identifier or cannot
// be encoded; no tree is returned in either case.
func (b *Builder) Build(records []record.Record) (*Tree, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	leaves := make([]*node, len(records))
	err := b.forEach(len(leaves), func(i int) error {
		id, ok := records[i].ID(b.IDField)
		if !ok {
			return fmt.Errorf("record %d: %w", i, record.ErrMissingID)
		}
		encoded, err := record.Encode(records[i])
		if err != nil {
			return fmt.Errorf("record %d (%s): %w", i, id, err)
		}
		leaves[i] = newLeafNode(b.Hasher, id, encoded)
		return nil
	})
	if err != nil {
		return nil, err
	}

	t := &Tree{
		hasher:    b.Hasher,
		terminals: leaves,
		vertices:  len(leaves),
	}
	digestSize := uint64(b.Hasher.Size())
	graph := uint64(len(leaves)) * (nodeSize + digestSize)
	for _, leaf := range leaves {
		graph += uint64(len(leaf.id))
	}
	peak := graph + uint64(len(leaves))*pointerSize

	level := leaves
	for len(level) > 1 {
		parents := make([]*node, (len(level)+1)/2)
		err := b.forEach(len(parents), func(j int) error {
			left := level[2*j]
			right := left
			if 2*j+1 < len(level) {
				right = level[2*j+1]
			}
			parents[j] = newInteriorNode(b.Hasher, left, right)
			return nil
		})
		if err != nil {
			return nil, err
		}
		graph += uint64(len(parents)) * (nodeSize + digestSize)
		if ws := graph + uint64(len(level)+len(parents))*pointerSize; ws > peak {
			peak = ws
		}
		t.vertices += len(parents)
		t.height++
		level = parents
	}
	t.apex = level[0]
	t.peakMemory = peak
	return t, nil
}

// forEach calls fn for every index in [0, n), splitting the range
// across b.Workers goroutines when it is large enough. It returns the
// first error returned by fn.
func (b *Builder) forEach(n int, fn func(i int) error) error {
	if b.Workers < 2 || n < parallelThreshold {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(b.Workers)
	chunk := (n + b.Workers - 1) / b.Workers
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
