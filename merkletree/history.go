package merkletree

import (
	"errors"
	"fmt"
	"time"

	"github.com/recordseal/recordseal-go/crypto/sign"
)

var (
	// ErrSnapshotNotFound indicates that a History holds no snapshot
	// of the requested version.
	ErrSnapshotNotFound = errors.New("[merkletree] Snapshot not found")
	// ErrDatasetMismatch indicates that a snapshot of another dataset
	// was appended to a History.
	ErrDatasetMismatch = errors.New("[merkletree] Snapshot belongs to another dataset")
)

// History is the ordered chain of ApexSnapshots published for one
// dataset. Every appended snapshot must extend the latest one, except
// the first, which anchors the chain.
// A History is not safe for concurrent use.
type History struct {
	dataset   string
	snapshots []*ApexSnapshot
}

// NewHistory returns an empty History of dataset.
func NewHistory(dataset string) *History {
	return &History{dataset: dataset}
}

// LoadHistory rebuilds a History from snapshots ordered by version and
// checks that they form a valid hash chain.
func LoadHistory(dataset string, snapshots []*ApexSnapshot) (*History, error) {
	h := NewHistory(dataset)
	for _, s := range snapshots {
		if err := h.Append(s); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Dataset returns the name of the dataset h belongs to.
func (h *History) Dataset() string {
	return h.dataset
}

// Len returns the number of snapshots in h.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Latest returns the most recent snapshot, or nil if h is empty.
func (h *History) Latest() *ApexSnapshot {
	if len(h.snapshots) == 0 {
		return nil
	}
	return h.snapshots[len(h.snapshots)-1]
}

// Get returns the snapshot of the given version.
func (h *History) Get(version uint64) (*ApexSnapshot, error) {
	for _, s := range h.snapshots {
		if s.Version == version {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s version %d", ErrSnapshotNotFound, h.dataset, version)
}

// Snapshots returns the snapshots of h from the oldest to the latest.
func (h *History) Snapshots() []*ApexSnapshot {
	return append([]*ApexSnapshot{}, h.snapshots...)
}

// Append adds s to the end of the chain.
func (h *History) Append(s *ApexSnapshot) error {
	if s.Dataset != h.dataset {
		return fmt.Errorf("%w: %q is not %q", ErrDatasetMismatch, s.Dataset, h.dataset)
	}
	if latest := h.Latest(); latest != nil && !s.VerifyHashChain(latest) {
		return fmt.Errorf("%w: version %d does not extend version %d",
			ErrBrokenChain, s.Version, latest.Version)
	}
	h.snapshots = append(h.snapshots, s)
	return nil
}

// Publish creates the next snapshot of t, signs it with key if key is
// not nil, and appends it to h.
func (h *History) Publish(t *Tree, key sign.PrivateKey, now time.Time) (*ApexSnapshot, error) {
	s, err := NewApexSnapshot(t, h.dataset, h.Latest(), now)
	if err != nil {
		return nil, err
	}
	if key != nil {
		if err := s.Sign(key); err != nil {
			return nil, err
		}
	}
	if err := h.Append(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Verify checks the hash chain of the whole history and, if pk is not
// nil, the signature of every snapshot. It returns the first failure.
func (h *History) Verify(pk sign.PublicKey) error {
	for i, s := range h.snapshots {
		if i > 0 && !s.VerifyHashChain(h.snapshots[i-1]) {
			return fmt.Errorf("%w: version %d", ErrBrokenChain, s.Version)
		}
		if pk != nil {
			if err := s.VerifySignature(pk); err != nil {
				return err
			}
		}
	}
	return nil
}
