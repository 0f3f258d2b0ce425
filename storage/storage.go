// Package storage defines where published apex snapshots are kept.
// The record tree itself is never persisted; a snapshot is all that is
// needed to check a rebuilt tree later.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/recordseal/recordseal-go/merkletree"
)

var (
	// ErrNoSnapshot indicates that a dataset has no stored snapshot,
	// or none of the requested version.
	ErrNoSnapshot = errors.New("[storage] No snapshot")
	// ErrVersionExists indicates an attempt to overwrite a stored snapshot.
	ErrVersionExists = errors.New("[storage] Snapshot version already stored")
	// ErrBadDataset indicates a dataset name that cannot be stored.
	ErrBadDataset = errors.New("[storage] Bad dataset name")
)

// SnapshotStore keeps the ApexSnapshots of any number of datasets.
// Stored snapshots are immutable: Save never replaces an existing version.
type SnapshotStore interface {
	// Save stores s as version s.Version of s.Dataset.
	Save(s *merkletree.ApexSnapshot) error
	// Load returns the given version of dataset.
	Load(dataset string, version uint64) (*merkletree.ApexSnapshot, error)
	// Latest returns the highest stored version of dataset.
	Latest(dataset string) (*merkletree.ApexSnapshot, error)
	// List returns every stored snapshot of dataset ordered by version.
	List(dataset string) ([]*merkletree.ApexSnapshot, error)
	Close() error
}

// CheckDataset returns ErrBadDataset if name cannot be used as a
// dataset name. Names must be non-empty and must not contain path
// separators or NUL bytes.
func CheckDataset(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrBadDataset, name)
	}
	return nil
}

// LoadHistory loads every snapshot of dataset from st and checks that
// they form a valid hash chain.
func LoadHistory(st SnapshotStore, dataset string) (*merkletree.History, error) {
	snapshots, err := st.List(dataset)
	if err != nil {
		return nil, err
	}
	return merkletree.LoadHistory(dataset, snapshots)
}
