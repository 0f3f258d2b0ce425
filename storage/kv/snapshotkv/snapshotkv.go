// Package snapshotkv stores apex snapshots in a kv.DB.
package snapshotkv

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/recordseal/recordseal-go/merkletree"
	"github.com/recordseal/recordseal-go/storage"
	"github.com/recordseal/recordseal-go/storage/kv"
)

const (
	// SnapshotIdentifier is the domain separation for snapshot keys.
	SnapshotIdentifier = 'S'
)

// Store is a storage.SnapshotStore backed by a kv.DB.
// Snapshots are JSON encoded under the key
// SnapshotIdentifier || dataset || 0x00 || big endian version,
// so a prefix scan returns a dataset's versions in order.
type Store struct {
	db kv.DB
}

var _ storage.SnapshotStore = (*Store)(nil)

// New returns a Store that keeps its snapshots in db.
// Closing the Store closes db.
func New(db kv.DB) *Store {
	return &Store{db: db}
}

// Save stores s. It returns storage.ErrVersionExists if the version is
// already stored.
func (st *Store) Save(s *merkletree.ApexSnapshot) error {
	if err := storage.CheckDataset(s.Dataset); err != nil {
		return err
	}
	key := snapshotKey(s.Dataset, s.Version)
	switch _, err := st.db.Get(key); {
	case err == nil:
		return fmt.Errorf("%w: %s version %d", storage.ErrVersionExists, s.Dataset, s.Version)
	case err != st.db.ErrNotFound():
		return err
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	wb := st.db.NewBatch()
	wb.Put(key, buf)
	return st.db.Write(wb)
}

// Load returns the snapshot of dataset at version.
func (st *Store) Load(dataset string, version uint64) (*merkletree.ApexSnapshot, error) {
	if err := storage.CheckDataset(dataset); err != nil {
		return nil, err
	}
	buf, err := st.db.Get(snapshotKey(dataset, version))
	if err == st.db.ErrNotFound() {
		return nil, fmt.Errorf("%w: %s version %d", storage.ErrNoSnapshot, dataset, version)
	}
	if err != nil {
		return nil, err
	}
	return decode(buf)
}

// Latest returns the highest stored version of dataset.
func (st *Store) Latest(dataset string) (*merkletree.ApexSnapshot, error) {
	if err := storage.CheckDataset(dataset); err != nil {
		return nil, err
	}
	iter := st.db.NewIterator(kv.BytesPrefix(datasetPrefix(dataset)))
	defer iter.Release()
	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", storage.ErrNoSnapshot, dataset)
	}
	return decode(iter.Value())
}

// List returns all snapshots of dataset ordered by version.
func (st *Store) List(dataset string) ([]*merkletree.ApexSnapshot, error) {
	if err := storage.CheckDataset(dataset); err != nil {
		return nil, err
	}
	prefix := datasetPrefix(dataset)
	iter := st.db.NewIterator(kv.BytesPrefix(prefix))
	defer iter.Release()
	var snapshots []*merkletree.ApexSnapshot
	for iter.Next() {
		if len(iter.Key()) != len(prefix)+8 {
			return nil, kv.ErrBadBufferLength
		}
		s, err := decode(iter.Value())
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, iter.Error()
}

// Close closes the underlying database.
func (st *Store) Close() error {
	return st.db.Close()
}

func decode(buf []byte) (*merkletree.ApexSnapshot, error) {
	s := new(merkletree.ApexSnapshot)
	if err := json.Unmarshal(buf, s); err != nil {
		return nil, err
	}
	return s, nil
}

func datasetPrefix(dataset string) []byte {
	key := make([]byte, 0, 1+len(dataset)+1)
	key = append(key, SnapshotIdentifier)
	key = append(key, dataset...)
	return append(key, 0)
}

func snapshotKey(dataset string, version uint64) []byte {
	key := datasetPrefix(dataset)
	return binary.BigEndian.AppendUint64(key, version)
}
