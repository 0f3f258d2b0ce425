// Package filestore stores apex snapshots as JSON files, one file per
// version, named {dataset}_root_v{version}.json.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/recordseal/recordseal-go/merkletree"
	"github.com/recordseal/recordseal-go/storage"
	"github.com/recordseal/recordseal-go/utils"
)

// Store is a storage.SnapshotStore writing into one directory.
type Store struct {
	dir string
}

var _ storage.SnapshotStore = (*Store)(nil)

// Open returns a Store over dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory of st.
func (st *Store) Dir() string {
	return st.dir
}

// FileName returns the file name of version of dataset.
func FileName(dataset string, version uint64) string {
	return fmt.Sprintf("%s_root_v%d.json", dataset, version)
}

// Save writes s to a new file. Existing files are never overwritten.
func (st *Store) Save(s *merkletree.ApexSnapshot) error {
	if err := storage.CheckDataset(s.Dataset); err != nil {
		return err
	}
	buf, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	name := filepath.Join(st.dir, FileName(s.Dataset, s.Version))
	err = utils.WriteFile(name, append(buf, '\n'), 0644)
	if errors.Is(err, utils.ErrFileExists) {
		return fmt.Errorf("%w: %s", storage.ErrVersionExists, name)
	}
	return err
}

// Load reads version of dataset.
func (st *Store) Load(dataset string, version uint64) (*merkletree.ApexSnapshot, error) {
	if err := storage.CheckDataset(dataset); err != nil {
		return nil, err
	}
	return st.read(FileName(dataset, version))
}

// Latest reads the highest version of dataset.
func (st *Store) Latest(dataset string) (*merkletree.ApexSnapshot, error) {
	versions, err := st.versions(dataset)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrNoSnapshot, dataset)
	}
	return st.read(FileName(dataset, versions[len(versions)-1]))
}

// List reads all versions of dataset in order.
func (st *Store) List(dataset string) ([]*merkletree.ApexSnapshot, error) {
	versions, err := st.versions(dataset)
	if err != nil {
		return nil, err
	}
	snapshots := make([]*merkletree.ApexSnapshot, 0, len(versions))
	for _, v := range versions {
		s, err := st.read(FileName(dataset, v))
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// Close is a no-op.
func (st *Store) Close() error {
	return nil
}

func (st *Store) read(name string) (*merkletree.ApexSnapshot, error) {
	buf, err := os.ReadFile(filepath.Join(st.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNoSnapshot, name)
	}
	if err != nil {
		return nil, err
	}
	s := new(merkletree.ApexSnapshot)
	if err := json.Unmarshal(buf, s); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// versions returns the sorted versions of dataset found in st.dir.
func (st *Store) versions(dataset string) ([]uint64, error) {
	if err := storage.CheckDataset(dataset); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, err
	}
	prefix := dataset + "_root_v"
	var versions []uint64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSuffix(name[len(prefix):], ".json"), 10, 64)
		// names such as a_root_v01.json are not written by Save
		if err != nil || FileName(dataset, v) != name {
			continue
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}
