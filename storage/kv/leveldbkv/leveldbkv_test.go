package leveldbkv

import (
	"path/filepath"
	"testing"

	"github.com/recordseal/recordseal-go/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	db, err := OpenMemDB()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, db.Delete([]byte("a")))
	_, err = db.Get([]byte("a"))
	assert.Equal(t, db.ErrNotFound(), err)
}

func TestBatchAndPrefixIterator(t *testing.T) {
	db, err := OpenMemDB()
	require.NoError(t, err)
	defer db.Close()

	wb := db.NewBatch()
	wb.Put([]byte("p1"), []byte("x"))
	wb.Put([]byte("p2"), []byte("y"))
	wb.Put([]byte("q1"), []byte("z"))
	require.NoError(t, db.Write(wb))

	iter := db.NewIterator(kv.BytesPrefix([]byte("p")))
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"p1", "p2"}, keys)
}

func TestOpenDBPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	db, err := OpenDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = OpenDB(dir)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
