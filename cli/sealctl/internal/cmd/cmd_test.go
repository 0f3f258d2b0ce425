package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recordseal/recordseal-go/dataset"
	"github.com/recordseal/recordseal-go/internal"
	"github.com/recordseal/recordseal-go/merkletree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawReviews = `{"reviewerID":"A1","asin":"B01","unixReviewTime":1,"overall":5,"reviewText":"fine"}
{"reviewerID":"A2","asin":"B01","unixReviewTime":2,"overall":3}
{"reviewerID":"A3","asin":"B02","unixReviewTime":3,"overall":4}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestSealctl(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.toml")

	out, err := execute(t, "init", "--dir", dir, "--keys", "--backend", "file")
	require.NoError(t, err)
	assert.Contains(t, out, conf)
	assert.FileExists(t, filepath.Join(dir, "sign.priv"))
	assert.FileExists(t, filepath.Join(dir, "sign.pub"))

	// init refuses to overwrite the config
	_, err = execute(t, "init", "--dir", dir, "--keys=false")
	assert.Error(t, err)

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(dataset.RawPath(dataDir, "reviews"), []byte(rawReviews), 0644))

	out, err = execute(t, "import", "reviews", "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "Valid records:         3")

	out, err = execute(t, "build", "reviews", "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "Height:      2")
	assert.Contains(t, out, "Vertices:    6")
	assert.Contains(t, out, "Published reviews version 1")
	assert.FileExists(t, filepath.Join(dir, "roots", "reviews_root_v1.json"))

	out, err = execute(t, "check", "reviews", "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "MATCH")

	proofFile := filepath.Join(dir, "proof.json")
	out, err = execute(t, "locate", "reviews", "R000001", "--config", conf, "--out", proofFile)
	require.NoError(t, err)
	assert.Contains(t, out, "step  1: RIGHT")
	assert.Contains(t, out, "step  2: LEFT")
	assert.Contains(t, out, "Proof: VALID")

	out, err = execute(t, "verify", proofFile, "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "Proof: VALID")

	// a proof whose own apex is its leaf digest is checked against the
	// published snapshot, not against itself
	digest := strings.Repeat("ab", 32)
	forged := filepath.Join(dir, "forged.json")
	require.NoError(t, os.WriteFile(forged, []byte(`{"dataset":"reviews","version":1,`+
		`"apex":"`+digest+`","leaf_digest":"`+digest+`",`+
		`"path":{"record_id":"R000009","leaf_index":0,"tree_size":1,"hasher":"SHA-256","steps":[]}}`), 0644))
	out, err = execute(t, "verify", forged, "--config", conf)
	assert.ErrorIs(t, err, merkletree.ErrPathMismatch)
	assert.Contains(t, out, "Proof: INVALID")

	_, err = execute(t, "verify", proofFile, "--apex", digest)
	assert.ErrorIs(t, err, merkletree.ErrPathMismatch)

	out, err = execute(t, "history", "reviews", "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "Chain: VALID")

	// tamper with the processed dataset
	records, err := dataset.Load(dataDir, "reviews")
	require.NoError(t, err)
	records[0]["reviewText"] = "great"
	require.NoError(t, dataset.Save(dataDir, "reviews", records))

	out, err = execute(t, "check", "reviews", "--config", conf)
	assert.ErrorIs(t, err, errIntegrity)
	assert.Contains(t, out, "MISMATCH")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, internal.Version)
}
