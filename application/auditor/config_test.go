package auditor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/recordseal/recordseal-go/application"
	"github.com/recordseal/recordseal-go/crypto/hasher"
	"github.com/recordseal/recordseal-go/record"
	"github.com/recordseal/recordseal-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	return file
}

func TestConfigDefaults(t *testing.T) {
	file := writeConfig(t, `data_dir = "data"`)
	conf := new(Config)
	require.NoError(t, conf.Load(file, "toml"))

	dir := filepath.Dir(file)
	assert.Equal(t, filepath.Join(dir, "data"), conf.DataDir)
	assert.Equal(t, record.DefaultIDField, conf.IDField)
	assert.Equal(t, hasher.DefaultHasher, conf.Hasher)
	assert.Equal(t, runtime.NumCPU(), conf.Workers)
	assert.Equal(t, BackendLevelDB, conf.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "data", "snapshots"), conf.Store.Path)
	assert.Nil(t, conf.SigningKey())
	assert.Nil(t, conf.SigningPubKey())
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	conf := NewConfig(file, &application.LoggerConfig{
		Environment: "production",
		Path:        "sealctl.log",
	})
	conf.Hasher = "SHA3-256"
	conf.Store = &StoreConfig{Backend: BackendFile, Path: "roots"}
	conf.SignKeyPath = "sign.priv"
	require.NoError(t, conf.Save())
	assert.ErrorIs(t, conf.Save(), utils.ErrFileExists)

	pk, err := application.WriteSigningKeyPair(filepath.Join(dir, "sign.priv"), filepath.Join(dir, "sign.pub"))
	require.NoError(t, err)

	loaded := new(Config)
	require.NoError(t, loaded.Load(file, "toml"))
	assert.Equal(t, "SHA3-256", loaded.Hasher)
	assert.Equal(t, BackendFile, loaded.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "roots"), loaded.Store.Path)
	assert.Equal(t, filepath.Join(dir, "sealctl.log"), loaded.Logger.Path)
	assert.Equal(t, "production", loaded.Logger.Environment)
	require.NotNil(t, loaded.SigningKey())
	assert.Equal(t, pk, loaded.SigningPubKey())
}

func TestConfigErrors(t *testing.T) {
	for name, body := range map[string]string{
		"hasher":  "data_dir = \"d\"\nhasher = \"MD5\"",
		"workers": "data_dir = \"d\"\nworkers = -1",
		"backend": "data_dir = \"d\"\n[store]\nbackend = \"redis\"",
		"datadir": "data_dir = \"\"",
	} {
		conf := new(Config)
		assert.ErrorIs(t, conf.Load(writeConfig(t, body), "toml"), ErrConfig, name)
	}

	conf := new(Config)
	assert.Error(t, conf.Load(writeConfig(t, "data_dir = \"d\"\nunknown = 1"), "toml"))
	assert.Error(t, conf.Load(writeConfig(t, "data_dir = \"d\"\nsign_key_path = \"nope\""), "toml"))
	assert.Error(t, conf.Load(filepath.Join(t.TempDir(), "missing.toml"), "toml"))
}
