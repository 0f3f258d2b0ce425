package auditor

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/recordseal/recordseal-go/application"
	"github.com/recordseal/recordseal-go/crypto/hasher"
	"github.com/recordseal/recordseal-go/crypto/sign"
	"github.com/recordseal/recordseal-go/record"
	"github.com/recordseal/recordseal-go/utils"
)

// Store backends.
const (
	BackendLevelDB = "leveldb"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// ErrConfig indicates an invalid auditor configuration.
var ErrConfig = errors.New("[auditor] Invalid configuration")

// StoreConfig selects where apex snapshots are kept.
type StoreConfig struct {
	// Backend is one of "leveldb", "file" or "memory".
	Backend string `toml:"backend"`
	// Path is the leveldb directory or the snapshot file directory.
	Path string `toml:"path,omitempty"`
}

// Config is the configuration of an auditor, read from a TOML file.
type Config struct {
	application.CommonConfig

	// DataDir holds the raw/ and processed/ dataset directories.
	DataDir string `toml:"data_dir"`
	// IDField names the record field carrying the identifier.
	IDField string `toml:"id_field"`
	// Hasher is the ID of the tree hasher, e.g. "SHA-256".
	Hasher string `toml:"hasher"`
	// Workers is the number of goroutines used to build a tree.
	// 0 selects the number of CPUs.
	Workers int `toml:"workers"`
	// SignKeyPath is the optional ed25519 private key that signs
	// published snapshots.
	SignKeyPath string `toml:"sign_key_path,omitempty"`
	// SignPubKeyPath is the optional ed25519 public key snapshot
	// signatures are verified with.
	SignPubKeyPath string `toml:"sign_pubkey_path,omitempty"`

	// MetricsTextfile, if set, receives the metrics of the auditor in
	// the Prometheus text format when it is closed.
	MetricsTextfile string `toml:"metrics_textfile,omitempty"`

	Store *StoreConfig `toml:"store"`

	signKey    sign.PrivateKey
	signPubKey sign.PublicKey
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig returns the default configuration of an auditor whose
// config file is file. Relative paths are kept relative so that the
// saved file can be moved together with its data.
func NewConfig(file string, logger *application.LoggerConfig) *Config {
	return &Config{
		CommonConfig: application.NewCommonConfig(file, "toml", logger),
		DataDir:      "data",
		IDField:      record.DefaultIDField,
		Hasher:       hasher.DefaultHasher,
		Store: &StoreConfig{
			Backend: BackendLevelDB,
			Path:    "snapshots.db",
		},
	}
}

// Load initializes the configuration from the given file, resolves its
// relative paths, and reads the signing keys it names.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	return conf.init()
}

// Save writes the configuration to its file. An existing file is
// never overwritten.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// SigningKey returns the key snapshots are signed with, or nil.
func (conf *Config) SigningKey() sign.PrivateKey {
	return conf.signKey
}

// SigningPubKey returns the key snapshot signatures are checked with,
// or nil. If only a private key is configured, its public half is used.
func (conf *Config) SigningPubKey() sign.PublicKey {
	return conf.signPubKey
}

func (conf *Config) init() error {
	file := conf.GetPath()
	if conf.IDField == "" {
		conf.IDField = record.DefaultIDField
	}
	if conf.Hasher == "" {
		conf.Hasher = hasher.DefaultHasher
	}
	if _, err := hasher.Hasher(conf.Hasher); err != nil {
		return fmt.Errorf("%w: hasher %q, known are %s", ErrConfig, conf.Hasher,
			strings.Join(hasher.Registered(), ", "))
	}
	if conf.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrConfig)
	}
	if conf.Workers == 0 {
		conf.Workers = runtime.NumCPU()
	}
	if conf.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrConfig)
	}
	conf.DataDir = utils.ResolvePath(conf.DataDir, file)

	if conf.Store == nil {
		conf.Store = &StoreConfig{Backend: BackendLevelDB}
	}
	switch conf.Store.Backend {
	case BackendLevelDB, BackendFile:
		if conf.Store.Path == "" {
			conf.Store.Path = filepath.Join(conf.DataDir, "snapshots")
		}
		conf.Store.Path = utils.ResolvePath(conf.Store.Path, file)
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrConfig, conf.Store.Backend)
	}

	if conf.MetricsTextfile != "" {
		conf.MetricsTextfile = utils.ResolvePath(conf.MetricsTextfile, file)
	}

	if conf.Logger != nil && conf.Logger.Path != "" {
		conf.Logger.Path = utils.ResolvePath(conf.Logger.Path, file)
	}

	if conf.SignKeyPath != "" {
		sk, err := application.LoadSigningKey(conf.SignKeyPath, file)
		if err != nil {
			return err
		}
		conf.signKey = sk
		conf.signPubKey, _ = sk.Public()
	}
	if conf.SignPubKeyPath != "" {
		pk, err := application.LoadSigningPubKey(conf.SignPubKeyPath, file)
		if err != nil {
			return err
		}
		conf.signPubKey = pk
	}
	return nil
}
