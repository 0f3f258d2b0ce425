package application

import (
	"fmt"
	"os"

	"github.com/recordseal/recordseal-go/crypto/sign"
	"github.com/recordseal/recordseal-go/utils"
)

// AppConfig provides an abstraction of the
// underlying encoding format for the configs.
type AppConfig interface {
	Load(file, encoding string) error
	Save() error
	GetPath() string
}

// CommonConfig is the generic type used to specify the configuration of
// any recordseal executable. It contains some common configuration
// values including the file path, logger configuration, and config
// loader.
type CommonConfig struct {
	Path     string        `toml:"-"`
	Logger   *LoggerConfig `toml:"logger"`
	Encoding string        `toml:"-"`
	loader   ConfigLoader
}

// NewCommonConfig initializes an application's config file path,
// its loader for the given encoding, and the logger configuration.
// Note: This constructor must be called in each Load() method
// implementation of an AppConfig.
func NewCommonConfig(file, encoding string, logger *LoggerConfig) CommonConfig {
	return CommonConfig{
		Path:     file,
		Logger:   logger,
		Encoding: encoding,
		loader:   newConfigLoader(encoding),
	}
}

// GetLoader returns the config's loader.
func (conf *CommonConfig) GetLoader() ConfigLoader {
	if conf.loader == nil {
		conf.loader = newConfigLoader(conf.Encoding)
	}
	return conf.loader
}

// GetPath returns the path of the config file.
func (conf *CommonConfig) GetPath() string {
	return conf.Path
}

// LoadSigningPubKey loads a public signing key at the given path
// specified in the given config file.
// If there is any parsing error or the key is malformed,
// LoadSigningPubKey() returns an error with a nil key.
func LoadSigningPubKey(path, file string) (sign.PublicKey, error) {
	signPath := utils.ResolvePath(path, file)
	signPubKey, err := os.ReadFile(signPath)
	if err != nil {
		return nil, fmt.Errorf("Cannot read signing public-key: %v", err)
	}
	if len(signPubKey) != sign.PublicKeySize {
		return nil, fmt.Errorf("Signing public-key must be %d bytes (got %d)", sign.PublicKeySize, len(signPubKey))
	}
	return signPubKey, nil
}

// LoadSigningKey loads a private signing key at the given path
// specified in the given config file.
func LoadSigningKey(path, file string) (sign.PrivateKey, error) {
	signPath := utils.ResolvePath(path, file)
	signKey, err := os.ReadFile(signPath)
	if err != nil {
		return nil, fmt.Errorf("Cannot read signing key: %v", err)
	}
	if len(signKey) != sign.PrivateKeySize {
		return nil, fmt.Errorf("Signing key must be %d bytes (got %d)", sign.PrivateKeySize, len(signKey))
	}
	return signKey, nil
}

// WriteSigningKeyPair generates a signing key pair and writes it to
// privPath and pubPath. Existing files are never overwritten.
func WriteSigningKeyPair(privPath, pubPath string) (sign.PublicKey, error) {
	sk, err := sign.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	pk, ok := sk.Public()
	if !ok {
		return nil, fmt.Errorf("Cannot derive signing public-key")
	}
	if err := utils.WriteFile(privPath, sk, 0600); err != nil {
		return nil, err
	}
	if err := utils.WriteFile(pubPath, pk, 0644); err != nil {
		return nil, err
	}
	return pk, nil
}
