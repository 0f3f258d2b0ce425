package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	// DefaultHashSizeByte is the digest size of the default tree hasher.
	DefaultHashSizeByte = 32
)

var (
	// ErrMalformedDigest indicates that a digest string is not valid hex.
	ErrMalformedDigest = errors.New("[crypto] Malformed hex digest")
)

// ToHex returns the lowercase hex encoding of digest d.
func ToHex(d []byte) string {
	return hex.EncodeToString(d)
}

// FromHex decodes a hex digest. Upper and lower case are both accepted.
func FromHex(s string) ([]byte, error) {
	d, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(d) == 0 {
		return nil, ErrMalformedDigest
	}
	return d, nil
}

// Equal reports whether a and b are the same digest.
func Equal(a, b []byte) bool {
	return len(a) > 0 && bytes.Equal(a, b)
}

// MakeRand returns a random slice of DefaultHashSizeByte bytes.
func MakeRand() ([]byte, error) {
	r := make([]byte, DefaultHashSizeByte)
	if _, err := rand.Read(r); err != nil {
		return nil, err
	}
	return r, nil
}
