// Package sign implements the ed25519 keys used to sign published
// apex snapshots.
package sign

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/ed25519"
)

const (
	// PrivateKeySize is the size of a private key in bytes.
	PrivateKeySize = 64
	// PublicKeySize is the size of a public key in bytes.
	PublicKeySize = 32
)

// PrivateKey is an ed25519 private key.
type PrivateKey ed25519.PrivateKey

// PublicKey is an ed25519 public key.
type PublicKey ed25519.PublicKey

// GenerateKey creates a new key pair using entropy from rnd.
// If rnd is nil, crypto/rand.Reader is used.
func GenerateKey(rnd io.Reader) (PrivateKey, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	_, sk, err := ed25519.GenerateKey(rnd)
	return PrivateKey(sk), err
}

// Sign signs the message with the private key.
func (key PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(key), message)
}

// Public returns the public key corresponding to key.
func (key PrivateKey) Public() (PublicKey, bool) {
	pk, ok := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
	return PublicKey(pk), ok
}

// Verify reports whether sig is a valid signature of message by pk.
func (pk PublicKey) Verify(message, sig []byte) bool {
	if len(pk) != PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), message, sig)
}
