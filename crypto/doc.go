// Package crypto contains some cryptographic routines shared by the
// recordseal packages, to:
// - convert digests to and from their lowercase hex form (`ToHex`, `FromHex`)
// - compare digests (`Equal`)
// - generate a random slice of bytes (`MakeRand`).
//
// The tree hash functions live in the hasher subpackages and the
// snapshot signing keys in the sign subpackage.
package crypto
