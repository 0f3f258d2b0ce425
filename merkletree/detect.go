package merkletree

import (
	"github.com/recordseal/recordseal-go/crypto"
)

// Result is the outcome of comparing a stored apex with a rebuilt one.
type Result int

const (
	// Mismatch means the record set changed since the apex was stored,
	// or one of the apexes is not a valid digest.
	Mismatch Result = iota
	// Match means both apexes are the same digest.
	Match
)

func (r Result) String() string {
	if r == Match {
		return "MATCH"
	}
	return "MISMATCH"
}

// Detect compares a stored hex apex with a rebuilt one.
// Hex case is ignored. Malformed input is a Mismatch.
func Detect(storedApex, rebuiltApex string) Result {
	stored, err := crypto.FromHex(storedApex)
	if err != nil {
		return Mismatch
	}
	rebuilt, err := crypto.FromHex(rebuiltApex)
	if err != nil {
		return Mismatch
	}
	if crypto.Equal(stored, rebuilt) {
		return Match
	}
	return Mismatch
}
