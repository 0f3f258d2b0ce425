package merkletree

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/recordseal/recordseal-go/crypto"
	"github.com/recordseal/recordseal-go/crypto/hasher"
)

var (
	// ErrMalformedPath indicates that a serialized path cannot be decoded.
	ErrMalformedPath = errors.New("[merkletree] Malformed authentication path")
	// ErrPathMismatch indicates that an authentication path does not lead
	// from the given leaf digest to the expected apex.
	ErrPathMismatch = errors.New("[merkletree] Path does not lead to the expected apex")
)

// Position tells on which side of its parent the path owner sits
// at one level of an AuthenticationPath.
type Position int

const (
	// Left means the owner is the left input of the combiner
	// and the sibling is the right input.
	Left Position = iota
	// Right means the owner is the right input of the combiner
	// and the sibling is the left input.
	Right
)

func (p Position) String() string {
	switch p {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if p != Left && p != Right {
		return nil, fmt.Errorf("%w: position %d", ErrMalformedPath, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "LEFT":
		*p = Left
	case "RIGHT":
		*p = Right
	default:
		return fmt.Errorf("%w: position %q", ErrMalformedPath, text)
	}
	return nil
}

// PathStep is one level of an AuthenticationPath.
type PathStep struct {
	Position Position
	Sibling  []byte
}

type pathStepJSON struct {
	Position Position `json:"position"`
	Sibling  string   `json:"sibling"`
}

// MarshalJSON encodes the sibling digest as hex.
func (s PathStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(pathStepJSON{
		Position: s.Position,
		Sibling:  crypto.ToHex(s.Sibling),
	})
}

// UnmarshalJSON decodes a step written by MarshalJSON.
func (s *PathStep) UnmarshalJSON(m []byte) error {
	var hs pathStepJSON
	if err := json.Unmarshal(m, &hs); err != nil {
		return err
	}
	sibling, err := crypto.FromHex(hs.Sibling)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPath, err)
	}
	s.Position = hs.Position
	s.Sibling = sibling
	return nil
}

// AuthenticationPath is the list of sibling digests, ordered from the
// leaf up to the apex, that lets a verifier recompute the apex from a
// single leaf digest. Its length equals the height of the tree it was
// located in. A self-paired node appears with its own digest as sibling.
type AuthenticationPath struct {
	RecordID  string     `json:"record_id"`
	LeafIndex int        `json:"leaf_index"`
	TreeSize  int        `json:"tree_size"`
	HasherID  string     `json:"hasher"`
	Steps     []PathStep `json:"steps"`
}

// Len returns the number of steps in ap.
func (ap *AuthenticationPath) Len() int {
	return len(ap.Steps)
}

// Recompute folds leafDigest with every step of ap and returns the
// resulting apex candidate.
func (ap *AuthenticationPath) Recompute(h hasher.TreeHasher, leafDigest []byte) []byte {
	running := leafDigest
	for _, step := range ap.Steps {
		if step.Position == Left {
			running = h.HashInterior(running, step.Sibling)
		} else {
			running = h.HashInterior(step.Sibling, running)
		}
	}
	return running
}

// Verify recomputes the apex from leafDigest using the hasher named by
// ap.HasherID, and compares it to expectedApex, which is taken from an
// ApexSnapshot. It returns nil on success.
func (ap *AuthenticationPath) Verify(leafDigest, expectedApex []byte) error {
	h, err := hasher.Hasher(ap.HasherID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPath, err)
	}
	if !Verify(h, leafDigest, ap, expectedApex) {
		return ErrPathMismatch
	}
	return nil
}

// Verify reports whether path leads from leafDigest to expectedApex
// under h. It never fails; any malformed input yields false.
func Verify(h hasher.TreeHasher, leafDigest []byte, path *AuthenticationPath, expectedApex []byte) bool {
	if h == nil || path == nil || len(leafDigest) == 0 {
		return false
	}
	return crypto.Equal(path.Recompute(h, leafDigest), expectedApex)
}

// VerifyHex is Verify over hex-encoded leaf and apex digests.
func VerifyHex(h hasher.TreeHasher, leafHex string, path *AuthenticationPath, apexHex string) bool {
	leaf, err := crypto.FromHex(leafHex)
	if err != nil {
		return false
	}
	apex, err := crypto.FromHex(apexHex)
	if err != nil {
		return false
	}
	return Verify(h, leaf, path, apex)
}
