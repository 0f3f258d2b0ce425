// Package record defines the records sealed by the hash tree and their
// canonical leaf encoding.
//
// A Record is an arbitrary set of named fields, one of which carries the
// record's stable identifier. The canonical encoding is the RFC 8785
// JSON Canonicalization Scheme: member names are sorted by their UTF-16
// code units, numbers are normalized, and no insignificant whitespace is
// emitted. Two records with equal fields therefore always encode to the
// same bytes, whatever order their fields were inserted in. Every field,
// the identifier included, takes part in the encoding.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
)

// DefaultIDField is the name of the identifier field assigned on import.
const DefaultIDField = "ReviewID"

var (
	// ErrEncoding indicates that a record cannot be canonically serialized.
	ErrEncoding = errors.New("[record] Record cannot be canonically encoded")
	// ErrMissingID indicates that a record has no usable identifier.
	// It wraps ErrEncoding.
	ErrMissingID = fmt.Errorf("%w: no string identifier", ErrEncoding)
)

// MaxSafeInteger is the largest integer magnitude a record may carry.
// Canonical numbers are IEEE 754 doubles, so larger integers would be
// rounded and two distinct values could encode to the same bytes.
const MaxSafeInteger = 1<<53 - 1

// Record is one record of a dataset.
type Record map[string]interface{}

// ID returns the record's identifier stored under field.
// It returns false if the field is absent or is not a non-empty string.
func (r Record) ID(field string) (string, bool) {
	v, ok := r[field]
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Fields returns the record's field names in sorted order.
func (r Record) Fields() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Encode returns the canonical encoding of r.
// Any value that has no JSON representation (NaN, infinities,
// channels, functions, ...) makes Encode fail with an error wrapping
// ErrEncoding, and so does an integer whose magnitude exceeds
// MaxSafeInteger.
func Encode(r Record) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrEncoding)
	}
	for name, v := range r {
		if err := checkIntegers(v); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrEncoding, name, err)
		}
	}
	raw, err := json.Marshal(map[string]interface{}(r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return canonical, nil
}

var maxSafe = big.NewInt(MaxSafeInteger)

// checkIntegers walks v and fails on the first integer that cannot be
// represented exactly as a double.
func checkIntegers(v interface{}) error {
	switch v := v.(type) {
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return nil
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return fmt.Errorf("invalid number %q", s)
		}
		return checkMagnitude(n, s)
	case int:
		return checkMagnitude(big.NewInt(int64(v)), v)
	case int64:
		return checkMagnitude(big.NewInt(v), v)
	case uint:
		return checkMagnitude(new(big.Int).SetUint64(uint64(v)), v)
	case uint64:
		return checkMagnitude(new(big.Int).SetUint64(v), v)
	case map[string]interface{}:
		for _, e := range v {
			if err := checkIntegers(e); err != nil {
				return err
			}
		}
	case Record:
		return checkIntegers(map[string]interface{}(v))
	case []interface{}:
		for _, e := range v {
			if err := checkIntegers(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkMagnitude(n *big.Int, v interface{}) error {
	if new(big.Int).Abs(n).Cmp(maxSafe) > 0 {
		return fmt.Errorf("integer %v exceeds the exact double range", v)
	}
	return nil
}
