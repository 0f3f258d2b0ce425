package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/recordseal/recordseal-go/record"
)

// Schema describes how raw records are normalized.
//
// Every field of Defaults that a record lacks is set to its default.
// A present field is coerced to the kind of its default: strings are
// trimmed, float64 and int64 fields are parsed from numbers or numeric
// strings (falling back to the default), bool fields take the truth
// value of whatever they hold, and map fields that are not objects are
// replaced by an empty object.
type Schema struct {
	Defaults map[string]interface{}
	// KeyFields form the composite key used to drop duplicates.
	// Only the first record of each key is kept.
	KeyFields []string
	// IDField receives the assigned identifier.
	IDField string
	// IDFormat formats the zero-based position of a kept record into
	// its identifier.
	IDFormat string
}

// ReviewSchema is the schema of product review datasets.
func ReviewSchema() Schema {
	return Schema{
		Defaults: map[string]interface{}{
			"overall":        float64(0),
			"vote":           "",
			"verified":       false,
			"reviewTime":     "",
			"reviewerID":     "",
			"asin":           "",
			"style":          map[string]interface{}{},
			"reviewerName":   "",
			"reviewText":     "",
			"summary":        "",
			"unixReviewTime": int64(0),
		},
		KeyFields: []string{"reviewerID", "asin", "unixReviewTime"},
		IDField:   record.DefaultIDField,
		IDFormat:  "R%06d",
	}
}

// Stats summarizes a Normalize run.
type Stats struct {
	TotalLoaded          int `json:"total_loaded"`
	ValidRecords         int `json:"valid_records"`
	DuplicatesRemoved    int `json:"duplicates_removed"`
	MissingFieldsHandled int `json:"missing_fields_handled"`
	UniqueIDsGenerated   int `json:"unique_ids_generated"`
}

// Normalize fills, coerces and deduplicates raw, then assigns
// identifiers in order. raw is modified in place.
func (s Schema) Normalize(raw []record.Record) ([]record.Record, Stats, error) {
	stats := Stats{TotalLoaded: len(raw)}
	seen := make(map[string]struct{}, len(raw))
	kept := make([]record.Record, 0, len(raw))
	for _, rec := range raw {
		for field, def := range s.Defaults {
			v, ok := rec[field]
			if !ok {
				rec[field] = cloneDefault(def)
				stats.MissingFieldsHandled++
				continue
			}
			rec[field] = coerce(v, def)
		}
		key, err := s.compositeKey(rec)
		if err != nil {
			return nil, Stats{}, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}
	for i, rec := range kept {
		rec[s.IDField] = fmt.Sprintf(s.IDFormat, i)
	}
	stats.ValidRecords = len(kept)
	stats.DuplicatesRemoved = len(raw) - len(kept)
	stats.UniqueIDsGenerated = len(kept)
	return kept, stats, nil
}

func (s Schema) compositeKey(rec record.Record) (string, error) {
	parts := make([]interface{}, len(s.KeyFields))
	for i, field := range s.KeyFields {
		parts[i] = rec[field]
	}
	key, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("%w: composite key: %v", ErrMalformed, err)
	}
	return string(key), nil
}

func cloneDefault(def interface{}) interface{} {
	if _, ok := def.(map[string]interface{}); ok {
		return map[string]interface{}{}
	}
	return def
}

func coerce(v, def interface{}) interface{} {
	switch def.(type) {
	case string:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return v
	case float64:
		if f, ok := toFloat(v); ok {
			return f
		}
	case int64:
		if n, ok := toInt(v); ok {
			return n
		}
	case bool:
		return truthy(v)
	case map[string]interface{}:
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	default:
		return v
	}
	return cloneDefault(def)
}

// toFloat converts numbers, bools and numeric strings to a finite float.
func toFloat(v interface{}) (f float64, ok bool) {
	defer func() {
		if ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			f, ok = 0, false
		}
	}()
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// toInt converts numbers, bools and numeric strings to an int64.
// Integer literals are parsed exactly; fractional values are truncated
// and values outside the int64 range are rejected.
func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	f, ok := toFloat(v)
	if !ok || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case json.Number:
		f, err := b.Float64()
		return err != nil || f != 0
	case float64:
		return b != 0
	case int64:
		return b != 0
	case int:
		return b != 0
	case []interface{}:
		return len(b) > 0
	case map[string]interface{}:
		return len(b) > 0
	}
	return true
}
