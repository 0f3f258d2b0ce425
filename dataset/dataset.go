// Package dataset reads, normalizes and writes the record sets that are
// sealed by the hash tree.
//
// A dataset named N lives under a data directory as raw/N.json, a file
// of JSON lines as delivered by the source, and processed/N_proc.json,
// the normalized JSON array the tree is built from.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/recordseal/recordseal-go/record"
)

var (
	// ErrNotFound indicates that a dataset file does not exist.
	ErrNotFound = errors.New("[dataset] Dataset not found")
	// ErrMalformed indicates that a dataset file is not valid JSON of the
	// expected shape.
	ErrMalformed = errors.New("[dataset] Malformed dataset")
)

// RawPath returns the path of the raw JSON lines file of name.
func RawPath(dataDir, name string) string {
	return filepath.Join(dataDir, "raw", name+".json")
}

// ProcessedPath returns the path of the processed JSON array of name.
func ProcessedPath(dataDir, name string) string {
	return filepath.Join(dataDir, "processed", name+"_proc.json")
}

// ReadLines decodes up to limit JSON objects from r, one per line.
// A limit below 1 reads every object. Numbers are kept as json.Number
// so that they encode back to the same text.
func ReadLines(r io.Reader, limit int) ([]record.Record, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	var records []record.Record
	for limit < 1 || len(records) < limit {
		var rec record.Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, len(records), err)
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformed, len(records))
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadRaw reads up to limit records of the raw file of name.
func ReadRaw(dataDir, name string, limit int) ([]record.Record, error) {
	f, err := open(RawPath(dataDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f, limit)
}

// Load reads the processed records of name.
func Load(dataDir, name string) ([]record.Record, error) {
	f, err := open(ProcessedPath(dataDir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a JSON array of records from r.
func Decode(r io.Reader) ([]record.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []record.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformed, i)
		}
	}
	return records, nil
}

// Save writes records as the processed dataset of name, replacing any
// earlier processed file.
func Save(dataDir, name string, records []record.Record) error {
	path := ProcessedPath(dataDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Encode writes records to w as a compact JSON array.
// HTML characters are not escaped.
func Encode(w io.Writer, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return f, err
}
