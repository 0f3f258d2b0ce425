package merkletree

import (
	"fmt"
	"testing"

	"github.com/recordseal/recordseal-go/record"
)

// makeRecords returns n records R0..R(n-1) whose field v is i+1.
func makeRecords(n int) []record.Record {
	records := make([]record.Record, n)
	for i := range records {
		records[i] = record.Record{
			record.DefaultIDField: fmt.Sprintf("R%d", i),
			"v":                   i + 1,
		}
	}
	return records
}

func buildTree(t *testing.T, records []record.Record) *Tree {
	t.Helper()
	tree, err := NewBuilder(nil, "", 1).Build(records)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}
