package merkletree

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/recordseal/recordseal-go/crypto/hasher/sha3"
	"github.com/recordseal/recordseal-go/record"
)

func sum(ms ...[]byte) []byte {
	h := sha256.New()
	for _, m := range ms {
		h.Write(m)
	}
	return h.Sum(nil)
}

func TestThreeRecords(t *testing.T) {
	tree := buildTree(t, makeRecords(3))

	l0 := sum([]byte(`{"ReviewID":"R0","v":1}`))
	l1 := sum([]byte(`{"ReviewID":"R1","v":2}`))
	l2 := sum([]byte(`{"ReviewID":"R2","v":3}`))
	p0 := sum(l0, l1)
	p1 := sum(l2, l2)
	expect := sum(p0, p1)

	if !bytes.Equal(tree.ApexDigest(), expect) {
		t.Fatal("Wrong apex",
			"expect", hex.EncodeToString(expect),
			"got", tree.Apex())
	}
	if tree.Height() != 2 {
		t.Error("Wrong height", "expect", 2, "got", tree.Height())
	}
	if tree.Vertices() != 6 {
		t.Error("Wrong vertex count", "expect", 6, "got", tree.Vertices())
	}

	ap, err := tree.LocatePath("R1")
	if err != nil {
		t.Fatal(err)
	}
	if ap.Len() != 2 {
		t.Fatal("Expect a 2-step path", "got", ap.Len())
	}
	if ap.Steps[0].Position != Right || !bytes.Equal(ap.Steps[0].Sibling, l0) {
		t.Error("Bad first step", ap.Steps[0])
	}
	if ap.Steps[1].Position != Left || !bytes.Equal(ap.Steps[1].Sibling, p1) {
		t.Error("Bad second step", ap.Steps[1])
	}
	if ap.LeafIndex != 1 || ap.RecordID != "R1" || ap.TreeSize != 3 {
		t.Error("Bad path metadata", ap)
	}

	// the self-paired node presents its own digest as sibling
	ap, err = tree.LocatePath("R2")
	if err != nil {
		t.Fatal(err)
	}
	if ap.Steps[0].Position != Left || !bytes.Equal(ap.Steps[0].Sibling, l2) {
		t.Error("Bad self-paired step", ap.Steps[0])
	}
	if ap.Steps[1].Position != Right || !bytes.Equal(ap.Steps[1].Sibling, p0) {
		t.Error("Bad second step", ap.Steps[1])
	}

	records := makeRecords(3)
	records[1]["v"] = 4
	if buildTree(t, records).Apex() == tree.Apex() {
		t.Error("Changing a field must change the apex")
	}
}

func TestOddCounts(t *testing.T) {
	for _, tc := range []struct {
		n, height, vertices int
	}{
		{1, 0, 1},
		{2, 1, 3},
		{3, 2, 6},
		{5, 3, 11},
		{8, 3, 15},
	} {
		records := makeRecords(tc.n)
		tree := buildTree(t, records)
		if tree.Height() != tc.height {
			t.Error("Wrong height for", tc.n, "records",
				"expect", tc.height, "got", tree.Height())
		}
		if tree.Vertices() != tc.vertices {
			t.Error("Wrong vertex count for", tc.n, "records",
				"expect", tc.vertices, "got", tree.Vertices())
		}
		for _, r := range records {
			id, _ := r.ID(record.DefaultIDField)
			ap, err := tree.LocatePath(id)
			if err != nil {
				t.Fatal(err)
			}
			if ap.Len() != tc.height {
				t.Error("Wrong path length", "expect", tc.height, "got", ap.Len())
			}
			leaf, err := tree.LeafDigest(r)
			if err != nil {
				t.Fatal(err)
			}
			if !Verify(tree.Hasher(), leaf, ap, tree.ApexDigest()) {
				t.Error("Cannot verify", id, "in a tree of", tc.n)
			}
		}
	}
}

func TestSingleRecordApexIsLeaf(t *testing.T) {
	records := makeRecords(1)
	tree := buildTree(t, records)
	leaf, err := LeafDigest(records[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(tree.ApexDigest(), leaf) {
		t.Error("The apex of a single record must be its leaf digest")
	}
	ap, err := tree.LocatePath("R0")
	if err != nil {
		t.Fatal(err)
	}
	if ap.Len() != 0 || !Verify(tree.Hasher(), leaf, ap, tree.ApexDigest()) {
		t.Error("Expect an empty path that verifies")
	}
}

func TestDeterminism(t *testing.T) {
	a := buildTree(t, makeRecords(17))
	b := buildTree(t, makeRecords(17))
	if a.Apex() != b.Apex() {
		t.Error("Equal inputs must give equal apexes")
	}

	// field insertion order does not matter
	r1 := record.Record{"a": 1, "b": "x", record.DefaultIDField: "R0"}
	r2 := record.Record{record.DefaultIDField: "R0", "b": "x", "a": 1}
	if buildTree(t, []record.Record{r1}).Apex() != buildTree(t, []record.Record{r2}).Apex() {
		t.Error("Field order must not change the apex")
	}
}

func TestOrderSensitivity(t *testing.T) {
	records := makeRecords(4)
	apex := buildTree(t, records).Apex()
	records[1], records[2] = records[2], records[1]
	if buildTree(t, records).Apex() == apex {
		t.Error("Reordering records must change the apex")
	}
}

func TestInsertionAndDeletion(t *testing.T) {
	records := makeRecords(6)
	apex := buildTree(t, records).Apex()
	if buildTree(t, records[:5]).Apex() == apex {
		t.Error("Deleting a record must change the apex")
	}
	if buildTree(t, makeRecords(7)).Apex() == apex {
		t.Error("Inserting a record must change the apex")
	}
}

func TestEmptyInput(t *testing.T) {
	tree, err := NewBuilder(nil, "", 4).Build(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatal("Expect ErrEmptyInput", "got", err)
	}
	if tree != nil {
		t.Error("Expect no tree")
	}
	if _, _, err := Build([]record.Record{}); !errors.Is(err, ErrEmptyInput) {
		t.Error("Expect ErrEmptyInput", "got", err)
	}
}

func TestBuildEncodingFailure(t *testing.T) {
	records := makeRecords(3)
	delete(records[2], record.DefaultIDField)
	if _, err := NewBuilder(nil, "", 1).Build(records); !errors.Is(err, record.ErrEncoding) {
		t.Error("Expect ErrEncoding for a record without id", "got", err)
	}

	records = makeRecords(3)
	records[1]["bad"] = make(chan int)
	if _, err := NewBuilder(nil, "", 1).Build(records); !errors.Is(err, record.ErrEncoding) {
		t.Error("Expect ErrEncoding for an unencodable record", "got", err)
	}
}

func TestLargeIntegerEditsAreNotLost(t *testing.T) {
	// 2^53+1 and 2^53 round to the same double
	for _, pair := range [][2]interface{}{
		{json.Number("9007199254740993"), json.Number("9007199254740992")},
		{int64(1)<<62 + 1, int64(1) << 62},
	} {
		for _, v := range pair {
			records := []record.Record{{record.DefaultIDField: "R0", "unixReviewTime": v}}
			if _, err := NewBuilder(nil, "", 1).Build(records); !errors.Is(err, record.ErrEncoding) {
				t.Errorf("Expect ErrEncoding for %v, got %v", v, err)
			}
		}
	}

	a := buildTree(t, []record.Record{{record.DefaultIDField: "R0", "unixReviewTime": json.Number("9007199254740991")}})
	b := buildTree(t, []record.Record{{record.DefaultIDField: "R0", "unixReviewTime": json.Number("9007199254740990")}})
	if a.Apex() == b.Apex() {
		t.Error("Edits of safe integers must change the apex")
	}
}

func TestCustomIDField(t *testing.T) {
	records := []record.Record{{"key": "a"}, {"key": "b"}}
	tree, err := NewBuilder(nil, "key", 1).Build(records)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.LocatePath("b"); err != nil {
		t.Error(err)
	}
}

func TestLocateNotFound(t *testing.T) {
	tree := buildTree(t, makeRecords(3))
	if _, err := tree.LocatePath("R9"); !errors.Is(err, ErrNotFound) {
		t.Error("Expect ErrNotFound", "got", err)
	}
	if _, err := tree.LocateIndex(3); !errors.Is(err, ErrNotFound) {
		t.Error("Expect ErrNotFound", "got", err)
	}
	if _, err := tree.TerminalDigest(-1); !errors.Is(err, ErrNotFound) {
		t.Error("Expect ErrNotFound", "got", err)
	}
}

func TestDuplicateIDsLocateFirst(t *testing.T) {
	records := makeRecords(3)
	records[2][record.DefaultIDField] = "R0"
	tree := buildTree(t, records)
	ap, err := tree.LocatePath("R0")
	if err != nil {
		t.Fatal(err)
	}
	if ap.LeafIndex != 0 {
		t.Error("Expect the first match", "got", ap.LeafIndex)
	}
}

func TestParallelBuild(t *testing.T) {
	records := makeRecords(2*parallelThreshold + 3)
	seq, err := NewBuilder(nil, "", 1).Build(records)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 3, 8} {
		par, err := NewBuilder(nil, "", workers).Build(records)
		if err != nil {
			t.Fatal(err)
		}
		if par.Apex() != seq.Apex() {
			t.Error("Parallel build differs with", workers, "workers")
		}
		if par.Vertices() != seq.Vertices() || par.Height() != seq.Height() {
			t.Error("Parallel shape differs with", workers, "workers")
		}
		if par.PeakMemory() != seq.PeakMemory() {
			t.Error("Peak memory estimate depends on workers")
		}
	}
}

func TestParallelBuildError(t *testing.T) {
	records := makeRecords(2 * parallelThreshold)
	delete(records[parallelThreshold+1], record.DefaultIDField)
	if _, err := NewBuilder(nil, "", 4).Build(records); !errors.Is(err, record.ErrMissingID) {
		t.Error("Expect ErrMissingID", "got", err)
	}
}

func TestPeakMemory(t *testing.T) {
	small := buildTree(t, makeRecords(4))
	large := buildTree(t, makeRecords(64))
	if small.PeakMemory() == 0 {
		t.Fatal("Expect a positive estimate")
	}
	if large.PeakMemory() <= small.PeakMemory() {
		t.Error("Estimate must grow with the input",
			"small", small.PeakMemory(), "large", large.PeakMemory())
	}
	apex, peak, err := Build(makeRecords(4))
	if err != nil {
		t.Fatal(err)
	}
	if apex != small.Apex() || peak != small.PeakMemory() {
		t.Error("Build must agree with Builder.Build")
	}
}

func TestOtherHasher(t *testing.T) {
	records := makeRecords(5)
	tree, err := NewBuilder(sha3.New256(), "", 1).Build(records)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Apex() == buildTree(t, records).Apex() {
		t.Error("Different hashers must give different apexes")
	}
	ap, err := tree.LocatePath("R3")
	if err != nil {
		t.Fatal(err)
	}
	if ap.HasherID != sha3.SHA3_256 {
		t.Error("Wrong hasher id", "got", ap.HasherID)
	}
	leaf, _ := tree.LeafDigest(records[3])
	if err := ap.Verify(leaf, tree.ApexDigest()); err != nil {
		t.Error(err)
	}
}
