package merkletree

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/recordseal/recordseal-go/crypto"
)

func TestVerifyRoundTrip(t *testing.T) {
	records := makeRecords(13)
	tree := buildTree(t, records)
	for i, r := range records {
		ap, err := tree.LocateIndex(i)
		if err != nil {
			t.Fatal(err)
		}
		leaf, err := LeafDigest(r)
		if err != nil {
			t.Fatal(err)
		}
		if !Verify(tree.Hasher(), leaf, ap, tree.ApexDigest()) {
			t.Error("Cannot verify record", i)
		}
		if !VerifyHex(tree.Hasher(), strings.ToUpper(crypto.ToHex(leaf)), ap, tree.Apex()) {
			t.Error("Cannot verify hex of record", i)
		}
	}
}

func TestVerifyNegative(t *testing.T) {
	records := makeRecords(6)
	tree := buildTree(t, records)
	ap, err := tree.LocatePath("R4")
	if err != nil {
		t.Fatal(err)
	}
	leaf, _ := LeafDigest(records[4])
	other, _ := LeafDigest(records[3])

	tampered := tree.ApexDigest()
	tampered[0] ^= 0x01
	if Verify(tree.Hasher(), leaf, ap, tampered) {
		t.Error("Verified against a tampered apex")
	}
	if Verify(tree.Hasher(), other, ap, tree.ApexDigest()) {
		t.Error("Verified the wrong leaf")
	}

	ap.Steps[1].Position = Right
	if Verify(tree.Hasher(), leaf, ap, tree.ApexDigest()) {
		t.Error("Verified with a flipped position")
	}

	if Verify(tree.Hasher(), leaf, nil, tree.ApexDigest()) {
		t.Error("Verified a nil path")
	}
	if VerifyHex(tree.Hasher(), "zz", ap, tree.Apex()) {
		t.Error("Verified a malformed leaf")
	}
	if VerifyHex(tree.Hasher(), crypto.ToHex(leaf), ap, "") {
		t.Error("Verified an empty apex")
	}
}

func TestPathVerifyMethod(t *testing.T) {
	records := makeRecords(4)
	tree := buildTree(t, records)
	ap, err := tree.LocatePath("R2")
	if err != nil {
		t.Fatal(err)
	}
	leaf, _ := LeafDigest(records[2])
	if err := ap.Verify(leaf, tree.ApexDigest()); err != nil {
		t.Fatal(err)
	}
	if err := ap.Verify(leaf, make([]byte, 32)); !errors.Is(err, ErrPathMismatch) {
		t.Error("Expect ErrPathMismatch", "got", err)
	}
	ap.HasherID = "MD5"
	if err := ap.Verify(leaf, tree.ApexDigest()); !errors.Is(err, ErrMalformedPath) {
		t.Error("Expect ErrMalformedPath", "got", err)
	}
}

func TestExportedPathVerifies(t *testing.T) {
	records := makeRecords(5)
	tree := buildTree(t, records)
	ap, err := tree.LocatePath("R4")
	if err != nil {
		t.Fatal(err)
	}
	buf, err := json.Marshal(ap)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf, []byte(`"position":"LEFT"`)) {
		t.Error("Expect textual positions", string(buf))
	}

	var got AuthenticationPath
	if err := json.Unmarshal(buf, &got); err != nil {
		t.Fatal(err)
	}
	leaf, _ := LeafDigest(records[4])
	if err := got.Verify(leaf, tree.ApexDigest()); err != nil {
		t.Error(err)
	}
}

func TestUnmarshalMalformedPath(t *testing.T) {
	for _, s := range []string{
		`{"steps":[{"position":"UP","sibling":"00"}]}`,
		`{"steps":[{"position":"LEFT","sibling":"xyz"}]}`,
	} {
		var ap AuthenticationPath
		if err := json.Unmarshal([]byte(s), &ap); !errors.Is(err, ErrMalformedPath) {
			t.Error("Expect ErrMalformedPath for", s, "got", err)
		}
	}
}

func TestDetect(t *testing.T) {
	a := buildTree(t, makeRecords(3)).Apex()
	records := makeRecords(3)
	records[1]["v"] = 4
	b := buildTree(t, records).Apex()

	if Detect(a, a) != Match {
		t.Error("Expect Match")
	}
	if Detect(a, strings.ToUpper(a)) != Match {
		t.Error("Hex case must be ignored")
	}
	if Detect(a, b) != Mismatch {
		t.Error("Expect Mismatch")
	}
	if Detect("not hex", a) != Mismatch || Detect(a, "") != Mismatch {
		t.Error("Malformed apex must be a Mismatch")
	}
	if Match.String() != "MATCH" || Mismatch.String() != "MISMATCH" {
		t.Error("Bad result names")
	}
}
