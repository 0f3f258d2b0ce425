package crypto

import (
	"bytes"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	d := []byte{0x00, 0x01, 0xab, 0xff}
	s := ToHex(d)
	if s != "0001abff" {
		t.Fatal("Unexpected hex encoding", "got", s)
	}
	got, err := FromHex("0001ABFF")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, d) {
		t.Error("Hex decoding mismatch", "expect", d, "got", got)
	}
}

func TestFromHexMalformed(t *testing.T) {
	for _, s := range []string{"", "zz", "abc"} {
		if _, err := FromHex(s); err != ErrMalformedDigest {
			t.Errorf("Expect ErrMalformedDigest for %q, got %v", s, err)
		}
	}
}

func TestEqual(t *testing.T) {
	if Equal(nil, nil) {
		t.Error("Empty digests must never be equal")
	}
	if !Equal([]byte{1, 2}, []byte{1, 2}) {
		t.Error("Expect equal digests")
	}
	if Equal([]byte{1, 2}, []byte{2, 1}) {
		t.Error("Expect different digests")
	}
}

func TestMakeRand(t *testing.T) {
	r1, err := MakeRand()
	if err != nil {
		t.Fatal(err)
	}
	r2, err := MakeRand()
	if err != nil {
		t.Fatal(err)
	}
	if len(r1) != DefaultHashSizeByte || bytes.Equal(r1, r2) {
		t.Error("MakeRand returned unusable output")
	}
}
