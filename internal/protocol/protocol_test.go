package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestHexPartRoundTrip(t *testing.T) {
	part := VariablePart{
		Outcome: []byte{0x00, 0x01, 0xfe},
		AppData: []byte{0xaa, 0xbb},
	}
	h := part.Hex()
	if h.Outcome != "0x0001fe" || h.AppData != "0xaabb" {
		t.Fatalf("unexpected hex form: %+v", h)
	}
	back, err := h.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(back.Outcome, part.Outcome) || !bytes.Equal(back.AppData, part.AppData) {
		t.Fatalf("round-trip mismatch: %+v", back)
	}
}

func TestHexPartDecodeAcceptsEmptyAndUnprefixed(t *testing.T) {
	part, err := HexPart{Outcome: "0x", AppData: "aabb"}.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(part.Outcome) != 0 {
		t.Fatalf("expected empty outcome, got %x", part.Outcome)
	}
	if !bytes.Equal(part.AppData, []byte{0xaa, 0xbb}) {
		t.Fatalf("unexpected app data: %x", part.AppData)
	}
}

func TestHexPartDecodeInvalidHex(t *testing.T) {
	_, err := HexPart{Outcome: "0xzz"}.Decode()
	if !errors.Is(err, ErrInvalidHex) {
		t.Fatalf("expected ErrInvalidHex, got %v", err)
	}
	_, err = HexPart{AppData: "0xabc"}.Decode()
	if !errors.Is(err, ErrInvalidHex) {
		t.Fatalf("expected ErrInvalidHex for odd length, got %v", err)
	}
}

func TestKeccak256KnownVectors(t *testing.T) {
	empty := Keccak256()
	if empty.Hex() != "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470" {
		t.Fatalf("unexpected keccak of empty input: %s", empty.Hex())
	}
	split := Keccak256([]byte("scorched"), []byte("earth"))
	joined := Keccak256([]byte("scorchedearth"))
	if split != joined {
		t.Fatalf("keccak over split input differs from joined input")
	}
}

func TestCloneIsDeep(t *testing.T) {
	part := VariablePart{Outcome: []byte{1}, AppData: []byte{2}}
	c := part.Clone()
	c.Outcome[0] = 9
	if part.Outcome[0] != 1 {
		t.Fatalf("clone shares outcome backing array")
	}
	if part.OutcomeHash() == c.OutcomeHash() {
		t.Fatalf("expected digests to differ after mutation")
	}
}
