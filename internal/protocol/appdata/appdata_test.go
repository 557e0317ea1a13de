package appdata

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/ethereum/go-ethereum/common"
)

func word(v uint64) []byte {
	return common.BigToHash(new(big.Int).SetUint64(v)).Bytes()
}

func TestEncodeUsesWireFieldOrder(t *testing.T) {
	d := Data{
		Params:     ParamsOf(5, 3, 2),
		Phase:      Suggest,
		Reaction:   None,
		Suggestion: "hi",
	}
	got, err := Encode(d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := make([]byte, 32)
	copy(text, "hi")
	var want []byte
	for _, w := range [][]byte{
		word(0x20), // offset of the dynamic tuple
		word(5),    // payment
		word(2),    // suggesterBurn precedes userBurn on the wire
		word(3),    // userBurn
		word(0),    // phase
		word(0),    // reaction
		word(0xc0), // offset of suggestion inside the tuple
		word(2),    // suggestion length
		text,
	} {
		want = append(want, w...)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("app data encoding mismatch\n got %x\nwant %x", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	b := NewBuilder(ParamsOf(5, 2, 2))
	cases := []Data{
		b.Suggest("buy low, sell high"),
		b.React(Reward),
		b.React(Punish),
		b.Data(React, None, "illegal but encodable"),
	}
	for _, in := range cases {
		enc, err := Encode(in)
		if err != nil {
			t.Fatalf("encode %+v: %v", in, err)
		}
		out, err := Decode(enc)
		if err != nil {
			t.Fatalf("decode %+v: %v", in, err)
		}
		if !out.Params.Equal(in.Params) || out.Phase != in.Phase ||
			out.Reaction != in.Reaction || out.Suggestion != in.Suggestion {
			t.Fatalf("round-trip mismatch: in=%+v out=%+v", in, out)
		}
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, protocol.ErrMalformedAppData) {
		t.Fatalf("expected ErrMalformedAppData, got %v", err)
	}
}

func TestDecodeRejectsOutOfRangeEnums(t *testing.T) {
	enc, err := Encode(Data{Params: ParamsOf(1, 1, 1), Phase: Phase(7)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(enc); !errors.Is(err, ErrInvalidPhase) || !errors.Is(err, protocol.ErrMalformedAppData) {
		t.Fatalf("expected invalid phase, got %v", err)
	}

	enc, err = Encode(Data{Params: ParamsOf(1, 1, 1), Phase: React, Reaction: Reaction(3)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(enc); !errors.Is(err, ErrInvalidReaction) {
		t.Fatalf("expected invalid reaction, got %v", err)
	}
}

func TestEncodeRejectsNegativeParams(t *testing.T) {
	_, err := Encode(Data{Params: ParamsOf(-1, 0, 0)})
	if !errors.Is(err, ErrNegativeParam) {
		t.Fatalf("expected ErrNegativeParam, got %v", err)
	}
}

func TestParamsEqualTreatsNilAsZero(t *testing.T) {
	if !(Params{}).Equal(ParamsOf(0, 0, 0)) {
		t.Fatalf("expected nil params to equal zero params")
	}
	if ParamsOf(5, 2, 2).Equal(ParamsOf(5, 2, 3)) {
		t.Fatalf("expected differing suggesterBurn to compare unequal")
	}
}

func TestBuilderCopiesParams(t *testing.T) {
	params := ParamsOf(5, 2, 2)
	b := NewBuilder(params)
	params.Payment.SetInt64(99)
	if b.Params().Payment.Int64() != 5 {
		t.Fatalf("builder params aliased caller value")
	}
	d := b.Suggest("x")
	d.Payment.SetInt64(42)
	if b.Suggest("x").Payment.Int64() != 5 {
		t.Fatalf("built data aliased builder params")
	}
}
