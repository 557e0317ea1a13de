package appdata

import (
	"fmt"
	"math/big"

	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/math"
)

// Wire field order differs from the prose order of the parameters:
//
//	tuple(uint256 payment, uint256 suggesterBurn, uint256 userBurn,
//	      uint8 phase, uint8 reaction, string suggestion)
var dataArgs = func() abi.Arguments {
	t, err := abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "payment", Type: "uint256"},
		{Name: "suggesterBurn", Type: "uint256"},
		{Name: "userBurn", Type: "uint256"},
		{Name: "phase", Type: "uint8"},
		{Name: "reaction", Type: "uint8"},
		{Name: "suggestion", Type: "string"},
	})
	if err != nil {
		panic(fmt.Sprintf("appdata: bad abi type: %v", err))
	}
	return abi.Arguments{{Type: t}}
}()

type wireData struct {
	Payment       *big.Int
	SuggesterBurn *big.Int
	UserBurn      *big.Int
	Phase         uint8
	Reaction      uint8
	Suggestion    string
}

// Encode ABI encodes d.
func Encode(d Data) ([]byte, error) {
	p := d.Params.Normalized()
	for name, v := range map[string]*big.Int{
		"payment":       p.Payment,
		"userBurn":      p.UserBurn,
		"suggesterBurn": p.SuggesterBurn,
	} {
		if v.Sign() < 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrNegativeParam)
		}
		if v.Cmp(math.MaxBig256) > 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrParamOverflow)
		}
	}
	return dataArgs.Pack(wireData{
		Payment:       p.Payment,
		SuggesterBurn: p.SuggesterBurn,
		UserBurn:      p.UserBurn,
		Phase:         uint8(d.Phase),
		Reaction:      uint8(d.Reaction),
		Suggestion:    d.Suggestion,
	})
}

// Decode reverses Encode. Phase and reaction bytes outside their enums are
// malformed, matching an on-chain enum decode.
func Decode(data []byte) (Data, error) {
	vals, err := dataArgs.Unpack(data)
	if err != nil {
		return Data{}, fmt.Errorf("%w: %v", protocol.ErrMalformedAppData, err)
	}
	if len(vals) != 1 {
		return Data{}, fmt.Errorf("%w: %d values", protocol.ErrMalformedAppData, len(vals))
	}
	w, ok := abi.ConvertType(vals[0], new(wireData)).(*wireData)
	if !ok {
		return Data{}, fmt.Errorf("%w: unexpected shape", protocol.ErrMalformedAppData)
	}
	out := Data{
		Params: Params{
			Payment:       w.Payment,
			UserBurn:      w.UserBurn,
			SuggesterBurn: w.SuggesterBurn,
		},
		Phase:      Phase(w.Phase),
		Reaction:   Reaction(w.Reaction),
		Suggestion: w.Suggestion,
	}
	if !out.Phase.Valid() {
		return Data{}, fmt.Errorf("%w: %w %d", protocol.ErrMalformedAppData, ErrInvalidPhase, w.Phase)
	}
	if !out.Reaction.Valid() {
		return Data{}, fmt.Errorf("%w: %w %d", protocol.ErrMalformedAppData, ErrInvalidReaction, w.Reaction)
	}
	return out, nil
}
