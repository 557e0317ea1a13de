package protocol

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// HexPart is the transport form of a VariablePart: 0x-prefixed hex strings.
type HexPart struct {
	Outcome string `json:"outcome" toml:"outcome"`
	AppData string `json:"app_data" toml:"app_data"`
}

// Hex renders v as 0x-prefixed hex.
func (v VariablePart) Hex() HexPart {
	return HexPart{
		Outcome: hexutil.Encode(v.Outcome),
		AppData: hexutil.Encode(v.AppData),
	}
}

// OutcomeHash is keccak256 over the encoded outcome.
func (v VariablePart) OutcomeHash() common.Hash {
	return Keccak256(v.Outcome)
}

// AppDataHash is keccak256 over the encoded app data.
func (v VariablePart) AppDataHash() common.Hash {
	return Keccak256(v.AppData)
}

// Keccak256 is the legacy (pre-NIST) keccak digest used on chain.
func Keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}
