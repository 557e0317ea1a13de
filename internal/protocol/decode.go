package protocol

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Decode converts a HexPart back into raw bytes. An empty string or bare
// "0x" decodes to an empty field; the codecs reject it later if required.
func (h HexPart) Decode() (VariablePart, error) {
	outcome, err := decodeHex(h.Outcome)
	if err != nil {
		return VariablePart{}, fmt.Errorf("outcome: %w", err)
	}
	appData, err := decodeHex(h.AppData)
	if err != nil {
		return VariablePart{}, fmt.Errorf("app_data: %w", err)
	}
	return VariablePart{Outcome: outcome, AppData: appData}, nil
}

func decodeHex(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0x" || raw == "0X" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		raw = "0x" + raw
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}
