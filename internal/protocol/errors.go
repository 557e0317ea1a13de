package protocol

import "errors"

var (
	ErrMalformedOutcome = errors.New("protocol: malformed outcome")
	ErrMalformedAppData = errors.New("protocol: malformed app data")
	ErrInvalidHex       = errors.New("protocol: invalid hex")
)
