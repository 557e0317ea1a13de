package protocol

// VariablePart is the per-turn portion of a channel state: the ABI encoded
// outcome and the ABI encoded application data.
type VariablePart struct {
	Outcome []byte
	AppData []byte
}

// State pairs a variable part with the turn number it was signed at.
type State struct {
	TurnNum uint64
	VariablePart
}

// Clone returns a deep copy of v.
func (v VariablePart) Clone() VariablePart {
	out := VariablePart{}
	if v.Outcome != nil {
		out.Outcome = append([]byte(nil), v.Outcome...)
	}
	if v.AppData != nil {
		out.AppData = append([]byte(nil), v.AppData...)
	}
	return out
}
