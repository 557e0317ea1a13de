package appdata

import (
	"errors"
	"math/big"
)

// Phase is the half-turn of a round.
type Phase uint8

const (
	Suggest Phase = 0
	React   Phase = 1
)

func (p Phase) String() string {
	switch p {
	case Suggest:
		return "Suggest"
	case React:
		return "React"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == Suggest || p == React
}

// Reaction is the User's verdict on a suggestion. None is only legal in the
// Suggest phase.
type Reaction uint8

const (
	None   Reaction = 0
	Reward Reaction = 1
	Punish Reaction = 2
)

func (r Reaction) String() string {
	switch r {
	case None:
		return "None"
	case Reward:
		return "Reward"
	case Punish:
		return "Punish"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is a known reaction.
func (r Reaction) Valid() bool {
	return r <= Punish
}

var (
	ErrInvalidPhase    = errors.New("appdata: invalid phase")
	ErrInvalidReaction = errors.New("appdata: invalid reaction")
	ErrNegativeParam   = errors.New("appdata: negative parameter")
	ErrParamOverflow   = errors.New("appdata: parameter exceeds uint256")
)

// Params are the core game parameters, fixed when the channel is opened.
type Params struct {
	Payment       *big.Int
	UserBurn      *big.Int
	SuggesterBurn *big.Int
}

// ParamsOf is a convenience constructor for small fixture values.
func ParamsOf(payment, userBurn, suggesterBurn int64) Params {
	return Params{
		Payment:       big.NewInt(payment),
		UserBurn:      big.NewInt(userBurn),
		SuggesterBurn: big.NewInt(suggesterBurn),
	}
}

// Equal compares parameters by exact value; nil counts as zero.
func (p Params) Equal(q Params) bool {
	return orZero(p.Payment).Cmp(orZero(q.Payment)) == 0 &&
		orZero(p.UserBurn).Cmp(orZero(q.UserBurn)) == 0 &&
		orZero(p.SuggesterBurn).Cmp(orZero(q.SuggesterBurn)) == 0
}

// Normalized returns a copy with nil fields replaced by zero.
func (p Params) Normalized() Params {
	return Params{
		Payment:       new(big.Int).Set(orZero(p.Payment)),
		UserBurn:      new(big.Int).Set(orZero(p.UserBurn)),
		SuggesterBurn: new(big.Int).Set(orZero(p.SuggesterBurn)),
	}
}

// Data is the decoded application data of a single turn.
type Data struct {
	Params
	Phase      Phase
	Reaction   Reaction
	Suggestion string
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
