package scorched

import (
	"math/big"

	"github.com/danmuck/scorchedearth/internal/protocol/appdata"
	"github.com/danmuck/scorchedearth/internal/protocol/outcome"
)

// Move is a legal (phase, reaction) combination. Suggest with a reaction, or
// React without one, has no Move.
type Move int

const (
	MoveSuggest Move = iota
	MoveReward
	MovePunish
)

func (m Move) String() string {
	switch m {
	case MoveSuggest:
		return "suggest"
	case MoveReward:
		return "reward"
	case MovePunish:
		return "punish"
	default:
		return "unknown"
	}
}

// Deltas is the signed amount change per role, indexed by outcome.Role.
type Deltas [outcome.RoleCount]*big.Int

// Equal compares deltas by value.
func (d Deltas) Equal(o Deltas) bool {
	for i := range d {
		if d[i].Cmp(o[i]) != 0 {
			return false
		}
	}
	return true
}

type fundFlow struct {
	deltas    func(appdata.Params) Deltas
	violation *Violation
}

var fundFlows = map[Move]fundFlow{
	// Entering a round commits the payment and both burns to the Burner
	// before the outcome is known.
	MoveSuggest: {
		deltas: func(p appdata.Params) Deltas {
			userOut := new(big.Int).Add(p.Payment, p.UserBurn)
			return deltasOf(
				new(big.Int).Neg(p.SuggesterBurn),
				new(big.Int).Neg(userOut),
				new(big.Int).Add(userOut, p.SuggesterBurn),
			)
		},
		violation: ErrSuggestMustBurn,
	},
	MoveReward: {
		deltas: func(p appdata.Params) Deltas {
			return deltasOf(
				new(big.Int).Set(p.Payment),
				new(big.Int).Neg(p.Payment),
				new(big.Int),
			)
		},
		violation: ErrRewardMustPay,
	},
	// The burn already happened on entering the round.
	MovePunish: {
		deltas: func(appdata.Params) Deltas {
			return deltasOf(new(big.Int), new(big.Int), new(big.Int))
		},
		violation: ErrPunishMustBurn,
	},
}

func deltasOf(suggester, user, burner *big.Int) Deltas {
	var d Deltas
	d[outcome.Suggester] = suggester
	d[outcome.User] = user
	d[outcome.Burner] = burner
	return d
}

// ExpectedDeltas returns the per-role amount changes that m requires.
func ExpectedDeltas(m Move, params appdata.Params) (Deltas, bool) {
	flow, ok := fundFlows[m]
	if !ok {
		return Deltas{}, false
	}
	return flow.deltas(params.Normalized()), true
}

// ActualDeltas computes to - from per role over two three-item allocations.
func ActualDeltas(from, to outcome.Allocation) Deltas {
	var d Deltas
	for r := outcome.Role(0); r < outcome.RoleCount; r++ {
		d[r] = new(big.Int).Sub(to.AmountOf(r), from.AmountOf(r))
	}
	return d
}
