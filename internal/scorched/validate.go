package scorched

import (
	"fmt"

	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/danmuck/scorchedearth/internal/protocol/appdata"
	"github.com/danmuck/scorchedearth/internal/protocol/outcome"
)

// Turn is one decoded side of a transition.
type Turn struct {
	Outcome outcome.Outcome
	Data    appdata.Data
}

// ValidTransition decodes and validates the move from one encoded variable
// part to the next. Turn numbers are accepted for parity with the host
// framework, which guarantees toTurnNum == fromTurnNum+1 before calling.
//
// The error is a *Violation when a rule is broken, or wraps
// protocol.ErrMalformedOutcome / protocol.ErrMalformedAppData when a side
// cannot be decoded. App data is only decoded once the allocations have
// passed the shape and destination checks.
func ValidTransition(from, to protocol.VariablePart, fromTurnNum, toTurnNum uint64) (bool, error) {
	fromOutcome, err := outcome.Decode(from.Outcome)
	if err != nil {
		return false, fmt.Errorf("from turn %d: %w", fromTurnNum, err)
	}
	toOutcome, err := outcome.Decode(to.Outcome)
	if err != nil {
		return false, fmt.Errorf("to turn %d: %w", toTurnNum, err)
	}
	err = validate(fromOutcome, toOutcome, func() (appdata.Data, appdata.Data, error) {
		fromData, err := appdata.Decode(from.AppData)
		if err != nil {
			return appdata.Data{}, appdata.Data{}, fmt.Errorf("from turn %d: %w", fromTurnNum, err)
		}
		toData, err := appdata.Decode(to.AppData)
		if err != nil {
			return appdata.Data{}, appdata.Data{}, fmt.Errorf("to turn %d: %w", toTurnNum, err)
		}
		return fromData, toData, nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Validate runs every check over already-decoded turns.
func Validate(from, to Turn) error {
	return validate(from.Outcome, to.Outcome, func() (appdata.Data, appdata.Data, error) {
		return from.Data, to.Data, nil
	})
}

func validate(
	fromOutcome, toOutcome outcome.Outcome,
	loadData func() (appdata.Data, appdata.Data, error),
) error {
	fromAlloc, toAlloc, err := checkShape(fromOutcome, toOutcome)
	if err != nil {
		return err
	}
	if err := checkDestinations(fromAlloc, toAlloc); err != nil {
		return err
	}
	fromData, toData, err := loadData()
	if err != nil {
		return err
	}
	move, err := checkPhase(fromData, toData)
	if err != nil {
		return err
	}
	return checkConservation(move, toData.Params, fromAlloc, toAlloc)
}

func checkShape(from, to outcome.Outcome) (outcome.Allocation, outcome.Allocation, error) {
	if len(from) != 1 || len(to) != 1 {
		return nil, nil, ErrOnlyOneAsset
	}
	fromAlloc, toAlloc := from[0].Allocation, to[0].Allocation
	if len(fromAlloc) != outcome.RoleCount || len(toAlloc) != outcome.RoleCount {
		return nil, nil, ErrAllocationLength
	}
	return fromAlloc, toAlloc, nil
}

// User is checked before Burner, Suggester last.
var destinationChecks = []struct {
	role      outcome.Role
	violation *Violation
}{
	{outcome.User, ErrUserDestination},
	{outcome.Burner, ErrBurnerDestination},
	{outcome.Suggester, ErrSuggesterDestination},
}

func checkDestinations(from, to outcome.Allocation) error {
	for _, c := range destinationChecks {
		if from.Item(c.role).Destination != to.Item(c.role).Destination {
			return c.violation
		}
	}
	return nil
}

// checkEnums rejects phase and reaction values outside their enums, the same
// way appdata.Decode does, so decoded and pre-built turns agree.
func checkEnums(d appdata.Data) error {
	if !d.Phase.Valid() {
		return fmt.Errorf("%w: %w %d", protocol.ErrMalformedAppData, appdata.ErrInvalidPhase, d.Phase)
	}
	if !d.Reaction.Valid() {
		return fmt.Errorf("%w: %w %d", protocol.ErrMalformedAppData, appdata.ErrInvalidReaction, d.Reaction)
	}
	return nil
}

func checkPhase(from, to appdata.Data) (Move, error) {
	if err := checkEnums(from); err != nil {
		return 0, fmt.Errorf("from: %w", err)
	}
	if err := checkEnums(to); err != nil {
		return 0, fmt.Errorf("to: %w", err)
	}
	if from.Phase == to.Phase {
		return 0, ErrPhaseToggle
	}

	var move Move
	switch to.Phase {
	case appdata.Suggest:
		if to.Reaction != appdata.None {
			return 0, ErrSuggestHasReaction
		}
		if to.Suggestion == "" {
			return 0, ErrSuggestNoSuggestion
		}
		move = MoveSuggest
	case appdata.React:
		if to.Reaction == appdata.None {
			return 0, ErrReactNoReaction
		}
		if to.Suggestion != "" {
			return 0, ErrReactHasSuggestion
		}
		move = MoveReward
		if to.Reaction == appdata.Punish {
			move = MovePunish
		}
	}

	if !from.Params.Equal(to.Params) {
		return 0, ErrCoreParams
	}
	return move, nil
}

func checkConservation(move Move, params appdata.Params, from, to outcome.Allocation) error {
	flow := fundFlows[move]
	if !ActualDeltas(from, to).Equal(flow.deltas(params.Normalized())) {
		return flow.violation
	}
	return nil
}
