package channel

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/scorchedearth/internal/observability"
	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/danmuck/scorchedearth/internal/protocol/appdata"
	"github.com/danmuck/scorchedearth/internal/protocol/outcome"
	"github.com/danmuck/scorchedearth/internal/scorched"
	"github.com/rs/zerolog/log"
)

var (
	ErrTurnNotAdjacent = errors.New("channel: turn number must follow the latest turn")
	ErrInvalidOpening  = errors.New("channel: invalid opening state")
)

// TransitionFunc validates one adjacent pair of states.
type TransitionFunc func(from, to protocol.VariablePart, fromTurnNum, toTurnNum uint64) (bool, error)

// Channel is the turn-ordered ledger of accepted states of one game. Only
// transitions accepted by the validator are appended.
type Channel struct {
	mu       sync.RWMutex
	name     string
	states   []protocol.State
	validate TransitionFunc
}

type Option func(*Channel)

// WithName labels log lines and metrics for this channel.
func WithName(name string) Option {
	return func(c *Channel) { c.name = name }
}

// WithValidator replaces the scorched-earth validator.
func WithValidator(fn TransitionFunc) Option {
	return func(c *Channel) {
		if fn != nil {
			c.validate = fn
		}
	}
}

// Open starts a ledger at opening. The opening state must decode into a
// single three-item allocation and well-formed app data.
func Open(opening protocol.State, opts ...Option) (*Channel, error) {
	if err := checkOpening(opening.VariablePart); err != nil {
		return nil, err
	}
	c := &Channel{
		name:     "channel",
		validate: scorched.ValidTransition,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.states = []protocol.State{{TurnNum: opening.TurnNum, VariablePart: opening.VariablePart.Clone()}}
	log.Debug().
		Str("channel", c.name).
		Uint64("turn", opening.TurnNum).
		Str("outcome_hash", opening.OutcomeHash().Hex()).
		Msg("channel opened")
	return c, nil
}

func checkOpening(part protocol.VariablePart) error {
	o, err := outcome.Decode(part.Outcome)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOpening, err)
	}
	if len(o) != 1 {
		return fmt.Errorf("%w: %w", ErrInvalidOpening, scorched.ErrOnlyOneAsset)
	}
	if len(o[0].Allocation) != outcome.RoleCount {
		return fmt.Errorf("%w: %w", ErrInvalidOpening, scorched.ErrAllocationLength)
	}
	if _, err := appdata.Decode(part.AppData); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOpening, err)
	}
	return nil
}

func (c *Channel) Name() string {
	return c.name
}

// Receipt is what an append recorded: the accepted state and the ledger
// length right after it.
type Receipt struct {
	State protocol.State
	Turns int
}

// Latest returns a copy of the most recent accepted state.
func (c *Channel) Latest() protocol.State {
	return c.Snapshot().State
}

// Len is the number of accepted states, opening included.
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

// Snapshot returns the latest state and the ledger length read under one lock.
func (c *Channel) Snapshot() Receipt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	last := c.states[len(c.states)-1]
	return Receipt{
		State: protocol.State{TurnNum: last.TurnNum, VariablePart: last.VariablePart.Clone()},
		Turns: len(c.states),
	}
}

// States returns copies of every accepted state in turn order.
func (c *Channel) States() []protocol.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]protocol.State, len(c.states))
	for i, s := range c.states {
		out[i] = protocol.State{TurnNum: s.TurnNum, VariablePart: s.VariablePart.Clone()}
	}
	return out
}

// Append validates next as the following turn and records it.
func (c *Channel) Append(next protocol.VariablePart) (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendLocked(protocol.State{
		TurnNum:      c.states[len(c.states)-1].TurnNum + 1,
		VariablePart: next,
	})
}

// AppendAt is Append with an explicit turn number, which must be exactly
// one past the latest turn.
func (c *Channel) AppendAt(next protocol.State) (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendLocked(next)
}

// Check validates next against the latest state without recording it.
func (c *Channel) Check(next protocol.VariablePart) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	last := c.states[len(c.states)-1]
	return c.run(last, protocol.State{TurnNum: last.TurnNum + 1, VariablePart: next})
}

func (c *Channel) appendLocked(next protocol.State) (Receipt, error) {
	last := c.states[len(c.states)-1]
	if next.TurnNum != last.TurnNum+1 {
		return Receipt{}, fmt.Errorf("%w: latest=%d got=%d", ErrTurnNotAdjacent, last.TurnNum, next.TurnNum)
	}
	if err := c.run(last, next); err != nil {
		return Receipt{}, err
	}
	c.states = append(c.states, protocol.State{TurnNum: next.TurnNum, VariablePart: next.VariablePart.Clone()})
	return Receipt{
		State: protocol.State{TurnNum: next.TurnNum, VariablePart: next.VariablePart.Clone()},
		Turns: len(c.states),
	}, nil
}

func (c *Channel) run(from, to protocol.State) error {
	start := time.Now()
	ok, err := c.validate(from.VariablePart, to.VariablePart, from.TurnNum, to.TurnNum)
	elapsed := time.Since(start)
	if err == nil && !ok {
		err = errors.New("channel: transition rejected")
	}
	if err != nil {
		result, class, reason := observability.ResultInvalid, "", ""
		if v, isViolation := scorched.AsViolation(err); isViolation {
			result, class, reason = observability.ResultRejected, string(v.Class), v.Reason
		}
		observability.RecordTransition("channel", result, class, reason, elapsed)
		log.Warn().
			Str("channel", c.name).
			Uint64("from_turn", from.TurnNum).
			Uint64("to_turn", to.TurnNum).
			Str("result", result).
			Err(err).
			Msg("transition refused")
		return err
	}
	observability.RecordTransition("channel", observability.ResultAccepted, "", "", elapsed)
	log.Debug().
		Str("channel", c.name).
		Uint64("turn", to.TurnNum).
		Str("app_data_hash", to.AppDataHash().Hex()).
		Msg("transition accepted")
	return nil
}
