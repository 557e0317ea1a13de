package scenario

import (
	"fmt"

	"github.com/danmuck/scorchedearth/internal/channel"
	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/danmuck/scorchedearth/internal/protocol/appdata"
	"github.com/danmuck/scorchedearth/internal/protocol/outcome"
	"github.com/danmuck/scorchedearth/internal/scorched"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Step is one compiled turn.
type Step struct {
	TurnNum uint64
	Part    protocol.VariablePart
	Expect  string
}

// Compiled is a scenario with every turn ABI encoded.
type Compiled struct {
	Name    string
	Opening protocol.State
	Steps   []Step
}

// Compile encodes the opening state and every turn. Turn numbers count up
// from the opening turn; a refused turn does not consume a number.
func Compile(f File) (Compiled, error) {
	opening, err := encodeTurn(f, f.Opening)
	if err != nil {
		return Compiled{}, fmt.Errorf("opening: %w", err)
	}
	out := Compiled{
		Name:    f.Name,
		Opening: protocol.State{TurnNum: f.OpeningTurn, VariablePart: opening},
	}
	turn := f.OpeningTurn
	for i, spec := range f.Turns {
		part, err := encodeTurn(f, spec)
		if err != nil {
			return Compiled{}, fmt.Errorf("turn[%d]: %w", i, err)
		}
		out.Steps = append(out.Steps, Step{TurnNum: turn + 1, Part: part, Expect: spec.Expect})
		if spec.Expect == "" {
			turn++
		}
	}
	return out, nil
}

func encodeTurn(f File, spec TurnSpec) (protocol.VariablePart, error) {
	roles := f.Roles
	if spec.Roles != nil {
		roles = *spec.Roles
	}
	params := f.Params
	if spec.Params != nil {
		params = *spec.Params
	}
	phase, err := parsePhase(spec.Phase)
	if err != nil {
		return protocol.VariablePart{}, err
	}
	reaction, err := parseReaction(spec.Reaction)
	if err != nil {
		return protocol.VariablePart{}, err
	}

	ob := outcome.NewBuilder(roles.roles())
	if f.AssetHolder != "" {
		ob.WithAssetHolder(common.HexToAddress(f.AssetHolder))
	}
	o, err := ob.Encoded(spec.Balances.balances())
	if err != nil {
		return protocol.VariablePart{}, err
	}
	d, err := appdata.NewBuilder(params.params()).Encoded(phase, reaction, spec.Suggestion)
	if err != nil {
		return protocol.VariablePart{}, err
	}
	return protocol.VariablePart{Outcome: o, AppData: d}, nil
}

// StepResult records what the validator said about one step.
type StepResult struct {
	Index   int
	TurnNum uint64
	Expect  string
	Got     string
	Pass    bool
}

// Report is the outcome of replaying a scenario.
type Report struct {
	Name    string
	Results []StepResult
}

// Passed reports whether every step matched its expectation.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Pass {
			return false
		}
	}
	return true
}

// Failures returns the steps that did not match.
func (r Report) Failures() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if !res.Pass {
			out = append(out, res)
		}
	}
	return out
}

// Replay runs every step through a fresh channel ledger. Accepted steps are
// recorded; refused steps are compared by reason and leave the ledger as is,
// so turn numbers follow the ledger rather than the compiled plan.
func Replay(c Compiled) (Report, error) {
	ch, err := channel.Open(c.Opening, channel.WithName(c.Name))
	if err != nil {
		return Report{}, err
	}
	report := Report{Name: c.Name}
	for i, step := range c.Steps {
		turn := ch.Latest().TurnNum + 1
		_, err := ch.Append(step.Part)
		got := scorched.ReasonOf(err)
		res := StepResult{
			Index:   i,
			TurnNum: turn,
			Expect:  step.Expect,
			Got:     got,
			Pass:    got == step.Expect,
		}
		report.Results = append(report.Results, res)
		log.Debug().
			Str("scenario", c.Name).
			Int("step", i).
			Uint64("turn", turn).
			Str("expect", step.Expect).
			Str("got", got).
			Bool("pass", res.Pass).
			Msg("scenario step")
	}
	return report, nil
}

// Run loads, compiles and replays the scenario at path.
func Run(path string) (Report, error) {
	f, err := Load(path)
	if err != nil {
		return Report{}, err
	}
	c, err := Compile(f)
	if err != nil {
		return Report{}, err
	}
	return Replay(c)
}
