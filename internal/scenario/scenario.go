package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/danmuck/scorchedearth/internal/protocol/appdata"
	"github.com/danmuck/scorchedearth/internal/protocol/outcome"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidScenario = errors.New("scenario: invalid scenario")

// File is the TOML layout of a scenario.
type File struct {
	Name        string     `toml:"name"`
	AssetHolder string     `toml:"asset_holder,omitempty"`
	OpeningTurn uint64     `toml:"opening_turn"`
	Params      ParamsSpec `toml:"params"`
	Roles       RolesSpec  `toml:"roles"`
	Opening     TurnSpec   `toml:"opening"`
	Turns       []TurnSpec `toml:"turns"`
}

type ParamsSpec struct {
	Payment       uint64 `toml:"payment"`
	UserBurn      uint64 `toml:"user_burn"`
	SuggesterBurn uint64 `toml:"suggester_burn"`
}

type RolesSpec struct {
	Suggester string `toml:"suggester"`
	User      string `toml:"user"`
	Burner    string `toml:"burner"`
}

type BalancesSpec struct {
	Suggester uint64 `toml:"suggester"`
	User      uint64 `toml:"user"`
	Burner    uint64 `toml:"burner"`
}

// TurnSpec describes one turn. Roles and Params override the scenario-wide
// values for this turn only. Expect is the reason the turn should be
// refused with; empty means the turn must be accepted.
type TurnSpec struct {
	Phase      string       `toml:"phase"`
	Reaction   string       `toml:"reaction,omitempty"`
	Suggestion string       `toml:"suggestion,omitempty"`
	Balances   BalancesSpec `toml:"balances"`
	Roles      *RolesSpec   `toml:"roles,omitempty"`
	Params     *ParamsSpec  `toml:"params,omitempty"`
	Expect     string       `toml:"expect,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("scenario load failed (%s): %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("scenario parse failed (%s): %w", path, err)
	}
	return f, nil
}

// Parse decodes TOML strictly; unknown keys are errors.
func Parse(data []byte) (File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, err
	}
	if strings.TrimSpace(f.Name) == "" {
		f.Name = "scenario"
	}
	if err := Validate(f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Marshal renders f back to TOML.
func Marshal(f File) ([]byte, error) {
	return toml.Marshal(f)
}

func Validate(f File) error {
	if err := validateRoles(f.Roles); err != nil {
		return fmt.Errorf("%w: roles: %v", ErrInvalidScenario, err)
	}
	if f.AssetHolder != "" && !common.IsHexAddress(f.AssetHolder) {
		return fmt.Errorf("%w: asset_holder %q is not an address", ErrInvalidScenario, f.AssetHolder)
	}
	if err := validateTurn(f.Opening); err != nil {
		return fmt.Errorf("%w: opening: %v", ErrInvalidScenario, err)
	}
	if len(f.Turns) == 0 {
		return fmt.Errorf("%w: no turns", ErrInvalidScenario)
	}
	for i, turn := range f.Turns {
		if err := validateTurn(turn); err != nil {
			return fmt.Errorf("%w: turn[%d]: %v", ErrInvalidScenario, i, err)
		}
	}
	return nil
}

func validateRoles(r RolesSpec) error {
	for name, addr := range map[string]string{
		"suggester": r.Suggester,
		"user":      r.User,
		"burner":    r.Burner,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%s %q is not an address", name, addr)
		}
	}
	return nil
}

func validateTurn(t TurnSpec) error {
	if _, err := parsePhase(t.Phase); err != nil {
		return err
	}
	if _, err := parseReaction(t.Reaction); err != nil {
		return err
	}
	if t.Roles != nil {
		if err := validateRoles(*t.Roles); err != nil {
			return err
		}
	}
	return nil
}

func parsePhase(raw string) (appdata.Phase, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "suggest":
		return appdata.Suggest, nil
	case "react":
		return appdata.React, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", raw)
	}
}

func parseReaction(raw string) (appdata.Reaction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return appdata.None, nil
	case "reward":
		return appdata.Reward, nil
	case "punish":
		return appdata.Punish, nil
	default:
		return 0, fmt.Errorf("unknown reaction %q", raw)
	}
}

func (p ParamsSpec) params() appdata.Params {
	return appdata.Params{
		Payment:       new(big.Int).SetUint64(p.Payment),
		UserBurn:      new(big.Int).SetUint64(p.UserBurn),
		SuggesterBurn: new(big.Int).SetUint64(p.SuggesterBurn),
	}
}

func (r RolesSpec) roles() outcome.Roles {
	return outcome.Roles{
		Suggester: common.HexToAddress(r.Suggester),
		User:      common.HexToAddress(r.User),
		Burner:    common.HexToAddress(r.Burner),
	}
}

func (b BalancesSpec) balances() outcome.Balances {
	return outcome.Balances{
		Suggester: new(big.Int).SetUint64(b.Suggester),
		User:      new(big.Int).SetUint64(b.User),
		Burner:    new(big.Int).SetUint64(b.Burner),
	}
}
