package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/danmuck/scorchedearth/internal/protocol/appdata"
	"github.com/danmuck/scorchedearth/internal/protocol/outcome"
	"github.com/danmuck/scorchedearth/internal/testutil/testlog"
	"github.com/ethereum/go-ethereum/common"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	testlog.Start(t)
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func encodedState(t *testing.T, bal outcome.Balances, d appdata.Data) protocol.HexPart {
	t.Helper()
	ob := outcome.NewBuilder(outcome.Roles{
		Suggester: common.HexToAddress("0xa1"),
		User:      common.HexToAddress("0xb2"),
		Burner:    common.HexToAddress("0xc3"),
	})
	o, err := ob.Encoded(bal)
	if err != nil {
		t.Fatalf("encode outcome: %v", err)
	}
	a, err := appdata.Encode(d)
	if err != nil {
		t.Fatalf("encode app data: %v", err)
	}
	return protocol.VariablePart{Outcome: o, AppData: a}.Hex()
}

func validateArgs(from, to protocol.HexPart) []string {
	return []string{
		"validate",
		"--from-outcome", from.Outcome,
		"--from-app-data", from.AppData,
		"--to-outcome", to.Outcome,
		"--to-app-data", to.AppData,
		"--from-turn", "3",
		"--to-turn", "4",
	}
}

func TestValidateCommand(t *testing.T) {
	db := appdata.NewBuilder(appdata.ParamsOf(5, 2, 2))
	opening := encodedState(t, outcome.BalancesOf(100, 100, 0), db.React(appdata.Reward))

	out, err := execute(t, validateArgs(opening, encodedState(t, outcome.BalancesOf(98, 93, 9), db.Suggest("buy")))...)
	if err != nil {
		t.Fatalf("expected valid transition, err=%v out=%s", err, out)
	}
	if !strings.Contains(out, "valid: turn 3 -> 4") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = execute(t, validateArgs(opening, encodedState(t, outcome.BalancesOf(98, 93, 9), db.React(appdata.Punish)))...)
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected errRejected, got %v", err)
	}
	if !strings.Contains(out, "rejected (phase): Phase must toggle") {
		t.Fatalf("unexpected output: %q", out)
	}

	bad := opening
	bad.Outcome = "0xnothex"
	if _, err := execute(t, validateArgs(bad, opening)...); err == nil || errors.Is(err, errRejected) {
		t.Fatalf("expected decode error, got %v", err)
	}

	if _, err := execute(t, "validate", "--from-outcome", opening.Outcome); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestReplayCommand(t *testing.T) {
	scenarios := filepath.Join("..", "..", "internal", "scenario", "testdata")
	out, err := execute(t, "replay",
		filepath.Join(scenarios, "reward_round.toml"),
		filepath.Join(scenarios, "rejections.toml"),
	)
	if err != nil {
		t.Fatalf("replay: %v out=%s", err, out)
	}
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failure: %s", out)
	}
	if !strings.Contains(out, "Phase must toggle") {
		t.Fatalf("expected rejection reasons in output: %s", out)
	}
}

func TestReplayCommandReportsMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	if _, err := execute(t, "config", "init", "scenario", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	broken := strings.Replace(string(data), "suggester = 103", "suggester = 102", 1)
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "replay", path)
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected errRejected, got %v", err)
	}
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "expected: accepted") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestEncodeCommand(t *testing.T) {
	path := filepath.Join("..", "..", "internal", "scenario", "testdata", "reward_round.toml")
	out, err := execute(t, "encode", path)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := strings.Count(out, "outcome=0x"); got != 5 {
		t.Fatalf("expected 5 encoded outcomes, got %d\n%s", got, out)
	}
	if !strings.Contains(out, "# opening turn=3") || !strings.Contains(out, "# step 3 turn=7") {
		t.Fatalf("unexpected labels:\n%s", out)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.toml")
	if _, err := execute(t, "config", "init", "referee", path); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := execute(t, "config", "init", "referee", path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if _, err := execute(t, "config", "init", "referee", path, "--force"); err != nil {
		t.Fatalf("forced init: %v", err)
	}
}

func TestServeRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.toml")
	if err := os.WriteFile(path, []byte(`log_profile = "loud"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execute(t, "serve", "--config", path); err == nil {
		t.Fatal("expected config error")
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	referee := filepath.Join(dir, "referee.toml")
	if _, err := execute(t, "config", "init", "referee", referee); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := execute(t, "config", "validate", "referee", referee)
	if err != nil || !strings.Contains(out, "referee ok") {
		t.Fatalf("validate referee: err=%v out=%q", err, out)
	}

	scenarioPath := filepath.Join("..", "..", "internal", "scenario", "testdata", "rejections.toml")
	if _, err := execute(t, "config", "validate", "scenario", scenarioPath); err != nil {
		t.Fatalf("validate scenario: %v", err)
	}
	if _, err := execute(t, "config", "validate", "scenario", referee); err == nil {
		t.Fatal("expected referee file to fail scenario validation")
	}
	if _, err := execute(t, "config", "validate", "ghost", referee); err == nil {
		t.Fatal("expected unknown kind error")
	}
}
