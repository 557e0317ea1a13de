package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/danmuck/scorchedearth/internal/config"
	"github.com/danmuck/scorchedearth/internal/logging"
	"github.com/danmuck/scorchedearth/internal/node"
	"github.com/danmuck/scorchedearth/internal/observability"
	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/danmuck/scorchedearth/internal/referee"
	"github.com/danmuck/scorchedearth/internal/scenario"
	"github.com/danmuck/scorchedearth/internal/scorched"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errRejected signals a verdict that was already printed.
var errRejected = errors.New("rejected")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scorchedctl",
		Short:         "Validate and referee scorched-earth state channel transitions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newValidateCmd(),
		newReplayCmd(),
		newEncodeCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return root
}

func newValidateCmd() *cobra.Command {
	var (
		from, to         protocol.HexPart
		fromTurn, toTurn uint64
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check one transition between two hex encoded states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromPart, err := from.Decode()
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			toPart, err := to.Decode()
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			_, err = scorched.ValidTransition(fromPart, toPart, fromTurn, toTurn)
			if err != nil {
				v, ok := scorched.AsViolation(err)
				if !ok {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rejected (%s): %s\n", v.Class, v.Reason)
				return errRejected
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: turn %d -> %d\n", fromTurn, toTurn)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&from.Outcome, "from-outcome", "", "hex encoded outcome of the prior state")
	flags.StringVar(&from.AppData, "from-app-data", "", "hex encoded app data of the prior state")
	flags.StringVar(&to.Outcome, "to-outcome", "", "hex encoded outcome of the proposed state")
	flags.StringVar(&to.AppData, "to-app-data", "", "hex encoded app data of the proposed state")
	flags.Uint64Var(&fromTurn, "from-turn", 0, "turn number of the prior state")
	flags.Uint64Var(&toTurn, "to-turn", 1, "turn number of the proposed state")
	for _, name := range []string{"from-outcome", "from-app-data", "to-outcome", "to-app-data"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <scenario.toml>...",
		Short: "Replay scenario files and check every expected verdict",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := false
			for _, path := range args {
				report, err := scenario.Run(path)
				if err != nil {
					return err
				}
				for _, res := range report.Results {
					status := "ok"
					if !res.Pass {
						status = "FAIL"
						failed = true
					}
					got := res.Got
					if got == "" {
						got = "accepted"
					}
					fmt.Fprintf(out, "%s\t%s\tstep=%d turn=%d\t%s\n", status, report.Name, res.Index, res.TurnNum, got)
					if !res.Pass {
						want := res.Expect
						if want == "" {
							want = "accepted"
						}
						fmt.Fprintf(out, "\texpected: %s\n", want)
					}
				}
			}
			if failed {
				return errRejected
			}
			return nil
		},
	}
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <scenario.toml>",
		Short: "Print the hex encoding of every state in a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			c, err := scenario.Compile(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printState := func(label string, turn uint64, part protocol.VariablePart) {
				h := part.Hex()
				fmt.Fprintf(out, "# %s turn=%d\n", label, turn)
				fmt.Fprintf(out, "outcome=%s\n", h.Outcome)
				fmt.Fprintf(out, "app_data=%s\n", h.AppData)
			}
			printState("opening", c.Opening.TurnNum, c.Opening.VariablePart)
			for i, step := range c.Steps {
				label := fmt.Sprintf("step %d", i)
				if step.Expect != "" {
					label += " expect=" + step.Expect
				}
				printState(label, step.TurnNum, step.Part)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the referee HTTP node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultRefereeConfig()
			if configPath != "" {
				loaded, err := config.LoadRefereeConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			profile, err := logging.ParseProfile(cfg.LogProfile)
			if err != nil {
				return err
			}
			observability.InitLogger("referee", profile)
			log.Info().Str("path", configPath).Str("id", cfg.ID).Msg("loaded referee config")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			var n node.Node = referee.Appear(cfg)
			log.Info().Str("kind", n.Kind()).Str("id", n.NodeID()).Msg("node starting")
			return n.Serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to referee.toml")
	return cmd
}

func newConfigCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config file helpers",
	}
	initCmd := &cobra.Command{
		Use:       "init <referee|scenario> <path>",
		Short:     "Write a config or scenario template",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"referee", "scenario"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[1], args[0], overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s template to %s\n", args[0], args[1])
			return nil
		},
	}
	initCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:       "validate <referee|scenario> <path>",
		Short:     "Load a config or scenario file and report problems",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"referee", "scenario"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]
			switch kind {
			case "referee":
				if _, err := config.LoadRefereeConfig(path); err != nil {
					return err
				}
			case "scenario":
				if _, err := scenario.Load(path); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown config kind: %s", kind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok: %s\n", kind, path)
			return nil
		},
	}
	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
