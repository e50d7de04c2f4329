package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reactcalc/internal/gateway"
	"reactcalc/internal/onboarding"
	_ "reactcalc/middlewares/autoload"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
	timeout    time.Duration
	overrides  gateway.Overrides
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, gateway.ErrTurnFailed) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	stop()
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "reactcalc",
		Short:         "ReAct calculator agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.gateway().Run(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", onboarding.DefaultConfigPath, "config file path")
	pf.StringVar(&f.overrides.Provider, "provider", "", "completion provider (openai, ollama, anthropic, gemini)")
	pf.StringVar(&f.overrides.Model, "model", "", "model name")
	pf.StringVar(&f.overrides.BaseURL, "base-url", "", "provider base URL")
	pf.IntVar(&f.overrides.MaxTurns, "max-turns", -1, "completion calls allowed per prompt (0 = unlimited)")
	pf.IntVar(&f.overrides.TokenBudget, "token-budget", -1, "max tokens per completion (0 = provider default)")
	pf.StringVar(&f.overrides.DebugLog, "debug-log", "", "append middleware decisions as JSONL to this file")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-prompt time limit (0 = none)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "chat",
			Short: "Interactive session; the transcript is kept until /clear",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return f.gateway().Run(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "ask [prompt]",
			Short: "Answer one prompt and exit; exits 1 when no final answer is reached",
			RunE: func(cmd *cobra.Command, args []string) error {
				return f.gateway().Execute(cmd.Context(), strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "setup",
			Short: "Pick provider, model and limits and write the config file",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return onboarding.RunTUI(f.configPath)
			},
		},
	)
	return root
}

func (f *rootFlags) gateway() *gateway.Gateway {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return gateway.New(f.configPath,
		gateway.WithOverrides(f.overrides),
		gateway.WithLogger(logger),
		gateway.WithTimeout(f.timeout),
	)
}
