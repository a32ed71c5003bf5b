package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/CodeStranger-Fred/dynaprog/internal/config"
	"github.com/CodeStranger-Fred/dynaprog/internal/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dynaprog",
	Short: "Solve finite MDPs with policy iteration and value iteration",
	Long: `Dynaprog computes optimal policies and state values of finite Markov
decision processes described in YAML or JSON.

It provides:
  - Policy iteration and value iteration with a shared stopping rule
  - Per-sweep value history logs and convergence charts
  - Monte Carlo rollouts to check a solved policy
  - A stochastic windy gridworld generator`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "dynaprog.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// session bundles what every command needs once flags are parsed.
type session struct {
	cfg *config.Config
	log *slog.Logger
	au  aurora.Aurora
	out io.Writer
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	log, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	return &session{
		cfg: cfg,
		log: log,
		au:  aurora.NewAurora(cfg.Output.Color && isTerminal(out)),
		out: out,
	}, nil
}

// isTerminal reports whether out is an interactive terminal. Color codes are
// never written to files or pipes.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// signalContext returns the command context, cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
