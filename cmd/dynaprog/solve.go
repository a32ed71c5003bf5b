package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/internal/metrics"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
	"github.com/CodeStranger-Fred/dynaprog/report"
	"github.com/CodeStranger-Fred/dynaprog/sim"
)

var solveFlags struct {
	method string
}

var solveCmd = &cobra.Command{
	Use:   "solve <definition>",
	Short: "Solve an MDP and print the optimal values and policy",
	Long: `Load an MDP definition (YAML or JSON), solve it and print the state values
and the greedy policy.

Depending on the configuration the command also writes:
  - output.history_log: one log_<method>.txt per solver with every
    history_step-th value table, one JSON object per line
  - output.chart: an HTML chart of v(s) over sweeps
  - output.metrics_textfile: solver metrics in the Prometheus text format

With rollout.episodes set, each solved policy is checked by sampling
episodes and comparing the mean discounted return with v(start).

Examples:
  # Policy iteration and value iteration side by side
  dynaprog solve model.yaml

  # Value iteration with debug logging of every sweep
  dynaprog solve model.yaml --method vi --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().StringVarP(&solveFlags.method, "method", "m", "both", "solver: pi, vi or both")
}

func runSolve(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	methods, err := parseMethods(solveFlags.method)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	m, err := mdp.Load(args[0])
	if err != nil {
		return err
	}
	_, err = sess.solve(ctx, m, methods)
	return err
}

func parseMethods(s string) ([]dp.Method, error) {
	if strings.EqualFold(s, "both") {
		return []dp.Method{dp.MethodPolicyIteration, dp.MethodValueIteration}, nil
	}
	method, err := dp.ParseMethod(s)
	if err != nil {
		return nil, err
	}
	return []dp.Method{method}, nil
}

// solve runs every method concurrently on m, then prints and writes the
// results in the order methods were given.
func (s *session) solve(ctx context.Context, m *mdp.MDP, methods []dp.Method) ([]*dp.Result, error) {
	runID := uuid.NewString()
	log := s.log.With("run_id", runID)
	log.Info("solving", "states", m.NumStates(), "gamma", m.Gamma(), "methods", methods)

	collector := metrics.NewCollector(nil)
	cfg := dp.Config{
		Threshold:    s.cfg.Solver.Threshold,
		TieTolerance: s.cfg.Solver.TieTolerance,
		MaxSweeps:    s.cfg.Solver.MaxSweeps,
		Observer:     collector,
		Logger:       log,
	}

	results := make([]*dp.Result, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	for i, method := range methods {
		g.Go(func() error {
			solver, err := dp.New(method, m, cfg)
			if err != nil {
				return err
			}
			res, err := solver.Solve(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	if path := s.cfg.Output.MetricsTextfile; path != "" {
		err = errors.Join(err, collector.WriteTextfile(path))
	}
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		s.printResult(m, res)
	}
	if len(results) == 2 {
		s.printAgreement(m, results[0], results[1])
	}
	if err := s.writeOutputs(m, results); err != nil {
		return nil, err
	}
	if s.cfg.Rollout.Episodes > 0 {
		for _, res := range results {
			if err := s.rollout(m, res); err != nil {
				return nil, err
			}
		}
	}

	log.Info("run complete")
	return results, nil
}

func (s *session) printResult(m *mdp.MDP, res *dp.Result) {
	au := s.au
	fmt.Fprintf(s.out, "%s  %d sweeps, %d improvements\n",
		au.Bold(au.Cyan(res.Method)), res.Sweeps, res.Improvements)
	fmt.Fprintln(s.out, au.Bold("values"))
	report.PrintValues(s.out, au, m, res.Values)
	fmt.Fprintln(s.out, au.Bold("policy"))
	report.PrintPolicy(s.out, au, m, res.Policy)
	fmt.Fprintln(s.out)
}

func (s *session) printAgreement(m *mdp.MDP, a, b *dp.Result) {
	verdict := s.au.Green("greedy actions agree")
	if !maps.Equal(a.Actions(m), b.Actions(m)) {
		verdict = s.au.Yellow("greedy actions differ")
	}
	fmt.Fprintf(s.out, "%s vs %s: max |dv| = %.3g, %s\n",
		a.Method, b.Method, dp.MaxDelta(a.Values, b.Values), verdict)
}

func (s *session) writeOutputs(m *mdp.MDP, results []*dp.Result) error {
	step := s.cfg.Output.HistoryStep

	if dir := s.cfg.Output.HistoryLog; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history log directory: %w", err)
		}
		for _, res := range results {
			path := filepath.Join(dir, "log_"+string(res.Method)+".txt")
			err := writeFile(path, func(w io.Writer) error {
				return report.WriteHistoryLog(w, m, res.History, step)
			})
			if err != nil {
				return fmt.Errorf("write history log: %w", err)
			}
			s.log.Debug("history log written", "path", path, "entries", len(res.History))
		}
	}

	if path := s.cfg.Output.Chart; path != "" {
		runs := make([]report.Run, len(results))
		for i, res := range results {
			runs[i] = report.Run{Method: res.Method, History: res.History}
		}
		err := writeFile(path, func(w io.Writer) error {
			return report.WriteHistoryChart(w, m, step, runs...)
		})
		if err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		s.log.Debug("chart written", "path", path)
	}
	return nil
}

func (s *session) rollout(m *mdp.MDP, res *dp.Result) error {
	start := mdp.State(s.cfg.Rollout.Start)
	if start == "" {
		start = m.StateAt(0)
	}
	idx, err := m.StateIndex(start)
	if err != nil {
		return fmt.Errorf("rollout start: %w", err)
	}

	stats, err := sim.Evaluate(m, res.Policy, start, sim.Config{
		Episodes: s.cfg.Rollout.Episodes,
		Horizon:  s.cfg.Rollout.Horizon,
		Seed:     s.cfg.Rollout.Seed,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s rollout from %s: mean return %.4f ± %.4f over %d episodes (%d terminated), v = %.4f\n",
		res.Method, start, stats.MeanReturn, stats.StdErr, stats.Episodes, stats.Terminated, res.Values[idx])
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
