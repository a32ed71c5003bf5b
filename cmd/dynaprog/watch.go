package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

var watchFlags struct {
	method   string
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch <definition>",
	Short: "Re-solve an MDP whenever its definition changes",
	Long: `Solve the definition once, then watch it and solve again after every
change. Rapid successive writes are collapsed into one solve. A definition
that fails to load is reported and the watch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.method, "method", "m", "both", "solver: pi, vi or both")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 200*time.Millisecond, "quiet period before re-solving")
}

func runWatch(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	methods, err := parseMethods(watchFlags.method)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	return sess.watch(ctx, filepath.Clean(args[0]), methods, watchFlags.debounce)
}

// watch blocks until ctx is done. The parent directory is watched rather
// than the file so that editors replacing the file by rename are noticed.
func (s *session) watch(ctx context.Context, path string, methods []dp.Method, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", path, err)
	}
	s.log.Info("watching definition", "path", path, "debounce", debounce)

	s.resolve(ctx, path, methods)

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !relevant(event, path) {
				continue
			}
			s.log.Debug("file event", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			s.resolve(ctx, path, methods)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			s.log.Error("file watcher error", "error", err)
		}
	}
}

func (s *session) resolve(ctx context.Context, path string, methods []dp.Method) {
	m, err := mdp.Load(path)
	if err != nil {
		s.log.Error("definition rejected", "path", path, "error", err)
		return
	}
	if _, err := s.solve(ctx, m, methods); err != nil {
		s.log.Error("solve failed", "path", path, "error", err)
	}
}

func relevant(event fsnotify.Event, path string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == path
}
