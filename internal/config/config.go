// Package config loads the dynaprog CLI configuration.
//
// Configuration is read from a YAML file, completed with defaults, then
// overridden from DYNAPROG_* environment variables and validated. A missing
// file is not an error: the defaults apply.
package config

// Config is the root of the CLI configuration document.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
	Rollout RolloutConfig `yaml:"rollout"`
}

// SolverConfig holds the termination parameters shared by both solvers.
type SolverConfig struct {
	// Threshold is the max-norm delta below which sweeping stops.
	Threshold float64 `yaml:"threshold"`

	// TieTolerance is how close two action values must be to count as tied.
	TieTolerance float64 `yaml:"tie_tolerance"`

	// MaxSweeps caps the total number of backups. Zero means no cap.
	MaxSweeps int `yaml:"max_sweeps"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OutputConfig controls what the solve command writes besides the tables.
type OutputConfig struct {
	// HistoryLog is a directory receiving log_<method>.txt files. Empty disables.
	HistoryLog string `yaml:"history_log"`

	// HistoryStep keeps every n-th snapshot in the log and the chart.
	HistoryStep int `yaml:"history_step"`

	// Chart is the HTML file for the convergence chart. Empty disables.
	Chart string `yaml:"chart"`

	// MetricsTextfile is a Prometheus textfile path. Empty disables.
	MetricsTextfile string `yaml:"metrics_textfile"`

	Color bool `yaml:"color"`
}

// RolloutConfig drives the Monte Carlo check of a solved policy.
type RolloutConfig struct {
	// Episodes is the number of sampled episodes. Zero disables the check.
	Episodes int `yaml:"episodes"`

	Horizon int    `yaml:"horizon"`
	Seed    uint64 `yaml:"seed"`

	// Start names the start state. Empty means the first state.
	Start string `yaml:"start"`
}
