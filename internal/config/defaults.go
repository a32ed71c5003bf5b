package config

// Default values for configuration fields.
const (
	DefaultThreshold    = 1e-6
	DefaultTieTolerance = 1e-9

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultHistoryStep = 1
	DefaultColor       = true

	DefaultRolloutHorizon = 1000
	DefaultRolloutSeed    = 7375
)

// Default returns a configuration holding only default values. Load decodes
// the file over it, so keys absent from the file keep these values.
func Default() *Config {
	cfg := &Config{
		Solver: SolverConfig{
			Threshold:    DefaultThreshold,
			TieTolerance: DefaultTieTolerance,
		},
		Output: OutputConfig{Color: DefaultColor},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields for which zero is not a usable
// setting. Solver tolerances and booleans are left alone: an explicit 0 or
// false is meaningful there.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Output.HistoryStep == 0 {
		cfg.Output.HistoryStep = DefaultHistoryStep
	}
	if cfg.Rollout.Horizon == 0 {
		cfg.Rollout.Horizon = DefaultRolloutHorizon
	}
	if cfg.Rollout.Seed == 0 {
		cfg.Rollout.Seed = DefaultRolloutSeed
	}
}
