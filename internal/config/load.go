package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration at path, applies defaults and environment
// overrides, and validates the result. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if err := decode(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// applyEnvOverrides applies DYNAPROG_SECTION_FIELD variables. Values that do
// not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("DYNAPROG_SOLVER_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Solver.Threshold = f
		}
	}
	if val := os.Getenv("DYNAPROG_SOLVER_MAX_SWEEPS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Solver.MaxSweeps = i
		}
	}
	if val := os.Getenv("DYNAPROG_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("DYNAPROG_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
