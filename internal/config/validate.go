package config

import (
	"fmt"
	"math"
	"strings"
)

// FieldError is a validation failure for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "solver.threshold".
	Field string

	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks cfg and returns a ValidationError listing every problem,
// or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSolver(&cfg.Solver)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateRollout(&cfg.Rollout)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateSolver(cfg *SolverConfig) []FieldError {
	var errs []FieldError
	if !(cfg.Threshold >= 0) || math.IsInf(cfg.Threshold, 0) {
		errs = append(errs, FieldError{
			Field:   "solver.threshold",
			Message: "threshold must be a non-negative number",
		})
	}
	if cfg.TieTolerance < 0 || math.IsNaN(cfg.TieTolerance) {
		errs = append(errs, FieldError{
			Field:   "solver.tie_tolerance",
			Message: "tie tolerance must be non-negative",
		})
	}
	if cfg.MaxSweeps < 0 {
		errs = append(errs, FieldError{
			Field:   "solver.max_sweeps",
			Message: "max sweeps must be non-negative",
		})
	}
	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q (must be debug, info, warn or error)", cfg.Level),
		})
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q (must be json or text)", cfg.Format),
		})
	}
	return errs
}

func validateOutput(cfg *OutputConfig) []FieldError {
	if cfg.HistoryStep < 1 {
		return []FieldError{{
			Field:   "output.history_step",
			Message: "history step must be at least 1",
		}}
	}
	return nil
}

func validateRollout(cfg *RolloutConfig) []FieldError {
	var errs []FieldError
	if cfg.Episodes < 0 {
		errs = append(errs, FieldError{
			Field:   "rollout.episodes",
			Message: "episodes must be non-negative",
		})
	}
	if cfg.Horizon < 1 {
		errs = append(errs, FieldError{
			Field:   "rollout.horizon",
			Message: "horizon must be at least 1",
		})
	}
	return errs
}
