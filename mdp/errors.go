package mdp

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownState  = errors.New("unknown state")
	ErrUnknownAction = errors.New("unknown action")
)

// ConfigurationError reports a definition that cannot become a model.
// Field locates the offending entry in document terms, e.g. "tran_prob[0][stay]".
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "invalid MDP definition"
	if e.Field != "" {
		msg += " at " + e.Field
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// QueryError is returned when a query names a state or action the model
// does not define. Err is ErrUnknownState or ErrUnknownAction.
type QueryError struct {
	Op     string
	State  State
	Action Action
	Err    error
}

func (e *QueryError) Error() string {
	if errors.Is(e.Err, ErrUnknownAction) {
		return fmt.Sprintf("mdp.%s: %v %q for state %q", e.Op, e.Err, e.Action, e.State)
	}
	return fmt.Sprintf("mdp.%s: %v %q", e.Op, e.Err, e.State)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
