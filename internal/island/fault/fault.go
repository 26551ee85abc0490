// Package fault defines the error kinds shared by the island and layout
// packages.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid generation input. Raised before any allocation.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingCollaborator marks a stage that cannot run because a
	// collaborator (surface, sink, mesh) is absent. Fatal to that stage only.
	ErrMissingCollaborator = errors.New("missing collaborator")

	// ErrUnresolvableStep marks a layout step that was skipped.
	ErrUnresolvableStep = errors.New("unresolvable layout step")
)

// ConfigError describes one invalid field.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Config builds a ConfigError.
func Config(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

// Missing wraps ErrMissingCollaborator with the collaborator name.
func Missing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingCollaborator, what)
}

// Unresolvable wraps ErrUnresolvableStep with a description.
func Unresolvable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnresolvableStep, fmt.Sprintf(format, args...))
}
