package enigma

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package matches exactly one of
// them under errors.Is.
var (
	// ErrInvalidConfig is returned while building components from settings.
	ErrInvalidConfig = errors.New("invalid enigma configuration")
	// ErrInvalidInput is returned when a component is handed a rune outside the alphabet.
	ErrInvalidInput = errors.New("invalid enigma input")
)

// Configuration failure causes.
var (
	ErrUnknownRotor     = errors.New("unknown rotor")
	ErrUnknownReflector = errors.New("unknown reflector")
	ErrMalformedPair    = errors.New("malformed plugboard pair")
	ErrDuplicateLetter  = errors.New("letter used in more than one plugboard pair")
	ErrBadLetter        = errors.New("not a letter a-z")
	ErrRotorCount       = errors.New("exactly three rotors are required")
)

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap exposes both the specific cause and the configuration class.
func (e *ConfigError) Unwrap() []error {
	return []error{e.Err, ErrInvalidConfig}
}

// Reason returns a short machine-friendly label for the failure cause, used as
// a metrics label by outer layers.
func (e *ConfigError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrUnknownRotor):
		return "unknown_rotor"
	case errors.Is(e.Err, ErrUnknownReflector):
		return "unknown_reflector"
	case errors.Is(e.Err, ErrMalformedPair):
		return "malformed_pair"
	case errors.Is(e.Err, ErrDuplicateLetter):
		return "duplicate_letter"
	case errors.Is(e.Err, ErrBadLetter):
		return "bad_letter"
	case errors.Is(e.Err, ErrRotorCount):
		return "rotor_count"
	default:
		return "other"
	}
}

func configErr(field, value string, cause error) error {
	return &ConfigError{Field: field, Value: value, Err: cause}
}

// InputError reports a rune rejected by a single component.
type InputError struct {
	Component string
	Rune      rune
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %q is outside the alphabet", e.Component, e.Rune)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// ReasonOf returns the ConfigError reason for err, or "other".
func ReasonOf(err error) string {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Reason()
	}
	return "other"
}
