package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownValue is returned when an enumerated value has no known name.
	ErrUnknownValue = errors.New("unknown value")

	// ErrOutOfRange is returned for numeric fields outside their bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrEmpty is returned for required fields left empty.
	ErrEmpty = errors.New("value is empty")
)

// ConfigError reports the configuration field that failed validation.
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("config field '%s' (value: %v): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config field '%s': %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
