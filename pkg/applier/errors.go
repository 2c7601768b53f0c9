package applier

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted is returned when the run is cancelled between assets.
	ErrInterrupted = errors.New("texture pass was interrupted")

	// ErrNilRegistry is returned when an Applier has no registry to work on.
	ErrNilRegistry = errors.New("registry is nil")
)

// ApplyError represents a failure while processing one asset, or the
// enumeration step when Path is empty.
type ApplyError struct {
	Path string
	Op   string
	Err  error
}

func (e *ApplyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Op == "" {
		return fmt.Sprintf("apply error %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func wrapFind(err error) error {
	return &ApplyError{Op: "find", Err: err}
}

func wrapResolve(path string, err error) error {
	return &ApplyError{Path: path, Op: "resolve", Err: err}
}

func wrapReimport(path string, err error) error {
	return &ApplyError{Path: path, Op: "reimport", Err: err}
}

func wrapInterrupted(path string, cause error) error {
	return &ApplyError{Path: path, Op: "apply", Err: fmt.Errorf("%w: %w", ErrInterrupted, cause)}
}
