package assetdb

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedKind is returned by Find for asset kinds other than
	// textures.
	ErrUnsupportedKind = errors.New("unsupported asset kind")

	// ErrNotProject is returned by Open when the root is not a directory.
	ErrNotProject = errors.New("not a project directory")

	// ErrScopeNotFound is returned by Find when a search folder is missing.
	ErrScopeNotFound = errors.New("search folder not found")

	// ErrOutsideProject is returned for asset paths that leave the project.
	ErrOutsideProject = errors.New("path is outside the project")

	// ErrModified is returned when a .meta file changed on disk between
	// resolve and commit.
	ErrModified = errors.New("meta file modified concurrently")

	// ErrNoJournal is returned by operations that need a journal when the
	// database was opened without one.
	ErrNoJournal = errors.New("no journal configured")
)

// MetaError represents a failure on one asset's .meta file.
type MetaError struct {
	Path string
	Op   string
	Err  error
}

func (e *MetaError) Error() string {
	return fmt.Sprintf("%s %s.meta: %v", e.Op, e.Path, e.Err)
}

func (e *MetaError) Unwrap() error {
	return e.Err
}
