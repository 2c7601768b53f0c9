package unitymeta

import "errors"

var (
	// ErrMalformed indicates the data is not valid YAML.
	ErrMalformed = errors.New("malformed meta document")

	// ErrNotMeta indicates valid YAML that is not a meta document (the
	// top level is not a mapping or has no guid).
	ErrNotMeta = errors.New("not a meta document")
)
