package theme

import "errors"

// Errors returned by the theme operations. They are wrapped with details, so
// compare with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("theme not found")
	ErrConflict     = errors.New("theme already exists")
	ErrForbidden    = errors.New("operation not permitted")
	ErrIO           = errors.New("file operation failed")
)
