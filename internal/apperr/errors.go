// Package apperr defines the sentinel errors shared across service surfaces.
package apperr

import "errors"

var (
	// ErrNotFound means the requested document or note has no stored value.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a payload failed its shape constraints.
	ErrValidation = errors.New("validation failed")
	// ErrContention means the write retry budget was exhausted on a busy
	// database. The whole operation is safe to retry later.
	ErrContention = errors.New("write contention")
)
