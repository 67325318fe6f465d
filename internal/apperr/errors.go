// Package apperr defines sentinel errors shared across service boundaries.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotManaged marks a write target that is not a recognized record
	// document (missing or foreign "type" discriminator).
	ErrNotManaged = errors.New("not a managed document")
)
