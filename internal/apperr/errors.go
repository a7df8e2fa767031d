// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrCorrupt  = errors.New("corrupt data")
	ErrInvalid  = errors.New("invalid argument")
)
