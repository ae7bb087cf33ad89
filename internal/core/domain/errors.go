package domain

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("malformed identifier")
	ErrUnsupported   = errors.New("operation not supported for kind")
	ErrConflict      = errors.New("identifier already in use")
	ErrInvalidRecord = errors.New("invalid record")
)
