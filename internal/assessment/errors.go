package assessment

import "errors"

var (
	ErrOutOfRange        = errors.New("question index out of range")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidState      = errors.New("invalid state")
)
