package domain

import "errors"

// Tagged errors returned by booking operations. The HTTP boundary maps each
// to a single status class; nothing else inspects error text.
var (
	ErrValidation        = errors.New("booking: invalid input")
	ErrUnknownReference  = errors.New("booking: unknown catalog reference")
	ErrNotFound          = errors.New("booking: not found")
	ErrForbidden         = errors.New("booking: forbidden")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrAuth              = errors.New("booking: authentication failed")
)
