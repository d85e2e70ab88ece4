package services

import "errors"

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation error")
	ErrStorage           = errors.New("storage error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrDuplicateRequest  = errors.New("duplicate request in progress")
)

func validationf(msg string) error {
	return &fieldError{msg: msg}
}

// fieldError carries a caller-facing message and unwraps to ErrValidation.
type fieldError struct{ msg string }

func (e *fieldError) Error() string { return e.msg }
func (e *fieldError) Unwrap() error { return ErrValidation }
