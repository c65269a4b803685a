package services

import (
	"errors"
	"fmt"
)

// Domain errors recovered at the handler boundary and turned into structured
// responses. Anything else is an internal storage failure and maps to 500.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidAPIKey      = errors.New("invalid or inactive api key")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError rejects malformed input before any evaluation happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
