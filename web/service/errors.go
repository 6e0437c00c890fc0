package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrBadPassword   = errors.New("incorrect password")
	ErrDuplicateUser = errors.New("a user with this email already exists")

	ErrPermissionDenied = errors.New("permission denied")
	ErrCannotDeleteSelf = fmt.Errorf("%w: you cannot delete yourself", ErrPermissionDenied)
	ErrProtectedUser    = fmt.Errorf("%w: the administrator account cannot be modified", ErrPermissionDenied)

	ErrNoResults          = errors.New("no metabolites matched the search")
	ErrMetaboliteNotFound = errors.New("metabolite not found")
	ErrBackendUnavailable = errors.New("database unavailable")
)

// ValidationError reports user input that was rejected before any store
// call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	ErrNoAttributes  = &ValidationError{Reason: "no search attribute selected"}
	ErrNoWeightBound = &ValidationError{Field: "weight", Reason: "a minimum or maximum weight is required"}
	ErrWeightRange   = &ValidationError{Field: "weight", Reason: "minimum weight cannot be greater than maximum weight"}
)

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func backendError(err error) error {
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}
