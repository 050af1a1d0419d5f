// Package errors defines the domain errors shared by every module. Use cases
// wrap them with context and httputil maps them to HTTP status codes, so a
// handler never inspects infrastructure errors directly.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested user, conversation or token does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation lost a race, e.g. a token already redeemed.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid credentials, including unknown tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is authenticated but not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrExpired indicates a time-boxed credential or grant is past its expiry.
	ErrExpired = errors.New("expired")
)

// Wrap adds context to err while keeping it matchable with Is. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Invalid returns an ErrInvalidInput carrying a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
