// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInvalidCard         = errors.New("card status forbids operation")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotAccessible       = errors.New("card is not accessible")
	ErrAccessDenied        = errors.New("access denied")
	ErrConflict            = errors.New("card number already exists")
	ErrSameCardTransfer    = errors.New("cannot transfer to the same card")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
