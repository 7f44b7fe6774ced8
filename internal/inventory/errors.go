package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every input error detected before a store call.
	ErrValidation = errors.New("invalid pantry item")

	ErrInvalidName     = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: date must be an ISO 8601 calendar date", ErrValidation)
	ErrInvalidID       = fmt.Errorf("%w: item id is required", ErrValidation)

	// ErrNoSession rejects an operation attempted without an authenticated
	// session, or for a user other than the signed-in one.
	ErrNoSession = errors.New("no authenticated session")
)

// StoreError reports a failed Document Store call. It unwraps to the store's
// error so callers can match store.ErrNotFound.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("pantry store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
