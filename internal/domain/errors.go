package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrProductNotFound is returned when a referenced product cannot be resolved.
	ErrProductNotFound = errors.New("product not found")
	// ErrRequiresAuth is returned for operations that need a signed-in customer.
	ErrRequiresAuth = errors.New("sign in required")
	// ErrInvalidQuantity is returned when a quantity is below 1.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
