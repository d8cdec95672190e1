package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart is returned when an order is placed from a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoIdentity means neither a user nor a session identified the caller.
	ErrNoIdentity = errors.New("no cart identity")
	// ErrInsufficientStock is wrapped with the product name when checkout would oversell.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrAlreadyExists indicates a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput covers malformed requests that are not tied to a single field.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
