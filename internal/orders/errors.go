package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCreation          = errors.New("creation failed")
	ErrInvalidRequest    = errors.New("invalid request")
)

// NotFoundError reports a reference that did not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

// InsufficientStockError names the product whose stock could not cover the request.
type InsufficientStockError struct {
	ProductID   int
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return "No hay suficientes " + e.ProductName
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// CreationError wraps a persistence failure while creating an order or one of its lines.
func CreationError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCreation, what, err)
}

func InvalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
