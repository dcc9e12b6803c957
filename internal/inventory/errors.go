package inventory

import "errors"

var (
	// ErrRowOutOfRange indicates an edit referenced a row index the table does not have.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrInsufficientStock indicates a take request exceeds the row quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity indicates a non-positive amount where units must move.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
