package inventory

import "errors"

// Every rejection leaves the grid unchanged. Callers test with errors.Is.
var (
	ErrOutOfBounds          = errors.New("inventory: cells out of bounds")
	ErrOccupied             = errors.New("inventory: cells occupied")
	ErrInsufficientSpace    = errors.New("inventory: not enough space")
	ErrInsufficientQuantity = errors.New("inventory: not enough items")
	ErrInvalidReference     = errors.New("inventory: invalid reference")
	ErrNoStack              = errors.New("inventory: no stack at cell")
	ErrInvalidAmount        = errors.New("inventory: invalid amount")
)
