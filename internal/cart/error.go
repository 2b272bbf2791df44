package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMissingKey        = errors.New("cart key requires a user id or session key")

	// -- Resource State --
	ErrItemNotFound = errors.New("cart item not found")
)
