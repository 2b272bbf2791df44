package order

import "errors"

var (
	// -- Validation & Input --
	ErrEmptyOrder      = errors.New("order must have at least one item")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrUnknownStatus   = errors.New("unknown order status")

	// -- Resource State --
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrAddressNotFound = errors.New("shipping address not found")

	// -- Authorization --
	ErrForbidden = errors.New("actor lacks permission for this order")

	// -- State Machine --
	ErrInvalidTransition = errors.New("status transition not permitted")

	// -- Concurrency / Conflict --
	ErrInsufficientStock = errors.New("insufficient stock for ordered quantity")
	ErrNumberCollision   = errors.New("order number already taken")
	ErrNumberExhausted   = errors.New("could not generate a unique order number")
)
