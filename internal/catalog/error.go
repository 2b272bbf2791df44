package catalog

import "errors"

var (
	// -- Resource State --
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrReviewExists     = errors.New("product already reviewed by this user")

	// -- Validation & Input --
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidDiscount = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNameTaken       = errors.New("name already in use")

	// -- Authorization --
	ErrNotOwner  = errors.New("product belongs to another seller")
	ErrForbidden = errors.New("staff permission required")
)
