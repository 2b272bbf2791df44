package rest

import (
	"errors"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/catalog"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors to HTTP status codes. Unknown errors are
// logged and returned as an opaque 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, catalog.ErrForbidden),
		errors.Is(err, catalog.ErrNotOwner):
		return http.StatusForbidden

	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrTokenNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrBrandNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrAddressNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, catalog.ErrReviewExists),
		errors.Is(err, catalog.ErrNameTaken),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict

	case errors.Is(err, user.ErrTokenExpired),
		errors.Is(err, user.ErrWeakPassword),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidDiscount),
		errors.Is(err, catalog.ErrInvalidRating),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrMissingKey),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrUnknownStatus):
		return http.StatusBadRequest

	case errors.Is(err, order.ErrNumberExhausted):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
