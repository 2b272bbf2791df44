package rest

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	svc cart.Service
}

func NewCartHandler(svc cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

// cartKey resolves the cart identity: the authenticated user wins, guests
// fall back to the X-Session-Key header.
func cartKey(c *gin.Context) (cart.Key, bool) {
	if actor, ok := middleware.ActorFrom(c); ok {
		return cart.UserKey(actor.ID), true
	}
	if key, ok := middleware.SessionKeyFrom(c); ok {
		return cart.SessionKeyOf(key), true
	}
	return cart.Key{}, false
}

func (h *CartHandler) GetCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		respondError(c, cart.ErrMissingKey)
		return
	}

	result, err := h.svc.GetCart(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		respondError(c, cart.ErrMissingKey)
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), key, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		respondError(c, cart.ErrMissingKey)
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.svc.UpdateItemQuantity(c.Request.Context(), key, itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		respondError(c, cart.ErrMissingKey)
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), key, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	key, ok := cartKey(c)
	if !ok {
		respondError(c, cart.ErrMissingKey)
		return
	}

	if err := h.svc.ClearCart(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
