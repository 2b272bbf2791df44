package rest

import (
	"net/http"

	"storefront-be/internal/middleware"
	"storefront-be/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	Items         []order.ItemInput `json:"items" binding:"required"`
	Shipping      order.Address     `json:"shipping_address" binding:"required"`
	Billing       order.Address     `json:"billing_address"`
	PaymentMethod string            `json:"payment_method"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.svc.CreateOrder(c.Request.Context(), actor, order.CreateOrderParams{
		Items:         req.Items,
		Shipping:      req.Shipping,
		Billing:       req.Billing,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	o, err := h.svc.GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	opts := order.ListOptions{
		Scope: scopeFromQuery(c),
		Limit: parseIntQuery(c, "limit", 20),
		Page:  parseIntQuery(c, "page", 1),
	}

	if v := c.Query("status"); v != "" {
		st, err := order.ParseStatus(v)
		if err != nil {
			respondError(c, err)
			return
		}
		opts.Status = &st
	}

	orders, err := h.svc.ListOrders(c.Request.Context(), actor, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "page": opts.Page, "limit": opts.Limit})
}

func scopeFromQuery(c *gin.Context) order.ListScope {
	switch c.Query("scope") {
	case "seller":
		return order.ScopeSeller
	case "all":
		return order.ScopeAll
	default:
		return order.ScopeOwn
	}
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	o, err := h.svc.UpdateStatus(c.Request.Context(), actor, id, st, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) SetPaymentStatus(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req struct {
		PaymentStatus    string `json:"payment_status" binding:"required"`
		PaymentReference string `json:"payment_reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.svc.SetPaymentStatus(c.Request.Context(), actor, id,
		order.PaymentStatus(req.PaymentStatus), req.PaymentReference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) GetStats(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	stats, err := h.svc.GetStats(c.Request.Context(), actor, scopeFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type addressRequest struct {
	order.Address
	IsDefault bool `json:"is_default"`
}

func (h *OrderHandler) CreateAddress(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.svc.CreateAddress(c.Request.Context(), actor, order.ShippingAddress{
		Address:   req.Address,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) ListAddresses(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	addresses, err := h.svc.ListAddresses(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *OrderHandler) GetAddress(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	a, err := h.svc.GetAddress(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *OrderHandler) UpdateAddress(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.svc.UpdateAddress(c.Request.Context(), actor, order.ShippingAddress{
		ID:        id,
		Address:   req.Address,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) DeleteAddress(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	if err := h.svc.DeleteAddress(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
