package rest

import (
	"net/http"
	"strconv"
	"time"

	"storefront-be/internal/catalog"
	"storefront-be/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type productRequest struct {
	Title              string           `json:"title" binding:"required"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price" binding:"required"`
	StockQuantity      int              `json:"stock_quantity"`
	CategoryID         uuid.UUID        `json:"category_id" binding:"required"`
	BrandID            *uuid.UUID       `json:"brand_id"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	DiscountStart      *time.Time       `json:"discount_start_date"`
	DiscountEnd        *time.Time       `json:"discount_end_date"`
	IsFeatured         bool             `json:"is_featured"`
	IsActive           *bool            `json:"is_active"`
}

func (r productRequest) toProduct() catalog.Product {
	p := catalog.Product{
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		CategoryID:    r.CategoryID,
		BrandID:       r.BrandID,
		DiscountStart: r.DiscountStart,
		DiscountEnd:   r.DiscountEnd,
		IsFeatured:    r.IsFeatured,
		IsActive:      true,
	}
	if r.DiscountPercentage != nil {
		p.DiscountPercentage = *r.DiscountPercentage
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.svc.CreateProduct(c.Request.Context(), actor, req.toProduct())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := req.toProduct()
	p.ID = id

	updated, err := h.svc.UpdateProduct(c.Request.Context(), actor, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	opts := catalog.ProductQueryOptions{
		OnlyActive: true,
		Limit:      parseIntQuery(c, "limit", 20),
		Page:       parseIntQuery(c, "page", 1),
	}

	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			opts.CategoryID = &id
		}
	}
	if v := c.Query("brand_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			opts.BrandID = &id
		}
	}
	if v := c.Query("seller_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			opts.SellerID = &id
		}
	}
	if v := c.Query("tag_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			opts.TagID = &id
		}
	}
	if v := c.Query("search"); v != "" {
		opts.Search = &v
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		opts.Featured = &featured
	}

	products, err := h.svc.ListProducts(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "page": opts.Page, "limit": opts.Limit})
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.svc.DeleteProduct(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) TagProduct(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		TagIDs []uuid.UUID `json:"tag_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.TagProduct(c.Request.Context(), actor, id, req.TagIDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat := catalog.Category{Name: req.Name, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	created, err := h.svc.CreateCategory(c.Request.Context(), actor, cat)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	cat, err := h.svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat := catalog.Category{ID: id, Name: req.Name, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	updated, err := h.svc.UpdateCategory(c.Request.Context(), actor, cat)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	if err := h.svc.DeleteCategory(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b := catalog.Brand{Name: req.Name, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	created, err := h.svc.CreateBrand(c.Request.Context(), actor, b)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, err := h.svc.ListBrands(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand id"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b := catalog.Brand{ID: id, Name: req.Name, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	updated, err := h.svc.UpdateBrand(c.Request.Context(), actor, b)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand id"})
		return
	}

	if err := h.svc.DeleteBrand(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.svc.CreateTag(c.Request.Context(), actor, catalog.Tag{Name: req.Name, Color: req.Color})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) CreateReview(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Title   string `json:"title"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.svc.CreateReview(c.Request.Context(), actor, catalog.Review{
		ProductID: productID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) ListReviews(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	reviews, err := h.svc.ListReviews(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *CatalogHandler) ToggleWishlist(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	added, err := h.svc.ToggleWishlist(c.Request.Context(), actor, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (h *CatalogHandler) ListWishlist(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	items, err := h.svc.ListWishlist(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func parseIntQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
