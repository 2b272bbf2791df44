package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	StatusDraft    ProductStatus = "draft"
	StatusPending  ProductStatus = "pending"
	StatusApproved ProductStatus = "approved"
	StatusRejected ProductStatus = "rejected"
)

type Product struct {
	ID                 uuid.UUID       `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	StockQuantity      int             `json:"stock_quantity"`
	CategoryID         uuid.UUID       `json:"category_id"`
	BrandID            *uuid.UUID      `json:"brand_id"`
	SellerID           uuid.UUID       `json:"seller_id"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountStart      *time.Time      `json:"discount_start_date"`
	DiscountEnd        *time.Time      `json:"discount_end_date"`
	Status             ProductStatus   `json:"status"`
	IsFeatured         bool            `json:"is_featured"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	Tags []Tag `json:"tags,omitempty"`
}

// IsDiscountActive reports whether the discount window covers now.
// Both bounds are inclusive.
func (p Product) IsDiscountActive(now time.Time) bool {
	return p.DiscountPercentage.IsPositive() &&
		p.DiscountStart != nil &&
		p.DiscountEnd != nil &&
		!now.Before(*p.DiscountStart) &&
		!now.After(*p.DiscountEnd)
}

// DiscountedPrice returns price - price*pct/100 when the discount window is
// active, otherwise the plain price. Rounded to 2 decimal places.
func (p Product) DiscountedPrice(now time.Time) decimal.Decimal {
	if !p.IsDiscountActive(now) {
		return p.Price.Round(2)
	}
	discount := p.Price.Mul(p.DiscountPercentage).Div(decimal.NewFromInt(100))
	return p.Price.Sub(discount).Round(2)
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Brand struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type Review struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"product_id"`
	UserID             uuid.UUID `json:"user_id"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `json:"product,omitempty"`
}
