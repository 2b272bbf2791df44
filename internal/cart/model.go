package cart

import (
	"time"

	"storefront-be/internal/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Key identifies the single cart a caller may hold: authenticated carts are
// keyed by user id, guest carts by an opaque session key. Exactly one of the
// two is set.
type Key struct {
	UserID     *uuid.UUID
	SessionKey *string
}

func UserKey(id uuid.UUID) Key {
	return Key{UserID: &id}
}

func SessionKeyOf(key string) Key {
	return Key{SessionKey: &key}
}

type Cart struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id"`
	SessionKey *string    `json:"session_key"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Items []Item `json:"items"`
}

type Item struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product catalog.Product `json:"product"`
}

// TotalPrice is the line total at the product's current discounted price.
func (i Item) TotalPrice(now time.Time) decimal.Decimal {
	return i.Product.DiscountedPrice(now).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalItems sums quantities across all lines.
func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums line totals at current discounted prices.
func (c Cart) TotalPrice(now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice(now))
	}
	return total.Round(2)
}
