package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address holds the contact fields captured on an order. The same shape is
// used for the shipping and billing snapshots.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zip_code"`
}

func (a Address) IsBlank() bool {
	return a == Address{}
}

// Order is an immutable-after-creation snapshot. Only status,
// payment_status and the lifecycle timestamps mutate after insert.
type Order struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`

	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`

	Shipping Address `json:"shipping"`
	Billing  Address `json:"billing"`

	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`

	Items   []Item         `json:"items,omitempty"`
	History []StatusChange `json:"status_history,omitempty"`
}

// Item carries the unit price captured at order-creation time, decoupled
// from later catalog changes.
type Item struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// StatusChange is one append-only history row. Never mutated or deleted.
type StatusChange struct {
	ID        uuid.UUID  `json:"id"`
	OrderID   uuid.UUID  `json:"order_id"`
	Status    Status     `json:"status"`
	Note      string     `json:"note"`
	ActorID   *uuid.UUID `json:"updated_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// ShippingAddress is a saved address on a user's account, reusable at
// checkout. At most one default per user.
type ShippingAddress struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Address
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderParams struct {
	Items         []ItemInput
	Shipping      Address
	Billing       Address
	PaymentMethod string
}

// ListScope selects which orders a caller sees.
type ListScope int

const (
	ScopeOwn    ListScope = iota // the actor's own orders
	ScopeSeller                  // orders containing the actor's products
	ScopeAll                     // everything; staff only
)

type Stats struct {
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	ProcessingOrders int             `json:"processing_orders"`
	ShippedOrders    int             `json:"shipped_orders"`
	DeliveredOrders  int             `json:"delivered_orders"`
	CancelledOrders  int             `json:"cancelled_orders"`
	RecentOrders     int             `json:"recent_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
}
