package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds the order-number regeneration loop. Collisions
// are detected through the uniqueness constraint, never assumed impossible.
const maxNumberAttempts = 5

type Service interface {
	CreateOrder(ctx context.Context, actor user.Actor, params CreateOrderParams) (Order, error)
	GetOrder(ctx context.Context, actor user.Actor, id uuid.UUID) (Order, error)
	ListOrders(ctx context.Context, actor user.Actor, opts ListOptions) ([]Order, error)
	UpdateStatus(ctx context.Context, actor user.Actor, orderID uuid.UUID, newStatus Status, note string) (Order, error)
	SetPaymentStatus(ctx context.Context, actor user.Actor, orderID uuid.UUID, status PaymentStatus, reference string) (Order, error)
	GetStats(ctx context.Context, actor user.Actor, scope ListScope) (Stats, error)

	CreateAddress(ctx context.Context, actor user.Actor, a ShippingAddress) (ShippingAddress, error)
	ListAddresses(ctx context.Context, actor user.Actor) ([]ShippingAddress, error)
	GetAddress(ctx context.Context, actor user.Actor, id uuid.UUID) (ShippingAddress, error)
	UpdateAddress(ctx context.Context, actor user.Actor, a ShippingAddress) (ShippingAddress, error)
	DeleteAddress(ctx context.Context, actor user.Actor, id uuid.UUID) error
}

type service struct {
	repo    Repository
	pricing config.PricingPolicy
}

func NewService(repo Repository, pricing config.PricingPolicy) Service {
	return &service{repo: repo, pricing: pricing}
}

// CreateOrder snapshots prices, decrements stock and writes the initial
// history entry as one unit. Any failing step aborts the whole creation.
func (s *service) CreateOrder(ctx context.Context, actor user.Actor, params CreateOrderParams) (Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("user_id", actor.ID.String()),
		zap.Int("item_count", len(params.Items)),
	)

	log.Info("create order started")

	// 1. Validate input shape
	if len(params.Items) == 0 {
		metrics.OrdersRejected.Inc()
		return Order{}, ErrEmptyOrder
	}
	for _, in := range params.Items {
		if in.Quantity <= 0 {
			metrics.OrdersRejected.Inc()
			return Order{}, fmt.Errorf("%w: product %s", ErrInvalidQuantity, in.ProductID)
		}
	}

	// 2. Snapshot prices
	ids := make([]uuid.UUID, 0, len(params.Items))
	for _, in := range params.Items {
		ids = append(ids, in.ProductID)
	}
	products, err := s.repo.GetProductsForOrder(ctx, ids)
	if err != nil {
		log.Error("failed to load products", zap.Error(err))
		return Order{}, err
	}

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]Item, 0, len(params.Items))

	for _, in := range params.Items {
		p, ok := products[in.ProductID]
		if !ok {
			metrics.OrdersRejected.Inc()
			return Order{}, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
		}

		unitPrice := p.DiscountedPrice(now)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		items = append(items, Item{
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
	}

	// 3. Totals from the injected pricing policy
	subtotal = subtotal.Round(2)
	shippingCost := s.pricing.ShippingCost.Round(2)
	taxAmount := subtotal.Mul(s.pricing.TaxRate).Round(2)
	totalAmount := subtotal.Add(shippingCost).Add(taxAmount)

	log.Debug("totals calculated",
		zap.String("subtotal", subtotal.String()),
		zap.String("shipping_cost", shippingCost.String()),
		zap.String("tax_amount", taxAmount.String()),
		zap.String("total_amount", totalAmount.String()),
	)

	// Blank billing means "same as shipping".
	billing := params.Billing
	if billing.IsBlank() {
		billing = params.Shipping
	}

	o := Order{
		ID:            uuid.New(),
		UserID:        actor.ID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Subtotal:      subtotal,
		ShippingCost:  shippingCost,
		TaxAmount:     taxAmount,
		TotalAmount:   totalAmount,
		Shipping:      params.Shipping,
		Billing:       billing,
		PaymentMethod: params.PaymentMethod,
		Items:         items,
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = "card"
	}

	// 4. Persist, regenerating the order number on collision
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		o.OrderNumber = GenerateOrderNumber()

		err = s.repo.CreateOrderTx(ctx, &o)
		if err == nil {
			metrics.OrdersCreated.Inc()
			log.Info("order created",
				zap.String("order_id", o.ID.String()),
				zap.String("order_number", o.OrderNumber),
			)
			return o, nil
		}
		if errors.Is(err, ErrNumberCollision) {
			metrics.NumberRetries.Inc()
			log.Warn("order number collision, regenerating",
				zap.Int("attempt", attempt+1))
			continue
		}
		if errors.Is(err, ErrInsufficientStock) {
			metrics.StockConflicts.Inc()
		}
		log.Error("order creation failed", zap.Error(err))
		return Order{}, err
	}

	log.Error("order number attempts exhausted")
	return Order{}, ErrNumberExhausted
}

func (s *service) GetOrder(ctx context.Context, actor user.Actor, id uuid.UUID) (Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return Order{}, err
	}

	if o.UserID == actor.ID || actor.IsStaff {
		return o, nil
	}
	if actor.IsSeller {
		owns, err := s.repo.SellerHasProductInOrder(ctx, id, actor.ID)
		if err != nil {
			return Order{}, err
		}
		if owns {
			return o, nil
		}
	}

	// Hide existence from unrelated callers.
	return Order{}, ErrOrderNotFound
}

func (s *service) ListOrders(ctx context.Context, actor user.Actor, opts ListOptions) ([]Order, error) {
	switch opts.Scope {
	case ScopeAll:
		if !actor.IsStaff {
			return nil, ErrForbidden
		}
	case ScopeSeller:
		if !actor.IsSeller && !actor.IsStaff {
			return nil, ErrForbidden
		}
	}

	opts.ActorID = actor.ID
	return s.repo.ListOrders(ctx, opts)
}

// UpdateStatus validates the transition against the fixed table and applies
// it. payment_status is never touched here.
func (s *service) UpdateStatus(ctx context.Context, actor user.Actor, orderID uuid.UUID, newStatus Status, note string) (Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID.String()),
		zap.String("new_status", string(newStatus)),
	)

	if !newStatus.IsValid() {
		return Order{}, fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	// Only staff, or a seller owning at least one product in the order.
	if !actor.IsStaff {
		if !actor.IsSeller {
			return Order{}, ErrForbidden
		}
		owns, err := s.repo.SellerHasProductInOrder(ctx, orderID, actor.ID)
		if err != nil {
			return Order{}, err
		}
		if !owns {
			return Order{}, ErrForbidden
		}
	}

	if !o.Status.CanTransitionTo(newStatus) {
		log.Warn("transition rejected", zap.String("from", string(o.Status)))
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, newStatus)
	}

	actorID := actor.ID
	if err := s.repo.UpdateStatusTx(ctx, orderID, o.Status, newStatus, note, &actorID); err != nil {
		return Order{}, err
	}

	metrics.StatusTransitions.Inc()
	log.Info("status updated", zap.String("from", string(o.Status)))

	return s.repo.GetOrderByID(ctx, orderID)
}

func (s *service) SetPaymentStatus(ctx context.Context, actor user.Actor, orderID uuid.UUID, status PaymentStatus, reference string) (Order, error) {
	if !actor.IsStaff {
		return Order{}, ErrForbidden
	}

	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		return Order{}, err
	}
	if err := s.repo.UpdatePaymentStatus(ctx, orderID, status, reference); err != nil {
		return Order{}, err
	}
	return s.repo.GetOrderByID(ctx, orderID)
}

func (s *service) GetStats(ctx context.Context, actor user.Actor, scope ListScope) (Stats, error) {
	switch scope {
	case ScopeAll:
		if !actor.IsStaff {
			return Stats{}, ErrForbidden
		}
	case ScopeSeller:
		if !actor.IsSeller {
			return Stats{}, ErrForbidden
		}
	}
	return s.repo.GetStats(ctx, scope, actor.ID)
}

func (s *service) CreateAddress(ctx context.Context, actor user.Actor, a ShippingAddress) (ShippingAddress, error) {
	a.UserID = actor.ID
	return s.repo.CreateAddress(ctx, a)
}

func (s *service) ListAddresses(ctx context.Context, actor user.Actor) ([]ShippingAddress, error) {
	return s.repo.ListAddresses(ctx, actor.ID)
}

func (s *service) GetAddress(ctx context.Context, actor user.Actor, id uuid.UUID) (ShippingAddress, error) {
	return s.repo.GetAddress(ctx, id, actor.ID)
}

func (s *service) UpdateAddress(ctx context.Context, actor user.Actor, a ShippingAddress) (ShippingAddress, error) {
	a.UserID = actor.ID
	return s.repo.UpdateAddress(ctx, a)
}

func (s *service) DeleteAddress(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	return s.repo.DeleteAddress(ctx, id, actor.ID)
}
