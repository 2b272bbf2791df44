package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/catalog"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type ListOptions struct {
	Scope   ListScope
	ActorID uuid.UUID
	Status  *Status
	Limit   int
	Page    int
}

type Repository interface {
	GetProductsForOrder(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error)
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (Order, error)
	ListOrders(ctx context.Context, opts ListOptions) ([]Order, error)
	SellerHasProductInOrder(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error)
	UpdateStatusTx(ctx context.Context, orderID uuid.UUID, from, to Status, note string, actorID *uuid.UUID) error
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status PaymentStatus, reference string) error
	GetStats(ctx context.Context, scope ListScope, actorID uuid.UUID) (Stats, error)

	CreateAddress(ctx context.Context, a ShippingAddress) (ShippingAddress, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]ShippingAddress, error)
	GetAddress(ctx context.Context, id, userID uuid.UUID) (ShippingAddress, error)
	UpdateAddress(ctx context.Context, a ShippingAddress) (ShippingAddress, error)
	DeleteAddress(ctx context.Context, id, userID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProductsForOrder(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, price, stock_quantity, seller_id,
			discount_percentage, discount_start_date, discount_end_date
		FROM products
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]catalog.Product, len(ids))
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.StockQuantity, &p.SellerID,
			&p.DiscountPercentage, &p.DiscountStart, &p.DiscountEnd); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// CreateOrderTx persists the order, its items, the stock decrements and the
// initial history row in one transaction. Stock is decremented with a
// conditional update so two concurrent orders can never oversell: the row is
// only touched when stock_quantity >= the ordered quantity, and zero
// affected rows aborts the whole creation.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_number", o.OrderNumber),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// 1. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status, payment_status,
			subtotal, shipping_cost, tax_amount, total_amount,
			shipping_first_name, shipping_last_name, shipping_email, shipping_phone,
			shipping_address, shipping_city, shipping_state, shipping_country, shipping_zip_code,
			billing_first_name, billing_last_name, billing_email, billing_phone,
			billing_address, billing_city, billing_state, billing_country, billing_zip_code,
			payment_method
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,
			$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,
			$28
		)
		RETURNING created_at, updated_at
	`,
		o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentStatus,
		o.Subtotal, o.ShippingCost, o.TaxAmount, o.TotalAmount,
		o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.Email, o.Shipping.Phone,
		o.Shipping.Address, o.Shipping.City, o.Shipping.State, o.Shipping.Country, o.Shipping.ZipCode,
		o.Billing.FirstName, o.Billing.LastName, o.Billing.Email, o.Billing.Phone,
		o.Billing.Address, o.Billing.City, o.Billing.State, o.Billing.Country, o.Billing.ZipCode,
		o.PaymentMethod,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation &&
			strings.Contains(pqErr.Constraint, "order_number") {
			log.Warn("order number collision")
			return ErrNumberCollision
		}
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	// 2. Insert items + decrement stock atomically
	for i := range o.Items {
		item := &o.Items[i]
		item.ID = uuid.New()
		item.OrderID = o.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, quantity, unit_price, total_price
			) VALUES ($1,$2,$3,$4,$5,$6)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity,
			item.UnitPrice, item.TotalPrice)
		if err != nil {
			log.Error("failed to insert order item", zap.Error(err))
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $1, updated_at = NOW()
			WHERE id = $2 AND stock_quantity >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			log.Error("failed to decrement stock", zap.Error(err))
			return err
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			log.Warn("stock exhausted during checkout",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
			)
			return fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
		}
	}

	// 3. Initial history row
	initial := StatusChange{
		ID:      uuid.New(),
		OrderID: o.ID,
		Status:  StatusPending,
		Note:    "Order created",
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, note, updated_by)
		VALUES ($1,$2,$3,$4,$5)
	`, initial.ID, initial.OrderID, initial.Status, initial.Note, initial.ActorID)
	if err != nil {
		log.Error("failed to insert status history", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	o.History = append(o.History, initial)
	log.Info("order transaction committed", zap.String("order_id", o.ID.String()))
	return nil
}

const orderColumns = `
	id, order_number, user_id, status, payment_status,
	subtotal, shipping_cost, tax_amount, total_amount,
	shipping_first_name, shipping_last_name, shipping_email, shipping_phone,
	shipping_address, shipping_city, shipping_state, shipping_country, shipping_zip_code,
	billing_first_name, billing_last_name, billing_email, billing_phone,
	billing_address, billing_city, billing_state, billing_country, billing_zip_code,
	payment_method, payment_reference,
	created_at, updated_at, shipped_at, delivered_at`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.TotalAmount,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Email, &o.Shipping.Phone,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.State, &o.Shipping.Country, &o.Shipping.ZipCode,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.Email, &o.Billing.Phone,
		&o.Billing.Address, &o.Billing.City, &o.Billing.State, &o.Billing.Country, &o.Billing.ZipCode,
		&o.PaymentMethod, &o.PaymentReference,
		&o.CreatedAt, &o.UpdatedAt, &o.ShippedAt, &o.DeliveredAt,
	)
}

func (r *repository) GetOrderByID(ctx context.Context, id uuid.UUID) (Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE id = $1`, id), &o)
	if err == sql.ErrNoRows {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}

	histRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, note, updated_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`, id)
	if err != nil {
		return Order{}, err
	}
	defer histRows.Close()

	for histRows.Next() {
		var h StatusChange
		if err := histRows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note,
			&h.ActorID, &h.CreatedAt); err != nil {
			return Order{}, err
		}
		o.History = append(o.History, h)
	}
	return o, histRows.Err()
}

func (r *repository) ListOrders(ctx context.Context, opts ListOptions) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
		zap.Int("scope", int(opts.Scope)),
	)

	limit := 20
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	if limit > 100 {
		limit = 100
	}
	page := 1
	if opts.Page > 0 {
		page = opts.Page
	}
	offset := (page - 1) * limit

	where := []string{"1=1"}
	args := []any{}

	switch opts.Scope {
	case ScopeOwn:
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)+1))
		args = append(args, opts.ActorID)
	case ScopeSeller:
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = o.id AND p.seller_id = $%d
		)`, len(args)+1))
		args = append(args, opts.ActorID)
	case ScopeAll:
		// no filter
	}

	if opts.Status != nil {
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, *opts.Status)
	}

	query := `SELECT` + orderColumns + `
	FROM orders o
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY o.created_at DESC
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0, limit)
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Info("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) SellerHasProductInOrder(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = $1 AND p.seller_id = $2
		)
	`, orderID, sellerID).Scan(&ok)
	return ok, err
}

// UpdateStatusTx applies a validated transition and appends the history row
// in one transaction. The guard on the current status makes the transition
// safe against a concurrent writer: losing the race surfaces as zero
// affected rows and the caller re-validates.
func (r *repository) UpdateStatusTx(ctx context.Context, orderID uuid.UUID, from, to Status, note string, actorID *uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = NOW(),
		    shipped_at = CASE WHEN $1 = 'shipped' THEN COALESCE(shipped_at, NOW()) ELSE shipped_at END,
		    delivered_at = CASE WHEN $1 = 'delivered' THEN COALESCE(delivered_at, NOW()) ELSE delivered_at END
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvalidTransition
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, note, updated_by)
		VALUES ($1,$2,$3,$4,$5)
	`, uuid.New(), orderID, to, note, actorID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status PaymentStatus, reference string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, payment_reference = $2, updated_at = NOW()
		WHERE id = $3
	`, status, reference, orderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) GetStats(ctx context.Context, scope ListScope, actorID uuid.UUID) (Stats, error) {
	where := "1=1"
	args := []any{}

	switch scope {
	case ScopeOwn:
		where = "o.user_id = $1"
		args = append(args, actorID)
	case ScopeSeller:
		where = `EXISTS (
			SELECT 1 FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = o.id AND p.seller_id = $1
		)`
		args = append(args, actorID)
	case ScopeAll:
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE o.status = 'pending'),
			COUNT(*) FILTER (WHERE o.status = 'processing'),
			COUNT(*) FILTER (WHERE o.status = 'shipped'),
			COUNT(*) FILTER (WHERE o.status = 'delivered'),
			COUNT(*) FILTER (WHERE o.status = 'cancelled'),
			COUNT(*) FILTER (WHERE o.created_at >= $%d),
			COALESCE(SUM(o.total_amount) FILTER (WHERE o.payment_status = 'paid'), 0)
		FROM orders o
		WHERE %s
	`, len(args)+1, where)

	args = append(args, time.Now().AddDate(0, 0, -30))

	var s Stats
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.TotalOrders, &s.PendingOrders, &s.ProcessingOrders,
		&s.ShippedOrders, &s.DeliveredOrders, &s.CancelledOrders,
		&s.RecentOrders, &s.TotalRevenue,
	)
	if err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (r *repository) CreateAddress(ctx context.Context, a ShippingAddress) (ShippingAddress, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ShippingAddress{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, `
			UPDATE shipping_addresses SET is_default = FALSE
			WHERE user_id = $1 AND is_default = TRUE
		`, a.UserID); err != nil {
			return ShippingAddress{}, err
		}
	}

	var out ShippingAddress
	err = tx.QueryRowContext(ctx, `
		INSERT INTO shipping_addresses (
			id, user_id, first_name, last_name, email, phone,
			address, city, state, country, zip_code, is_default
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, user_id, first_name, last_name, email, phone,
			address, city, state, country, zip_code, is_default,
			created_at, updated_at
	`, uuid.New(), a.UserID, a.FirstName, a.LastName, a.Email, a.Phone,
		a.Address.Address, a.City, a.State, a.Country, a.ZipCode, a.IsDefault).
		Scan(&out.ID, &out.UserID, &out.FirstName, &out.LastName, &out.Email,
			&out.Phone, &out.Address.Address, &out.City, &out.State,
			&out.Country, &out.ZipCode, &out.IsDefault,
			&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return ShippingAddress{}, err
	}

	if err := tx.Commit(); err != nil {
		return ShippingAddress{}, err
	}
	return out, nil
}

func (r *repository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]ShippingAddress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, first_name, last_name, email, phone,
			address, city, state, country, zip_code, is_default,
			created_at, updated_at
		FROM shipping_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShippingAddress
	for rows.Next() {
		var a ShippingAddress
		if err := rows.Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName,
			&a.Email, &a.Phone, &a.Address.Address, &a.City, &a.State,
			&a.Country, &a.ZipCode, &a.IsDefault,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) GetAddress(ctx context.Context, id, userID uuid.UUID) (ShippingAddress, error) {
	var a ShippingAddress
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, first_name, last_name, email, phone,
			address, city, state, country, zip_code, is_default,
			created_at, updated_at
		FROM shipping_addresses
		WHERE id = $1 AND user_id = $2
	`, id, userID).
		Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
			&a.Address.Address, &a.City, &a.State, &a.Country, &a.ZipCode,
			&a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return ShippingAddress{}, ErrAddressNotFound
	}
	if err != nil {
		return ShippingAddress{}, err
	}
	return a, nil
}

func (r *repository) UpdateAddress(ctx context.Context, a ShippingAddress) (ShippingAddress, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ShippingAddress{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, `
			UPDATE shipping_addresses SET is_default = FALSE
			WHERE user_id = $1 AND is_default = TRUE AND id <> $2
		`, a.UserID, a.ID); err != nil {
			return ShippingAddress{}, err
		}
	}

	var out ShippingAddress
	err = tx.QueryRowContext(ctx, `
		UPDATE shipping_addresses
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
		    address = $5, city = $6, state = $7, country = $8,
		    zip_code = $9, is_default = $10, updated_at = NOW()
		WHERE id = $11 AND user_id = $12
		RETURNING id, user_id, first_name, last_name, email, phone,
			address, city, state, country, zip_code, is_default,
			created_at, updated_at
	`, a.FirstName, a.LastName, a.Email, a.Phone, a.Address.Address,
		a.City, a.State, a.Country, a.ZipCode, a.IsDefault, a.ID, a.UserID).
		Scan(&out.ID, &out.UserID, &out.FirstName, &out.LastName, &out.Email,
			&out.Phone, &out.Address.Address, &out.City, &out.State,
			&out.Country, &out.ZipCode, &out.IsDefault,
			&out.CreatedAt, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return ShippingAddress{}, ErrAddressNotFound
	}
	if err != nil {
		return ShippingAddress{}, err
	}

	if err := tx.Commit(); err != nil {
		return ShippingAddress{}, err
	}
	return out, nil
}

func (r *repository) DeleteAddress(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}
