package cart

import (
	"context"
	"database/sql"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetOrCreateCart(ctx context.Context, key Key) (Cart, error)
	GetCartWithItems(ctx context.Context, key Key) (Cart, error)
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error)
	GetItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*Item, error)
	CreateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (Item, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (Item, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateCart(ctx context.Context, key Key) (Cart, error) {
	if key.UserID == nil && key.SessionKey == nil {
		return Cart{}, ErrMissingKey
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrCreateCart"),
	)

	var (
		where string
		arg   any
	)
	if key.UserID != nil {
		where, arg = "user_id = $1", *key.UserID
	} else {
		where, arg = "session_key = $1", *key.SessionKey
	}

	var c Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_key, created_at, updated_at
		FROM carts WHERE `+where,
		arg,
	).Scan(&c.ID, &c.UserID, &c.SessionKey, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return Cart{}, err
	}

	// The unique constraint on the key keeps this race-safe: a concurrent
	// insert surfaces here and we fall back to the existing row.
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id, session_key)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, user_id, session_key, created_at, updated_at
	`, uuid.New(), key.UserID, key.SessionKey).
		Scan(&c.ID, &c.UserID, &c.SessionKey, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.GetOrCreateCart(ctx, key)
	}
	if err != nil {
		log.Error("failed to create cart", zap.Error(err))
		return Cart{}, err
	}

	log.Info("cart created", zap.String("cart_id", c.ID.String()))
	return c, nil
}

func (r *repository) GetCartWithItems(ctx context.Context, key Key) (Cart, error) {
	c, err := r.GetOrCreateCart(ctx, key)
	if err != nil {
		return Cart{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
			p.id, p.title, p.description, p.price, p.stock_quantity,
			p.category_id, p.brand_id, p.seller_id,
			p.discount_percentage, p.discount_start_date, p.discount_end_date,
			p.status, p.is_featured, p.is_active, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at
	`, c.ID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt,
			&item.Product.ID, &item.Product.Title, &item.Product.Description,
			&item.Product.Price, &item.Product.StockQuantity,
			&item.Product.CategoryID, &item.Product.BrandID, &item.Product.SellerID,
			&item.Product.DiscountPercentage, &item.Product.DiscountStart,
			&item.Product.DiscountEnd, &item.Product.Status,
			&item.Product.IsFeatured, &item.Product.IsActive,
			&item.Product.CreatedAt, &item.Product.UpdatedAt,
		); err != nil {
			return Cart{}, err
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, err
	}

	return c, nil
}

func (r *repository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error) {
	var item Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*Item, error) {
	var item Item
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE id = $1 AND cart_id = $2
	`, itemID, cartID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (Item, error) {
	var item Item
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, cart_id, product_id, quantity, created_at, updated_at
	`, uuid.New(), cartID, productID, quantity).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (Item, error) {
	var item Item
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, cart_id, product_id, quantity, created_at, updated_at
	`, quantity, itemID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
