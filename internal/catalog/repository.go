package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type ProductQueryOptions struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	SellerID   *uuid.UUID
	TagID      *uuid.UUID
	Search     *string
	Featured   *bool
	OnlyActive bool
	Limit      int
	Page       int
}

type Repository interface {
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error

	CreateCategory(ctx context.Context, c Category) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateBrand(ctx context.Context, b Brand) (Brand, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	UpdateBrand(ctx context.Context, b Brand) (Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	CreateTag(ctx context.Context, t Tag) (Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)

	CreateReview(ctx context.Context, rev Review) (Review, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]Review, error)
	HasPaidOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	AddWishlistItem(ctx context.Context, userID, productID uuid.UUID) (WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id, title, description, price, stock_quantity, category_id, brand_id,
	seller_id, discount_percentage, discount_start_date, discount_end_date,
	status, is_featured, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *Product) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.StockQuantity,
		&p.CategoryID, &p.BrandID, &p.SellerID,
		&p.DiscountPercentage, &p.DiscountStart, &p.DiscountEnd,
		&p.Status, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *repository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
		zap.String("seller_id", p.SellerID.String()),
	)

	query := `
	INSERT INTO products (
		id, title, description, price, stock_quantity, category_id, brand_id,
		seller_id, discount_percentage, discount_start_date, discount_end_date,
		status, is_featured, is_active
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	RETURNING` + productColumns

	var out Product
	err := scanProduct(r.db.QueryRowContext(ctx, query,
		uuid.New(), p.Title, p.Description, p.Price, p.StockQuantity,
		p.CategoryID, p.BrandID, p.SellerID,
		p.DiscountPercentage, p.DiscountStart, p.DiscountEnd,
		p.Status, p.IsFeatured, p.IsActive,
	), &out)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return Product{}, err
	}

	log.Info("product created", zap.String("product_id", out.ID.String()))
	return out, nil
}

func (r *repository) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	query := `
	UPDATE products
	SET title = $1,
	    description = $2,
	    price = $3,
	    stock_quantity = $4,
	    category_id = $5,
	    brand_id = $6,
	    discount_percentage = $7,
	    discount_start_date = $8,
	    discount_end_date = $9,
	    status = $10,
	    is_featured = $11,
	    is_active = $12,
	    updated_at = NOW()
	WHERE id = $13
	RETURNING` + productColumns

	var out Product
	err := scanProduct(r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Price, p.StockQuantity,
		p.CategoryID, p.BrandID,
		p.DiscountPercentage, p.DiscountStart, p.DiscountEnd,
		p.Status, p.IsFeatured, p.IsActive, p.ID,
	), &out)
	if err == sql.ErrNoRows {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return out, nil
}

func (r *repository) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p)
	if err == sql.ErrNoRows {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}

	tags, err := r.productTags(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.Tags = tags

	return p, nil
}

func (r *repository) productTags(ctx context.Context, productID uuid.UUID) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.created_at
		FROM tags t
		JOIN product_tags pt ON pt.tag_id = t.id
		WHERE pt.product_id = $1
		ORDER BY t.name
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *repository) ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)

	// ---------- pagination ----------
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

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if opts.OnlyActive {
		where = append(where, "p.is_active = TRUE AND p.status = 'approved'")
	}
	if opts.CategoryID != nil {
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)+1))
		args = append(args, *opts.CategoryID)
	}
	if opts.BrandID != nil {
		where = append(where, fmt.Sprintf("p.brand_id = $%d", len(args)+1))
		args = append(args, *opts.BrandID)
	}
	if opts.SellerID != nil {
		where = append(where, fmt.Sprintf("p.seller_id = $%d", len(args)+1))
		args = append(args, *opts.SellerID)
	}
	if opts.TagID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_tags pt WHERE pt.product_id = p.id AND pt.tag_id = $%d)",
			len(args)+1))
		args = append(args, *opts.TagID)
	}
	if opts.Search != nil && *opts.Search != "" {
		where = append(where, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.description ILIKE $%d)",
			len(args)+1, len(args)+1))
		args = append(args, "%"+*opts.Search+"%")
	}
	if opts.Featured != nil {
		where = append(where, fmt.Sprintf("p.is_featured = $%d", len(args)+1))
		args = append(args, *opts.Featured)
	}

	query := `
	SELECT
		p.id, p.title, p.description, p.price, p.stock_quantity,
		p.category_id, p.brand_id, p.seller_id,
		p.discount_percentage, p.discount_start_date, p.discount_end_date,
		p.status, p.is_featured, p.is_active, p.created_at, p.updated_at
	FROM products p
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY p.created_at DESC
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := make([]Product, 0, limit)
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("products listed", zap.Int("count", len(result)))
	return result, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) SetProductTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
		`, productID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	query := `
	INSERT INTO categories (id, name, description, is_active)
	VALUES ($1, $2, $3, $4)
	RETURNING id, name, description, is_active, created_at, updated_at
	`

	var out Category
	err := r.db.QueryRowContext(ctx, query, uuid.New(), c.Name, c.Description, c.IsActive).
		Scan(&out.ID, &out.Name, &out.Description, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return Category{}, ErrNameTaken
		}
		return Category{}, err
	}
	return out, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	var out Category
	err := r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, description, is_active, created_at, updated_at
	`, c.Name, c.Description, c.IsActive, c.ID).
		Scan(&out.ID, &out.Name, &out.Description, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return Category{}, err
	}
	return out, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *repository) CreateBrand(ctx context.Context, b Brand) (Brand, error) {
	var out Brand
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO brands (id, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, is_active, created_at, updated_at
	`, uuid.New(), b.Name, b.Description, b.IsActive).
		Scan(&out.ID, &out.Name, &out.Description, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return Brand{}, ErrNameTaken
		}
		return Brand{}, err
	}
	return out, nil
}

func (r *repository) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM brands
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) UpdateBrand(ctx context.Context, b Brand) (Brand, error) {
	var out Brand
	err := r.db.QueryRowContext(ctx, `
		UPDATE brands
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, description, is_active, created_at, updated_at
	`, b.Name, b.Description, b.IsActive, b.ID).
		Scan(&out.ID, &out.Name, &out.Description, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return Brand{}, ErrBrandNotFound
	}
	if err != nil {
		return Brand{}, err
	}
	return out, nil
}

func (r *repository) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *repository) CreateTag(ctx context.Context, t Tag) (Tag, error) {
	var out Tag
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tags (id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, name, color, created_at
	`, uuid.New(), t.Name, t.Color).
		Scan(&out.ID, &out.Name, &out.Color, &out.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return Tag{}, ErrNameTaken
		}
		return Tag{}, err
	}
	return out, nil
}

func (r *repository) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, created_at FROM tags ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) CreateReview(ctx context.Context, rev Review) (Review, error) {
	var out Review
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO product_reviews (
			id, product_id, user_id, rating, title, comment, is_verified_purchase
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, product_id, user_id, rating, title, comment,
			is_verified_purchase, created_at, updated_at
	`, uuid.New(), rev.ProductID, rev.UserID, rev.Rating, rev.Title, rev.Comment,
		rev.IsVerifiedPurchase).
		Scan(&out.ID, &out.ProductID, &out.UserID, &out.Rating, &out.Title,
			&out.Comment, &out.IsVerifiedPurchase, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return Review{}, ErrReviewExists
		}
		return Review{}, err
	}
	return out, nil
}

func (r *repository) ListReviews(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, rating, title, comment,
			is_verified_purchase, created_at, updated_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating,
			&rev.Title, &rev.Comment, &rev.IsVerifiedPurchase,
			&rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *repository) HasPaidOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1
			  AND oi.product_id = $2
			  AND o.payment_status = 'paid'
		)
	`, userID, productID).Scan(&ok)
	return ok, err
}

func (r *repository) AddWishlistItem(ctx context.Context, userID, productID uuid.UUID) (WishlistItem, error) {
	var out WishlistItem
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, product_id, created_at
	`, uuid.New(), userID, productID).
		Scan(&out.ID, &out.UserID, &out.ProductID, &out.CreatedAt)
	if err != nil {
		return WishlistItem{}, err
	}
	return out, nil
}

func (r *repository) RemoveWishlistItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return false, err
	}
	rowsAffected, _ := res.RowsAffected()
	return rowsAffected > 0, nil
}

func (r *repository) ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			w.id, w.user_id, w.product_id, w.created_at,
			p.id, p.title, p.description, p.price, p.stock_quantity,
			p.category_id, p.brand_id, p.seller_id,
			p.discount_percentage, p.discount_start_date, p.discount_end_date,
			p.status, p.is_featured, p.is_active, p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WishlistItem
	for rows.Next() {
		var w WishlistItem
		var p Product
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.ProductID, &w.CreatedAt,
			&p.ID, &p.Title, &p.Description, &p.Price, &p.StockQuantity,
			&p.CategoryID, &p.BrandID, &p.SellerID,
			&p.DiscountPercentage, &p.DiscountStart, &p.DiscountEnd,
			&p.Status, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		w.Product = &p
		out = append(out, w)
	}
	return out, rows.Err()
}
