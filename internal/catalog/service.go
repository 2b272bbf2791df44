package catalog

import (
	"context"

	"storefront-be/internal/logger"
	"storefront-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	CreateProduct(ctx context.Context, actor user.Actor, p Product) (Product, error)
	UpdateProduct(ctx context.Context, actor user.Actor, p Product) (Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error)
	DeleteProduct(ctx context.Context, actor user.Actor, id uuid.UUID) error
	TagProduct(ctx context.Context, actor user.Actor, productID uuid.UUID, tagIDs []uuid.UUID) error

	CreateCategory(ctx context.Context, actor user.Actor, c Category) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (Category, error)
	UpdateCategory(ctx context.Context, actor user.Actor, c Category) (Category, error)
	DeleteCategory(ctx context.Context, actor user.Actor, id uuid.UUID) error

	CreateBrand(ctx context.Context, actor user.Actor, b Brand) (Brand, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	UpdateBrand(ctx context.Context, actor user.Actor, b Brand) (Brand, error)
	DeleteBrand(ctx context.Context, actor user.Actor, id uuid.UUID) error

	CreateTag(ctx context.Context, actor user.Actor, t Tag) (Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)

	CreateReview(ctx context.Context, actor user.Actor, rev Review) (Review, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]Review, error)

	ToggleWishlist(ctx context.Context, actor user.Actor, productID uuid.UUID) (added bool, err error)
	ListWishlist(ctx context.Context, actor user.Actor) ([]WishlistItem, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

var hundred = decimal.NewFromInt(100)

func validateProduct(p Product) error {
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.DiscountPercentage.IsNegative() || p.DiscountPercentage.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, actor user.Actor, p Product) (Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
		zap.String("seller_id", actor.ID.String()),
	)

	if err := validateProduct(p); err != nil {
		return Product{}, err
	}

	p.SellerID = actor.ID
	if p.Status == "" {
		p.Status = StatusDraft
	}
	// staff-created products skip the approval queue
	if actor.IsStaff {
		p.Status = StatusApproved
	}

	out, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		log.Error("create product failed", zap.Error(err))
		return Product{}, err
	}
	return out, nil
}

func (s *service) UpdateProduct(ctx context.Context, actor user.Actor, p Product) (Product, error) {
	existing, err := s.repo.GetProductByID(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	if !actor.IsStaff && existing.SellerID != actor.ID {
		return Product{}, ErrNotOwner
	}

	if err := validateProduct(p); err != nil {
		return Product{}, err
	}

	p.SellerID = existing.SellerID
	return s.repo.UpdateProduct(ctx, p)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, opts ProductQueryOptions) ([]Product, error) {
	return s.repo.ListProducts(ctx, opts)
}

func (s *service) DeleteProduct(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsStaff && existing.SellerID != actor.ID {
		return ErrNotOwner
	}
	return s.repo.DeleteProduct(ctx, id)
}

func (s *service) TagProduct(ctx context.Context, actor user.Actor, productID uuid.UUID, tagIDs []uuid.UUID) error {
	existing, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if !actor.IsStaff && existing.SellerID != actor.ID {
		return ErrNotOwner
	}
	return s.repo.SetProductTags(ctx, productID, tagIDs)
}

// Category, brand and tag mutations are staff-only.
func (s *service) CreateCategory(ctx context.Context, actor user.Actor, c Category) (Category, error) {
	if !actor.IsStaff {
		return Category{}, ErrForbidden
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	return s.repo.GetCategoryByID(ctx, id)
}

func (s *service) UpdateCategory(ctx context.Context, actor user.Actor, c Category) (Category, error) {
	if !actor.IsStaff {
		return Category{}, ErrForbidden
	}
	return s.repo.UpdateCategory(ctx, c)
}

func (s *service) DeleteCategory(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *service) CreateBrand(ctx context.Context, actor user.Actor, b Brand) (Brand, error) {
	if !actor.IsStaff {
		return Brand{}, ErrForbidden
	}
	return s.repo.CreateBrand(ctx, b)
}

func (s *service) ListBrands(ctx context.Context) ([]Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *service) UpdateBrand(ctx context.Context, actor user.Actor, b Brand) (Brand, error) {
	if !actor.IsStaff {
		return Brand{}, ErrForbidden
	}
	return s.repo.UpdateBrand(ctx, b)
}

func (s *service) DeleteBrand(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	return s.repo.DeleteBrand(ctx, id)
}

func (s *service) CreateTag(ctx context.Context, actor user.Actor, t Tag) (Tag, error) {
	if !actor.IsStaff {
		return Tag{}, ErrForbidden
	}
	if t.Color == "" {
		t.Color = "#007bff"
	}
	return s.repo.CreateTag(ctx, t)
}

func (s *service) ListTags(ctx context.Context) ([]Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *service) CreateReview(ctx context.Context, actor user.Actor, rev Review) (Review, error) {
	if rev.Rating < 1 || rev.Rating > 5 {
		return Review{}, ErrInvalidRating
	}

	if _, err := s.repo.GetProductByID(ctx, rev.ProductID); err != nil {
		return Review{}, err
	}

	rev.UserID = actor.ID

	verified, err := s.repo.HasPaidOrderWithProduct(ctx, actor.ID, rev.ProductID)
	if err != nil {
		return Review{}, err
	}
	rev.IsVerifiedPurchase = verified

	return s.repo.CreateReview(ctx, rev)
}

func (s *service) ListReviews(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	return s.repo.ListReviews(ctx, productID)
}

func (s *service) ToggleWishlist(ctx context.Context, actor user.Actor, productID uuid.UUID) (bool, error) {
	removed, err := s.repo.RemoveWishlistItem(ctx, actor.ID, productID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}

	if _, err := s.repo.GetProductByID(ctx, productID); err != nil {
		return false, err
	}
	if _, err := s.repo.AddWishlistItem(ctx, actor.ID, productID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) ListWishlist(ctx context.Context, actor user.Actor) ([]WishlistItem, error) {
	return s.repo.ListWishlist(ctx, actor.ID)
}
