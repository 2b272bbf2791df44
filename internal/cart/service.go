package cart

import (
	"context"
	"fmt"

	"storefront-be/internal/catalog"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic for carts.
type Service interface {
	GetCart(ctx context.Context, key Key) (Cart, error)
	AddItem(ctx context.Context, key Key, productID uuid.UUID, quantity int) (Item, error)
	UpdateItemQuantity(ctx context.Context, key Key, itemID uuid.UUID, quantity int) (Item, error)
	RemoveItem(ctx context.Context, key Key, itemID uuid.UUID) error
	ClearCart(ctx context.Context, key Key) error
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
}

func NewService(repo Repository, catalogRepo catalog.Repository) Service {
	return &service{repo: repo, catalogRepo: catalogRepo}
}

func (s *service) GetCart(ctx context.Context, key Key) (Cart, error) {
	return s.repo.GetCartWithItems(ctx, key)
}

// AddItem increments the quantity of an existing (cart, product) line or
// creates one. The stock check is advisory only; checkout re-validates with
// an atomic conditional decrement.
func (s *service) AddItem(ctx context.Context, key Key, productID uuid.UUID, quantity int) (Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)

	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}

	product, err := s.catalogRepo.GetProductByID(ctx, productID)
	if err != nil {
		return Item{}, err
	}

	c, err := s.repo.GetOrCreateCart(ctx, key)
	if err != nil {
		return Item{}, err
	}

	existing, err := s.repo.GetItem(ctx, c.ID, productID)
	if err != nil {
		return Item{}, err
	}

	finalQty := quantity
	if existing != nil {
		finalQty += existing.Quantity
	}

	if finalQty > product.StockQuantity {
		log.Warn("insufficient stock", zap.Int("available", product.StockQuantity))
		return Item{}, fmt.Errorf("%w: only %d items available in stock",
			ErrInsufficientStock, product.StockQuantity)
	}

	var item Item
	if existing == nil {
		item, err = s.repo.CreateItem(ctx, c.ID, productID, quantity)
	} else {
		item, err = s.repo.UpdateItemQuantity(ctx, existing.ID, finalQty)
	}
	if err != nil {
		return Item{}, err
	}

	item.Product = product
	return item, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, key Key, itemID uuid.UUID, quantity int) (Item, error) {
	c, err := s.repo.GetOrCreateCart(ctx, key)
	if err != nil {
		return Item{}, err
	}

	existing, err := s.repo.GetItemByID(ctx, c.ID, itemID)
	if err != nil {
		return Item{}, err
	}

	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}

	product, err := s.catalogRepo.GetProductByID(ctx, existing.ProductID)
	if err != nil {
		return Item{}, err
	}
	if quantity > product.StockQuantity {
		return Item{}, fmt.Errorf("%w: only %d items available in stock",
			ErrInsufficientStock, product.StockQuantity)
	}

	item, err := s.repo.UpdateItemQuantity(ctx, existing.ID, quantity)
	if err != nil {
		return Item{}, err
	}
	item.Product = product
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, key Key, itemID uuid.UUID) error {
	c, err := s.repo.GetOrCreateCart(ctx, key)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetItemByID(ctx, c.ID, itemID); err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, itemID)
}

func (s *service) ClearCart(ctx context.Context, key Key) error {
	c, err := s.repo.GetOrCreateCart(ctx, key)
	if err != nil {
		return err
	}
	return s.repo.ClearCart(ctx, c.ID)
}
