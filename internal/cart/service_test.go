package cart

import (
	"context"
	"testing"
	"time"

	"storefront-be/internal/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetOrCreateCart(ctx context.Context, key Key) (Cart, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(Cart), args.Error(1)
}

func (m *MockRepository) GetCartWithItems(ctx context.Context, key Key) (Cart, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(Cart), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error) {
	args := m.Called(ctx, cartID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) GetItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*Item, error) {
	args := m.Called(ctx, cartID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) CreateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (Item, error) {
	args := m.Called(ctx, cartID, productID, quantity)
	return args.Get(0).(Item), args.Error(1)
}

func (m *MockRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (Item, error) {
	args := m.Called(ctx, itemID, quantity)
	return args.Get(0).(Item), args.Error(1)
}

func (m *MockRepository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockRepository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type MockCatalogRepository struct {
	mock.Mock
	catalog.Repository
}

func (m *MockCatalogRepository) GetProductByID(ctx context.Context, id uuid.UUID) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

// --- Tests ---

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	key := UserKey(userID)
	cartID := uuid.New()
	productID := uuid.New()

	product := catalog.Product{
		ID:            productID,
		Title:         "Mug",
		Price:         decimal.RequireFromString("8.50"),
		StockQuantity: 6,
	}

	t.Run("CreatesNewLine", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		mockCatalog.On("GetProductByID", ctx, productID).Return(product, nil)
		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItem", ctx, cartID, productID).Return(nil, nil)
		mockRepo.On("CreateItem", ctx, cartID, productID, 2).
			Return(Item{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: 2}, nil)

		item, err := svc.AddItem(ctx, key, productID, 2)
		assert.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "Mug", item.Product.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("IncrementsExistingLine", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		existingID := uuid.New()
		mockCatalog.On("GetProductByID", ctx, productID).Return(product, nil)
		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItem", ctx, cartID, productID).
			Return(&Item{ID: existingID, CartID: cartID, ProductID: productID, Quantity: 2}, nil)
		// 2 already in the cart + 3 new = one line with quantity 5
		mockRepo.On("UpdateItemQuantity", ctx, existingID, 5).
			Return(Item{ID: existingID, CartID: cartID, ProductID: productID, Quantity: 5}, nil)

		item, err := svc.AddItem(ctx, key, productID, 3)
		assert.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		mockRepo.AssertNotCalled(t, "CreateItem")
	})

	t.Run("InsufficientStockReportsAvailable", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		mockCatalog.On("GetProductByID", ctx, productID).Return(product, nil)
		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItem", ctx, cartID, productID).
			Return(&Item{ID: uuid.New(), Quantity: 4}, nil)

		// 4 in the cart + 3 requested > 6 in stock
		_, err := svc.AddItem(ctx, key, productID, 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Contains(t, err.Error(), "only 6 items available in stock")
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		_, err := svc.AddItem(ctx, key, productID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		mockCatalog.AssertNotCalled(t, "GetProductByID")
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		mockCatalog.On("GetProductByID", ctx, productID).
			Return(catalog.Product{}, catalog.ErrProductNotFound)

		_, err := svc.AddItem(ctx, key, productID, 1)
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestService_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()
	key := SessionKeyOf("guest-session-abc")
	cartID := uuid.New()
	itemID := uuid.New()
	productID := uuid.New()

	product := catalog.Product{ID: productID, StockQuantity: 10}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItemByID", ctx, cartID, itemID).
			Return(&Item{ID: itemID, ProductID: productID, Quantity: 1}, nil)
		mockCatalog.On("GetProductByID", ctx, productID).Return(product, nil)
		mockRepo.On("UpdateItemQuantity", ctx, itemID, 7).
			Return(Item{ID: itemID, ProductID: productID, Quantity: 7}, nil)

		item, err := svc.UpdateItemQuantity(ctx, key, itemID, 7)
		assert.NoError(t, err)
		assert.Equal(t, 7, item.Quantity)
	})

	t.Run("ExceedsStock", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItemByID", ctx, cartID, itemID).
			Return(&Item{ID: itemID, ProductID: productID, Quantity: 1}, nil)
		mockCatalog.On("GetProductByID", ctx, productID).Return(product, nil)

		_, err := svc.UpdateItemQuantity(ctx, key, itemID, 11)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("ItemNotInCart", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockCatalog := new(MockCatalogRepository)
		svc := NewService(mockRepo, mockCatalog)

		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItemByID", ctx, cartID, itemID).Return(nil, ErrItemNotFound)

		_, err := svc.UpdateItemQuantity(ctx, key, itemID, 2)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	key := UserKey(uuid.New())
	cartID := uuid.New()
	itemID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockCatalogRepository))

		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItemByID", ctx, cartID, itemID).Return(&Item{ID: itemID}, nil)
		mockRepo.On("RemoveItem", ctx, itemID).Return(nil)

		assert.NoError(t, svc.RemoveItem(ctx, key, itemID))
	})

	t.Run("ForeignItemRejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, new(MockCatalogRepository))

		// Scoping the lookup to the caller's cart keeps other carts' items
		// out of reach.
		mockRepo.On("GetOrCreateCart", ctx, key).Return(Cart{ID: cartID}, nil)
		mockRepo.On("GetItemByID", ctx, cartID, itemID).Return(nil, ErrItemNotFound)

		err := svc.RemoveItem(ctx, key, itemID)
		assert.ErrorIs(t, err, ErrItemNotFound)
		mockRepo.AssertNotCalled(t, "RemoveItem")
	})
}

func TestCart_Totals(t *testing.T) {
	now := time.Now()

	c := Cart{
		Items: []Item{
			{
				Quantity: 2,
				Product:  catalog.Product{Price: decimal.RequireFromString("12.50")},
			},
			{
				Quantity: 1,
				Product:  catalog.Product{Price: decimal.RequireFromString("3.25")},
			},
		},
	}

	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, "28.25", c.TotalPrice(now).StringFixed(2))
}
