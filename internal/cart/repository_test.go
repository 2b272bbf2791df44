package cart

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetOrCreateCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	key := UserKey(userID)
	cartID := uuid.New()

	cartCols := []string{"id", "user_id", "session_key", "created_at", "updated_at"}

	t.Run("ExistingCart", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT id, user_id, session_key, created_at, updated_at\s+FROM carts WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartCols).
				AddRow(cartID, userID, nil, time.Now(), time.Now()))

		c, err := repo.GetOrCreateCart(ctx, key)
		assert.NoError(t, err)
		assert.Equal(t, cartID, c.ID)
	})

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM carts WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO carts`).
			WillReturnRows(sqlmock.NewRows(cartCols).
				AddRow(cartID, userID, nil, time.Now(), time.Now()))

		c, err := repo.GetOrCreateCart(ctx, key)
		assert.NoError(t, err)
		assert.Equal(t, cartID, c.ID)
	})

	t.Run("LosesInsertRaceAndReselects", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		// First select misses, the conflicting insert returns nothing, and
		// the retry picks up the row the concurrent request created.
		mock.ExpectQuery(`FROM carts WHERE user_id = \$1`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO carts`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM carts WHERE user_id = \$1`).
			WillReturnRows(sqlmock.NewRows(cartCols).
				AddRow(cartID, userID, nil, time.Now(), time.Now()))

		c, err := repo.GetOrCreateCart(ctx, key)
		assert.NoError(t, err)
		assert.Equal(t, cartID, c.ID)
	})

	t.Run("MissingKey", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		_, err = repo.GetOrCreateCart(ctx, Key{})
		assert.ErrorIs(t, err, ErrMissingKey)
	})

	t.Run("SessionKeyLookup", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM carts WHERE session_key = \$1`).
			WithArgs("guest-abc").
			WillReturnRows(sqlmock.NewRows(cartCols).
				AddRow(cartID, nil, "guest-abc", time.Now(), time.Now()))

		c, err := repo.GetOrCreateCart(ctx, SessionKeyOf("guest-abc"))
		assert.NoError(t, err)
		assert.Equal(t, "guest-abc", *c.SessionKey)
	})
}

func TestRepository_GetItem(t *testing.T) {
	ctx := context.Background()
	cartID := uuid.New()
	productID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM cart_items`).
			WithArgs(cartID, productID).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "cart_id", "product_id", "quantity", "created_at", "updated_at"}).
				AddRow(uuid.New(), cartID, productID, 3, time.Now(), time.Now()))

		item, err := repo.GetItem(ctx, cartID, productID)
		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, 3, item.Quantity)
	})

	t.Run("MissingIsNotAnError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM cart_items`).
			WithArgs(cartID, productID).
			WillReturnError(sql.ErrNoRows)

		item, err := repo.GetItem(ctx, cartID, productID)
		assert.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestRepository_RemoveItem(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectExec(`DELETE FROM cart_items WHERE id = \$1`).
			WithArgs(itemID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RemoveItem(ctx, itemID))
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectExec(`DELETE FROM cart_items WHERE id = \$1`).
			WithArgs(itemID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.RemoveItem(ctx, itemID), ErrItemNotFound)
	})
}
