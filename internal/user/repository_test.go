package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "email", "first_name", "last_name", "mobile_phone",
	"is_verified", "is_seller", "is_staff", "created_at", "updated_at",
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	params := CreateUserParams{
		Email:    "john@example.com",
		Password: "hashed_password",
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(id, params.Email, "", "", "", false, false, false, time.Now(), time.Now()))
		mock.ExpectExec(`INSERT INTO user_profiles`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		u, err := repo.Create(ctx, params)
		assert.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, params.Email, u.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err = repo.Create(ctx, params)
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	email := "john@example.com"

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		cols := append([]string{"id", "email", "password"}, userCols[2:]...)
		mock.ExpectQuery(`SELECT(.|\s)+FROM users\s+WHERE email = \$1`).
			WithArgs(email).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(uuid.New(), email, "hashed", "", "", "", false, false, false,
					time.Now(), time.Now()))

		u, err := repo.FindByEmail(ctx, email)
		assert.NoError(t, err)
		assert.Equal(t, email, u.Email)
		assert.Equal(t, "hashed", u.Password)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM users`).
			WithArgs(email).
			WillReturnError(sql.ErrNoRows)

		_, err = repo.FindByEmail(ctx, email)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_MarkVerified(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE users SET is_verified = TRUE`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkVerified(ctx, id))
}

func TestRepository_FindToken(t *testing.T) {
	ctx := context.Background()
	token := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		cols := []string{"id", "user_id", "token", "purpose", "expires_at", "is_used", "created_at"}
		mock.ExpectQuery(`FROM verification_tokens`).
			WithArgs(token, PurposeEmailVerify).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(uuid.New(), uuid.New(), token, string(PurposeEmailVerify),
					time.Now().Add(time.Hour), false, time.Now()))

		out, err := repo.FindToken(ctx, token, PurposeEmailVerify)
		assert.NoError(t, err)
		assert.Equal(t, token, out.Token)
	})

	t.Run("UsedOrMissing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`FROM verification_tokens`).
			WillReturnError(sql.ErrNoRows)

		_, err = repo.FindToken(ctx, token, PurposePasswordReset)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}
