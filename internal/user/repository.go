package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashed string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error)

	CreateToken(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, expiresAt time.Time) (VerificationToken, error)
	FindToken(ctx context.Context, token uuid.UUID, purpose TokenPurpose) (VerificationToken, error)
	MarkTokenUsed(ctx context.Context, id uuid.UUID) error
}

type CreateUserParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	MobilePhone string
	IsSeller    bool
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("email", params.Email),
	)

	query := `
	INSERT INTO users (
		id, email, password, first_name, last_name, mobile_phone, is_seller
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING
		id, email, first_name, last_name, mobile_phone,
		is_verified, is_seller, is_staff, created_at, updated_at
	`

	var u User
	err := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		params.Email,
		params.Password,
		params.FirstName,
		params.LastName,
		params.MobilePhone,
		params.IsSeller,
	).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.MobilePhone,
		&u.IsVerified, &u.IsSeller, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			log.Warn("duplicate email")
			return User{}, ErrEmailExists
		}
		log.Error("failed to create user", zap.Error(err))
		return User{}, err
	}

	// empty profile row alongside the account
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id) VALUES ($1)`, u.ID)
	if err != nil {
		log.Error("failed to create profile", zap.Error(err))
		return User{}, err
	}

	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	query := `
	SELECT
		id, email, password, first_name, last_name, mobile_phone,
		is_verified, is_seller, is_staff, created_at, updated_at
	FROM users
	WHERE email = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.MobilePhone,
		&u.IsVerified, &u.IsSeller, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `
	SELECT
		id, email, password, first_name, last_name, mobile_phone,
		is_verified, is_seller, is_staff, created_at, updated_at
	FROM users
	WHERE id = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.MobilePhone,
		&u.IsVerified, &u.IsSeller, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}

	return u, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, hashed string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2
	`, hashed, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	query := `
	SELECT user_id, address, birthdate, city, country, created_at, updated_at
	FROM user_profiles
	WHERE user_id = $1
	`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Address, &p.Birthdate, &p.City, &p.Country,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	return p, nil
}

func (r *repository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Profile{}, err
	}
	defer tx.Rollback()

	if params.FirstName != nil || params.LastName != nil || params.MobilePhone != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET first_name   = COALESCE($1, first_name),
			    last_name    = COALESCE($2, last_name),
			    mobile_phone = COALESCE($3, mobile_phone),
			    updated_at   = NOW()
			WHERE id = $4
		`, params.FirstName, params.LastName, params.MobilePhone, params.UserID)
		if err != nil {
			return Profile{}, err
		}
	}

	var p Profile
	err = tx.QueryRowContext(ctx, `
		UPDATE user_profiles
		SET address    = COALESCE($1, address),
		    birthdate  = COALESCE($2, birthdate),
		    city       = COALESCE($3, city),
		    country    = COALESCE($4, country),
		    updated_at = NOW()
		WHERE user_id = $5
		RETURNING user_id, address, birthdate, city, country, created_at, updated_at
	`, params.Address, params.Birthdate, params.City, params.Country, params.UserID).Scan(
		&p.UserID, &p.Address, &p.Birthdate, &p.City, &p.Country,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

func (r *repository) CreateToken(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, expiresAt time.Time) (VerificationToken, error) {
	query := `
	INSERT INTO verification_tokens (id, user_id, token, purpose, expires_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, user_id, token, purpose, expires_at, is_used, created_at
	`

	var t VerificationToken
	err := r.db.QueryRowContext(ctx, query,
		uuid.New(), userID, uuid.New(), purpose, expiresAt,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.Purpose, &t.ExpiresAt, &t.IsUsed, &t.CreatedAt)
	if err != nil {
		return VerificationToken{}, err
	}

	return t, nil
}

func (r *repository) FindToken(ctx context.Context, token uuid.UUID, purpose TokenPurpose) (VerificationToken, error) {
	query := `
	SELECT id, user_id, token, purpose, expires_at, is_used, created_at
	FROM verification_tokens
	WHERE token = $1 AND purpose = $2 AND is_used = FALSE
	`

	var t VerificationToken
	err := r.db.QueryRowContext(ctx, query, token, purpose).Scan(
		&t.ID, &t.UserID, &t.Token, &t.Purpose, &t.ExpiresAt, &t.IsUsed, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return VerificationToken{}, ErrTokenNotFound
	}
	if err != nil {
		return VerificationToken{}, err
	}

	return t, nil
}

func (r *repository) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE verification_tokens SET is_used = TRUE WHERE id = $1
	`, id)
	return err
}
