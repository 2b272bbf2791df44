package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	MobilePhone string    `json:"mobile_phone"`
	IsVerified  bool      `json:"is_verified"`
	IsSeller    bool      `json:"is_seller"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Actor is the authenticated caller passed explicitly into every workflow
// call. The capability flags gate authorization downstream.
type Actor struct {
	ID       uuid.UUID
	Email    string
	IsSeller bool
	IsStaff  bool
}

func (u User) AsActor() Actor {
	return Actor{ID: u.ID, Email: u.Email, IsSeller: u.IsSeller, IsStaff: u.IsStaff}
}

type Profile struct {
	UserID    uuid.UUID  `json:"user_id"`
	Address   *string    `json:"address"`
	Birthdate *time.Time `json:"birthdate"`
	City      *string    `json:"city"`
	Country   *string    `json:"country"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type UpdateProfileParams struct {
	UserID      uuid.UUID
	FirstName   *string
	LastName    *string
	MobilePhone *string
	Address     *string
	Birthdate   *time.Time
	City        *string
	Country     *string
}

// VerificationToken is the one-shot token for email verification and
// password reset flows.
type VerificationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     uuid.UUID
	Purpose   TokenPurpose
	ExpiresAt time.Time
	IsUsed    bool
	CreatedAt time.Time
}

type TokenPurpose string

const (
	PurposeEmailVerify   TokenPurpose = "email_verify"
	PurposePasswordReset TokenPurpose = "password_reset"
)

func (t VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
