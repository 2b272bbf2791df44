package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashed string) error {
	args := m.Called(ctx, id, hashed)
	return args.Error(0)
}

func (m *MockRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(Profile), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Profile), args.Error(1)
}

func (m *MockRepository) CreateToken(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, expiresAt time.Time) (VerificationToken, error) {
	args := m.Called(ctx, userID, purpose, expiresAt)
	return args.Get(0).(VerificationToken), args.Error(1)
}

func (m *MockRepository) FindToken(ctx context.Context, token uuid.UUID, purpose TokenPurpose) (VerificationToken, error) {
	args := m.Called(ctx, token, purpose)
	return args.Get(0).(VerificationToken), args.Error(1)
}

func (m *MockRepository) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Tests ---

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	params := CreateUserParams{
		Email:    "new@example.com",
		Password: "strongpassword",
	}

	t.Run("Success", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		created := User{ID: uuid.New(), Email: params.Email}

		mockRepo.On("Create", ctx, mock.MatchedBy(func(p CreateUserParams) bool {
			// the password must be hashed before it reaches storage
			return p.Email == params.Email && p.Password != params.Password
		})).Return(created, nil)
		mockRepo.On("CreateToken", ctx, created.ID, PurposeEmailVerify, mock.AnythingOfType("time.Time")).
			Return(VerificationToken{Token: uuid.New()}, nil)

		token, u, err := svc.Register(ctx, params)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, params.Email, u.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		p := params
		p.Password = "short"

		_, _, err := svc.Register(ctx, p)
		assert.ErrorIs(t, err, ErrWeakPassword)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything).Return(User{}, ErrEmailExists)

		_, _, err := svc.Register(ctx, params)
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	email := "user@example.com"
	password := "strongpassword"

	hash, err := HashPassword(password)
	require.NoError(t, err)

	stored := User{ID: uuid.New(), Email: email, Password: hash}

	t.Run("Success", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		token, u, err := svc.Login(ctx, email, password)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, stored.ID, u.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		_, _, err := svc.Login(ctx, email, "not the password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(User{}, ErrUserNotFound)

		// unknown email and wrong password are indistinguishable
		_, _, err := svc.Login(ctx, email, password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	token := uuid.New()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		found := VerificationToken{
			ID:        uuid.New(),
			UserID:    userID,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		mockRepo.On("FindToken", ctx, token, PurposeEmailVerify).Return(found, nil)
		mockRepo.On("MarkVerified", ctx, userID).Return(nil)
		mockRepo.On("MarkTokenUsed", ctx, found.ID).Return(nil)

		assert.NoError(t, svc.VerifyEmail(ctx, token))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Expired", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		found := VerificationToken{
			ID:        uuid.New(),
			UserID:    userID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		mockRepo.On("FindToken", ctx, token, PurposeEmailVerify).Return(found, nil)

		assert.ErrorIs(t, svc.VerifyEmail(ctx, token), ErrTokenExpired)
		mockRepo.AssertNotCalled(t, "MarkVerified")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindToken", ctx, token, PurposeEmailVerify).
			Return(VerificationToken{}, ErrTokenNotFound)

		assert.ErrorIs(t, svc.VerifyEmail(ctx, token), ErrTokenNotFound)
	})
}

func TestService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownEmailIsSilent", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, "ghost@example.com").
			Return(User{}, ErrUserNotFound)

		assert.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
		mockRepo.AssertNotCalled(t, "CreateToken")
	})

	t.Run("KnownEmailIssuesToken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		u := User{ID: uuid.New(), Email: "user@example.com"}
		mockRepo.On("FindByEmail", ctx, u.Email).Return(u, nil)
		mockRepo.On("CreateToken", ctx, u.ID, PurposePasswordReset, mock.AnythingOfType("time.Time")).
			Return(VerificationToken{Token: uuid.New()}, nil)

		assert.NoError(t, svc.RequestPasswordReset(ctx, u.Email))
		mockRepo.AssertExpectations(t)
	})
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	actor := Actor{ID: uuid.New()}

	hash, err := HashPassword("oldpassword")
	require.NoError(t, err)
	stored := User{ID: actor.ID, Password: hash}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByID", ctx, actor.ID).Return(stored, nil)
		mockRepo.On("UpdatePassword", ctx, actor.ID, mock.MatchedBy(func(h string) bool {
			return CheckPasswordHash("newpassword123", h)
		})).Return(nil)

		assert.NoError(t, svc.ChangePassword(ctx, actor, "oldpassword", "newpassword123"))
	})

	t.Run("WrongOldPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByID", ctx, actor.ID).Return(stored, nil)

		err := svc.ChangePassword(ctx, actor, "not the old one", "newpassword123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("WeakNewPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		err := svc.ChangePassword(ctx, actor, "oldpassword", "tiny")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}
