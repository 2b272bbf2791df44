package user

import (
	"context"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, params CreateUserParams) (string, User, error)
	Login(ctx context.Context, email, password string) (string, User, error)
	VerifyEmail(ctx context.Context, token uuid.UUID) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token uuid.UUID, newPassword string) error
	ChangePassword(ctx context.Context, actor Actor, oldPassword, newPassword string) error
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetProfile(ctx context.Context, actor Actor) (Profile, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, params CreateUserParams) (string, User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
		zap.String("email", params.Email),
	)

	if len(params.Password) < 8 {
		return "", User{}, ErrWeakPassword
	}

	hashed, err := HashPassword(params.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", User{}, err
	}
	params.Password = hashed

	u, err := s.repo.Create(ctx, params)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return "", User{}, err
	}

	// Email delivery is out of scope; the token is created and logged so an
	// external sender can pick it up.
	tok, err := s.repo.CreateToken(ctx, u.ID, PurposeEmailVerify, time.Now().Add(24*time.Hour))
	if err != nil {
		log.Error("failed to create verification token", zap.Error(err))
		return "", User{}, err
	}
	log.Info("verification token issued",
		zap.String("user_id", u.ID.String()),
		zap.String("token", tok.Token.String()),
	)

	jwtStr, err := GenerateJWT(u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Error(err))
		return "", User{}, err
	}

	log.Info("register service completed", zap.String("user_id", u.ID.String()))

	return jwtStr, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Warn("email not found")
		return "", User{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Warn("password not match")
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u)
	if err != nil {
		return "", User{}, err
	}

	return token, u, nil
}

func (s *service) VerifyEmail(ctx context.Context, token uuid.UUID) error {
	t, err := s.repo.FindToken(ctx, token, PurposeEmailVerify)
	if err != nil {
		return err
	}
	if t.IsExpired(time.Now()) {
		return ErrTokenExpired
	}

	if err := s.repo.MarkVerified(ctx, t.UserID); err != nil {
		return err
	}
	return s.repo.MarkTokenUsed(ctx, t.ID)
}

// RequestPasswordReset never reveals whether the email is registered.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RequestPasswordReset"),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Debug("password reset requested for unknown email")
		return nil
	}

	tok, err := s.repo.CreateToken(ctx, u.ID, PurposePasswordReset, time.Now().Add(1*time.Hour))
	if err != nil {
		log.Error("failed to create reset token", zap.Error(err))
		return nil
	}

	log.Info("password reset token issued",
		zap.String("user_id", u.ID.String()),
		zap.String("token", tok.Token.String()),
	)
	return nil
}

func (s *service) ConfirmPasswordReset(ctx context.Context, token uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	t, err := s.repo.FindToken(ctx, token, PurposePasswordReset)
	if err != nil {
		return err
	}
	if t.IsExpired(time.Now()) {
		return ErrTokenExpired
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, t.UserID, hashed); err != nil {
		return err
	}
	return s.repo.MarkTokenUsed(ctx, t.ID)
}

func (s *service) ChangePassword(ctx context.Context, actor Actor, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	u, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(oldPassword, u.Password) {
		return ErrInvalidCredentials
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, actor.ID, hashed)
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetProfile(ctx context.Context, actor Actor) (Profile, error) {
	return s.repo.GetProfile(ctx, actor.ID)
}

func (s *service) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error) {
	return s.repo.UpdateProfile(ctx, params)
}
