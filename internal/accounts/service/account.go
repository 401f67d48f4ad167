package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	accountserrors "lcr/internal/accounts/errors"
	"lcr/internal/accounts/repository"
	"lcr/internal/accounts/validator"
	"lcr/pkg/auth"
	"lcr/pkg/config"
	apperrors "lcr/pkg/errors"
	"lcr/pkg/model"
	"lcr/pkg/sanitizer"
)

type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
}

type accountService struct {
	repo      repository.UserRepository
	validator *validator.AccountValidator
	cfg       *config.Config
}

func NewAccountService(
	repo repository.UserRepository,
	validator *validator.AccountValidator,
	cfg *config.Config,
) AccountService {
	return &accountService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// Register creates a customer account. Staff roles are provisioned out of
// band, never through the public endpoint.
func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Username = sanitizer.NormalizeUsername(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateRegister(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "error", err)
		return nil, apperrors.Validation("Registration validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleCustomer,
		Phone:        req.Phone,
		Active:       true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, accountserrors.ErrDuplicateUser) {
			return nil, apperrors.Conflict("Username or email is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "username", req.Username, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "username", user.Username)
	return user, nil
}

func (s *accountService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenPair, error) {
	req.UsernameOrEmail = sanitizer.TrimAndNormalize(req.UsernameOrEmail)

	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, apperrors.Validation("Login validation failed", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.FindByUsernameOrEmail(ctx, req.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, accountserrors.ErrNotFound) {
			// Same response as a bad password; do not reveal which field failed.
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if !user.Active {
		return nil, apperrors.Unauthorized("Account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	pair, err := auth.GenerateTokenPair(user, s.cfg.JWTSecret, s.cfg.JWTAccessTokenTTL, s.cfg.JWTRefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue tokens", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID, "role", user.Role)
	return pair, nil
}

// Refresh re-issues a token pair from a valid refresh token, re-reading the
// user so role changes and deactivation take effect at rotation.
func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("Refresh token is required")
	}

	claims, err := auth.ValidateToken(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, accountserrors.ErrNotFound) || errors.Is(err, accountserrors.ErrInvalidID) {
			return nil, apperrors.Unauthorized("Invalid or expired refresh token")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}
	if !user.Active {
		return nil, apperrors.Unauthorized("Account is disabled")
	}

	pair, err := auth.GenerateTokenPair(user, s.cfg.JWTSecret, s.cfg.JWTAccessTokenTTL, s.cfg.JWTRefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue tokens", err)
	}

	return pair, nil
}
