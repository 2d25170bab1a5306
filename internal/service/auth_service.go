package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// AuthService handles self-service registration and login. Registration
// always produces an end-user account; staff accounts come from the admin
// user API.
type AuthService struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
	cfg    config.AuthConfig
	clock  domain.Clock
}

// NewAuthService creates the service.
func NewAuthService(userRepo repository.UserRepository, issuer *auth.TokenIssuer, cfg config.AuthConfig, clock domain.Clock) *AuthService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AuthService{users: userRepo, issuer: issuer, cfg: cfg, clock: clock}
}

// AuthResult is a successful login or registration outcome.
type AuthResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

// Register creates an end-user account and signs it in.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, util.NewValidationError("full name and email are required", nil)
	}
	if len(password) < 8 {
		return nil, util.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.UserRoleEndUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	return s.issue(user)
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewUnauthorized("invalid email or password")
		}
		return nil, util.MapError(err)
	}
	if !user.Active {
		return nil, util.NewUnauthorized("account is deactivated")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid email or password")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.issuer.Issue(user, s.clock.Now())
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &AuthResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}
