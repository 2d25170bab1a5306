package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// UserService covers account administration: creating staff accounts,
// listing users and toggling them active.
type UserService struct {
	users repository.UserRepository
	cfg   config.AuthConfig
}

// NewUserService creates the service.
func NewUserService(userRepo repository.UserRepository, cfg config.AuthConfig) *UserService {
	return &UserService{users: userRepo, cfg: cfg}
}

// UserCreateInput describes an admin-created account.
type UserCreateInput struct {
	FullName string
	Email    string
	Password string
	Role     domain.UserRole
}

// UserUpdateInput describes an account edit. Nil fields are unchanged.
type UserUpdateInput struct {
	FullName *string
	Role     *domain.UserRole
	Active   *bool
}

var validRoles = map[domain.UserRole]bool{
	domain.UserRoleAdmin:          true,
	domain.UserRoleSupportManager: true,
	domain.UserRoleSupportAgent:   true,
	domain.UserRoleEndUser:        true,
}

// CreateUser creates an account with any role; reserved for administrators.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)
	if email == "" || fullName == "" || input.Password == "" {
		return nil, util.NewValidationError("full name, email and password are required", nil)
	}
	if !validRoles[input.Role] {
		return nil, util.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

// GetUser fetches a single account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, util.MapError(err)
	}
	return user, nil
}

// ListUsers returns accounts matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	list, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	return list, nil
}

// ListAgents returns the active support agents, in creation order.
func (s *UserService) ListAgents(ctx context.Context) ([]domain.User, error) {
	list, err := s.users.ListByRole(ctx, domain.UserRoleSupportAgent, true)
	if err != nil {
		return nil, util.MapError(err)
	}
	return list, nil
}

// UpdateUser edits an account. Deactivating an agent removes them from
// future auto-assignment rounds; their open tickets stay assigned.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.FullName != nil && strings.TrimSpace(*input.FullName) != "" {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !validRoles[*input.Role] {
			return nil, util.NewValidationError("unknown role", map[string]any{"role": *input.Role})
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, util.MapError(err)
	}
	return user, nil
}
