package dto

import (
	"time"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
)

// RegisterRequest is the payload for self-service registration.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed token and its owner.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// CreateUserRequest is the admin payload for creating accounts.
type CreateUserRequest struct {
	FullName string          `json:"full_name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
}

// UpdateUserRequest is the admin payload for editing accounts.
type UpdateUserRequest struct {
	FullName *string          `json:"full_name"`
	Role     *domain.UserRole `json:"role"`
	Active   *bool            `json:"active"`
}

// UserResponse is the wire form of an account; the password hash never
// leaves the service.
type UserResponse struct {
	ID        string          `json:"id"`
	FullName  string          `json:"full_name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}
