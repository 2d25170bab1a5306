package domain

import "time"

// UserRole enumerates application roles.
type UserRole string

const (
	UserRoleAdmin          UserRole = "ADMIN"
	UserRoleSupportManager UserRole = "SUPPORT_MANAGER"
	UserRoleSupportAgent   UserRole = "SUPPORT_AGENT"
	UserRoleEndUser        UserRole = "END_USER"
)

// IsStaff reports whether the role belongs to the support organization.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin || r == UserRoleSupportManager || r == UserRoleSupportAgent
}

// CanBeAssignee reports whether a user with this role may hold tickets.
func (r UserRole) CanBeAssignee() bool {
	return r.IsStaff()
}

// User models any account in the system; the role distinguishes end-users
// from support staff.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
