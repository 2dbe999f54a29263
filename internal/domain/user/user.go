package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the approval chain
type Role string

const (
	RoleUser           Role = "user"
	RoleDepartmentHead Role = "department_head"
	RoleProjectManager Role = "project_manager"
	RoleAdmin          Role = "admin"
	RoleDriver         Role = "driver"
)

// User represents an account known to the approval chain. Reference data:
// created and maintained outside the ride engine.
type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Principal is the caller identity supplied by the auth layer.
type Principal struct {
	ID         uuid.UUID
	Role       Role
	Department string
}

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByRoleAndDepartment finds the first user holding a role within a
	// department, e.g. the department head for the requester's department
	FindByRoleAndDepartment(ctx context.Context, role Role, department string) (*User, error)

	// FindByRole finds the first user holding a role regardless of department
	FindByRole(ctx context.Context, role Role) (*User, error)
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid user role")
)

// IsValid validates the role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleDepartmentHead, RoleProjectManager, RoleAdmin, RoleDriver:
		return true
	}
	return false
}

// IsAdmin reports whether the principal may use administrative overrides
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
