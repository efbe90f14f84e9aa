package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAdminRegistration  = errors.New("admin accounts cannot be self-registered")
	ErrMissingFields      = errors.New("username, password and email are required")
	ErrUnknownRole        = errors.New("unknown role")
	// ErrCorrupt is returned by a Repository whose saved data cannot be decoded.
	ErrCorrupt = errors.New("saved users are corrupt")
)

// Role controls which surface a user may act on.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
)

// ParseRole maps "" to citizen and rejects unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleCitizen:
		return RoleCitizen, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrUnknownRole
}

// User is a registered account. PasswordHash never leaves the package
// through JSON.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration is the input to Register and Provision.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Repository loads and appends user accounts.
type Repository interface {
	LoadUsers(ctx context.Context) ([]User, error)
	// AppendUser returns ErrDuplicateUsername if the name is taken,
	// ignoring case.
	AppendUser(ctx context.Context, u User) error
}
