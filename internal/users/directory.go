// Package users registers and authenticates citizen and admin accounts.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Directory validates registrations and credentials against a Repository.
type Directory struct {
	repo  Repository
	cost  int
	clock func() time.Time

	mu sync.Mutex
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo, cost: bcrypt.DefaultCost, clock: time.Now}
}

// Register creates a citizen account. Admin accounts are refused.
func (d *Directory) Register(ctx context.Context, reg Registration) (User, error) {
	role, err := ParseRole(strings.TrimSpace(reg.Role))
	if err != nil {
		return User{}, err
	}
	if role == RoleAdmin {
		return User{}, ErrAdminRegistration
	}
	return d.create(ctx, reg, RoleCitizen)
}

// Provision creates an account with any role. It is reserved for operators.
func (d *Directory) Provision(ctx context.Context, reg Registration) (User, error) {
	role, err := ParseRole(strings.TrimSpace(reg.Role))
	if err != nil {
		return User{}, err
	}
	return d.create(ctx, reg, role)
}

func (d *Directory) create(ctx context.Context, reg Registration, role Role) (User, error) {
	username := strings.TrimSpace(reg.Username)
	email := strings.TrimSpace(reg.Email)
	if username == "" || reg.Password == "" || email == "" {
		return User{}, ErrMissingFields
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	existing, err := d.load(ctx)
	if err != nil {
		return User{}, err
	}
	if _, ok := find(existing, username); ok {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), d.cost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	u := User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Phone:        strings.TrimSpace(reg.Phone),
		Role:         role,
		CreatedAt:    d.clock(),
	}
	if err := d.repo.AppendUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate returns the user if username and password match.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (User, error) {
	users, err := d.load(ctx)
	if err != nil {
		return User{}, err
	}
	u, ok := find(users, strings.TrimSpace(username))
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// List returns every account.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	return d.load(ctx)
}

// load treats corrupt data as an empty directory.
func (d *Directory) load(ctx context.Context) ([]User, error) {
	users, err := d.repo.LoadUsers(ctx)
	if errors.Is(err, ErrCorrupt) {
		log.Printf("users: %v; treating directory as empty", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	return users, nil
}

func find(users []User, username string) (User, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return User{}, false
}
