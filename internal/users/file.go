package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/jsonfile"
)

// fileUser is the on-disk form of User, including the password hash.
type fileUser struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileRepository stores accounts as a JSON text file.
type FileRepository struct {
	mu   sync.Mutex
	file *jsonfile.Collection[[]fileUser]
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{file: jsonfile.New[[]fileUser](path)}
}

func (r *FileRepository) LoadUsers(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.read()
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(stored))
	for _, fu := range stored {
		out = append(out, User(fu))
	}
	return out, nil
}

func (r *FileRepository) AppendUser(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.read()
	if errors.Is(err, ErrCorrupt) {
		stored = nil
	} else if err != nil {
		return err
	}
	for _, fu := range stored {
		if strings.EqualFold(fu.Username, u.Username) {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, u.Username)
		}
	}
	return r.file.Save(append(stored, fileUser(u)))
}

func (r *FileRepository) read() ([]fileUser, error) {
	stored, err := r.file.Load()
	switch {
	case errors.Is(err, jsonfile.ErrMissing):
		return nil, nil
	case errors.Is(err, jsonfile.ErrMalformed):
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	case err != nil:
		return nil, err
	}
	return stored, nil
}
