package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/db"
)

// SQLiteRepository stores accounts in the users table.
type SQLiteRepository struct {
	db *db.DB
}

func NewSQLiteRepository(d *db.DB) *SQLiteRepository {
	return &SQLiteRepository{db: d}
}

func (r *SQLiteRepository) LoadUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT username, password_hash, email, phone, role, created_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var role, createdAt string
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Email, &u.Phone, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = Role(role)
		u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: user %s created_at: %v", ErrCorrupt, u.Username, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AppendUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, email, phone, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Email, u.Phone, string(u.Role),
		u.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, u.Username)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}
