package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// CreateUser inserts a newly provisioned user.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.UID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (uid, email, display_name, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.store.db.ExecContext(ctx, query,
		user.UID,
		strings.ToLower(user.Email),
		user.DisplayName,
		user.Role,
		user.Status,
		user.CreatedAt.UTC().Format(time.RFC3339),
		user.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateUser updates an existing user record.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.UID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE users
		SET email = ?, display_name = ?, role = ?, status = ?, updated_at = ?
		WHERE uid = ?
	`

	result, err := r.store.db.ExecContext(ctx, query,
		strings.ToLower(user.Email),
		user.DisplayName,
		user.Role,
		user.Status,
		user.UpdatedAt.UTC().Format(time.RFC3339),
		user.UID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by UID.
func (r *UserRepository) GetUser(ctx context.Context, uid string) (persistence.User, error) {
	if uid == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.store.db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, role, status, created_at, updated_at
		FROM users WHERE uid = ?
	`, uid)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, role, status, created_at, updated_at
		FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT uid, email, display_name, role, status, created_at, updated_at
		FROM users ORDER BY created_at, uid
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	err := row.Scan(
		&user.UID,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapError(err)
	}

	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return user, nil
}
