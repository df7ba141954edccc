package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	var role string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = models.ParseRole(role)
	return user, nil
}

// Ensure upserts a user record on first sight of an authenticated
// identity. An existing row keeps its role; name refreshes when supplied.
func (r *UserRepository) Ensure(ctx context.Context, email, name string, role models.Role) (*models.User, error) {
	user := &models.User{}
	var rawRole string
	now := time.Now()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (email) DO UPDATE SET
			name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE users.name END,
			updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, role, created_at, updated_at
	`, uuid.New(), email, name, string(role), now).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&rawRole,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	user.Role = models.ParseRole(rawRole)
	return user, nil
}

// SetRole changes a user's role
func (r *UserRepository) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	user := &models.User{}
	var rawRole string
	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET role = $2, updated_at = $3 WHERE email = $1
		RETURNING id, email, name, role, created_at, updated_at
	`, email, string(role), time.Now()).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&rawRole,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set user role: %w", err)
	}
	user.Role = models.ParseRole(rawRole)
	return user, nil
}

// List returns all known users ordered by name
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, role, created_at, updated_at FROM users ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var role string
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role = models.ParseRole(role)
		users = append(users, user)
	}
	return users, rows.Err()
}
