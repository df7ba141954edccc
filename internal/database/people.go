package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/models"
)

// PersonRepository maintains the denormalized people index used for
// mindmap and analytics views. It is a convenience index, not an
// authoritative identity store.
type PersonRepository struct {
	db *DB
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// List returns everyone in the index, ordered by name
func (r *PersonRepository) List(ctx context.Context) ([]*models.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, created_at, updated_at FROM people ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		p := &models.Person{}
		var email sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &email, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		if email.Valid {
			p.Email = &email.String
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// EnsurePerson lazily upserts an identifier into the people index,
// cross-looking-up the users table to split name and email. Best effort:
// callers log and continue on error, they never fail the request over it.
func (r *PersonRepository) EnsurePerson(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}

	name := identifier
	var email *string
	if strings.Contains(identifier, "@") {
		email = &identifier
		// prefer the registered display name when the email is known
		var displayName string
		err := r.db.QueryRowContext(ctx, `
			SELECT name FROM users WHERE email = $1
		`, identifier).Scan(&displayName)
		if err == nil && displayName != "" {
			name = displayName
		} else if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to cross-lookup user: %w", err)
		}
	} else {
		var userEmail string
		err := r.db.QueryRowContext(ctx, `
			SELECT email FROM users WHERE name = $1
		`, identifier).Scan(&userEmail)
		if err == nil {
			email = &userEmail
		} else if err != sql.ErrNoRows {
			return fmt.Errorf("failed to cross-lookup user: %w", err)
		}
	}

	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO people (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, people.email),
			updated_at = EXCLUDED.updated_at
	`, uuid.New(), name, email, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert person: %w", err)
	}
	return nil
}
