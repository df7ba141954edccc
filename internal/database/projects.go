package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/notehq/notehub/internal/models"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, description, status, priority, start_date, end_date,
	assigned_users, created_by, created_by_name, in_trash, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.Priority,
		&startDate,
		&endDate,
		pq.Array(&p.AssignedUsers),
		&p.CreatedBy,
		&p.CreatedByName,
		&p.InTrash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if endDate.Valid {
		p.EndDate = &endDate.Time
	}
	return p, nil
}

// CleanAssignedUsers trims whitespace and drops empty entries.
func CleanAssignedUsers(users []string) []string {
	cleaned := make([]string, 0, len(users))
	for _, u := range users {
		u = strings.TrimSpace(u)
		if u != "" {
			cleaned = append(cleaned, u)
		}
	}
	return cleaned
}

// Create inserts a new project. Project names are unique per creator.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE name = $1 AND created_by = $2 AND in_trash = FALSE)`,
		project.Name, project.CreatedBy,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if exists {
		return ErrDuplicate
	}

	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}
	if project.Priority == "" {
		project.Priority = models.ProjectPriorityMedium
	}
	project.AssignedUsers = CleanAssignedUsers(project.AssignedUsers)

	query := `
		INSERT INTO projects (id, name, description, status, priority, start_date, end_date,
			assigned_users, created_by, created_by_name, in_trash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.StartDate,
		project.EndDate,
		pq.Array(project.AssignedUsers),
		project.CreatedBy,
		project.CreatedByName,
		project.InTrash,
		now,
		now,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// List returns all projects, optionally filtered by creator and optionally
// including trashed ones
func (r *ProjectRepository) List(ctx context.Context, createdBy string, includeTrashed bool) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var conditions []string
	var args []any
	argIndex := 1

	if !includeTrashed {
		conditions = append(conditions, "in_trash = FALSE")
	}
	if createdBy != "" {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", argIndex))
		args = append(args, createdBy)
		argIndex++
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// ProjectPatch is a partial project update; nil fields are left unchanged.
type ProjectPatch struct {
	Name          *string
	Description   *string
	Status        *models.ProjectStatus
	Priority      *models.ProjectPriority
	StartDate     *time.Time
	EndDate       *time.Time
	AssignedUsers *[]string
}

// Update applies a partial edit. Only the project's creator may modify it.
func (r *ProjectRepository) Update(ctx context.Context, actor models.Actor, id uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin project update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id)
	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock project: %w", err)
	}
	if !models.CanEditProject(actor, project) {
		return nil, ErrForbidden
	}

	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.Priority != nil {
		project.Priority = *patch.Priority
	}
	if patch.StartDate != nil {
		project.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		project.EndDate = patch.EndDate
	}
	if patch.AssignedUsers != nil {
		project.AssignedUsers = CleanAssignedUsers(*patch.AssignedUsers)
	}
	project.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE projects SET
			name = $2, description = $3, status = $4, priority = $5,
			start_date = $6, end_date = $7, assigned_users = $8, updated_at = $9
		WHERE id = $1
	`,
		project.ID,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.StartDate,
		project.EndDate,
		pq.Array(project.AssignedUsers),
		project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit project update: %w", err)
	}
	return project, nil
}

// Delete removes a project permanently. Only the creator may delete.
func (r *ProjectRepository) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanEditProject(actor, project) {
		return ErrForbidden
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check project delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
