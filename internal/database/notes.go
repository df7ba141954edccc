package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/notehq/notehub/internal/models"
)

// DedupeConfig carries the duplicate-detection tuning knobs. The window
// doubles for automated extraction inserts.
type DedupeConfig struct {
	Window        time.Duration
	ExtractWindow time.Duration
	Similarity    float64
}

// NoteRepository handles note database operations
type NoteRepository struct {
	db     *DB
	dedupe DedupeConfig
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB, dedupe DedupeConfig) *NoteRepository {
	return &NoteRepository{db: db, dedupe: dedupe}
}

const noteColumns = `id, title, description, color, tags, deadline, type, project_id,
	assigned_to, completed, in_trash, source, comments, versions, history,
	created_by, created_by_name, last_editor, last_editor_name, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	var deadline sql.NullTime
	var projectID uuid.NullUUID
	var commentsJSON, versionsJSON, historyJSON []byte

	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Description,
		&note.Color,
		pq.Array(&note.Tags),
		&deadline,
		&note.Type,
		&projectID,
		pq.Array(&note.AssignedTo),
		&note.Completed,
		&note.InTrash,
		&note.Source,
		&commentsJSON,
		&versionsJSON,
		&historyJSON,
		&note.CreatedBy,
		&note.CreatedByName,
		&note.LastEditor,
		&note.LastEditorName,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		note.Deadline = &deadline.Time
	}
	if projectID.Valid {
		note.ProjectID = &projectID.UUID
	}
	if err := json.Unmarshal(commentsJSON, &note.Comments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
	}
	if err := json.Unmarshal(versionsJSON, &note.Versions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal versions: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &note.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return note, nil
}

func marshalEmbedded(note *models.Note) (comments, versions, history []byte, err error) {
	if note.Comments == nil {
		note.Comments = []models.Comment{}
	}
	if note.Versions == nil {
		note.Versions = []models.Version{}
	}
	if note.History == nil {
		note.History = []models.HandoffRecord{}
	}
	if comments, err = json.Marshal(note.Comments); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal comments: %w", err)
	}
	if versions, err = json.Marshal(note.Versions); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal versions: %w", err)
	}
	if history, err = json.Marshal(note.History); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return comments, versions, history, nil
}

// Create inserts a new note after running duplicate detection against the
// creator's recent notes. When the note names a project but no assignees,
// the project's assigned users are copied over.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	window := r.dedupe.Window
	if note.Source == models.NoteSourceTranscript {
		window = r.dedupe.ExtractWindow
	}

	candidates, err := r.recentByCreator(ctx, note.CreatedBy, time.Now().Add(-window))
	if err != nil {
		return err
	}
	if reason := findDuplicate(note.Title, note.Description, candidates, r.dedupe.Similarity); reason != "" {
		return &DuplicateError{Reason: reason}
	}

	if len(note.AssignedTo) == 0 && note.ProjectID != nil {
		assignees, err := r.projectAssignees(ctx, *note.ProjectID)
		if err != nil {
			return err
		}
		note.AssignedTo = assignees
	}

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	if note.AssignedTo == nil {
		note.AssignedTo = []string{}
	}
	commentsJSON, versionsJSON, historyJSON, err := marshalEmbedded(note)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notes (id, title, description, color, tags, deadline, type, project_id,
			assigned_to, completed, in_trash, source, comments, versions, history,
			created_by, created_by_name, last_editor, last_editor_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		note.ID,
		note.Title,
		note.Description,
		note.Color,
		pq.Array(note.Tags),
		note.Deadline,
		note.Type,
		note.ProjectID,
		pq.Array(note.AssignedTo),
		note.Completed,
		note.InTrash,
		note.Source,
		commentsJSON,
		versionsJSON,
		historyJSON,
		note.CreatedBy,
		note.CreatedByName,
		note.LastEditor,
		note.LastEditorName,
		now,
		now,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// CheckDuplicate reports whether a draft note would be rejected as a
// duplicate of the creator's recent notes, without storing anything.
func (r *NoteRepository) CheckDuplicate(ctx context.Context, creator, title, description string, source models.NoteSource) (bool, error) {
	window := r.dedupe.Window
	if source == models.NoteSourceTranscript {
		window = r.dedupe.ExtractWindow
	}

	candidates, err := r.recentByCreator(ctx, creator, time.Now().Add(-window))
	if err != nil {
		return false, err
	}
	return findDuplicate(title, description, candidates, r.dedupe.Similarity) != "", nil
}

func (r *NoteRepository) recentByCreator(ctx context.Context, creator string, since time.Time) ([]dedupeCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, description FROM notes
		WHERE created_by = $1 AND in_trash = FALSE AND created_at >= $2
	`, creator, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent notes: %w", err)
	}
	defer rows.Close()

	var candidates []dedupeCandidate
	for rows.Next() {
		var c dedupeCandidate
		if err := rows.Scan(&c.Title, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan recent note: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *NoteRepository) projectAssignees(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	var raw []string
	err := r.db.QueryRowContext(ctx, `
		SELECT assigned_users FROM projects WHERE id = $1
	`, projectID).Scan(pq.Array(&raw))
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project assignees: %w", err)
	}

	assignees := make([]string, 0, len(raw))
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if a != "" {
			assignees = append(assignees, a)
		}
	}
	return assignees, nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// NoteFilter composes listing filters; zero values mean "not filtered".
type NoteFilter struct {
	View         string
	Tag          string
	Type         string
	CreatedBy    string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Timeframe    string
	Search       string
	SortBy       string
	SortOrder    string
}

var noteSortFields = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"deadline":   "deadline",
	"title":      "title",
}

// List returns all notes matching the filter, sorted by the requested field.
// Unknown sort fields silently fall back to updated_at.
func (r *NoteRepository) List(ctx context.Context, filter NoteFilter) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE 1=1`
	var args []any
	argIndex := 1

	switch filter.View {
	case "active":
		query += " AND completed = FALSE AND in_trash = FALSE"
	case "completed":
		query += " AND completed = TRUE AND in_trash = FALSE"
	case "trash":
		query += " AND in_trash = TRUE"
	case "all":
		// no view constraint
	default:
		query += " AND in_trash = FALSE"
	}

	if filter.Tag != "" {
		query += fmt.Sprintf(" AND $%d = ANY(tags)", argIndex)
		args = append(args, filter.Tag)
		argIndex++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, filter.Type)
		argIndex++
	}
	if filter.CreatedBy != "" {
		query += fmt.Sprintf(" AND created_by = $%d", argIndex)
		args = append(args, filter.CreatedBy)
		argIndex++
	}
	if filter.CreatedFrom != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.CreatedFrom)
		argIndex++
	}
	if filter.CreatedTo != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *filter.CreatedTo)
		argIndex++
	}
	if filter.DeadlineFrom != nil {
		query += fmt.Sprintf(" AND deadline >= $%d", argIndex)
		args = append(args, *filter.DeadlineFrom)
		argIndex++
	}
	if filter.DeadlineTo != nil {
		query += fmt.Sprintf(" AND deadline <= $%d", argIndex)
		args = append(args, *filter.DeadlineTo)
		argIndex++
	}
	if since, ok := timeframeStart(filter.Timeframe, time.Now()); ok {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, since)
		argIndex++
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d OR created_by_name ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(tags) AS tg WHERE tg ILIKE $%d))`,
			argIndex, argIndex, argIndex, argIndex)
		args = append(args, pattern)
		argIndex++
	}

	sortField, ok := noteSortFields[filter.SortBy]
	if !ok {
		sortField = "updated_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortField, direction)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// timeframeStart maps a relative timeframe onto its inclusive lower bound.
func timeframeStart(timeframe string, now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch timeframe {
	case "today":
		return midnight, true
	case "week":
		return midnight.AddDate(0, 0, -7), true
	case "month":
		return midnight.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

// NotePatch is a partial update; nil fields are left unchanged.
type NotePatch struct {
	Title         *string
	Description   *string
	Color         *string
	Tags          *[]string
	Deadline      *time.Time
	ClearDeadline bool
	Type          *models.NoteType
	ProjectID     *uuid.UUID
	ClearProject  bool
	AssignedTo    *[]string
	Completed     *bool
}

// Update applies a partial edit inside a transaction: the pre-edit state is
// snapshotted into the version history before any field changes. When the
// project reference changes without an explicit assignee list, assignees are
// re-derived from the new project.
func (r *NoteRepository) Update(ctx context.Context, actor models.Actor, id uuid.UUID, patch NotePatch) (*models.Note, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	note, err := getNoteForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanEditNote(actor, note) {
		return nil, ErrForbidden
	}

	now := time.Now()
	note.Versions = append(note.Versions, note.Snapshot(actor, now))

	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Description != nil {
		note.Description = *patch.Description
	}
	if patch.Color != nil {
		note.Color = *patch.Color
	}
	if patch.Tags != nil {
		note.Tags = *patch.Tags
	}
	if patch.ClearDeadline {
		note.Deadline = nil
	} else if patch.Deadline != nil {
		note.Deadline = patch.Deadline
	}
	if patch.Type != nil {
		note.Type = *patch.Type
	}
	if patch.Completed != nil {
		note.Completed = *patch.Completed
	}

	projectChanged := false
	if patch.ClearProject {
		note.ProjectID = nil
	} else if patch.ProjectID != nil {
		changed := note.ProjectID == nil || *note.ProjectID != *patch.ProjectID
		note.ProjectID = patch.ProjectID
		projectChanged = changed
	}
	if patch.AssignedTo != nil {
		note.AssignedTo = *patch.AssignedTo
	} else if projectChanged {
		assignees, err := r.projectAssignees(ctx, *note.ProjectID)
		if err != nil {
			return nil, err
		}
		note.AssignedTo = assignees
	}

	note.LastEditor = actor.Email
	note.LastEditorName = actor.Name
	note.UpdatedAt = now

	if err := saveNote(ctx, tx, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return note, nil
}

func getNoteForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Note, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 FOR UPDATE`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock note: %w", err)
	}
	return note, nil
}

func saveNote(ctx context.Context, tx *sql.Tx, note *models.Note) error {
	commentsJSON, versionsJSON, historyJSON, err := marshalEmbedded(note)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE notes SET
			title = $2, description = $3, color = $4, tags = $5, deadline = $6,
			type = $7, project_id = $8, assigned_to = $9, completed = $10,
			comments = $11, versions = $12, history = $13,
			last_editor = $14, last_editor_name = $15, updated_at = $16
		WHERE id = $1
	`,
		note.ID,
		note.Title,
		note.Description,
		note.Color,
		pq.Array(note.Tags),
		note.Deadline,
		note.Type,
		note.ProjectID,
		pq.Array(note.AssignedTo),
		note.Completed,
		commentsJSON,
		versionsJSON,
		historyJSON,
		note.LastEditor,
		note.LastEditorName,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// Trash soft-deletes a note
func (r *NoteRepository) Trash(ctx context.Context, id uuid.UUID) error {
	return r.setTrash(ctx, id, true)
}

// Restore brings a note back from the trash
func (r *NoteRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return r.setTrash(ctx, id, false)
}

func (r *NoteRepository) setTrash(ctx context.Context, id uuid.UUID, trashed bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notes SET in_trash = $2, updated_at = NOW() WHERE id = $1
	`, id, trashed)
	if err != nil {
		return fmt.Errorf("failed to update trash flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check trash update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePermanent removes a note irreversibly
func (r *NoteRepository) DeletePermanent(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check note delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleComplete flips the completed flag and returns the new state
func (r *NoteRepository) ToggleComplete(ctx context.Context, id uuid.UUID) (bool, error) {
	var completed bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE notes SET completed = NOT completed, updated_at = NOW()
		WHERE id = $1
		RETURNING completed
	`, id).Scan(&completed)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle complete: %w", err)
	}
	return completed, nil
}

// DistinctTags returns every tag string used across all notes
func (r *NoteRepository) DistinctTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT unnest(tags) AS tag FROM notes ORDER BY tag
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
