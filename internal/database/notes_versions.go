package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/models"
)

// History returns the note's version history: a synthesized current entry
// first, then the stored snapshots in insertion order (oldest first).
// Clients identify the live entry by its is_current flag.
func (r *NoteRepository) History(ctx context.Context, id uuid.UUID) ([]models.Version, error) {
	note, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history := make([]models.Version, 0, len(note.Versions)+1)
	history = append(history, note.CurrentVersion())
	history = append(history, note.Versions...)
	return history, nil
}

// Rollback restores the note's content to a stored snapshot. Two history
// entries are appended: a snapshot of the state immediately before the
// rollback, and a marker documenting the rollback itself. The live note's
// content then matches the target version, with fresh editor metadata.
func (r *NoteRepository) Rollback(ctx context.Context, actor models.Actor, id uuid.UUID, versionID string) (*models.Note, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rollback: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	note, err := getNoteForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanEditNote(actor, note) {
		return nil, ErrForbidden
	}

	target := note.FindVersion(versionID)
	if target == nil {
		return nil, ErrVersionNotFound
	}

	now := time.Now()

	preRollback := note.Snapshot(actor, now)
	preRollback.RollbackComment = fmt.Sprintf("Version before rollback to %s", versionID)
	note.Versions = append(note.Versions, preRollback)

	note.ApplyVersion(*target)

	marker := models.Version{
		VersionID:       uuid.NewString(),
		Timestamp:       now,
		EditorEmail:     actor.Email,
		EditorName:      actor.Name,
		EditorRole:      actor.Role,
		RollbackFrom:    versionID,
		RollbackComment: fmt.Sprintf("Rolled back to version from %s", target.Timestamp.Format(time.RFC3339)),
	}
	note.Versions = append(note.Versions, marker)

	note.LastEditor = actor.Email
	note.LastEditorName = actor.Name
	note.UpdatedAt = now

	if err := saveNote(ctx, tx, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rollback: %w", err)
	}
	return note, nil
}
