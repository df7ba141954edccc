package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/models"
)

// Assign adds assignees to a note. Each genuinely new assignee appends one
// handoff record whose from_user is the previous last assignee (nil when
// the list was empty). After all additions a single version snapshot of the
// post-assignment state is recorded. Empty or fully redundant input is a
// no-op that leaves both history streams untouched.
func (r *NoteRepository) Assign(ctx context.Context, actor models.Actor, id uuid.UUID, assignees []string) (*models.Note, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin assign: %w", err)
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
	added := false
	for _, assignee := range assignees {
		if assignee == "" || note.HasAssignee(assignee) {
			continue
		}

		var fromUser *string
		if len(note.AssignedTo) > 0 {
			last := note.AssignedTo[len(note.AssignedTo)-1]
			fromUser = &last
		}
		note.AssignedTo = append(note.AssignedTo, assignee)
		note.History = append(note.History, models.HandoffRecord{
			FromUser:  fromUser,
			ToUser:    assignee,
			Timestamp: now,
			Action:    models.HandoffAction,
		})
		added = true
	}

	if !added {
		return note, nil
	}

	snapshot := note.Snapshot(actor, now)
	snapshot.AssignmentChange = "Assigned to " + strings.Join(note.AssignedTo, ", ")
	note.Versions = append(note.Versions, snapshot)

	note.LastEditor = actor.Email
	note.LastEditorName = actor.Name
	note.UpdatedAt = now

	if err := saveNote(ctx, tx, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assign: %w", err)
	}
	return note, nil
}
