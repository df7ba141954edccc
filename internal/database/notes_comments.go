package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/models"
)

// AddComment appends a comment to the note's flat list in a single atomic
// update. Comments do not create version snapshots.
func (r *NoteRepository) AddComment(ctx context.Context, id uuid.UUID, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	commentJSON, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE notes
		SET comments = comments || $2::jsonb, updated_at = $3
		WHERE id = $1
	`, id, commentJSON, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check comment insert: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return comment, nil
}

// CommentPatch is a partial comment update; nil fields are left unchanged.
type CommentPatch struct {
	Text      *string
	Color     *string
	Completed *bool
}

// UpdateComment applies a partial update to one comment on the note.
func (r *NoteRepository) UpdateComment(ctx context.Context, noteID uuid.UUID, commentID string, patch CommentPatch) (*models.Comment, error) {
	var updated *models.Comment
	err := r.mutateComments(ctx, noteID, func(comments []models.Comment) ([]models.Comment, error) {
		for i := range comments {
			if comments[i].ID != commentID {
				continue
			}
			if patch.Text != nil {
				comments[i].Text = *patch.Text
			}
			if patch.Color != nil {
				comments[i].Color = *patch.Color
			}
			if patch.Completed != nil {
				comments[i].Completed = *patch.Completed
			}
			comments[i].UpdatedAt = time.Now()
			updated = &comments[i]
			return comments, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes the comment and its full transitive descendant set
// in one atomic update. A comment id that matches nothing fails with
// ErrDeleteFailed.
func (r *NoteRepository) DeleteComment(ctx context.Context, noteID uuid.UUID, commentID string) error {
	return r.mutateComments(ctx, noteID, func(comments []models.Comment) ([]models.Comment, error) {
		doomed := make(map[string]bool)
		for _, id := range models.CommentDescendants(comments, commentID) {
			doomed[id] = true
		}

		kept := make([]models.Comment, 0, len(comments))
		for _, c := range comments {
			if !doomed[c.ID] {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(comments) {
			return nil, ErrDeleteFailed
		}
		return kept, nil
	})
}

// mutateComments runs a read-modify-write cycle over the note's comment
// list under a row lock.
func (r *NoteRepository) mutateComments(ctx context.Context, noteID uuid.UUID, mutate func([]models.Comment) ([]models.Comment, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin comment update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var commentsJSON []byte
	err = tx.QueryRowContext(ctx, `
		SELECT comments FROM notes WHERE id = $1 FOR UPDATE
	`, noteID).Scan(&commentsJSON)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock note: %w", err)
	}

	var comments []models.Comment
	if err := json.Unmarshal(commentsJSON, &comments); err != nil {
		return fmt.Errorf("failed to unmarshal comments: %w", err)
	}

	comments, err = mutate(comments)
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	newJSON, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE notes SET comments = $2, updated_at = $3 WHERE id = $1
	`, noteID, newJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save comments: %w", err)
	}
	return tx.Commit()
}
