package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/request"
	"github.com/notehq/notehub/internal/validation"
)

// AddCommentRequest represents a new comment, optionally replying to an
// existing one via parent_id.
type AddCommentRequest struct {
	Text     string  `json:"text"`
	Color    string  `json:"color"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateCommentRequest represents a partial comment edit
type UpdateCommentRequest struct {
	Text      *string `json:"text,omitempty"`
	Color     *string `json:"color,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// AddComment appends a comment to a note. Adding a comment never creates a
// version snapshot.
func (h *NoteHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req AddCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Comment text is required")
		return
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:          uuid.NewString(),
		Text:        req.Text,
		Author:      actor.Name,
		AuthorEmail: actor.Email,
		Color:       req.Color,
		ParentID:    req.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := h.noteRepo.AddComment(r.Context(), id, comment)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// UpdateComment applies a partial edit to a single comment
func (h *NoteHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	commentID := mux.Vars(r)["cid"]

	var req UpdateCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	patch := database.CommentPatch{
		Color:     req.Color,
		Completed: req.Completed,
	}
	if req.Text != nil {
		text := validation.SanitizeText(*req.Text)
		if text == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Comment text cannot be empty")
			return
		}
		patch.Text = &text
	}

	comment, err := h.noteRepo.UpdateComment(r.Context(), id, commentID, patch)
	if err != nil {
		respondStoreError(w, err, "Comment not found")
		return
	}

	respondJSON(w, http.StatusOK, comment)
}

// DeleteComment removes a comment and every transitive reply in one write
func (h *NoteHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	commentID := mux.Vars(r)["cid"]

	if err := h.noteRepo.DeleteComment(r.Context(), id, commentID); err != nil {
		if errors.Is(err, database.ErrDeleteFailed) {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Comment deletion removed nothing")
			return
		}
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": commentID, "deleted": true})
}
