package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/request"
	"github.com/notehq/notehub/internal/services/ai"
	"github.com/notehq/notehub/internal/validation"
	"go.uber.org/zap"
)

const (
	// MaxTitleLength is the maximum length for a note title
	MaxTitleLength = 500
	// MaxDescriptionLength is the maximum length for a note description
	MaxDescriptionLength = 50000
	// ClassifyTimeout bounds the classification call on note creation
	ClassifyTimeout = 30 * time.Second
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	noteRepo   database.NoteRepositoryInterface
	classifier ai.Provider
	events     queue.EventPublisher
	logger     *zap.Logger
}

// NewNoteHandler creates a new note handler. The classifier may be nil, in
// which case untyped notes default to daily tasks.
func NewNoteHandler(noteRepo database.NoteRepositoryInterface, classifier ai.Provider, events queue.EventPublisher, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		noteRepo:   noteRepo,
		classifier: classifier,
		events:     events,
		logger:     logger,
	}
}

// RegisterRoutes registers note routes on the given router.
// The router should already have the /notes prefix.
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotes).Methods("GET")
	r.HandleFunc("", h.CreateNote).Methods("POST")
	r.HandleFunc("/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/{id}", h.TrashNote).Methods("DELETE")
	r.HandleFunc("/{id}/permanent", h.DeleteNotePermanent).Methods("DELETE")
	r.HandleFunc("/{id}/restore", h.RestoreNote).Methods("POST")
	r.HandleFunc("/{id}/complete", h.CompleteNote).Methods("PATCH")
	r.HandleFunc("/{id}/comments", h.AddComment).Methods("POST")
	r.HandleFunc("/{id}/comments/{cid}", h.UpdateComment).Methods("PUT")
	r.HandleFunc("/{id}/comments/{cid}", h.DeleteComment).Methods("DELETE")
	r.HandleFunc("/{id}/versions", h.GetVersions).Methods("GET")
	r.HandleFunc("/{id}/rollback/{vid}", h.RollbackNote).Methods("POST")
	r.HandleFunc("/{id}/assign", h.AssignNote).Methods("POST")
}

// CreateNoteRequest represents a create note request
type CreateNoteRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	Tags        []string   `json:"tags"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Type        string     `json:"type,omitempty"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	AssignedTo  []string   `json:"assigned_to,omitempty"`
}

// UpdateNoteRequest represents a partial note update. Pointer fields are
// applied only when present; the Clear flags null out optional references.
type UpdateNoteRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Color         *string    `json:"color,omitempty"`
	Tags          *[]string  `json:"tags,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ClearDeadline bool       `json:"clear_deadline,omitempty"`
	Type          *string    `json:"type,omitempty"`
	ProjectID     *uuid.UUID `json:"project_id,omitempty"`
	ClearProject  bool       `json:"clear_project,omitempty"`
	AssignedTo    *[]string  `json:"assigned_to,omitempty"`
	Completed     *bool      `json:"completed,omitempty"`
}

// CreateNote creates a new note. When no type is supplied the classifier
// decides between a daily task and a project; classifier failures degrade
// to the daily task default rather than failing the request.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)
	if req.Title == "" || req.Description == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title and description are required")
		return
	}
	if len(req.Title) > MaxTitleLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title exceeds maximum length")
		return
	}
	if len(req.Description) > MaxDescriptionLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Description exceeds maximum length")
		return
	}

	noteType := models.NoteType(req.Type)
	if req.Type != "" {
		if err := validation.ValidateNoteType(req.Type); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	} else {
		noteType = h.classify(r, req.Title+" "+req.Description)
	}

	tags := req.Tags
	if !slices.Contains(tags, string(noteType)) {
		tags = append(tags, string(noteType))
	}

	color := req.Color
	if color == "" {
		color = models.DefaultNoteColor
	}

	ctx := r.Context()
	note := &models.Note{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Color:         color,
		Tags:          tags,
		Deadline:      req.Deadline,
		Type:          noteType,
		ProjectID:     req.ProjectID,
		AssignedTo:    req.AssignedTo,
		Source:        models.NoteSourceManual,
		CreatedBy:     actor.Email,
		CreatedByName: actor.Name,
	}

	if err := h.noteRepo.Create(ctx, note); err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	h.publish(ctx, queue.EventNoteCreated, note)
	respondJSON(w, http.StatusCreated, note)
}

// classify asks the AI oracle for a note type, degrading to the daily task
// default on any failure.
func (h *NoteHandler) classify(r *http.Request, text string) models.NoteType {
	if h.classifier == nil {
		return models.NoteTypeDailyTask
	}

	ctx, cancel := context.WithTimeout(r.Context(), ClassifyTimeout)
	defer cancel()

	noteType, err := h.classifier.Classify(ctx, text)
	if err != nil {
		h.logger.Warn("classification_failed",
			zap.Error(err),
		)
		return models.NoteTypeDailyTask
	}
	return noteType
}

func (h *NoteHandler) publish(ctx context.Context, event string, note *models.Note) {
	if h.events == nil {
		return
	}
	h.events.Publish(ctx, event, map[string]any{
		"note_id":    note.ID,
		"title":      note.Title,
		"created_by": note.CreatedBy,
	})
}

// ListNotes lists notes matching the query filters
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	q := r.URL.Query()

	view := q.Get("view")
	if err := validation.ValidateNoteView(view); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if noteType := q.Get("type"); noteType != "" {
		if err := validation.ValidateNoteType(noteType); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	filter := database.NoteFilter{
		View:      view,
		Tag:       q.Get("tag"),
		Type:      q.Get("type"),
		CreatedBy: q.Get("created_by"),
		Timeframe: q.Get("timeframe"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	for param, dst := range map[string]**time.Time{
		"created_from":  &filter.CreatedFrom,
		"created_to":    &filter.CreatedTo,
		"deadline_from": &filter.DeadlineFrom,
		"deadline_to":   &filter.DeadlineTo,
	} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		t, err := parseTimeParam(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid "+param+" value")
			return
		}
		*dst = &t
	}

	notes, err := h.noteRepo.List(r.Context(), filter)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notes")
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

// parseTimeParam accepts RFC3339 timestamps or bare dates
func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// GetNote retrieves a note by ID
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.noteRepo.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// UpdateNote applies a partial edit. At least one of title or description
// must be present; the pre-edit state is snapshotted into version history.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title == nil && req.Description == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title or description is required")
		return
	}

	patch := database.NotePatch{
		Color:         req.Color,
		Tags:          req.Tags,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
		ProjectID:     req.ProjectID,
		ClearProject:  req.ClearProject,
		AssignedTo:    req.AssignedTo,
		Completed:     req.Completed,
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty")
			return
		}
		if len(title) > MaxTitleLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title exceeds maximum length")
			return
		}
		patch.Title = &title
	}
	if req.Description != nil {
		description := validation.SanitizeText(*req.Description)
		if description == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Description cannot be empty")
			return
		}
		if len(description) > MaxDescriptionLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Description exceeds maximum length")
			return
		}
		patch.Description = &description
	}
	if req.Type != nil {
		if err := validation.ValidateNoteType(*req.Type); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		noteType := models.NoteType(*req.Type)
		patch.Type = &noteType
	}

	note, err := h.noteRepo.Update(r.Context(), *actor, id, patch)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	h.publish(r.Context(), queue.EventNoteUpdated, note)
	respondJSON(w, http.StatusOK, note)
}

// TrashNote moves a note to the trash
func (h *NoteHandler) TrashNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.noteRepo.Trash(r.Context(), id); err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "in_trash": true})
}

// RestoreNote restores a note from the trash
func (h *NoteHandler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.noteRepo.Restore(r.Context(), id); err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "in_trash": false})
}

// DeleteNotePermanent removes a note and its embedded history for good
func (h *NoteHandler) DeleteNotePermanent(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.noteRepo.DeletePermanent(r.Context(), id); err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	if h.events != nil {
		h.events.Publish(r.Context(), queue.EventNoteDeleted, map[string]any{"note_id": id})
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

// CompleteNote toggles a note's completion flag
func (h *NoteHandler) CompleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	completed, err := h.noteRepo.ToggleComplete(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "completed": completed})
}

// ListTags returns every distinct tag in use
func (h *NoteHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.noteRepo.DistinctTags(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tags")
		return
	}

	respondJSON(w, http.StatusOK, tags)
}

// noteID extracts and parses the note id path variable, responding with a
// 400 on malformed input.
func noteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid note ID")
		return uuid.Nil, false
	}
	return id, true
}
