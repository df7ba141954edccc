package handlers

import (
	"net/http"

	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/request"
)

// AssignNoteRequest carries the assignees to add. Assignment is additive;
// removing people goes through a general note update.
type AssignNoteRequest struct {
	AssignedTo []string `json:"assigned_to"`
}

// AssignNote adds assignees to a note, logging one handoff record per new
// person and a single version snapshot for the whole change.
func (h *NoteHandler) AssignNote(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req AssignNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Empty or fully redundant input is a no-op; the repo leaves both
	// history streams untouched and returns the note as-is.
	note, err := h.noteRepo.Assign(r.Context(), *actor, id, req.AssignedTo)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	h.publish(r.Context(), queue.EventNoteUpdated, note)
	respondJSON(w, http.StatusOK, note)
}
