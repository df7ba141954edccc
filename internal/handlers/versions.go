package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/request"
)

// GetVersions lists a note's version history. The live state leads the list
// as a synthetic entry flagged is_current; stored snapshots follow in
// insertion order.
func (h *NoteHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	versions, err := h.noteRepo.History(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, versions)
}

// RollbackNote restores a note to a stored version. The pre-rollback state
// is preserved as a new snapshot, so a rollback is itself reversible.
func (h *NoteHandler) RollbackNote(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}
	versionID := mux.Vars(r)["vid"]

	note, err := h.noteRepo.Rollback(r.Context(), *actor, id, versionID)
	if err != nil {
		respondStoreError(w, err, "Note not found")
		return
	}

	h.publish(r.Context(), queue.EventNoteUpdated, note)
	respondJSON(w, http.StatusOK, note)
}
