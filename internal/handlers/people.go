package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/validation"
)

// PeopleHandler serves the shared people directory
type PeopleHandler struct {
	personRepo database.PersonRepositoryInterface
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(personRepo database.PersonRepositoryInterface) *PeopleHandler {
	return &PeopleHandler{personRepo: personRepo}
}

// RegisterRoutes registers people routes on the given router.
// The router should already have the /people prefix.
func (h *PeopleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPeople).Methods("GET")
	r.HandleFunc("", h.AddPerson).Methods("POST")
}

// AddPersonRequest represents a new directory entry; the identifier is a
// name or an email address.
type AddPersonRequest struct {
	Identifier string `json:"identifier"`
}

// ListPeople lists every known person
func (h *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.personRepo.List(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve people")
		return
	}

	respondJSON(w, http.StatusOK, people)
}

// AddPerson upserts a person into the directory
func (h *PeopleHandler) AddPerson(w http.ResponseWriter, r *http.Request) {
	var req AddPersonRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Identifier = validation.SanitizeText(req.Identifier)
	if req.Identifier == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Identifier is required")
		return
	}

	if err := h.personRepo.EnsurePerson(r.Context(), req.Identifier); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to add person")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"identifier": req.Identifier})
}
