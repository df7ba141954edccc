package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/request"
	"github.com/notehq/notehub/internal/validation"
	"go.uber.org/zap"
)

// ProjectHandler handles project-related requests
type ProjectHandler struct {
	projectRepo *database.ProjectRepository
	personRepo  database.PersonRepositoryInterface
	logger      *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectRepo *database.ProjectRepository, personRepo database.PersonRepositoryInterface, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		personRepo:  personRepo,
		logger:      logger,
	}
}

// RegisterRoutes registers project routes on the given router.
// The router should already have the /projects prefix.
func (h *ProjectHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListProjects).Methods("GET")
	r.HandleFunc("", h.CreateProject).Methods("POST")
	r.HandleFunc("/{id}", h.GetProject).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateProject).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteProject).Methods("DELETE")
}

// CreateProjectRequest represents a create project request
type CreateProjectRequest struct {
	Name          string     `json:"name" validate:"required,min=1,max=500"`
	Description   string     `json:"description"`
	Status        string     `json:"status" validate:"omitempty,project_status"`
	Priority      string     `json:"priority" validate:"omitempty,project_priority"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	AssignedUsers []string   `json:"assigned_users"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,project_status"`
	Priority      *string    `json:"priority,omitempty" validate:"omitempty,project_priority"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	AssignedUsers *[]string  `json:"assigned_users,omitempty"`
}

// CreateProject creates a new project. Assigned users are lazily indexed
// into the people directory; indexing failures are logged and swallowed.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: "+err.Error())
		return
	}

	ctx := r.Context()
	project := &models.Project{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   validation.SanitizeText(req.Description),
		Status:        models.ProjectStatus(req.Status),
		Priority:      models.ProjectPriority(req.Priority),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		AssignedUsers: req.AssignedUsers,
		CreatedBy:     actor.Email,
		CreatedByName: actor.Name,
	}

	if err := h.projectRepo.Create(ctx, project); err != nil {
		respondStoreError(w, err, "Project not found")
		return
	}

	h.indexPeople(ctx, project.AssignedUsers)
	respondJSON(w, http.StatusCreated, project)
}

// indexPeople upserts each assigned user into the people directory.
// Best effort only; a stale directory never fails a project write.
func (h *ProjectHandler) indexPeople(ctx context.Context, users []string) {
	for _, user := range users {
		if err := h.personRepo.EnsurePerson(ctx, user); err != nil {
			h.logger.Warn("people_index_update_failed",
				zap.Error(err),
			)
		}
	}
}

// ListProjects lists projects, optionally filtered by creator
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeTrashed := q.Get("include_trashed") == "true"

	projects, err := h.projectRepo.List(r.Context(), q.Get("created_by"), includeTrashed)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve projects")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// GetProject retrieves a project by ID
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// UpdateProject applies a partial edit. Only the creator may modify a
// project.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := projectID(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: "+err.Error())
		return
	}

	patch := database.ProjectPatch{
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		AssignedUsers: req.AssignedUsers,
	}
	if req.Name != nil {
		name := validation.SanitizeText(*req.Name)
		if name == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Project name cannot be empty")
			return
		}
		patch.Name = &name
	}
	if req.Description != nil {
		description := validation.SanitizeText(*req.Description)
		patch.Description = &description
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := models.ProjectPriority(*req.Priority)
		patch.Priority = &priority
	}

	project, err := h.projectRepo.Update(r.Context(), *actor, id, patch)
	if err != nil {
		respondStoreError(w, err, "Project not found")
		return
	}

	h.indexPeople(r.Context(), project.AssignedUsers)
	respondJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project. Only the creator may delete it.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if err := h.projectRepo.Delete(r.Context(), *actor, id); err != nil {
		respondStoreError(w, err, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid project ID")
		return uuid.Nil, false
	}
	return id, true
}
