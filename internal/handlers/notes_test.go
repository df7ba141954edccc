package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/request"
	"go.uber.org/zap"
)

func testActor() *models.Actor {
	return &models.Actor{
		Email: "alice@example.com",
		Name:  "Alice",
		Role:  models.RoleMember,
	}
}

// doNoteRequest routes a request through mux so path variables resolve,
// carrying an authenticated actor.
func doNoteRequest(h *NoteHandler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, "/api/v1/notes"+path, &buf)
	req = req.WithContext(request.WithActor(req.Context(), testActor()))
	w := httptest.NewRecorder()

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1/notes").Subrouter())
	router.ServeHTTP(w, req)
	return w
}

func TestCreateNote(t *testing.T) {
	t.Parallel()

	t.Run("classifier failure defaults to daily task", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		classifier := &mockClassifier{classifyErr: errors.New("oracle down")}
		h := NewNoteHandler(repo, classifier, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Buy milk",
			Description: "From the corner store",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if repo.createdNote.Type != models.NoteTypeDailyTask {
			t.Errorf("Expected type 'daily task', got %q", repo.createdNote.Type)
		}
		if !slices.Contains(repo.createdNote.Tags, "daily task") {
			t.Errorf("Expected type appended to tags, got %v", repo.createdNote.Tags)
		}
	})

	t.Run("classifier result is used and tagged", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		classifier := &mockClassifier{noteType: models.NoteTypeProject}
		h := NewNoteHandler(repo, classifier, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Redesign the onboarding flow",
			Description: "Multi-sprint effort",
			Tags:        []string{"ux"},
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if repo.createdNote.Type != models.NoteTypeProject {
			t.Errorf("Expected type 'project', got %q", repo.createdNote.Type)
		}
		want := []string{"ux", "project"}
		if !slices.Equal(repo.createdNote.Tags, want) {
			t.Errorf("Expected tags %v, got %v", want, repo.createdNote.Tags)
		}
	})

	t.Run("explicit type skips classifier", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		classifier := &mockClassifier{classifyErr: errors.New("must not be called")}
		h := NewNoteHandler(repo, classifier, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Water plants",
			Description: "Every morning",
			Type:        "routine task",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if repo.createdNote.Type != models.NoteTypeRoutineTask {
			t.Errorf("Expected type 'routine task', got %q", repo.createdNote.Type)
		}
	})

	t.Run("omitted color defaults to blue", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Buy milk",
			Description: "From the corner store",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if repo.createdNote.Color != models.DefaultNoteColor {
			t.Errorf("Expected color %q, got %q", models.DefaultNoteColor, repo.createdNote.Color)
		}
	})

	t.Run("explicit color is kept", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Buy milk",
			Description: "From the corner store",
			Color:       "red",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if repo.createdNote.Color != "red" {
			t.Errorf("Expected color %q, got %q", "red", repo.createdNote.Color)
		}
	})

	t.Run("attribution comes from the actor", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Check invoices",
			Description: "Q3 close",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if repo.createdNote.CreatedBy != "alice@example.com" || repo.createdNote.CreatedByName != "Alice" {
			t.Errorf("Unexpected attribution: %q / %q", repo.createdNote.CreatedBy, repo.createdNote.CreatedByName)
		}
		if repo.createdNote.Source != models.NoteSourceManual {
			t.Errorf("Expected source manual, got %q", repo.createdNote.Source)
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		t.Parallel()

		h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
		w := doNoteRequest(h, "POST", "", CreateNoteRequest{Description: "no title"})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("missing description rejected", func(t *testing.T) {
		t.Parallel()

		h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
		w := doNoteRequest(h, "POST", "", CreateNoteRequest{Title: "no description"})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		t.Parallel()

		h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Title",
			Description: "Description",
			Type:        "epic",
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{createErr: &database.DuplicateError{Reason: "same title"}}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "", CreateNoteRequest{
			Title:       "Buy milk",
			Description: "Again",
		})

		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})
}

func TestUpdateNote(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("requires title or description", func(t *testing.T) {
		t.Parallel()

		h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
		color := "red"
		w := doNoteRequest(h, "PUT", "/"+id.String(), UpdateNoteRequest{Color: &color})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("partial update passes patch through", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{note: &models.Note{ID: id}}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		title := "New title"
		w := doNoteRequest(h, "PUT", "/"+id.String(), UpdateNoteRequest{Title: &title})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if repo.lastPatch.Title == nil || *repo.lastPatch.Title != "New title" {
			t.Errorf("Expected patch title 'New title', got %v", repo.lastPatch.Title)
		}
		if repo.lastPatch.Description != nil {
			t.Error("Expected description untouched")
		}
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{updateErr: database.ErrForbidden}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		title := "nope"
		w := doNoteRequest(h, "PUT", "/"+id.String(), UpdateNoteRequest{Title: &title})

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})

	t.Run("invalid id rejected", func(t *testing.T) {
		t.Parallel()

		h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
		title := "x"
		w := doNoteRequest(h, "PUT", "/not-a-uuid", UpdateNoteRequest{Title: &title})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestGetNote_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockNoteRepo{getErr: database.ErrNotFound}
	h := NewNoteHandler(repo, nil, nil, zap.NewNop())

	w := doNoteRequest(h, "GET", "/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCompleteNote(t *testing.T) {
	t.Parallel()

	repo := &mockNoteRepo{completed: true}
	h := NewNoteHandler(repo, nil, nil, zap.NewNop())

	w := doNoteRequest(h, "PATCH", "/"+uuid.NewString()+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data := body["data"].(map[string]any)
	if completed, _ := data["completed"].(bool); !completed {
		t.Error("Expected completed to be true")
	}
}

func TestAssignNote(t *testing.T) {
	t.Parallel()

	t.Run("empty list is a no-op", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{note: &models.Note{AssignedTo: []string{"bob@example.com"}}}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "/"+uuid.NewString()+"/assign", AssignNoteRequest{})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if len(repo.lastAssigned) != 0 {
			t.Errorf("Expected empty assignee list passed through, got %v", repo.lastAssigned)
		}
	})

	t.Run("assignees pass through", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{note: &models.Note{}}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		w := doNoteRequest(h, "POST", "/"+uuid.NewString()+"/assign", AssignNoteRequest{
			AssignedTo: []string{"bob@example.com"},
		})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !slices.Equal(repo.lastAssigned, []string{"bob@example.com"}) {
			t.Errorf("Expected assignees passed through, got %v", repo.lastAssigned)
		}
	})
}

func TestRollbackNote_VersionNotFound(t *testing.T) {
	t.Parallel()

	repo := &mockNoteRepo{rollbackErr: database.ErrVersionNotFound}
	h := NewNoteHandler(repo, nil, nil, zap.NewNop())

	w := doNoteRequest(h, "POST", "/"+uuid.NewString()+"/rollback/v1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	t.Run("empty text rejected", func(t *testing.T) {
		t.Parallel()

		h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
		w := doNoteRequest(h, "POST", "/"+uuid.NewString()+"/comments", AddCommentRequest{Text: "   "})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("comment attributed to actor", func(t *testing.T) {
		t.Parallel()

		repo := &mockNoteRepo{}
		h := NewNoteHandler(repo, nil, nil, zap.NewNop())

		parent := "abc"
		w := doNoteRequest(h, "POST", "/"+uuid.NewString()+"/comments", AddCommentRequest{
			Text:     "Looks good",
			ParentID: &parent,
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if repo.comment.AuthorEmail != "alice@example.com" || repo.comment.Author != "Alice" {
			t.Errorf("Unexpected attribution: %q / %q", repo.comment.AuthorEmail, repo.comment.Author)
		}
		if repo.comment.ParentID == nil || *repo.comment.ParentID != "abc" {
			t.Errorf("Expected parent id 'abc', got %v", repo.comment.ParentID)
		}
		if repo.comment.ID == "" {
			t.Error("Expected a generated comment id")
		}
	})
}

func TestDeleteComment_NothingRemoved(t *testing.T) {
	t.Parallel()

	repo := &mockNoteRepo{commentErr: database.ErrDeleteFailed}
	h := NewNoteHandler(repo, nil, nil, zap.NewNop())

	w := doNoteRequest(h, "DELETE", "/"+uuid.NewString()+"/comments/c1", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestListNotes_InvalidView(t *testing.T) {
	t.Parallel()

	h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())
	w := doNoteRequest(h, "GET", "?view=archived", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListNotes_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := NewNoteHandler(&mockNoteRepo{}, nil, nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/v1/notes", nil)
	w := httptest.NewRecorder()

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1/notes").Subrouter())
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}
