package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notehq/notehub/internal/database"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusOK, map[string]string{"message": "hello"})

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("Expected success to be true")
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Error("Expected timestamp to be present")
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data to be present")
	}
	if msg, _ := data["message"].(string); msg != "hello" {
		t.Errorf("Expected message 'hello', got %v", data["message"])
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "something broke")

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("Expected success to be false")
	}
	if errType, _ := body["error"].(string); errType != "Bad Request" {
		t.Errorf("Expected error 'Bad Request', got %v", body["error"])
	}
	if msg, _ := body["message"].(string); msg != "something broke" {
		t.Errorf("Expected message 'something broke', got %v", body["message"])
	}
}

func TestSanitizeErrorMessage_Truncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 500)
	got := sanitizeErrorMessage(long)
	if len(got) != 203 {
		t.Errorf("Expected truncation to 203 characters, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated message to end with ellipsis")
	}
}

func TestRespondStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound},
		{"version not found", database.ErrVersionNotFound, http.StatusNotFound},
		{"forbidden", database.ErrForbidden, http.StatusForbidden},
		{"duplicate with reason", &database.DuplicateError{Reason: "same title"}, http.StatusConflict},
		{"wrapped not found", errors.Join(errors.New("outer"), database.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"delete failed", database.ErrDeleteFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondStoreError(w, tt.err, "Resource not found")

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
