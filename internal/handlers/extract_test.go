package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/request"
	"github.com/notehq/notehub/internal/services/ai"
	"go.uber.org/zap"
)

type mockJobQueue struct {
	enqueued   []*queue.Job
	enqueueErr error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (m *mockJobQueue) Close() error                        { return nil }
func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

var _ queue.JobQueue = (*mockJobQueue)(nil)

func doExtractRequest(h *ExtractHandler, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest("POST", "/api/v1"+path, &buf)
	if authenticated {
		req = req.WithContext(request.WithActor(req.Context(), testActor()))
	}
	w := httptest.NewRecorder()

	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())
	router.ServeHTTP(w, req)
	return w
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("previews returned", func(t *testing.T) {
		t.Parallel()

		provider := &mockClassifier{items: []ai.ExtractedItem{
			{Title: "Follow up with vendor", Description: "Before Friday"},
			{Title: "Book room", Description: "For the retro"},
		}}
		h := NewExtractHandler(provider, &mockNoteRepo{}, nil, zap.NewNop())

		w := doExtractRequest(h, "/extract", TranscriptRequest{Transcript: "meeting notes"}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var body struct {
			Data []ai.ExtractedItem `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(body.Data) != 2 {
			t.Errorf("Expected 2 previews, got %d", len(body.Data))
		}
	})

	t.Run("duplicates silently dropped", func(t *testing.T) {
		t.Parallel()

		provider := &mockClassifier{items: []ai.ExtractedItem{
			{Title: "Already tracked", Description: "dup"},
		}}
		h := NewExtractHandler(provider, &mockNoteRepo{duplicate: true}, nil, zap.NewNop())

		w := doExtractRequest(h, "/extract", TranscriptRequest{Transcript: "meeting notes"}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var body struct {
			Data []ai.ExtractedItem `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(body.Data) != 0 {
			t.Errorf("Expected duplicates filtered out, got %d previews", len(body.Data))
		}
	})

	t.Run("empty transcript rejected", func(t *testing.T) {
		t.Parallel()

		h := NewExtractHandler(&mockClassifier{}, &mockNoteRepo{}, nil, zap.NewNop())
		w := doExtractRequest(h, "/extract", TranscriptRequest{Transcript: "  "}, true)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		t.Parallel()

		h := NewExtractHandler(&mockClassifier{}, &mockNoteRepo{}, nil, zap.NewNop())
		w := doExtractRequest(h, "/extract", TranscriptRequest{Transcript: "x"}, false)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("unconfigured provider rejected", func(t *testing.T) {
		t.Parallel()

		h := NewExtractHandler(nil, &mockNoteRepo{}, nil, zap.NewNop())
		w := doExtractRequest(h, "/extract", TranscriptRequest{Transcript: "x"}, true)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestIngestTranscript(t *testing.T) {
	t.Parallel()

	t.Run("job enqueued with caller attribution", func(t *testing.T) {
		t.Parallel()

		jq := &mockJobQueue{}
		h := NewExtractHandler(&mockClassifier{}, &mockNoteRepo{}, jq, zap.NewNop())

		w := doExtractRequest(h, "/transcripts", TranscriptRequest{Transcript: "standup notes"}, true)
		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
		}

		if len(jq.enqueued) != 1 {
			t.Fatalf("Expected 1 job enqueued, got %d", len(jq.enqueued))
		}
		job := jq.enqueued[0]
		if job.RequestedBy != "alice@example.com" {
			t.Errorf("Expected job requested by alice@example.com, got %q", job.RequestedBy)
		}
		if job.Transcript != "standup notes" {
			t.Errorf("Expected transcript carried in job, got %q", job.Transcript)
		}
		if job.Type != queue.JobTypeExtraction {
			t.Errorf("Expected extraction job type, got %q", job.Type)
		}
	})

	t.Run("missing queue rejected", func(t *testing.T) {
		t.Parallel()

		h := NewExtractHandler(&mockClassifier{}, &mockNoteRepo{}, nil, zap.NewNop())
		w := doExtractRequest(h, "/transcripts", TranscriptRequest{Transcript: "x"}, true)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("summary and key points returned", func(t *testing.T) {
		t.Parallel()

		provider := &mockClassifier{summary: "We agreed on the launch date. Alice owns the rollout plan."}
		h := NewExtractHandler(provider, &mockNoteRepo{}, nil, zap.NewNop())

		w := doExtractRequest(h, "/summarize", TranscriptRequest{Transcript: "long meeting transcript"}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var body struct {
			Data struct {
				Summary   string   `json:"summary"`
				KeyPoints []string `json:"key_points"`
			} `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.Data.Summary != "We agreed on the launch date. Alice owns the rollout plan." {
			t.Errorf("Unexpected summary: %q", body.Data.Summary)
		}
		if len(body.Data.KeyPoints) != 2 {
			t.Fatalf("Expected 2 key points, got %d: %v", len(body.Data.KeyPoints), body.Data.KeyPoints)
		}
		if body.Data.KeyPoints[0] != "We agreed on the launch date" {
			t.Errorf("Unexpected first key point: %q", body.Data.KeyPoints[0])
		}
	})

	t.Run("oracle failure degrades to truncation", func(t *testing.T) {
		t.Parallel()

		provider := &mockClassifier{summarizeErr: errors.New("quota exceeded")}
		h := NewExtractHandler(provider, &mockNoteRepo{}, nil, zap.NewNop())

		w := doExtractRequest(h, "/summarize", TranscriptRequest{Transcript: "short transcript text"}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var body struct {
			Data struct {
				Summary string `json:"summary"`
			} `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.Data.Summary != "short transcript text" {
			t.Errorf("Expected fallback summary, got %q", body.Data.Summary)
		}
	})

	t.Run("missing provider still summarizes", func(t *testing.T) {
		t.Parallel()

		h := NewExtractHandler(nil, &mockNoteRepo{}, nil, zap.NewNop())
		w := doExtractRequest(h, "/summarize", TranscriptRequest{Transcript: "raw text only"}, true)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestFallbackSummary_Truncates(t *testing.T) {
	t.Parallel()

	got := fallbackSummary("a b c d e", 3)
	if got != "a b c..." {
		t.Errorf("fallbackSummary() = %q, want %q", got, "a b c...")
	}
	if got := fallbackSummary("a b", 3); got != "a b" {
		t.Errorf("fallbackSummary() = %q, want unchanged text", got)
	}
}
