package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/request"
	"github.com/notehq/notehub/internal/services/ai"
	"github.com/notehq/notehub/internal/validation"
	"go.uber.org/zap"
)

// MaxTranscriptLength bounds transcript submissions
const MaxTranscriptLength = 200000

// ExtractHandler handles transcript extraction requests
type ExtractHandler struct {
	provider ai.Provider
	noteRepo database.NoteRepositoryInterface
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewExtractHandler creates a new extraction handler
func NewExtractHandler(provider ai.Provider, noteRepo database.NoteRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{
		provider: provider,
		noteRepo: noteRepo,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// RegisterRoutes registers extraction routes on the given router
func (h *ExtractHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/extract", h.Extract).Methods("POST")
	r.HandleFunc("/transcripts", h.IngestTranscript).Methods("POST")
	r.HandleFunc("/summarize", h.Summarize).Methods("POST")
}

// TranscriptRequest carries a meeting transcript
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// Extract runs extraction synchronously and returns draft previews without
// storing anything. Drafts that would be rejected as duplicates are
// silently dropped.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	transcript, ok := h.transcript(w, r)
	if !ok {
		return
	}

	if h.provider == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Extraction is not configured")
		return
	}

	ctx := r.Context()
	items, err := h.provider.Extract(ctx, transcript)
	if err != nil {
		h.logger.Warn("extraction_failed",
			zap.Error(err),
		)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Extraction failed")
		return
	}

	previews := make([]ai.ExtractedItem, 0, len(items))
	for _, item := range items {
		dup, err := h.noteRepo.CheckDuplicate(ctx, actor.Email, item.Title, item.Description, models.NoteSourceTranscript)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to check for duplicates")
			return
		}
		if dup {
			continue
		}
		previews = append(previews, item)
	}

	respondJSON(w, http.StatusOK, previews)
}

// IngestTranscript enqueues an extraction job; the worker turns it into
// stored notes attributed to the caller.
func (h *ExtractHandler) IngestTranscript(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	transcript, ok := h.transcript(w, r)
	if !ok {
		return
	}

	if h.jobQueue == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Transcript ingestion is not configured")
		return
	}

	job := queue.NewExtractionJob(actor.Email, actor.Name, transcript)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("failed_to_enqueue_extraction_job",
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue transcript")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{"job_id": job.ID, "status": "queued"})
}

// SummaryWordLimit bounds transcript summaries
const SummaryWordLimit = 150

// Summarize condenses a transcript and derives its key points. Oracle
// failures degrade to a leading-sentences summary rather than an error.
func (h *ExtractHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	transcript, ok := h.transcript(w, r)
	if !ok {
		return
	}

	summary := ""
	if h.provider != nil {
		s, err := h.provider.Summarize(r.Context(), transcript, SummaryWordLimit)
		if err != nil {
			h.logger.Warn("summarization_failed",
				zap.Error(err),
			)
		} else {
			summary = strings.TrimSpace(s)
		}
	}
	if summary == "" {
		summary = fallbackSummary(transcript, SummaryWordLimit)
	}

	var keyPoints []string
	for _, s := range strings.Split(summary, ".") {
		if s = strings.TrimSpace(s); len(s) > 10 {
			keyPoints = append(keyPoints, s)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"summary":    summary,
		"key_points": keyPoints,
	})
}

// fallbackSummary truncates the text to roughly maxWords words
func fallbackSummary(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func (h *ExtractHandler) transcript(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TranscriptRequest
	if !decodeBody(w, r, &req) {
		return "", false
	}

	transcript := validation.SanitizeText(req.Transcript)
	if transcript == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Transcript is required")
		return "", false
	}
	if len(transcript) > MaxTranscriptLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Transcript exceeds maximum length")
		return "", false
	}
	return transcript, true
}
