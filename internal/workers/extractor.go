package workers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/services/ai"
	"go.uber.org/zap"
)

// Extractor turns transcript extraction jobs into stored notes
type Extractor struct {
	provider ai.Provider
	noteRepo database.NoteRepositoryInterface
	jobQueue queue.JobQueue // For re-enqueueing jobs with delays
	events   queue.EventPublisher
	logger   *zap.Logger
}

// NewExtractor creates a new extraction worker. The event publisher may be
// nil when the worker runs without an events exchange.
func NewExtractor(
	provider ai.Provider,
	noteRepo database.NoteRepositoryInterface,
	jobQueue queue.JobQueue,
	events queue.EventPublisher,
	logger *zap.Logger,
) *Extractor {
	return &Extractor{
		provider: provider,
		noteRepo: noteRepo,
		jobQueue: jobQueue,
		events:   events,
		logger:   logger,
	}
}

// ProcessJob dispatches a queue message, acknowledging or retrying based on
// the outcome
func (e *Extractor) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	if !job.ShouldProcess() {
		// Not ready yet; put it back for a later delivery
		if nackErr := msg.Nack(true); nackErr != nil {
			e.logger.Warn("failed_to_requeue_job",
				zap.Error(nackErr),
				zap.String("job_id", job.ID.String()),
			)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeExtraction:
		if err := e.ProcessExtractionJob(ctx, job); err != nil {
			return e.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			e.logger.Warn("failed_to_nack_unknown_job",
				zap.Error(nackErr),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// ProcessExtractionJob extracts draft notes from the job's transcript and
// stores each one. Drafts that collide with the creator's recent notes are
// skipped silently; a failed classification degrades to the daily task
// default rather than failing the job.
func (e *Extractor) ProcessExtractionJob(ctx context.Context, job *queue.Job) error {
	items, err := e.provider.Extract(ctx, job.Transcript)
	if err != nil {
		return fmt.Errorf("failed to extract notes: %w", err)
	}

	created, skipped := 0, 0
	for _, item := range items {
		noteType := e.classify(ctx, item.Title+" "+item.Description)

		tags := item.Tags
		if !slices.Contains(tags, string(noteType)) {
			tags = append(tags, string(noteType))
		}

		note := &models.Note{
			Title:         item.Title,
			Description:   item.Description,
			Color:         item.Color,
			Tags:          tags,
			Deadline:      item.Deadline,
			Type:          noteType,
			Source:        models.NoteSourceTranscript,
			CreatedBy:     job.RequestedBy,
			CreatedByName: job.RequestedByName,
		}

		if err := e.noteRepo.Create(ctx, note); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				skipped++
				continue
			}
			return fmt.Errorf("failed to store extracted note: %w", err)
		}
		created++

		if e.events != nil {
			_ = e.events.Publish(ctx, queue.EventNoteCreated, map[string]any{
				"note_id":    note.ID,
				"title":      note.Title,
				"created_by": note.CreatedBy,
				"source":     note.Source,
			})
		}
	}

	e.logger.Info("extraction_job_complete",
		zap.String("job_id", job.ID.String()),
		zap.String("requested_by", job.RequestedBy),
		zap.Int("extracted", len(items)),
		zap.Int("created", created),
		zap.Int("skipped_duplicates", skipped),
	)
	return nil
}

func (e *Extractor) classify(ctx context.Context, text string) models.NoteType {
	noteType, err := e.provider.Classify(ctx, text)
	if err != nil {
		e.logger.Warn("classification_failed",
			zap.Error(err),
		)
		return models.NoteTypeDailyTask
	}
	return noteType
}

// handleJobError retries transient AI failures with a delay and routes
// exhausted or fatal jobs to the DLQ
func (e *Extractor) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	if (ai.IsQuotaError(err) || ai.IsRateLimitError(err)) && job.CanRetry() && e.jobQueue != nil {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		delayedJob := &queue.Job{
			ID:              job.ID,
			Type:            job.Type,
			RequestedBy:     job.RequestedBy,
			RequestedByName: job.RequestedByName,
			Transcript:      job.Transcript,
			NotBefore:       &notBefore,
			NotAfter:        job.NotAfter,
			Metadata:        job.Metadata,
			CreatedAt:       job.CreatedAt,
			RetryCount:      job.RetryCount + 1,
			MaxRetries:      job.MaxRetries,
		}

		if ackErr := msg.Ack(); ackErr != nil {
			e.logger.Warn("failed_to_ack_before_reenqueue",
				zap.Error(ackErr),
				zap.String("job_id", job.ID.String()),
			)
		}

		if enqueueErr := e.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
			return fmt.Errorf("failed to re-enqueue job after %v: %w", retryDelay, enqueueErr)
		}

		e.logger.Info("extraction_job_delayed",
			zap.String("job_id", job.ID.String()),
			zap.Duration("retry_delay", retryDelay),
			zap.Int("retry_count", delayedJob.RetryCount),
		)
		return nil
	}

	if job.CanRetry() {
		job.IncrementRetry()
		if nackErr := msg.Nack(true); nackErr != nil {
			e.logger.Warn("failed_to_nack_for_retry",
				zap.Error(nackErr),
				zap.String("job_id", job.ID.String()),
			)
		}
		return fmt.Errorf("extraction failed (will retry): %w", err)
	}

	// Retries exhausted: dead-letter the job
	if nackErr := msg.Nack(false); nackErr != nil {
		e.logger.Warn("failed_to_nack_to_dlq",
			zap.Error(nackErr),
			zap.String("job_id", job.ID.String()),
		)
	}
	return fmt.Errorf("extraction failed permanently after %d retries: %w", job.RetryCount, err)
}
