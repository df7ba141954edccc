package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/services/ai"
)

// mockNoteRepo is a configurable in-memory stand-in for the note store
type mockNoteRepo struct {
	createErr    error
	createdNote  *models.Note
	note         *models.Note
	notes        []*models.Note
	getErr       error
	updateErr    error
	lastPatch    database.NotePatch
	duplicate    bool
	duplicateErr error
	versions     []models.Version
	historyErr   error
	rollbackErr  error
	assignErr    error
	lastAssigned []string
	comment      *models.Comment
	commentErr   error
	deleteErr    error
	tags         []string
	completed    bool
}

func (m *mockNoteRepo) Create(ctx context.Context, note *models.Note) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdNote = note
	return nil
}

func (m *mockNoteRepo) CheckDuplicate(ctx context.Context, creator, title, description string, source models.NoteSource) (bool, error) {
	return m.duplicate, m.duplicateErr
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.note, nil
}

func (m *mockNoteRepo) List(ctx context.Context, filter database.NoteFilter) ([]*models.Note, error) {
	return m.notes, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, actor models.Actor, id uuid.UUID, patch database.NotePatch) (*models.Note, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.lastPatch = patch
	return m.note, nil
}

func (m *mockNoteRepo) Trash(ctx context.Context, id uuid.UUID) error   { return m.deleteErr }
func (m *mockNoteRepo) Restore(ctx context.Context, id uuid.UUID) error { return m.deleteErr }
func (m *mockNoteRepo) DeletePermanent(ctx context.Context, id uuid.UUID) error {
	return m.deleteErr
}

func (m *mockNoteRepo) ToggleComplete(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.completed, m.deleteErr
}

func (m *mockNoteRepo) DistinctTags(ctx context.Context) ([]string, error) {
	return m.tags, nil
}

func (m *mockNoteRepo) History(ctx context.Context, id uuid.UUID) ([]models.Version, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.versions, nil
}

func (m *mockNoteRepo) Rollback(ctx context.Context, actor models.Actor, id uuid.UUID, versionID string) (*models.Note, error) {
	if m.rollbackErr != nil {
		return nil, m.rollbackErr
	}
	return m.note, nil
}

func (m *mockNoteRepo) Assign(ctx context.Context, actor models.Actor, id uuid.UUID, assignees []string) (*models.Note, error) {
	if m.assignErr != nil {
		return nil, m.assignErr
	}
	m.lastAssigned = assignees
	return m.note, nil
}

func (m *mockNoteRepo) AddComment(ctx context.Context, id uuid.UUID, comment *models.Comment) (*models.Comment, error) {
	if m.commentErr != nil {
		return nil, m.commentErr
	}
	m.comment = comment
	return comment, nil
}

func (m *mockNoteRepo) UpdateComment(ctx context.Context, noteID uuid.UUID, commentID string, patch database.CommentPatch) (*models.Comment, error) {
	if m.commentErr != nil {
		return nil, m.commentErr
	}
	return m.comment, nil
}

func (m *mockNoteRepo) DeleteComment(ctx context.Context, noteID uuid.UUID, commentID string) error {
	return m.commentErr
}

var _ database.NoteRepositoryInterface = (*mockNoteRepo)(nil)

// mockClassifier is a canned AI provider
type mockClassifier struct {
	noteType     models.NoteType
	classifyErr  error
	items        []ai.ExtractedItem
	extractErr   error
	summary      string
	summarizeErr error
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (models.NoteType, error) {
	return m.noteType, m.classifyErr
}

func (m *mockClassifier) Extract(ctx context.Context, transcript string) ([]ai.ExtractedItem, error) {
	return m.items, m.extractErr
}

func (m *mockClassifier) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	return m.summary, m.summarizeErr
}

var _ ai.Provider = (*mockClassifier)(nil)
