package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/notehq/notehub/internal/models"
)

// NoteRepositoryInterface defines the interface for note repository operations
// This interface enables better testability by allowing mock implementations
type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.Note) error
	CheckDuplicate(ctx context.Context, creator, title, description string, source models.NoteSource) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	List(ctx context.Context, filter NoteFilter) ([]*models.Note, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, patch NotePatch) (*models.Note, error)
	Trash(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	DeletePermanent(ctx context.Context, id uuid.UUID) error
	ToggleComplete(ctx context.Context, id uuid.UUID) (bool, error)
	DistinctTags(ctx context.Context) ([]string, error)
	History(ctx context.Context, id uuid.UUID) ([]models.Version, error)
	Rollback(ctx context.Context, actor models.Actor, id uuid.UUID, versionID string) (*models.Note, error)
	Assign(ctx context.Context, actor models.Actor, id uuid.UUID, assignees []string) (*models.Note, error)
	AddComment(ctx context.Context, id uuid.UUID, comment *models.Comment) (*models.Comment, error)
	UpdateComment(ctx context.Context, noteID uuid.UUID, commentID string, patch CommentPatch) (*models.Comment, error)
	DeleteComment(ctx context.Context, noteID uuid.UUID, commentID string) error
}

// PersonRepositoryInterface defines the interface for people index operations
type PersonRepositoryInterface interface {
	List(ctx context.Context) ([]*models.Person, error)
	EnsurePerson(ctx context.Context, identifier string) error
}

// Ensure concrete types implement the interfaces
var (
	_ NoteRepositoryInterface   = (*NoteRepository)(nil)
	_ PersonRepositoryInterface = (*PersonRepository)(nil)
)
