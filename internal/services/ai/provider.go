package ai

import (
	"context"
	"time"

	"github.com/notehq/notehub/internal/models"
)

// ExtractedItem is one actionable item pulled out of a transcript.
type ExtractedItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Color       string     `json:"color"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// Provider is the interface for AI providers
type Provider interface {
	// Classify categorizes note content as a daily task or a project
	Classify(ctx context.Context, text string) (models.NoteType, error)

	// Extract pulls actionable items out of a meeting transcript. Malformed
	// oracle output yields an empty list, not an error.
	Extract(ctx context.Context, transcript string) ([]ExtractedItem, error)

	// Summarize condenses a transcript into roughly maxWords words
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
}

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
