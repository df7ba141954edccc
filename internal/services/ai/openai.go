package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/notehq/notehub/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// complete sends one prompt to the model and returns the raw response text.
func (p *OpenAIProvider) complete(ctx context.Context, operation, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to complete %s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("failed to complete %s: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// Classify categorizes note content as a daily task or a project
func (p *OpenAIProvider) Classify(ctx context.Context, text string) (models.NoteType, error) {
	prompt := buildClassificationPrompt(text)
	content, err := p.complete(ctx, "classify_note",
		"You are a classifier for a note-taking system. Respond with exactly one label.", prompt)
	if err != nil {
		return models.NoteTypeDailyTask, err
	}
	return parseClassification(content), nil
}

// Extract pulls actionable items out of a meeting transcript
func (p *OpenAIProvider) Extract(ctx context.Context, transcript string) ([]ExtractedItem, error) {
	prompt := buildExtractionPrompt(transcript)
	content, err := p.complete(ctx, "extract_tasks",
		"You are an assistant that extracts actionable items from transcripts. Respond with valid JSON only.", prompt)
	if err != nil {
		return nil, err
	}

	items := parseExtractionResponse(content)
	if p.logger != nil && len(items) == 0 {
		p.logger.Warn("extraction_returned_no_items",
			zap.Int("response_length", len(content)),
		)
	}
	return items, nil
}

// Summarize condenses a transcript into roughly maxWords words
func (p *OpenAIProvider) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = 130
	}
	prompt := fmt.Sprintf("Summarize the following text in about %d words:\n\n%s", maxWords, text)
	content, err := p.complete(ctx, "summarize",
		"You are a concise summarizer.", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func buildClassificationPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following note content and classify it as either "daily task" or "project".

Classification criteria:
- "daily task": routine tasks, daily activities, short-term tasks, personal tasks, meetings, appointments, errands, quick actions, single-step tasks, simple reminders
- "project": long-term initiatives, complex tasks, multi-step processes, strategic work, team projects, major deliverables, multi-phase work

Examples:
- "Call John about meeting" -> daily task
- "Pay bills" -> daily task
- "Schedule dentist appointment" -> daily task
- "Develop new website" -> project
- "Launch marketing campaign" -> project
- "Plan quarterly strategy" -> project

Note content: %q

Respond with ONLY one word: "daily task" or "project"`, text)
}

func buildExtractionPrompt(transcript string) string {
	return fmt.Sprintf(`You are an assistant that extracts actionable items, plans, events, or intentions from any conversation or meeting transcript. This includes work tasks, personal plans, social events, errands, or anything the speaker intends to do.

Each extracted item must have this shape:
{
  "title": "short actionable title",
  "description": "one or two sentences of context",
  "tags": ["relevant", "context", "tags"],
  "deadline": "2024-06-07T15:00:00" or null
}

IMPORTANT: for the deadline field, ALWAYS return either a valid ISO 8601 datetime string or null. Do NOT use any other format.

Include relevant tags that provide context about:
- Project names, client names, or company names mentioned
- People, team members, or stakeholders involved
- Technologies, tools, or platforms referenced
- Locations, venues, or meeting places
- Categories like "urgent", "important", "follow-up", "review"

Do NOT include a "type" field in your response. The note type is classified separately.

Now extract all such items from the following transcript. Only include actionable items. Ignore conversational or irrelevant content. Output ONLY a valid JSON array, no extra text.

Meeting transcript:
%s`, transcript)
}

// parseClassification maps a raw model response onto the closed label set.
// Any response mentioning "project" counts as project; everything else
// falls back to daily task.
func parseClassification(content string) models.NoteType {
	cleaned := strings.ToLower(strings.TrimSpace(content))
	cleaned = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(cleaned)
	if strings.Contains(cleaned, "project") {
		return models.NoteTypeProject
	}
	return models.NoteTypeDailyTask
}

type rawExtractedItem struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
	Color       string          `json:"color"`
	Deadline    *string         `json:"deadline"`
}

// parseExtractionResponse validates the oracle's output item by item.
// Unparseable responses and items without a title are discarded rather
// than failing the whole extraction.
func parseExtractionResponse(content string) []ExtractedItem {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.Index(cleaned, "["); start > 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var raw []rawExtractedItem
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil
	}

	items := make([]ExtractedItem, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		item := ExtractedItem{
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
			Tags:        parseTags(r.Tags),
			Color:       r.Color,
		}
		if item.Color == "" {
			item.Color = models.DefaultNoteColor
		}
		if r.Deadline != nil {
			if deadline := parseDeadline(*r.Deadline); deadline != nil {
				item.Deadline = deadline
			}
		}
		items = append(items, item)
	}
	return items
}

// parseTags tolerates the oracle returning a single string instead of a list.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err == nil {
		return tags
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return []string{}
}

func parseDeadline(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (Provider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		return NewOpenAIProvider(apiKey, config["model"]), nil
	})
}
