package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/notehq/notehub/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("note_type", validateNoteType); err != nil {
		panic(fmt.Sprintf("failed to register note_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("project_status", validateProjectStatus); err != nil {
		panic(fmt.Sprintf("failed to register project_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("project_priority", validateProjectPriority); err != nil {
		panic(fmt.Sprintf("failed to register project_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("chat_room_type", validateChatRoomType); err != nil {
		panic(fmt.Sprintf("failed to register chat_room_type validator: %v", err))
	}
}

// validateNoteType validates that a string is a valid NoteType enum value
func validateNoteType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.NoteType(value) {
	case models.NoteTypeDailyTask, models.NoteTypeProject, models.NoteTypeRoutineTask:
		return true
	default:
		return false
	}
}

// validateProjectStatus validates that a string is a valid ProjectStatus enum value
func validateProjectStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ProjectStatus(value) {
	case models.ProjectStatusActive, models.ProjectStatusOnHold, models.ProjectStatusCompleted:
		return true
	default:
		return false
	}
}

// validateProjectPriority validates that a string is a valid ProjectPriority enum value
func validateProjectPriority(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ProjectPriority(value) {
	case models.ProjectPriorityLow, models.ProjectPriorityMedium, models.ProjectPriorityHigh:
		return true
	default:
		return false
	}
}

// validateChatRoomType validates that a string is a valid ChatRoomType enum value
func validateChatRoomType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ChatRoomType(value) {
	case models.ChatRoomDirect, models.ChatRoomGroup:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateNoteType validates a NoteType string value
func ValidateNoteType(value string) error {
	switch models.NoteType(value) {
	case models.NoteTypeDailyTask, models.NoteTypeProject, models.NoteTypeRoutineTask:
		return nil
	default:
		return fmt.Errorf("invalid type: %s (must be 'daily task', 'project', or 'routine task')", value)
	}
}

// ValidateNoteView validates the view query parameter on note listings
func ValidateNoteView(value string) error {
	switch value {
	case "", "active", "trash", "completed", "all":
		return nil
	default:
		return fmt.Errorf("invalid view: %s (must be 'active', 'trash', 'completed', or 'all')", value)
	}
}
