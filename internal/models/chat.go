package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoomType distinguishes direct two-party rooms from named groups
type ChatRoomType string

const (
	ChatRoomDirect ChatRoomType = "direct"
	ChatRoomGroup  ChatRoomType = "group"
)

// ChatRoom is a conversation container. Direct rooms hold exactly two
// participants and are deduplicated by exact participant set.
type ChatRoom struct {
	ID           uuid.UUID       `json:"id"`
	Type         ChatRoomType    `json:"type"`
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	Participants []string        `json:"participants"`
	CreatedBy    string          `json:"created_by"`
	LastMessage  *MessagePreview `json:"last_message,omitempty"`
	LastActivity time.Time       `json:"last_activity"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MessagePreview is the denormalized last-message summary stored on a room.
type MessagePreview struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one chat message. Deletion is soft: the content is replaced
// and the deleted flag set, the row stays.
type Message struct {
	ID         uuid.UUID  `json:"id"`
	ChatID     uuid.UUID  `json:"chat_id"`
	Sender     string     `json:"sender"`
	SenderName string     `json:"sender_name"`
	Content    string     `json:"content"`
	Type       string     `json:"type"`
	ReadBy     []string   `json:"read_by"`
	Edited     bool       `json:"edited"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	Deleted    bool       `json:"deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// DeletedMessagePlaceholder replaces the content of soft-deleted messages.
const DeletedMessagePlaceholder = "This message was deleted"
