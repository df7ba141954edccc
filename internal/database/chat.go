package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/notehq/notehub/internal/models"
)

// ChatRepository handles chat room and message database operations
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

const chatRoomColumns = `id, type, name, description, participants, created_by,
	last_message, last_activity, created_at`

func scanChatRoom(row rowScanner) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	var lastMessageJSON []byte

	err := row.Scan(
		&room.ID,
		&room.Type,
		&room.Name,
		&room.Description,
		pq.Array(&room.Participants),
		&room.CreatedBy,
		&lastMessageJSON,
		&room.LastActivity,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(lastMessageJSON) > 0 {
		room.LastMessage = &models.MessagePreview{}
		if err := json.Unmarshal(lastMessageJSON, room.LastMessage); err != nil {
			return nil, fmt.Errorf("failed to unmarshal last message: %w", err)
		}
	}
	return room, nil
}

// CreateRoom creates a chat room. Direct rooms are deduplicated by exact
// participant set: if one already exists it is returned instead of
// creating another.
func (r *ChatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	if room.Type == models.ChatRoomDirect {
		participants := append([]string(nil), room.Participants...)
		sort.Strings(participants)

		row := r.db.QueryRowContext(ctx, `
			SELECT `+chatRoomColumns+` FROM chat_rooms
			WHERE type = 'direct' AND participants @> $1 AND participants <@ $1
			LIMIT 1
		`, pq.Array(participants))
		existing, err := scanChatRoom(row)
		if err == nil {
			return existing, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to check existing direct room: %w", err)
		}
	}

	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	now := time.Now()
	room.CreatedAt = now
	room.LastActivity = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_rooms (id, type, name, description, participants, created_by,
			last_message, last_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $7)
	`,
		room.ID,
		room.Type,
		room.Name,
		room.Description,
		pq.Array(room.Participants),
		room.CreatedBy,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat room: %w", err)
	}
	return room, nil
}

// GetRoom retrieves one chat room by ID
func (r *ChatRepository) GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chatRoomColumns+` FROM chat_rooms WHERE id = $1`, id)
	room, err := scanChatRoom(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}
	return room, nil
}

// ListRooms returns the rooms the user participates in, most recently
// active first
func (r *ChatRepository) ListRooms(ctx context.Context, user string) ([]*models.ChatRoom, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+chatRoomColumns+` FROM chat_rooms
		WHERE $1 = ANY(participants)
		ORDER BY last_activity DESC
	`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.ChatRoom
	for rows.Next() {
		room, err := scanChatRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

const messageColumns = `id, chat_id, sender, sender_name, content, type, read_by,
	edited, edited_at, deleted, deleted_at, timestamp`

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var editedAt, deletedAt sql.NullTime

	err := row.Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.Sender,
		&msg.SenderName,
		&msg.Content,
		&msg.Type,
		pq.Array(&msg.ReadBy),
		&msg.Edited,
		&editedAt,
		&msg.Deleted,
		&deletedAt,
		&msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	if editedAt.Valid {
		msg.EditedAt = &editedAt.Time
	}
	if deletedAt.Valid {
		msg.DeletedAt = &deletedAt.Time
	}
	return msg, nil
}

// Messages returns all messages in a room sorted by insertion timestamp
func (r *ChatRepository) Messages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE chat_id = $1
		ORDER BY timestamp ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// SendMessage inserts a message and refreshes the room's last-message
// summary and activity timestamp.
func (r *ChatRepository) SendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Type == "" {
		msg.Type = "text"
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []string{msg.Sender}
	}
	now := time.Now()
	msg.Timestamp = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin send: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, chat_id, sender, sender_name, content, type, read_by,
			edited, edited_at, deleted, deleted_at, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NULL, FALSE, NULL, $8)
	`,
		msg.ID,
		msg.ChatID,
		msg.Sender,
		msg.SenderName,
		msg.Content,
		msg.Type,
		pq.Array(msg.ReadBy),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	preview, err := json.Marshal(models.MessagePreview{
		Content:   msg.Content,
		Sender:    msg.Sender,
		Timestamp: now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message preview: %w", err)
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE chat_rooms SET last_message = $2, last_activity = $3 WHERE id = $1
	`, msg.ChatID, preview, now)
	if err != nil {
		return fmt.Errorf("failed to update room activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check room update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// MarkRead records that the user has seen every message in the room
func (r *ChatRepository) MarkRead(ctx context.Context, chatID uuid.UUID, user string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read_by = array_append(read_by, $2)
		WHERE chat_id = $1 AND NOT ($2 = ANY(read_by))
	`, chatID, user)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// EditMessage replaces the content of the sender's own message in place
func (r *ChatRepository) EditMessage(ctx context.Context, messageID uuid.UUID, sender, content string) (*models.Message, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE messages SET content = $3, edited = TRUE, edited_at = NOW()
		WHERE id = $1 AND sender = $2 AND deleted = FALSE
		RETURNING `+messageColumns+`
	`, messageID, sender, content)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}
	return msg, nil
}

// DeleteMessage soft-deletes the sender's own message, replacing its
// content with a placeholder
func (r *ChatRepository) DeleteMessage(ctx context.Context, messageID uuid.UUID, sender string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET content = $3, deleted = TRUE, deleted_at = NOW()
		WHERE id = $1 AND sender = $2
	`, messageID, sender, models.DeletedMessagePlaceholder)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check message delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCounts returns, per room the user participates in, the number of
// messages they have not read and did not send.
func (r *ChatRepository) UnreadCounts(ctx context.Context, user string) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.chat_id, COUNT(*)
		FROM messages m
		JOIN chat_rooms c ON c.id = m.chat_id
		WHERE $1 = ANY(c.participants)
			AND m.sender <> $1
			AND NOT ($1 = ANY(m.read_by))
		GROUP BY m.chat_id
	`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var chatID uuid.UUID
		var count int
		if err := rows.Scan(&chatID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unread count: %w", err)
		}
		counts[chatID] = count
	}
	return counts, rows.Err()
}
