package handlers

import (
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/queue"
	"github.com/notehq/notehub/internal/request"
	"github.com/notehq/notehub/internal/validation"
	"go.uber.org/zap"
)

// ChatHandler handles chat room and message requests
type ChatHandler struct {
	chatRepo *database.ChatRepository
	events   queue.EventPublisher
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatRepo *database.ChatRepository, events queue.EventPublisher, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatRepo: chatRepo,
		events:   events,
		logger:   logger,
	}
}

// RegisterRoutes registers chat routes on the given router.
// The router should already have the /chat prefix.
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/rooms", h.ListRooms).Methods("GET")
	r.HandleFunc("/rooms", h.CreateRoom).Methods("POST")
	r.HandleFunc("/rooms/{id}/messages", h.ListMessages).Methods("GET")
	r.HandleFunc("/rooms/{id}/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/rooms/{id}/read", h.MarkRead).Methods("POST")
	r.HandleFunc("/messages/{id}", h.EditMessage).Methods("PUT")
	r.HandleFunc("/messages/{id}", h.DeleteMessage).Methods("DELETE")
	r.HandleFunc("/unread", h.UnreadCounts).Methods("GET")
}

// CreateRoomRequest represents a new chat room. Direct rooms are
// deduplicated by participant set; creating an existing one returns it.
type CreateRoomRequest struct {
	Type         string   `json:"type" validate:"required,chat_room_type"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Participants []string `json:"participants"`
}

// SendMessageRequest represents an outgoing chat message
type SendMessageRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// EditMessageRequest represents an in-place message edit
type EditMessageRequest struct {
	Content string `json:"content"`
}

// CreateRoom creates a chat room. The creator is always a participant.
func (h *ChatHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: "+err.Error())
		return
	}

	participants := req.Participants
	if !slices.Contains(participants, actor.Email) {
		participants = append(participants, actor.Email)
	}

	roomType := models.ChatRoomType(req.Type)
	if roomType == models.ChatRoomDirect && len(participants) != 2 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Direct rooms need exactly two participants")
		return
	}
	if roomType == models.ChatRoomGroup && req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Group rooms need a name")
		return
	}

	room := &models.ChatRoom{
		ID:           uuid.New(),
		Type:         roomType,
		Name:         validation.SanitizeText(req.Name),
		Description:  validation.SanitizeText(req.Description),
		Participants: participants,
		CreatedBy:    actor.Email,
	}

	created, err := h.chatRepo.CreateRoom(r.Context(), room)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create room")
		return
	}

	status := http.StatusCreated
	if created.ID != room.ID {
		// existing direct room returned instead of a new one
		status = http.StatusOK
	}
	respondJSON(w, status, created)
}

// ListRooms lists the caller's rooms sorted by last activity
func (h *ChatHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	rooms, err := h.chatRepo.ListRooms(r.Context(), actor.Email)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve rooms")
		return
	}

	respondJSON(w, http.StatusOK, rooms)
}

// ListMessages lists a room's messages oldest first
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	_, room, ok := h.memberRoom(w, r)
	if !ok {
		return
	}

	messages, err := h.chatRepo.Messages(r.Context(), room.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve messages")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// SendMessage posts a message to a room the caller participates in
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, room, ok := h.memberRoom(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Content = validation.SanitizeText(req.Content)
	if req.Content == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message content is required")
		return
	}
	if req.Type == "" {
		req.Type = "text"
	}

	msg := &models.Message{
		ID:         uuid.New(),
		ChatID:     room.ID,
		Sender:     actor.Email,
		SenderName: actor.Name,
		Content:    req.Content,
		Type:       req.Type,
	}

	if err := h.chatRepo.SendMessage(r.Context(), msg); err != nil {
		respondStoreError(w, err, "Room not found")
		return
	}

	if h.events != nil {
		h.events.Publish(r.Context(), queue.EventMessageSent, map[string]any{
			"chat_id":    room.ID,
			"message_id": msg.ID,
			"sender":     msg.Sender,
		})
	}
	respondJSON(w, http.StatusCreated, msg)
}

// MarkRead marks every message in a room as read by the caller
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, room, ok := h.memberRoom(w, r)
	if !ok {
		return
	}

	if err := h.chatRepo.MarkRead(r.Context(), room.ID, actor.Email); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to mark messages read")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"chat_id": room.ID, "read": true})
}

// EditMessage edits a message in place. Only the sender may edit, and
// deleted messages stay frozen.
func (h *ChatHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid message ID")
		return
	}

	var req EditMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Content = validation.SanitizeText(req.Content)
	if req.Content == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message content is required")
		return
	}

	msg, err := h.chatRepo.EditMessage(r.Context(), id, actor.Email, req.Content)
	if err != nil {
		respondStoreError(w, err, "Message not found")
		return
	}

	respondJSON(w, http.StatusOK, msg)
}

// DeleteMessage soft-deletes a message, replacing its content with a
// placeholder. Only the sender may delete.
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid message ID")
		return
	}

	if err := h.chatRepo.DeleteMessage(r.Context(), id, actor.Email); err != nil {
		respondStoreError(w, err, "Message not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

// UnreadCounts returns per-room unread message counts for the caller
func (h *ChatHandler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	counts, err := h.chatRepo.UnreadCounts(r.Context(), actor.Email)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve unread counts")
		return
	}

	respondJSON(w, http.StatusOK, counts)
}

// memberRoom resolves the room from the path and verifies the caller is a
// participant. Writes the error response itself on failure.
func (h *ChatHandler) memberRoom(w http.ResponseWriter, r *http.Request) (*models.Actor, *models.ChatRoom, bool) {
	actor := request.ActorFromContext(r.Context())
	if actor == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return nil, nil, false
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid room ID")
		return nil, nil, false
	}

	room, err := h.chatRepo.GetRoom(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Room not found")
		return nil, nil, false
	}

	if !slices.Contains(room.Participants, actor.Email) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "You are not a participant of this room")
		return nil, nil, false
	}
	return actor, room, true
}
