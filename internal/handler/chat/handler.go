// Package chat exposes conversation CRUD: create-with-first-message, list,
// fetch with transcript, delete.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parleychat/parley/internal/codec"
	"github.com/parleychat/parley/internal/model/catalog"
	chatmodel "github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/pkg/utils"
)

const titleLimit = 50

// Handler serves chat CRUD endpoints.
type Handler struct {
	store  store.Store
	models catalog.Store
}

func New(s store.Store, models catalog.Store) *Handler {
	return &Handler{store: s, models: models}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chats", h.handleCreateChat)
	r.Get("/chats", h.handleListChats)
	r.Get("/chats/{chatID}", h.handleGetChat)
	r.Delete("/chats/{chatID}", h.handleDeleteChat)
}

// handleCreateChat creates a chat and durably writes its first user message
// in the same request. The client then navigates to the chat with the
// auto-trigger intent; the triggering turn skips user persistence because of
// this write.
func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
		ModelID string `json:"modelId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		utils.RespondError(w, http.StatusBadRequest, "message content is required")
		return
	}
	if payload.ModelID == "" {
		utils.RespondError(w, http.StatusBadRequest, "modelId is required")
		return
	}
	if _, ok := h.models.FindByID(payload.ModelID); !ok {
		utils.RespondError(w, http.StatusBadRequest, "unknown model")
		return
	}

	created, err := h.store.CreateChat(r.Context(), chatmodel.Chat{
		Title:   titleOf(content),
		ModelID: payload.ModelID,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	first := chatmodel.Structured{
		Role:     chatmodel.RoleUser,
		Segments: []chatmodel.Segment{{Type: chatmodel.SegmentText, Text: content}},
	}
	record := chatmodel.Message{
		ChatID:  created.ID,
		Role:    chatmodel.RoleUser,
		Content: codec.Encode(first),
		ModelID: payload.ModelID,
		Kind:    chatmodel.KindNormal,
	}
	if err := h.store.InsertMessages(r.Context(), []chatmodel.Message{record}); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to persist first message")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.store.ListChats(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	utils.RespondJSON(w, http.StatusOK, chats)
}

// handleGetChat returns the chat plus its full durable transcript.
func (h *Handler) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	c, err := h.store.GetChat(r.Context(), chatID)
	if errors.Is(err, store.ErrChatNotFound) {
		utils.RespondError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}

	messages, err := h.store.LoadMessages(r.Context(), chatID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"chat":     c,
		"messages": messages,
	})
}

func (h *Handler) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	err := h.store.DeleteChat(r.Context(), chatID)
	if errors.Is(err, store.ErrChatNotFound) {
		utils.RespondError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func titleOf(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}
