package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/parleychat/parley/internal/model/catalog"
	chatmodel "github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/store"
)

func setupRouter() (*chi.Mux, *store.MemoryStore) {
	s := store.NewMemoryStore()
	models := catalog.NewMemoryStore(catalog.Seed())
	handler := New(s, models)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, s
}

func createChat(t *testing.T, r *chi.Mux, content, modelID string) chatmodel.Chat {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"content": content, "modelId": modelID})
	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created chatmodel.Chat
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created chat: %v", err)
	}
	return created
}

func TestCreateChatPersistsFirstMessage(t *testing.T) {
	r, s := setupRouter()

	created := createChat(t, r, "hello there", catalog.Seed()[0].ID)
	if created.Title != "hello there" {
		t.Fatalf("unexpected title: %q", created.Title)
	}

	messages, err := s.LoadMessages(httptest.NewRequest(http.MethodGet, "/", nil).Context(), created.ID)
	if err != nil {
		t.Fatalf("LoadMessages err: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected the first user message persisted, got %d records", len(messages))
	}
	if messages[0].Role != chatmodel.RoleUser {
		t.Fatalf("unexpected role: %s", messages[0].Role)
	}
}

func TestCreateChatTruncatesLongTitle(t *testing.T) {
	r, _ := setupRouter()

	long := "this prompt is deliberately much longer than fifty characters in total"
	created := createChat(t, r, long, catalog.Seed()[0].ID)

	if len([]rune(created.Title)) != 53 { // 50 + "..."
		t.Fatalf("unexpected title length %d: %q", len([]rune(created.Title)), created.Title)
	}
}

func TestCreateChatRejectsEmptyContent(t *testing.T) {
	r, _ := setupRouter()

	payload, _ := json.Marshal(map[string]string{"content": "   ", "modelId": catalog.Seed()[0].ID})
	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateChatRejectsUnknownModel(t *testing.T) {
	r, _ := setupRouter()

	payload, _ := json.Marshal(map[string]string{"content": "hi", "modelId": "nope"})
	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetChatReturnsTranscript(t *testing.T) {
	r, _ := setupRouter()
	created := createChat(t, r, "hi", catalog.Seed()[0].ID)

	req := httptest.NewRequest(http.MethodGet, "/chats/"+created.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var view struct {
		Chat     chatmodel.Chat      `json:"chat"`
		Messages []chatmodel.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Chat.ID != created.ID || len(view.Messages) != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestGetChatNotFound(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/chats/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeleteChat(t *testing.T) {
	r, _ := setupRouter()
	created := createChat(t, r, "hi", catalog.Seed()[0].ID)

	req := httptest.NewRequest(http.MethodDelete, "/chats/"+created.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/chats/"+created.ID, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
