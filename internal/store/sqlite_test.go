package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "parley.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteInsertBatchAndReplay(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	c, err := s.CreateChat(ctx, chat.Chat{Title: "hi", ModelID: "m1"})
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	batch := []chat.Message{
		{ChatID: c.ID, Role: chat.RoleUser, Content: `[{"type":"text","text":"hi"}]`},
		{ChatID: c.ID, Role: chat.RoleAssistant, Content: `[{"type":"text","text":"hello"}]`, ModelID: "m1"},
	}
	if err := s.InsertMessages(ctx, batch); err != nil {
		t.Fatalf("InsertMessages err: %v", err)
	}

	messages, err := s.LoadMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("LoadMessages err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != chat.RoleUser || messages[1].Role != chat.RoleAssistant {
		t.Fatalf("replay order wrong: %+v", messages)
	}
	if messages[1].ModelID != "m1" {
		t.Fatalf("assistant record lost model id: %+v", messages[1])
	}
}

func TestSQLiteDeleteChatCascades(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	c, err := s.CreateChat(ctx, chat.Chat{Title: "t", ModelID: "m1"})
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}
	if err := s.InsertMessages(ctx, []chat.Message{{ChatID: c.ID, Role: chat.RoleUser, Content: "x"}}); err != nil {
		t.Fatalf("InsertMessages err: %v", err)
	}

	if err := s.DeleteChat(ctx, c.ID); err != nil {
		t.Fatalf("DeleteChat err: %v", err)
	}

	messages, err := s.LoadMessages(ctx, c.ID)
	if err != nil {
		t.Fatalf("LoadMessages err: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected cascade delete, got %d messages", len(messages))
	}

	if err := s.DeleteChat(ctx, c.ID); err != store.ErrChatNotFound {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}
}
