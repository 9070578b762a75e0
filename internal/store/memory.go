package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parleychat/parley/internal/model/chat"
)

// MemoryStore keeps chats and messages in process memory. It backs tests and
// early iterations where a database is overkill.
type MemoryStore struct {
	mu       sync.RWMutex
	chats    map[string]chat.Chat
	messages map[string][]chat.Message
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chats:    make(map[string]chat.Chat),
		messages: make(map[string][]chat.Message),
	}
}

func (s *MemoryStore) CreateChat(_ context.Context, c chat.Chat) (chat.Chat, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.chats[c.ID] = c
	if _, ok := s.messages[c.ID]; !ok {
		s.messages[c.ID] = make([]chat.Message, 0, 16)
	}
	s.mu.Unlock()

	return c, nil
}

func (s *MemoryStore) GetChat(_ context.Context, chatID string) (chat.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[chatID]
	if !ok {
		return chat.Chat{}, ErrChatNotFound
	}
	return c, nil
}

func (s *MemoryStore) ListChats(_ context.Context) ([]chat.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := make([]chat.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

func (s *MemoryStore) DeleteChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		return ErrChatNotFound
	}
	delete(s.chats, chatID)
	delete(s.messages, chatID)
	return nil
}

func (s *MemoryStore) LoadMessages(_ context.Context, chatID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[chatID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

func (s *MemoryStore) InsertMessages(_ context.Context, batch []chat.Message) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range batch {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Kind == "" {
			m.Kind = chat.KindNormal
		}
		if m.CreatedAt.IsZero() {
			// Messages in one batch get distinct timestamps so replay
			// order is stable.
			s.seq++
			m.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
		}
		s.messages[m.ChatID] = append(s.messages[m.ChatID], m)
	}
	return nil
}
