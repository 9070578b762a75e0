package client

import (
	"context"
	"sync"
)

// TriggerStore remembers which chats have already auto-started a model turn.
// Membership is monotonic for the lifetime of the client session: ids are
// only added, never removed, which makes the auto-trigger idempotent across
// repeated view mounts.
type TriggerStore struct {
	mu        sync.Mutex
	triggered map[string]struct{}
}

func NewTriggerStore() *TriggerStore {
	return &TriggerStore{triggered: make(map[string]struct{})}
}

// Triggered reports whether the chat already auto-started a turn.
func (s *TriggerStore) Triggered(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.triggered[chatID]
	return ok
}

// mark records the chat and reports whether this call was the first to do so.
func (s *TriggerStore) mark(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.triggered[chatID]; ok {
		return false
	}
	s.triggered[chatID] = struct{}{}
	return true
}

// ShouldAutoTrigger evaluates the guards for firing the automatic turn after
// navigating into a chat: the navigation carried the auto-trigger intent, the
// chat has not fired before, a model is resolved, and the transcript actually
// ends with a pending user turn.
func ShouldAutoTrigger(store *TriggerStore, chatID string, intent bool, modelID string, messages []Message) bool {
	if !intent {
		return false
	}
	if store.Triggered(chatID) {
		return false
	}
	if modelID == "" {
		return false
	}
	if len(messages) == 0 {
		return false
	}
	return messages[len(messages)-1].Role == "user"
}

// AutoTriggerTurn fires the automatic model turn for a freshly created chat
// if every guard passes, returning whether it fired. The fired request skips
// user-message persistence: the pending user turn was already durably written
// by the creation step that preceded navigation. At most one call per chat
// per client session fires, even under concurrent double mounts.
func (c *Client) AutoTriggerTurn(ctx context.Context, view ChatView, intent bool, onEvent func(Event) error) (bool, error) {
	if !ShouldAutoTrigger(c.triggers, view.Chat.ID, intent, view.Chat.ModelID, view.Messages) {
		return false, nil
	}
	if !c.triggers.mark(view.Chat.ID) {
		// Lost the race with a concurrent mount.
		return false, nil
	}

	req := TurnRequest{
		ChatID: view.Chat.ID,
		// The pending user turn is already in stored history; the submitted
		// message is an empty placeholder, mirroring a resume request.
		Messages:            []StructuredMessage{{Role: "user", Parts: []Segment{{Type: "text", Text: ""}}}},
		ModelID:             view.Chat.ModelID,
		SkipUserPersistence: true,
	}
	return true, c.StreamTurn(ctx, req, onEvent)
}
