// Package catalog holds the models offered to clients. Catalog retrieval is a
// collaborator of the conversation core, not part of it; this in-memory store
// exists so the surface is complete.
package catalog

import "sync"

// Model is one selectable chat model.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Store exposes read access to the catalog.
type Store interface {
	List() []Model
	FindByID(id string) (Model, bool)
}

// MemoryStore is a fixed, seeded catalog.
type MemoryStore struct {
	mu     sync.RWMutex
	models []Model
	byID   map[string]Model
}

func NewMemoryStore(models []Model) *MemoryStore {
	byID := make(map[string]Model, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}
	return &MemoryStore{models: models, byID: byID}
}

func (s *MemoryStore) List() []Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Model, len(s.models))
	copy(copied, s.models)
	return copied
}

func (s *MemoryStore) FindByID(id string) (Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	return m, ok
}

// Seed returns the default catalog.
func Seed() []Model {
	return []Model{
		{
			ID:          "openai/gpt-4o-mini",
			Name:        "GPT-4o mini",
			Description: "Fast general-purpose model",
		},
		{
			ID:          "anthropic/claude-3.5-haiku",
			Name:        "Claude 3.5 Haiku",
			Description: "Quick responses with solid reasoning",
		},
		{
			ID:          "google/gemini-2.0-flash-001",
			Name:        "Gemini 2.0 Flash",
			Description: "Large context window",
		},
		{
			ID:          "ark/doubao-1-5-pro-32k",
			Name:        "Doubao 1.5 Pro",
			Description: "Volc Ark hosted model",
		},
	}
}
