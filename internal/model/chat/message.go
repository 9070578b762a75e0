package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind separates ordinary conversation turns from structured system notes.
type Kind string

const (
	KindNormal     Kind = "normal"
	KindSystemNote Kind = "system_note"
)

// Message is the durable conversation record. Once inserted it is never
// updated; ordering within a chat is CreatedAt ascending with insertion order
// as tiebreaker. Content holds a JSON segment array, or plain text for legacy
// records.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ModelID   string    `json:"modelId,omitempty"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}
