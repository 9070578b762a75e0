package chat

import "time"

// Chat is a stored conversation. ModelID remembers the model the chat was
// created with so the client can preselect it.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ModelID   string    `json:"modelId"`
	CreatedAt time.Time `json:"createdAt"`
}
