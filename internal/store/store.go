// Package store owns durable chats and messages. Message writes are
// append-only insert batches; records are never updated in place.
package store

import (
	"context"
	"errors"

	"github.com/parleychat/parley/internal/model/chat"
)

var ErrChatNotFound = errors.New("chat not found")

// Store is the persistence collaborator consumed by the conversation core.
type Store interface {
	CreateChat(ctx context.Context, c chat.Chat) (chat.Chat, error)
	GetChat(ctx context.Context, chatID string) (chat.Chat, error)
	ListChats(ctx context.Context) ([]chat.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error

	// LoadMessages returns all messages for a chat ordered by CreatedAt
	// ascending, insertion order as tiebreaker. An unknown chat yields an
	// empty slice, not an error: a brand-new conversation has no history.
	LoadMessages(ctx context.Context, chatID string) ([]chat.Message, error)

	// InsertMessages writes the batch atomically: either every record
	// commits or none do.
	InsertMessages(ctx context.Context, batch []chat.Message) error
}
