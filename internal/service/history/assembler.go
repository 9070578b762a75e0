// Package history builds the ordered model context for a turn: stored
// messages decoded to structured form, followed by the messages submitted in
// the current request.
package history

import (
	"context"
	"fmt"

	"github.com/parleychat/parley/internal/codec"
	"github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/store"
)

// Assembler loads and decodes prior turns for a chat.
type Assembler struct {
	store store.Store
}

func NewAssembler(s store.Store) *Assembler {
	return &Assembler{store: s}
}

// Assemble returns decoded history concatenated with the incoming messages,
// preserving relative order. An empty chatID means a brand-new conversation
// with no history. Records that decode to nothing are dropped; no truncation
// is applied here.
func (a *Assembler) Assemble(ctx context.Context, chatID string, incoming []chat.Structured) ([]chat.Structured, error) {
	var records []chat.Message
	if chatID != "" {
		var err error
		records, err = a.store.LoadMessages(ctx, chatID)
		if err != nil {
			return nil, fmt.Errorf("load messages for chat %s: %w", chatID, err)
		}
	}

	out := make([]chat.Structured, 0, len(records)+len(incoming))
	for _, record := range records {
		if msg := codec.Decode(record); msg != nil {
			out = append(out, *msg)
		}
	}
	out = append(out, incoming...)
	return out, nil
}
