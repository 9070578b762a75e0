package turn

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/parleychat/parley/internal/codec"
	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/store"
)

var errIncompleteIdentity = errors.New("chat id and model id are both required to persist a turn")

// Finalizer derives the durable records for a completed turn and writes them
// as one batch. It runs only after the stream's completion event; cancelled
// or failed streams never reach it.
type Finalizer struct {
	store store.Store
}

func NewFinalizer(s store.Store) *Finalizer {
	return &Finalizer{store: s}
}

// BuildRecords returns the zero, one or two records to persist:
//
//  1. the user's turn, unless skipped by the caller (a regeneration or
//     auto-trigger whose user message was already written at creation time).
//     Only the last incoming message qualifies, and only if its role is user;
//  2. the assistant's turn, only if the completion carries segments.
//
// Both require chatID and modelID; a half-identified turn persists nothing.
func BuildRecords(chatID, modelID string, incoming []chat.Structured, completed chat.Structured, skipUser bool) ([]chat.Message, error) {
	if chatID == "" || modelID == "" {
		return nil, errIncompleteIdentity
	}

	records := make([]chat.Message, 0, 2)

	if !skipUser && len(incoming) > 0 {
		last := incoming[len(incoming)-1]
		if last.Role == chat.RoleUser {
			records = append(records, chat.Message{
				ChatID:  chatID,
				Role:    chat.RoleUser,
				Content: codec.Encode(last),
				ModelID: modelID,
				Kind:    chat.KindNormal,
			})
		}
	}

	if !completed.Empty() {
		records = append(records, chat.Message{
			ChatID:  chatID,
			Role:    chat.RoleAssistant,
			Content: codec.Encode(completed),
			ModelID: modelID,
			Kind:    chat.KindNormal,
		})
	}

	return records, nil
}

// Finalize persists the turn. Failures are logged and counted but never
// surfaced: the caller already streamed the answer, and a durability failure
// must not look like a conversation failure.
func (f *Finalizer) Finalize(ctx context.Context, chatID, modelID string, incoming []chat.Structured, completed chat.Structured, skipUser bool) {
	records, err := BuildRecords(chatID, modelID, incoming, completed, skipUser)
	if err != nil {
		log.Warn().Err(err).
			Str("chat", chatID).
			Str("model", modelID).
			Msg("skipping turn persistence")
		return
	}
	if len(records) == 0 {
		return
	}

	if err := f.store.InsertMessages(ctx, records); err != nil {
		metrics.PersistFailures.Inc()
		log.Error().Err(err).
			Str("chat", chatID).
			Int("records", len(records)).
			Msg("failed to persist turn")
		return
	}

	metrics.MessagesPersisted.Add(float64(len(records)))
}
