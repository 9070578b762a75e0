package ai

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/parleychat/parley/internal/model/chat"
)

// ConvertMessages maps the structured context into provider-native messages.
// A message carrying a segment type the provider format cannot express makes
// the whole conversion fail so the caller can fall back to FlattenMessages.
func ConvertMessages(msgs []chat.Structured) ([]*schema.Message, error) {
	out := make([]*schema.Message, 0, len(msgs))
	for i, msg := range msgs {
		if msg.Empty() {
			return nil, fmt.Errorf("message %d has no segments", i)
		}

		for _, seg := range msg.Segments {
			switch seg.Type {
			case chat.SegmentText, chat.SegmentReasoning:
			default:
				return nil, fmt.Errorf("message %d has unsupported segment type %q", i, seg.Type)
			}
		}

		converted := &schema.Message{
			Role:             roleOf(msg.Role),
			Content:          msg.TextContent(),
			ReasoningContent: msg.ReasoningContent(),
		}
		out = append(out, converted)
	}
	return out, nil
}

// FlattenMessages is the degraded path: each message collapses to its
// newline-joined text segments, empty results are dropped. Best-effort
// fidelity beats failing the whole turn.
func FlattenMessages(msgs []chat.Structured) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, msg := range msgs {
		content := msg.TextContent()
		if content == "" {
			continue
		}
		out = append(out, &schema.Message{
			Role:    roleOf(msg.Role),
			Content: content,
		})
	}
	return out
}

func roleOf(role chat.Role) schema.RoleType {
	switch role {
	case chat.RoleAssistant:
		return schema.Assistant
	case chat.RoleSystem:
		return schema.System
	default:
		return schema.User
	}
}

// StructuredFromSchema builds the transient form of a completed assistant
// message. Reasoning comes first so rendering follows emission order.
func StructuredFromSchema(msg *schema.Message) chat.Structured {
	segments := make([]chat.Segment, 0, 2)
	if msg.ReasoningContent != "" {
		segments = append(segments, chat.Segment{Type: chat.SegmentReasoning, Text: msg.ReasoningContent})
	}
	if msg.Content != "" {
		segments = append(segments, chat.Segment{Type: chat.SegmentText, Text: msg.Content})
	}
	return chat.Structured{
		Role:     chat.RoleAssistant,
		Segments: segments,
	}
}
