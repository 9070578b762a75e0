package ai

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/parleychat/parley/internal/model/chat"
)

func TestConvertMessagesPrimaryPath(t *testing.T) {
	msgs := []chat.Structured{
		{Role: chat.RoleUser, Segments: []chat.Segment{{Type: chat.SegmentText, Text: "hi"}}},
		{Role: chat.RoleAssistant, Segments: []chat.Segment{
			{Type: chat.SegmentReasoning, Text: "hmm"},
			{Type: chat.SegmentText, Text: "hello"},
		}},
	}

	converted, err := ConvertMessages(msgs)
	if err != nil {
		t.Fatalf("ConvertMessages err: %v", err)
	}
	if len(converted) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(converted))
	}
	if converted[0].Role != schema.User || converted[0].Content != "hi" {
		t.Fatalf("unexpected first message: %+v", converted[0])
	}
	if converted[1].ReasoningContent != "hmm" || converted[1].Content != "hello" {
		t.Fatalf("unexpected second message: %+v", converted[1])
	}
}

func TestConvertMessagesRejectsUnknownSegment(t *testing.T) {
	msgs := []chat.Structured{
		{Role: chat.RoleUser, Segments: []chat.Segment{{Type: "image", Text: "x"}}},
	}

	if _, err := ConvertMessages(msgs); err == nil {
		t.Fatal("expected error for unsupported segment type")
	}
}

func TestFlattenMessagesDropsEmpty(t *testing.T) {
	msgs := []chat.Structured{
		{Role: chat.RoleUser, Segments: []chat.Segment{
			{Type: chat.SegmentText, Text: "line one"},
			{Type: "image", Text: "ignored"},
			{Type: chat.SegmentText, Text: "line two"},
		}},
		{Role: chat.RoleAssistant, Segments: []chat.Segment{{Type: chat.SegmentReasoning, Text: "only reasoning"}}},
	}

	flat := FlattenMessages(msgs)
	if len(flat) != 1 {
		t.Fatalf("expected reasoning-only message dropped, got %d messages", len(flat))
	}
	if flat[0].Content != "line one\nline two" {
		t.Fatalf("unexpected flattened content: %q", flat[0].Content)
	}
}

func TestStructuredFromSchema(t *testing.T) {
	msg := &schema.Message{Role: schema.Assistant, Content: "answer", ReasoningContent: "thought"}

	structured := StructuredFromSchema(msg)
	if structured.Role != chat.RoleAssistant {
		t.Fatalf("unexpected role: %s", structured.Role)
	}
	if len(structured.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(structured.Segments))
	}
	if structured.Segments[0].Type != chat.SegmentReasoning {
		t.Fatalf("reasoning must precede text: %+v", structured.Segments)
	}
}

func TestStructuredFromSchemaEmptyCompletion(t *testing.T) {
	structured := StructuredFromSchema(&schema.Message{Role: schema.Assistant})
	if !structured.Empty() {
		t.Fatalf("expected empty structured message, got %+v", structured)
	}
}
