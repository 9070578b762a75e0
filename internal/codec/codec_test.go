package codec

import (
	"testing"

	"github.com/parleychat/parley/internal/model/chat"
)

func TestDecodeSegmentArray(t *testing.T) {
	record := chat.Message{
		ID:      "m1",
		Role:    chat.RoleAssistant,
		Content: `[{"type":"reasoning","text":"thinking"},{"type":"text","text":"hello"}]`,
	}

	msg := Decode(record)
	if msg == nil {
		t.Fatal("expected decoded message, got nil")
	}
	if len(msg.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(msg.Segments))
	}
	if msg.Segments[0].Type != chat.SegmentReasoning || msg.Segments[1].Text != "hello" {
		t.Fatalf("unexpected segments: %+v", msg.Segments)
	}
	if msg.Role != chat.RoleAssistant {
		t.Fatalf("unexpected role: %s", msg.Role)
	}
}

func TestDecodeDropsUnknownSegmentTypes(t *testing.T) {
	record := chat.Message{
		Role:    chat.RoleUser,
		Content: `[{"type":"tool-call","text":"x"},{"type":"text","text":"keep"}]`,
	}

	msg := Decode(record)
	if msg == nil {
		t.Fatal("expected decoded message, got nil")
	}
	if len(msg.Segments) != 1 || msg.Segments[0].Text != "keep" {
		t.Fatalf("unexpected segments: %+v", msg.Segments)
	}
}

func TestDecodeNoUsableSegmentsReturnsNil(t *testing.T) {
	record := chat.Message{
		Role:    chat.RoleUser,
		Content: `[{"type":"tool-call","text":"x"},{"type":"text"}]`,
	}

	if msg := Decode(record); msg != nil {
		t.Fatalf("expected nil for record with no usable segments, got %+v", msg)
	}
}

func TestDecodeArrayOfNonSegmentsReturnsNil(t *testing.T) {
	// A JSON array whose elements are not segment objects must be dropped,
	// not fed to the model as raw JSON text.
	for _, content := range []string{`[1,2]`, `[{"type":5}]`, `["text"]`, `[]`} {
		record := chat.Message{Role: chat.RoleUser, Content: content}
		if msg := Decode(record); msg != nil {
			t.Fatalf("expected nil for %s, got %+v", content, msg)
		}
	}
}

func TestDecodeKeepsEmptyTextSegment(t *testing.T) {
	record := chat.Message{
		Role:    chat.RoleUser,
		Content: `[{"type":"text","text":""}]`,
	}

	msg := Decode(record)
	if msg == nil {
		t.Fatal("a defined-but-empty text segment must survive decode")
	}
	if len(msg.Segments) != 1 || msg.Segments[0].Text != "" {
		t.Fatalf("unexpected segments: %+v", msg.Segments)
	}
}

func TestDecodeSkipsMalformedElements(t *testing.T) {
	record := chat.Message{
		Role:    chat.RoleUser,
		Content: `[42, {"type":"text","text":"keep"}, "stray"]`,
	}

	msg := Decode(record)
	if msg == nil {
		t.Fatal("expected decoded message, got nil")
	}
	if len(msg.Segments) != 1 || msg.Segments[0].Text != "keep" {
		t.Fatalf("unexpected segments: %+v", msg.Segments)
	}
}

func TestDecodePlainTextFallback(t *testing.T) {
	record := chat.Message{
		Role:    chat.RoleUser,
		Content: "just some plain text",
	}

	msg := Decode(record)
	if msg == nil {
		t.Fatal("expected fallback message, got nil")
	}
	if len(msg.Segments) != 1 {
		t.Fatalf("expected single text segment, got %d", len(msg.Segments))
	}
	if msg.Segments[0].Type != chat.SegmentText || msg.Segments[0].Text != record.Content {
		t.Fatalf("fallback segment must carry raw content verbatim: %+v", msg.Segments[0])
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := chat.Structured{
		Role: chat.RoleAssistant,
		Segments: []chat.Segment{
			{Type: chat.SegmentReasoning, Text: "let me think"},
			{Type: chat.SegmentText, Text: "the answer is 42"},
		},
	}

	blob := Encode(original)
	decoded := Decode(chat.Message{Role: original.Role, Content: blob})
	if decoded == nil {
		t.Fatal("round trip produced nil")
	}
	if decoded.Role != original.Role {
		t.Fatalf("role changed across round trip: %s", decoded.Role)
	}
	if len(decoded.Segments) != len(original.Segments) {
		t.Fatalf("segment count changed: got %d want %d", len(decoded.Segments), len(original.Segments))
	}
	for i := range original.Segments {
		if decoded.Segments[i] != original.Segments[i] {
			t.Fatalf("segment %d changed: got %+v want %+v", i, decoded.Segments[i], original.Segments[i])
		}
	}
}

func TestEncodeWrapsEmptySegmentList(t *testing.T) {
	msg := chat.Structured{Role: chat.RoleUser}

	blob := Encode(msg)
	if blob != `[{"type":"text","text":""}]` {
		t.Fatalf("unexpected blob: %s", blob)
	}
}
