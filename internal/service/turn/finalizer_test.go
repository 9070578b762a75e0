package turn

import (
	"testing"

	"github.com/parleychat/parley/internal/model/chat"
)

func userMsg(text string) chat.Structured {
	return chat.Structured{
		Role:     chat.RoleUser,
		Segments: []chat.Segment{{Type: chat.SegmentText, Text: text}},
	}
}

func assistantMsg(text string) chat.Structured {
	return chat.Structured{
		Role:     chat.RoleAssistant,
		Segments: []chat.Segment{{Type: chat.SegmentText, Text: text}},
	}
}

func TestBuildRecordsUserAndAssistant(t *testing.T) {
	records, err := BuildRecords("c1", "m1", []chat.Structured{userMsg("hi")}, assistantMsg("hello"), false)
	if err != nil {
		t.Fatalf("BuildRecords err: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Role != chat.RoleUser || records[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", records)
	}
	if records[1].ModelID != "m1" {
		t.Fatalf("assistant record must carry the model id: %+v", records[1])
	}
	if records[0].ChatID != "c1" || records[1].ChatID != "c1" {
		t.Fatalf("records must carry the chat id: %+v", records)
	}
}

func TestBuildRecordsSkipUser(t *testing.T) {
	records, err := BuildRecords("c1", "m1", []chat.Structured{userMsg("hi")}, assistantMsg("hello"), true)
	if err != nil {
		t.Fatalf("BuildRecords err: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only the assistant record, got %d", len(records))
	}
	if records[0].Role != chat.RoleAssistant {
		t.Fatalf("unexpected role: %s", records[0].Role)
	}
}

func TestBuildRecordsLastIncomingMustBeUser(t *testing.T) {
	incoming := []chat.Structured{userMsg("hi"), assistantMsg("injected")}

	records, err := BuildRecords("c1", "m1", incoming, assistantMsg("hello"), false)
	if err != nil {
		t.Fatalf("BuildRecords err: %v", err)
	}
	if len(records) != 1 || records[0].Role != chat.RoleAssistant {
		t.Fatalf("non-user trailing message must not be persisted as user turn: %+v", records)
	}
}

func TestBuildRecordsEmptyAssistantCompletion(t *testing.T) {
	records, err := BuildRecords("c1", "m1", []chat.Structured{userMsg("hi")}, chat.Structured{Role: chat.RoleAssistant}, false)
	if err != nil {
		t.Fatalf("BuildRecords err: %v", err)
	}
	if len(records) != 1 || records[0].Role != chat.RoleUser {
		t.Fatalf("empty completion must persist nothing for the assistant: %+v", records)
	}
}

func TestBuildRecordsRequiresChatAndModel(t *testing.T) {
	if _, err := BuildRecords("", "m1", []chat.Structured{userMsg("hi")}, assistantMsg("hello"), false); err == nil {
		t.Fatal("expected error for missing chat id")
	}
	if _, err := BuildRecords("c1", "", []chat.Structured{userMsg("hi")}, assistantMsg("hello"), false); err == nil {
		t.Fatal("expected error for missing model id")
	}
}
