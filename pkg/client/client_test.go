package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStreamTurnDeliversEventsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"event":"start","chatId":"c1"}` + "\n\n"))
		w.Write([]byte(`data: {"event":"text-delta","text":"hel"}` + "\n\n"))
		w.Write([]byte(`data: {"event":"text-delta","text":"lo"}` + "\n\n"))
		w.Write([]byte(`data: {"event":"message","message":{"role":"assistant","parts":[{"type":"text","text":"hello"}]}}` + "\n\n"))
		w.Write([]byte(`data: {"event":"finish","finished":true}` + "\n\n"))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	var events []string
	var text string
	err := c.StreamTurn(context.Background(), TurnRequest{
		ChatID:   "c1",
		ModelID:  "m1",
		Messages: []StructuredMessage{{Role: "user", Parts: []Segment{{Type: "text", Text: "hi"}}}},
	}, func(e Event) error {
		events = append(events, e.Event)
		if e.Event == "text-delta" {
			text += e.Text
		}
		return nil
	})
	if err != nil {
		t.Fatalf("StreamTurn err: %v", err)
	}

	want := []string{"start", "text-delta", "text-delta", "message", "finish"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i, name := range want {
		if events[i] != name {
			t.Fatalf("event %d: got %s want %s", i, events[i], name)
		}
	}
	if text != "hello" {
		t.Fatalf("unexpected accumulated text: %q", text)
	}
}

func TestStreamTurnSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errorCode":"chat_error","message":"rate limit exceeded","friendly":{"category":"rate_limited","title":"Rate Limit Reached","message":"wait"},"statusCode":429}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	err := c.StreamTurn(context.Background(), TurnRequest{ModelID: "m1"}, func(Event) error { return nil })
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 429 || apiErr.Friendly.Category != "rate_limited" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestStreamTurnStopsOnErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"event":"start","chatId":"c1"}` + "\n\n"))
		w.Write([]byte(`data: {"event":"error","error":{"errorCode":"chat_error","message":"boom","friendly":{"category":"unknown","title":"Something Went Wrong","message":"boom"},"statusCode":500}}` + "\n\n"))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	err := c.StreamTurn(context.Background(), TurnRequest{ModelID: "m1"}, func(Event) error { return nil })
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError from error event, got %v", err)
	}
	if apiErr.Message != "boom" {
		t.Fatalf("unexpected error message: %q", apiErr.Message)
	}
}
