// Package client provides a Go client for the Parley API: chat CRUD, turn
// streaming over SSE, and the auto-trigger-once controller for freshly
// created chats.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Segment is one typed unit of message content.
type Segment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// StructuredMessage is the segment-based message form the turn endpoint
// accepts and returns.
type StructuredMessage struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Parts     []Segment `json:"parts"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Message is a durable conversation record as served by the API.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ModelID   string    `json:"modelId,omitempty"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Chat is a stored conversation.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ModelID   string    `json:"modelId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatView is a chat plus its transcript.
type ChatView struct {
	Chat     Chat      `json:"chat"`
	Messages []Message `json:"messages"`
}

// Model is a catalog entry.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Friendly is the user-facing error text.
type Friendly struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// APIError is the structured failure the turn endpoint returns.
type APIError struct {
	ErrorCode  string   `json:"errorCode"`
	Message    string   `json:"message"`
	Friendly   Friendly `json:"friendly"`
	StatusCode int      `json:"statusCode"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Friendly.Title, e.Message, e.StatusCode)
}

// Event is one frame of a streamed turn.
type Event struct {
	Event    string             `json:"event"`
	ChatID   string             `json:"chatId,omitempty"`
	Text     string             `json:"text,omitempty"`
	Message  *StructuredMessage `json:"message,omitempty"`
	Finished bool               `json:"finished,omitempty"`
	Error    *APIError          `json:"error,omitempty"`
}

// TurnRequest is a turn submission.
type TurnRequest struct {
	ChatID              string              `json:"chatId,omitempty"`
	Messages            []StructuredMessage `json:"messages"`
	ModelID             string              `json:"modelId"`
	SkipUserPersistence bool                `json:"skipUserPersistence,omitempty"`
}

// Client is a Parley API client. Triggered state lives for the client's
// lifetime, matching one user session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	triggers *TriggerStore
}

// NewClient creates a client for the given base URL. The HTTP client has no
// overall timeout because turn streams are long-lived; cancel via context.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		triggers:   NewTriggerStore(),
	}
}

// CreateChat creates a chat whose first user message is durably written
// server-side.
func (c *Client) CreateChat(ctx context.Context, content, modelID string) (Chat, error) {
	var created Chat
	err := c.doJSON(ctx, http.MethodPost, "/api/chats",
		map[string]string{"content": content, "modelId": modelID}, &created)
	return created, err
}

// ListChats returns all chats, newest first.
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	err := c.doJSON(ctx, http.MethodGet, "/api/chats", nil, &chats)
	return chats, err
}

// GetChat returns the chat and its transcript.
func (c *Client) GetChat(ctx context.Context, chatID string) (ChatView, error) {
	var view ChatView
	err := c.doJSON(ctx, http.MethodGet, "/api/chats/"+chatID, nil, &view)
	return view, err
}

// DeleteChat removes a chat and its messages.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/chats/"+chatID, nil, nil)
}

// ListModels returns the model catalog.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var payload struct {
		Models []Model `json:"models"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/models", nil, &payload)
	return payload.Models, err
}

// StreamTurn submits a turn and invokes onEvent for every streamed frame in
// order. It returns when the stream ends, onEvent returns an error, or ctx is
// cancelled. A non-2xx response is returned as *APIError.
func (c *Client) StreamTurn(ctx context.Context, req TurnRequest, onEvent func(Event) error) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			return fmt.Errorf("malformed stream frame: %w", err)
		}
		if err := onEvent(event); err != nil {
			return err
		}
		if event.Error != nil {
			return event.Error
		}
	}
	return scanner.Err()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode
		}
		return &apiErr
	}

	var simple struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &simple); err == nil && simple.Error != "" {
		return &APIError{Message: simple.Error, StatusCode: resp.StatusCode}
	}
	return &APIError{Message: strings.TrimSpace(string(data)), StatusCode: resp.StatusCode}
}
