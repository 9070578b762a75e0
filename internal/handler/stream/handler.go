// Package stream exposes the turn endpoints: SSE over POST /chat and a
// websocket transport carrying the same events.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/service/ai"
	"github.com/parleychat/parley/internal/service/turn"
	"github.com/parleychat/parley/pkg/utils"
)

// Handler serves streaming turns.
type Handler struct {
	runner *turn.Runner
}

func New(runner *turn.Runner) *Handler {
	return &Handler{runner: runner}
}

// RegisterRoutes mounts the turn endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleTurn)
	r.Get("/ws/chat", h.handleWebSocket)
}

// TurnPayload is the wire shape of a turn submission. Messages accepts a
// single structured message or a list.
type TurnPayload struct {
	ChatID              string          `json:"chatId"`
	Messages            json.RawMessage `json:"messages"`
	ModelID             string          `json:"modelId"`
	SkipUserPersistence bool            `json:"skipUserPersistence"`
}

// ErrorEnvelope is the structured failure response, identical for pre-stream
// HTTP errors and mid-stream error events.
type ErrorEnvelope struct {
	ErrorCode  string        `json:"errorCode"`
	Message    string        `json:"message"`
	Friendly   ai.Classified `json:"friendly"`
	StatusCode int           `json:"statusCode"`
}

func envelopeOf(classified ai.Classified, raw string) ErrorEnvelope {
	return ErrorEnvelope{
		ErrorCode:  "chat_error",
		Message:    raw,
		Friendly:   classified,
		StatusCode: classified.Status,
	}
}

// StreamEvent is one SSE frame.
type StreamEvent struct {
	Event    string          `json:"event"`
	ChatID   string          `json:"chatId,omitempty"`
	Text     string          `json:"text,omitempty"`
	Message  *chat.Structured `json:"message,omitempty"`
	Finished bool            `json:"finished,omitempty"`
	Error    *ErrorEnvelope  `json:"error,omitempty"`
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req, badReq := decodeTurnPayload(r)
	if badReq != nil {
		utils.RespondJSON(w, badReq.Status, envelopeOf(*badReq, badReq.Message))
		return
	}

	sink := &sseSink{w: w, flusher: flusher}
	if err := h.runner.Run(r.Context(), *req, sink); err != nil {
		if r.Context().Err() != nil {
			// Client went away; nothing left to report.
			log.Debug().Str("chat", req.ChatID).Msg("turn cancelled by caller")
			return
		}

		classified := ai.Classify(err)
		metrics.TurnFailures.WithLabelValues(string(classified.Category)).Inc()
		log.Error().Err(err).
			Str("chat", req.ChatID).
			Str("model", req.ModelID).
			Str("category", string(classified.Category)).
			Msg("turn failed")

		envelope := envelopeOf(classified, err.Error())
		if sink.started {
			utils.SendSSEChunk(w, flusher, StreamEvent{Event: "error", ChatID: req.ChatID, Error: &envelope})
			return
		}
		utils.RespondJSON(w, classified.Status, envelope)
	}
}

// decodeTurnPayload validates and normalizes the request body. Input errors
// are rejected here, before any model call.
func decodeTurnPayload(r *http.Request) (*turn.Request, *ai.Classified) {
	var payload TurnPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		bad := ai.BadRequest("invalid request body")
		return nil, &bad
	}

	if payload.ModelID == "" {
		bad := ai.BadRequest("modelId is required")
		return nil, &bad
	}

	incoming, err := normalizeMessages(payload.Messages)
	if err != nil {
		bad := ai.BadRequest(err.Error())
		return nil, &bad
	}
	if len(incoming) == 0 {
		bad := ai.BadRequest("messages are required")
		return nil, &bad
	}

	return &turn.Request{
		ChatID:              payload.ChatID,
		ModelID:             payload.ModelID,
		Incoming:            incoming,
		SkipUserPersistence: payload.SkipUserPersistence,
	}, nil
}

// normalizeMessages accepts a single message or a list and drops messages
// with no segments; they must never reach the model.
func normalizeMessages(raw json.RawMessage) ([]chat.Structured, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []chat.Structured
	if err := json.Unmarshal(raw, &list); err != nil {
		var single chat.Structured
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("messages must be a message object or a list")
		}
		list = []chat.Structured{single}
	}

	out := make([]chat.Structured, 0, len(list))
	for _, msg := range list {
		if msg.Empty() {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// sseSink relays turn events as Server-Sent Events.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseSink) Start(chatID string) {
	utils.SetupSSEHeaders(s.w)
	s.started = true
	utils.SendSSEChunk(s.w, s.flusher, StreamEvent{Event: "start", ChatID: chatID})
}

func (s *sseSink) TextDelta(text string) {
	utils.SendSSEChunk(s.w, s.flusher, StreamEvent{Event: "text-delta", Text: text})
}

func (s *sseSink) ReasoningDelta(text string) {
	utils.SendSSEChunk(s.w, s.flusher, StreamEvent{Event: "reasoning-delta", Text: text})
}

func (s *sseSink) Message(msg chat.Structured) {
	utils.SendSSEChunk(s.w, s.flusher, StreamEvent{Event: "message", Message: &msg})
}

func (s *sseSink) Finish() {
	utils.SendSSEChunk(s.w, s.flusher, StreamEvent{Event: "finish", Finished: true})
}
