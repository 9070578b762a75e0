package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parleychat/parley/internal/metrics"
	"github.com/parleychat/parley/internal/model/chat"
	"github.com/parleychat/parley/internal/service/ai"
	"github.com/parleychat/parley/internal/service/turn"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsFrame is one outbound websocket message, mirroring the SSE events.
type wsFrame struct {
	Type      string           `json:"type"`
	ChatID    string           `json:"chatId,omitempty"`
	Text      string           `json:"text,omitempty"`
	Message   *chat.Structured `json:"message,omitempty"`
	Error     *ErrorEnvelope   `json:"error,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// handleWebSocket upgrades the connection, reads one turn request, and
// streams the turn events back as JSON frames. Closing the socket cancels
// the turn.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var payload TurnPayload
	if err := conn.ReadJSON(&payload); err != nil {
		writeWSError(conn, ai.BadRequest("invalid turn request"), "invalid turn request")
		return
	}

	req, badReq := validateWSPayload(payload)
	if badReq != nil {
		writeWSError(conn, *badReq, badReq.Message)
		return
	}

	// The upgrade hijacks the connection, so the request context never
	// notices a client disconnect. A read pump watches the socket and
	// cancels the turn when it closes.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	sink := &wsSink{conn: conn}
	if err := h.runner.Run(ctx, *req, sink); err != nil {
		if ctx.Err() != nil {
			return
		}
		classified := ai.Classify(err)
		metrics.TurnFailures.WithLabelValues(string(classified.Category)).Inc()
		log.Error().Err(err).
			Str("chat", req.ChatID).
			Str("category", string(classified.Category)).
			Msg("websocket turn failed")
		writeWSError(conn, classified, err.Error())
	}
}

func validateWSPayload(payload TurnPayload) (*turn.Request, *ai.Classified) {
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

func writeWSError(conn *websocket.Conn, classified ai.Classified, raw string) {
	envelope := envelopeOf(classified, raw)
	frame := wsFrame{Type: "error", Error: &envelope, Timestamp: time.Now().UnixMilli()}
	if err := conn.WriteJSON(frame); err != nil {
		log.Error().Err(err).Msg("failed to write websocket error frame")
	}
}

// wsSink relays turn events over the websocket connection.
type wsSink struct {
	conn   *websocket.Conn
	chatID string
}

func (s *wsSink) write(frame wsFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := s.conn.WriteJSON(frame); err != nil {
		log.Error().Err(err).Msg("failed to write websocket frame")
	}
}

func (s *wsSink) Start(chatID string) {
	s.chatID = chatID
	s.write(wsFrame{Type: "start", ChatID: chatID})
}

func (s *wsSink) TextDelta(text string) {
	s.write(wsFrame{Type: "text-delta", Text: text})
}

func (s *wsSink) ReasoningDelta(text string) {
	s.write(wsFrame{Type: "reasoning-delta", Text: text})
}

func (s *wsSink) Message(msg chat.Structured) {
	s.write(wsFrame{Type: "message", ChatID: s.chatID, Message: &msg})
}

func (s *wsSink) Finish() {
	s.write(wsFrame{Type: "finish", ChatID: s.chatID})
}
