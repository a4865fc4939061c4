package chat

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	qaService "github.com/learnix/backend/internal/service/qa"
)

// WebSocketHandler answers questions over a websocket, streaming answer
// deltas as the model produces them.
type WebSocketHandler struct {
	qa       *qaService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket handler.
func NewWebSocketHandler(qa *qaService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		qa: qa,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes attaches the websocket endpoint.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	TopK     int    `json:"topK"`
}

type outboundMessage struct {
	Type      string   `json:"type"`
	Content   string   `json:"content,omitempty"`
	Answer    string   `json:"answer,omitempty"`
	Sources   []string `json:"sources,omitempty"`
	Error     string   `json:"error,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		switch msg.Type {
		case "ask":
			h.handleAsk(ctx, conn, msg)
		case "ping":
			h.send(conn, outboundMessage{Type: "pong"})
		default:
			h.send(conn, outboundMessage{Type: "error", Error: "unknown message type: " + msg.Type})
		}
	}
}

// handleAsk runs one question through the pipeline, pushing deltas as
// they arrive. Questions on one connection are processed in order, so
// all writes happen from this goroutine.
func (h *WebSocketHandler) handleAsk(ctx context.Context, conn *websocket.Conn, msg inboundMessage) {
	result, err := h.qa.AskStream(ctx, msg.Question, msg.TopK, func(delta string) error {
		return conn.WriteJSON(outboundMessage{
			Type:      "delta",
			Content:   delta,
			Timestamp: time.Now().UnixMilli(),
		})
	})
	if err != nil {
		h.send(conn, outboundMessage{Type: "error", Error: err.Error()})
		return
	}

	h.send(conn, outboundMessage{
		Type:    "done",
		Answer:  result.Answer,
		Sources: result.Sources,
	})
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outboundMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
