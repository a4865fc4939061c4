package chat

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	historyService "github.com/learnix/backend/internal/service/history"
	qaService "github.com/learnix/backend/internal/service/qa"
)

// streamingStub emits its pieces one by one so the delta frames can be
// asserted individually.
type streamingStub struct {
	pieces []string
}

func (g *streamingStub) Generate(_ context.Context, _ string, _ []string) (string, error) {
	return strings.Join(g.pieces, ""), nil
}

func (g *streamingStub) GenerateStream(_ context.Context, _ string, _ []string, onDelta func(string) error) (string, error) {
	var builder strings.Builder
	for _, piece := range g.pieces {
		builder.WriteString(piece)
		if err := onDelta(piece); err != nil {
			return "", err
		}
	}
	return builder.String(), nil
}

func dialWebSocket(t *testing.T, gen qaService.Generator) (*websocket.Conn, *historyService.Service) {
	t.Helper()

	r, hist := setupRouter(t, gen)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn, hist
}

func TestWebSocketAskStreamsDeltasThenDone(t *testing.T) {
	conn, hist := dialWebSocket(t, &streamingStub{pieces: []string{"part one, ", "part two"}})

	if err := conn.WriteJSON(inboundMessage{Type: "ask", Question: "what is photosynthesis", TopK: 1}); err != nil {
		t.Fatalf("write ask: %v", err)
	}

	var deltas []string
	var done outboundMessage
	for {
		var msg outboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		switch msg.Type {
		case "delta":
			deltas = append(deltas, msg.Content)
		case "done":
			done = msg
		case "error":
			t.Fatalf("unexpected error frame: %s", msg.Error)
		default:
			t.Fatalf("unexpected frame type: %s", msg.Type)
		}
		if done.Type == "done" {
			break
		}
	}

	if len(deltas) != 2 {
		t.Fatalf("expected 2 delta frames, got %d: %v", len(deltas), deltas)
	}
	if got := strings.Join(deltas, ""); got != done.Answer {
		t.Fatalf("deltas %q do not assemble into the answer %q", got, done.Answer)
	}
	if done.Answer != "part one, part two" {
		t.Fatalf("unexpected answer: %q", done.Answer)
	}
	if len(done.Sources) != 1 || done.Sources[0] != "doc_chunk_0" {
		t.Fatalf("unexpected sources: %v", done.Sources)
	}

	if hist.Stats(context.Background()).TotalMessages != 1 {
		t.Fatal("completed ask should append to history")
	}
}

func TestWebSocketAskEmptyQuestion(t *testing.T) {
	conn, hist := dialWebSocket(t, &streamingStub{pieces: []string{"unused"}})

	if err := conn.WriteJSON(inboundMessage{Type: "ask", Question: "   "}); err != nil {
		t.Fatalf("write ask: %v", err)
	}

	var msg outboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if msg.Type != "error" || msg.Error == "" {
		t.Fatalf("expected error frame, got %+v", msg)
	}

	if hist.Stats(context.Background()).TotalMessages != 0 {
		t.Fatal("rejected ask must not append to history")
	}
}

func TestWebSocketPing(t *testing.T) {
	conn, _ := dialWebSocket(t, &streamingStub{pieces: []string{"unused"}})

	if err := conn.WriteJSON(inboundMessage{Type: "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	var msg outboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if msg.Type != "pong" {
		t.Fatalf("expected pong frame, got %s", msg.Type)
	}
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	conn, _ := dialWebSocket(t, &streamingStub{pieces: []string{"unused"}})

	if err := conn.WriteJSON(inboundMessage{Type: "bogus"}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	var msg outboundMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if msg.Type != "error" || !strings.Contains(msg.Error, "bogus") {
		t.Fatalf("expected error frame naming the type, got %+v", msg)
	}
}
