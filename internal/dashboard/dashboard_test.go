package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/intake"
	"github.com/ziadkadry99/physio-intake/internal/retrieval"
)

type cannedGenerator struct{ reply string }

func (g cannedGenerator) Generate(context.Context, string) (string, error) { return g.reply, nil }

type emptyIndex struct{}

func (emptyIndex) Search(context.Context, string, int) ([]retrieval.Hit, error) { return nil, nil }

type fixedCount int

func (c fixedCount) Count() int { return int(c) }

func setupTest(t *testing.T, reply string) (*Dashboard, conversation.Store) {
	t.Helper()
	store := conversation.NewMemoryStore()
	engine := intake.NewEngine(store, cannedGenerator{reply: reply}, retrieval.New(emptyIndex{}))
	return New(engine, fixedCount(7), nil), store
}

func setupRouter(d *Dashboard) chi.Router {
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func dial(t *testing.T, r http.Handler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req chatRequest) chatResponse {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp chatResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestStatsEndpoint(t *testing.T) {
	d, store := setupTest(t, "next question")
	r := setupRouter(d)
	ctx := t.Context()

	store.Create(ctx, &conversation.Conversation{OwnerID: "a"})
	store.Create(ctx, &conversation.Conversation{OwnerID: "b"})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.ActiveConversations != 2 || stats.CompletedConversations != 0 || stats.Documents != 7 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWebSocketIntakeFlow(t *testing.T) {
	d, store := setupTest(t, "What is your name?")
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "start", UserID: "ws-user"})
	if resp.Type != "greeting" || !strings.Contains(resp.Content, "Hassy") || resp.Resumed {
		t.Fatalf("start = %+v", resp)
	}

	resp = roundTrip(t, conn, chatRequest{Type: "message", UserID: "ws-user", Content: "English"})
	if resp.Type != "response" || resp.Content != "What is your name?" {
		t.Errorf("message = %+v", resp)
	}

	active, _ := store.FindActive(t.Context(), "ws-user")
	if active == nil || len(active.Messages) != 3 {
		t.Errorf("turn not persisted: %+v", active)
	}

	resp = roundTrip(t, conn, chatRequest{Type: "start", UserID: "ws-user"})
	if !resp.Resumed || resp.Content != intake.ResumeNotice {
		t.Errorf("second start = %+v", resp)
	}
}

func TestWebSocketSummary(t *testing.T) {
	d, _ := setupTest(t, intake.CompletionMarker)
	conn := dial(t, setupRouter(d))

	roundTrip(t, conn, chatRequest{Type: "start", UserID: "u"})
	resp := roundTrip(t, conn, chatRequest{Type: "message", UserID: "u", Content: "that's all"})
	// The canned generator answers the summary prompt with the marker too.
	if resp.Type != "summary" {
		t.Errorf("expected summary frame, got %+v", resp)
	}
}

func TestWebSocketMessageWithoutStart(t *testing.T) {
	d, _ := setupTest(t, "x")
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", UserID: "nobody", Content: "hello"})
	if resp.Type != "error" || resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 error frame, got %+v", resp)
	}
}

func TestWebSocketAsk(t *testing.T) {
	d, _ := setupTest(t, "Try gentle stretching.")
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "ask", Content: "why is my neck stiff?"})
	if resp.Type != "answer" || resp.Content != "Try gentle stretching." || resp.ContextFound {
		t.Errorf("ask = %+v", resp)
	}
}

func TestWebSocketNilEngine(t *testing.T) {
	conn := dial(t, setupRouter(New(nil, nil, nil)))

	resp := roundTrip(t, conn, chatRequest{Type: "ask", Content: "hello"})
	if resp.Type != "error" || !strings.Contains(resp.Content, "not configured") {
		t.Errorf("expected configuration error, got %+v", resp)
	}
}

func TestWebSocketEmptyContent(t *testing.T) {
	d, _ := setupTest(t, "x")
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "message", UserID: "u", Content: ""})
	if resp.Type != "error" || !strings.Contains(resp.Content, "content is required") {
		t.Errorf("expected content error, got %+v", resp)
	}
}

func TestWebSocketUnknownType(t *testing.T) {
	d, _ := setupTest(t, "x")
	conn := dial(t, setupRouter(d))

	resp := roundTrip(t, conn, chatRequest{Type: "unknown", Content: "hello"})
	if resp.Type != "error" || !strings.Contains(resp.Content, "unknown message type") {
		t.Errorf("expected unknown type error, got %+v", resp)
	}
}

func TestServeIndex(t *testing.T) {
	d, _ := setupTest(t, "x")
	r := setupRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Physio Intake Dashboard") {
		t.Error("expected HTML to contain 'Physio Intake Dashboard'")
	}
}
