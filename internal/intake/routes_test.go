package intake

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
)

func setupRouter(t *testing.T, gen Generator) (*chi.Mux, conversation.Store) {
	t.Helper()
	store := conversation.NewMemoryStore()
	e := newTestEngine(t, store, gen, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, e)
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChatRoutesFlow(t *testing.T) {
	gen := &scriptedGenerator{respond: sequence(testSummary, "What is your name?", CompletionMarker)}
	r, _ := setupRouter(t, gen)

	w := do(t, r, http.MethodPost, "/chat/start/alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	var start map[string]any
	json.NewDecoder(w.Body).Decode(&start)
	if start["message"] != "Chat started" || !strings.Contains(start["greeting"].(string), "Hassy") {
		t.Errorf("start body = %v", start)
	}

	w = do(t, r, http.MethodPost, "/chat/start/alice", "")
	json.NewDecoder(w.Body).Decode(&start)
	if start["message"] != "Resuming existing chat" || start["greeting"] != ResumeNotice {
		t.Errorf("resume body = %v", start)
	}

	w = do(t, r, http.MethodPost, "/chat/message", `{"user_id":"alice","message":"English"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("message: %d %s", w.Code, w.Body.String())
	}
	var turn TurnResult
	json.NewDecoder(w.Body).Decode(&turn)
	if turn.IsSummary || turn.Response != "What is your name?" {
		t.Errorf("turn = %+v", turn)
	}

	w = do(t, r, http.MethodGet, "/chat/active/alice", "")
	var active struct {
		ActiveChat *conversation.Conversation `json:"active_chat"`
	}
	json.NewDecoder(w.Body).Decode(&active)
	if active.ActiveChat == nil || len(active.ActiveChat.Messages) != 3 || active.ActiveChat.OwnerID != "alice" {
		t.Errorf("active = %+v", active.ActiveChat)
	}

	w = do(t, r, http.MethodPost, "/chat/message", `{"user_id":"alice","message":"Ravi"}`)
	json.NewDecoder(w.Body).Decode(&turn)
	if !turn.IsSummary || turn.Response != testSummary {
		t.Errorf("final turn = %+v", turn)
	}

	w = do(t, r, http.MethodGet, "/chat/active/alice", "")
	if !strings.Contains(w.Body.String(), `"active_chat":null`) {
		t.Errorf("expected null active chat, got %s", w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/chat/history/alice", "")
	var hist struct {
		Chats []struct {
			IsCompleted bool   `json:"is_completed"`
			Summary     string `json:"summary"`
			SummaryHTML string `json:"summary_html"`
		} `json:"chats"`
	}
	json.NewDecoder(w.Body).Decode(&hist)
	if len(hist.Chats) != 1 || !hist.Chats[0].IsCompleted || hist.Chats[0].Summary != testSummary {
		t.Fatalf("history = %+v", hist)
	}
	if !strings.Contains(hist.Chats[0].SummaryHTML, "<h3") {
		t.Errorf("summary_html not rendered: %q", hist.Chats[0].SummaryHTML)
	}
}

func TestMessageRouteErrors(t *testing.T) {
	gen := &scriptedGenerator{respond: func(int, string) (string, error) { return "", errors.New("upstream down") }}
	r, _ := setupRouter(t, gen)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing user", `{"message":"hi"}`, http.StatusBadRequest},
		{"no active chat", `{"user_id":"ghost","message":"hi"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, r, http.MethodPost, "/chat/message", tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	do(t, r, http.MethodPost, "/chat/start/bob", "")
	if w := do(t, r, http.MethodPost, "/chat/message", `{"user_id":"bob","message":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/chat/message", `{"user_id":"bob","message":"hi"}`); w.Code != http.StatusBadGateway {
		t.Errorf("generation failure status = %d", w.Code)
	}
}

func TestAskRoute(t *testing.T) {
	gen := &scriptedGenerator{respond: func(int, string) (string, error) { return "Rest and gentle stretching.", nil }}
	r, _ := setupRouter(t, gen)

	w := do(t, r, http.MethodPost, "/chat/ask", `{"question":"Why is my neck stiff?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("ask: %d %s", w.Code, w.Body.String())
	}
	var ans Answer
	json.NewDecoder(w.Body).Decode(&ans)
	if ans.Question != "Why is my neck stiff?" || ans.Answer != "Rest and gentle stretching." || ans.ContextFound {
		t.Errorf("answer = %+v", ans)
	}

	if w := do(t, r, http.MethodPost, "/chat/ask", `{"question":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty question status = %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrEmptyMessage, http.StatusBadRequest},
		{ErrNoActiveConversation, http.StatusNotFound},
		{ErrConcurrentTurn, http.StatusConflict},
		{errors.Join(ErrGeneration, errors.New("x")), http.StatusBadGateway},
		{conversation.ErrMalformedTranscript, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
