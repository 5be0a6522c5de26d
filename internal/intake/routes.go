package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/report"
)

// RegisterRoutes mounts the chat API.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/start/{user_id}", handleStart(engine))
		r.Post("/message", handleMessage(engine))
		r.Get("/history/{user_id}", handleHistory(engine))
		r.Get("/active/{user_id}", handleActive(engine))
		r.Post("/ask", handleAsk(engine))
	})
}

type startResponse struct {
	Message string `json:"message"`
	*StartResult
}

func handleStart(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := engine.StartConversation(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeError(w, engine, err)
			return
		}
		msg := "Chat started"
		if res.Resumed {
			msg = "Resuming existing chat"
		}
		writeJSON(w, http.StatusOK, startResponse{Message: msg, StartResult: res})
	}
}

type messageRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func handleMessage(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.UserID == "" {
			writeError(w, engine, ErrMissingOwner)
			return
		}

		res, err := engine.ProcessTurn(r.Context(), req.UserID, req.Message)
		if err != nil {
			writeError(w, engine, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// conversationView adds the rendered summary to a stored conversation.
type conversationView struct {
	conversation.Conversation
	SummaryHTML string `json:"summary_html,omitempty"`
}

func handleHistory(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convs, err := engine.History(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeError(w, engine, err)
			return
		}

		views := make([]conversationView, 0, len(convs))
		for _, c := range convs {
			v := conversationView{Conversation: c}
			if c.Summary != "" {
				html, err := report.RenderHTML(c.Summary)
				if err != nil {
					engine.logger.Warn("rendering summary", "conversation", c.ID, "error", err)
				}
				v.SummaryHTML = html
			}
			views = append(views, v)
		}
		writeJSON(w, http.StatusOK, map[string]any{"chats": views})
	}
}

func handleActive(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := engine.Active(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeError(w, engine, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"active_chat": c})
	}
}

type askRequest struct {
	Question string `json:"question"`
}

func handleAsk(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		answer, err := engine.Ask(r.Context(), req.Question)
		if err != nil {
			writeError(w, engine, err)
			return
		}
		writeJSON(w, http.StatusOK, answer)
	}
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMissingOwner):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoActiveConversation):
		return http.StatusNotFound
	case errors.Is(err, ErrConcurrentTurn):
		return http.StatusConflict
	case errors.Is(err, ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, engine *Engine, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		engine.logger.Error("chat request failed", "error", err)
		if errors.Is(err, conversation.ErrMalformedTranscript) {
			msg = "stored conversation is malformed"
		} else {
			msg = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
