package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/physio-intake/internal/intake"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "start", "message" or "ask"
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type         string `json:"type"` // "greeting", "response", "summary", "answer" or "error"
	UserID       string `json:"user_id,omitempty"`
	Content      string `json:"content"`
	Resumed      bool   `json:"resumed,omitempty"`
	ContextFound bool   `json:"context_found,omitempty"`
	Code         int    `json:"code,omitempty"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()
	// The server's write timeout must not cut off a long-lived chat.
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "invalid message format")
			continue
		}
		if d.engine == nil {
			d.sendError(conn, req.UserID, "intake engine not configured")
			continue
		}

		switch req.Type {
		case "start":
			d.handleStart(conn, r, req)
		case "message":
			d.handleChatMessage(conn, r, req)
		case "ask":
			d.handleAskMessage(conn, r, req)
		default:
			d.sendError(conn, req.UserID, "unknown message type: "+req.Type)
		}
	}
}

func (d *Dashboard) handleStart(conn *websocket.Conn, r *http.Request, req chatRequest) {
	res, err := d.engine.StartConversation(r.Context(), req.UserID)
	if err != nil {
		d.sendEngineError(conn, req.UserID, "could not start", err)
		return
	}
	d.send(conn, chatResponse{Type: "greeting", UserID: req.UserID, Content: res.Message, Resumed: res.Resumed})
}

func (d *Dashboard) handleChatMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if strings.TrimSpace(req.Content) == "" {
		d.sendError(conn, req.UserID, "content is required")
		return
	}

	res, err := d.engine.ProcessTurn(r.Context(), req.UserID, req.Content)
	if err != nil {
		d.sendEngineError(conn, req.UserID, "turn failed", err)
		return
	}
	kind := "response"
	if res.IsSummary {
		kind = "summary"
	}
	d.send(conn, chatResponse{Type: kind, UserID: req.UserID, Content: res.Response})
}

func (d *Dashboard) handleAskMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if strings.TrimSpace(req.Content) == "" {
		d.sendError(conn, req.UserID, "content is required")
		return
	}

	ans, err := d.engine.Ask(r.Context(), req.Content)
	if err != nil {
		d.sendEngineError(conn, req.UserID, "question failed", err)
		return
	}
	d.send(conn, chatResponse{Type: "answer", UserID: req.UserID, Content: ans.Answer, ContextFound: ans.ContextFound})
}

func (d *Dashboard) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		d.logger.Warn("websocket write", "error", err)
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, userID, message string) {
	d.send(conn, chatResponse{Type: "error", UserID: userID, Content: message})
}

// sendEngineError reports an engine failure along with its HTTP status code.
func (d *Dashboard) sendEngineError(conn *websocket.Conn, userID, prefix string, err error) {
	d.send(conn, chatResponse{Type: "error", UserID: userID, Content: prefix + ": " + err.Error(), Code: intake.StatusFor(err)})
}
