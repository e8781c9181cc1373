package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/atom-sv/leadagent/internal/conversation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is one client frame on the chat socket.
type wsRequest struct {
	Type    string `json:"type"` // "message" | "end"
	Message string `json:"message,omitempty"`
}

// wsResponse is one server frame on the chat socket.
type wsResponse struct {
	Type      string `json:"type"` // "greeting" | "reply" | "ended" | "error"
	SessionID string `json:"session_id"`
	Output    string `json:"output,omitempty"`
	Intent    string `json:"intent,omitempty"`
	Fields    any    `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleChatWS runs a live conversation over a WebSocket. The greeting is
// pushed on connect; each client "message" frame produces a "reply" frame.
// Closing the socket ends the session.
func (r *Router) handleChatWS(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Printf("chat_ws: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s := r.newSession()
	if !r.sessions.Put(s) {
		_ = conn.WriteJSON(wsResponse{Type: "error", Error: "server is shutting down"})
		return
	}
	defer func() {
		_ = s.End(req.Context())
		r.sessions.Remove(s.ID())
	}()

	// An optional lead id arrives as a query parameter so the greeting can be
	// personalized before the first client frame.
	var leadID *int64
	if raw := req.URL.Query().Get("lead_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			leadID = &id
		}
	}

	greeting, err := s.Start(req.Context(), leadID)
	if err != nil {
		r.logger.Printf("chat_ws: session start failed: %v", err)
		captureError(req, err, "ws session start failed")
		_ = conn.WriteJSON(wsResponse{Type: "error", SessionID: s.ID(), Error: "failed to start session"})
		return
	}
	if err := conn.WriteJSON(wsResponse{Type: "greeting", SessionID: s.ID(), Output: greeting}); err != nil {
		return
	}

	for {
		var msg wsRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Printf("chat_ws: connection closed for session %s", s.ID())
			} else {
				r.logger.Printf("chat_ws: read error for session %s: %v", s.ID(), err)
			}
			return
		}

		switch msg.Type {
		case "message":
			if msg.Message == "" {
				_ = conn.WriteJSON(wsResponse{Type: "error", SessionID: s.ID(), Error: "empty message"})
				continue
			}
			result, err := s.SubmitUtterance(req.Context(), msg.Message)
			if err != nil {
				if errors.Is(err, conversation.ErrNotActive) {
					_ = conn.WriteJSON(wsResponse{Type: "error", SessionID: s.ID(), Error: "session is not active"})
					continue
				}
				r.logger.Printf("chat_ws: turn failed for session %s: %v", s.ID(), err)
				captureError(req, err, "ws turn failed")
				_ = conn.WriteJSON(wsResponse{Type: "error", SessionID: s.ID(), Error: "failed to process message"})
				continue
			}
			if err := conn.WriteJSON(wsResponse{
				Type:      "reply",
				SessionID: s.ID(),
				Output:    result.Reply,
				Intent:    result.Intent,
				Fields:    result.Fields,
			}); err != nil {
				return
			}

		case "end":
			summary := s.Summary()
			if err := s.End(req.Context()); err != nil {
				r.logger.Printf("chat_ws: end failed for session %s: %v", s.ID(), err)
			}
			_ = conn.WriteJSON(wsResponse{Type: "ended", SessionID: s.ID(), Fields: summary})
			return

		default:
			_ = conn.WriteJSON(wsResponse{Type: "error", SessionID: s.ID(), Error: "unknown message type"})
		}
	}
}
