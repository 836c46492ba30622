package webchat

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wolfman30/foundry-guide/internal/conversation"
)

const (
	socketReadLimit  = 16 << 10
	socketWriteWait  = 10 * time.Second
	socketIdleWindow = 5 * time.Minute
)

// InboundFrame is what the widget sends over the socket.
type InboundFrame struct {
	Type    string `json:"type"` // "message", "reset", "ping"
	Message string `json:"message,omitempty"`
}

// OutboundFrame wraps a session response, or an error, for the widget.
type OutboundFrame struct {
	Type string `json:"type"` // "session", "message", "pong", "error"
	*conversation.Response
	Error string `json:"error,omitempty"`
}

// HandleWebSocket handles GET /api/ws. A missing or unknown session_id
// starts a new session.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("webchat: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(socketReadLimit)

	ctx := r.Context()
	sessionID := r.URL.Query().Get("session_id")
	var first conversation.Response
	if s, err := h.sessions.Get(sessionID); err == nil && sessionID != "" {
		first = s.InitialResponse()
	} else {
		first = h.sessions.Create(ctx)
	}
	sessionID = first.SessionID
	if !h.send(conn, OutboundFrame{Type: "session", Response: &first}) {
		return
	}
	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(socketIdleWindow))
		var in InboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		var resp conversation.Response
		switch strings.ToLower(in.Type) {
		case "ping":
			if !h.send(conn, OutboundFrame{Type: "pong"}) {
				return
			}
			continue
		case "reset":
			resp, err = h.sessions.Reset(ctx, sessionID)
		case "message":
			resp, err = h.sessions.Handle(ctx, sessionID, in.Message)
		default:
			if !h.send(conn, OutboundFrame{Type: "error", Error: "unsupported frame type"}) {
				return
			}
			continue
		}

		frameType := "message"
		if errors.Is(err, conversation.ErrSessionNotFound) {
			// The session expired while the socket was open.
			resp, err = h.sessions.Create(ctx), nil
			sessionID = resp.SessionID
			frameType = "session"
		}
		if err != nil {
			h.logger.Error("webchat: socket event failed", "session_id", sessionID, "error", err)
			if !h.send(conn, OutboundFrame{Type: "error", Error: msgTechnicalIssue}) {
				return
			}
			continue
		}
		if !h.send(conn, OutboundFrame{Type: frameType, Response: &resp}) {
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, frame OutboundFrame) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Debug("webchat: write failed", "error", err)
		return false
	}
	return true
}

// originChecker allows requests without an Origin header, any origin when
// "*" is listed, and otherwise only listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	allowAny := false
	allow := map[string]struct{}{}
	for _, origin := range allowed {
		origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAny = true
		} else if origin != "" {
			allow[origin] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAny {
			return true
		}
		_, ok := allow[origin]
		return ok
	}
}
