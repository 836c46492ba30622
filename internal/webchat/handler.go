package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/wolfman30/foundry-guide/internal/answer"
	"github.com/wolfman30/foundry-guide/internal/content"
	"github.com/wolfman30/foundry-guide/internal/conversation"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// User-visible error messages.
const (
	msgSessionNotFound = "session not found"
	msgFAQNotFound     = "faq entry not found"
	msgTechnicalIssue  = "technical issue, try again"
	msgInvalidBody     = "invalid request body"
)

const maxBodyBytes = 64 << 10

// Sessions is the session registry the handler drives.
type Sessions interface {
	Create(ctx context.Context) conversation.Response
	Get(id string) (*conversation.Session, error)
	Reset(ctx context.Context, id string) (conversation.Response, error)
	Handle(ctx context.Context, id, message string) (conversation.Response, error)
}

// Asker answers free-text questions.
type Asker interface {
	Ask(ctx context.Context, userID, question string) answer.Answer
}

// FAQ exposes the loaded content.
type FAQ interface {
	Entries() []content.Entry
	Get(id string) (content.Entry, bool)
	Len() int
}

// Handler serves the chat API.
type Handler struct {
	sessions Sessions
	asker    Asker
	faq      FAQ
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a chat handler. allowedOrigins gates websocket
// upgrades the same way CORS gates REST calls.
func NewHandler(sessions Sessions, asker Asker, faq FAQ, allowedOrigins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sessions: sessions,
		asker:    asker,
		faq:      faq,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// MatchedEntry is one FAQ entry behind an ask answer.
type MatchedEntry struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// AskResponse is the body returned by POST /api/ask.
type AskResponse struct {
	Answer   string         `json:"answer"`
	Source   string         `json:"source"`
	Degraded bool           `json:"degraded"`
	Matched  []MatchedEntry `json:"matched"`
}

// CreateSession handles POST /api/session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Create(r.Context()))
}

// ResetSession handles POST /api/session/{session_id}/reset.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessions.Reset(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, msgInvalidBody, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.sessions.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Ask handles POST /api/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, msgInvalidBody, http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	ans := h.asker.Ask(r.Context(), req.SessionID, question)
	matched := make([]MatchedEntry, 0, len(ans.Matched))
	for _, se := range ans.Matched {
		matched = append(matched, MatchedEntry{ID: se.Entry.ID, Title: se.Entry.Title, Score: se.Score})
	}
	writeJSON(w, http.StatusOK, AskResponse{
		Answer:   ans.Text,
		Source:   string(ans.Source),
		Degraded: ans.Degraded,
		Matched:  matched,
	})
}

// ListFAQ handles GET /api/faq.
func (h *Handler) ListFAQ(w http.ResponseWriter, r *http.Request) {
	entries := h.faq.Entries()
	if entries == nil {
		entries = []content.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetFAQ handles GET /api/faq/{id}.
func (h *Handler) GetFAQ(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.faq.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, msgFAQNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"faq_entries": h.faq.Len(),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, conversation.ErrSessionNotFound) {
		http.Error(w, msgSessionNotFound, http.StatusNotFound)
		return
	}
	h.logger.Error("webchat: request failed", "error", err)
	http.Error(w, msgTechnicalIssue, http.StatusInternalServerError)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
