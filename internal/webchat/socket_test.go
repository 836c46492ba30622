package webchat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/foundry-guide/internal/conversation"
)

func dialSocket(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) OutboundFrame {
	t.Helper()
	var frame OutboundFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocketConversation(t *testing.T) {
	handler, _ := newTestServer(t, nil)
	server := httptest.NewServer(handler)
	defer server.Close()

	conn := dialSocket(t, server, "")
	first := readFrame(t, conn)
	assert.Equal(t, "session", first.Type)
	require.NotNil(t, first.Response)
	assert.Equal(t, conversation.StageAwaitName, first.Stage)
	sessionID := first.SessionID

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: "message", Message: "Alice"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "message", frame.Type)
	assert.Equal(t, sessionID, frame.SessionID)
	assert.Equal(t, conversation.StageMenuPrimary, frame.Stage)
	assert.Len(t, frame.Options, 4)

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: "reset"}))
	frame = readFrame(t, conn)
	assert.Equal(t, conversation.StageAwaitName, frame.Stage)
	assert.Equal(t, sessionID, frame.SessionID)

	require.NoError(t, conn.WriteJSON(InboundFrame{Type: "shout"}))
	frame = readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.NotEmpty(t, frame.Error)
}

func TestWebSocketResumesKnownSession(t *testing.T) {
	handler, registry := newTestServer(t, nil)
	server := httptest.NewServer(handler)
	defer server.Close()

	created := decodeSession(t, do(t, handler, http.MethodPost, "/api/session", ""))
	_, err := registry.Handle(t.Context(), created.SessionID, "Alice")
	require.NoError(t, err)

	conn := dialSocket(t, server, "?session_id="+created.SessionID)
	first := readFrame(t, conn)
	assert.Equal(t, created.SessionID, first.SessionID)
	assert.Equal(t, conversation.StageMenuPrimary, first.Stage)

	unknown := dialSocket(t, server, "?session_id=unknown")
	fresh := readFrame(t, unknown)
	assert.NotEqual(t, "unknown", fresh.SessionID)
	assert.Equal(t, conversation.StageAwaitName, fresh.Stage)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://femalefoundry.co/"})

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://femalefoundry.co")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
