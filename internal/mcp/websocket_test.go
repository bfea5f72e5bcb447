package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_WebSocketRoundTrip(t *testing.T) {
	h := NewHandler(testRegistry(t), nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWebSocket(w, r, WebSocketOptions{MaxConcurrent: 2})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &websocket.DialOptions{
		Subprotocols: []string{"mcp"},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, request(1, "tools/call", map[string]interface{}{
		"name":      "echo",
		"arguments": map[string]interface{}{"message": "ws"},
	})))

	var resp MCPMessage
	require.NoError(t, wsjson.Read(ctx, conn, &resp))
	require.Nil(t, resp.Error)
	assert.EqualValues(t, 1, resp.ID)
	assert.Contains(t, resp.Result.(map[string]interface{})["content"].([]interface{})[0].(map[string]interface{})["text"], `"echo": "ws"`)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{oops")))
	_, raw, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":null`)

	resp = MCPMessage{}
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}
