package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestWebSockets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(newTestService(t).WebSocketHandler(ctx))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteJSON(map[string]interface{}{
		"id":       "w1",
		"spec":     "signals",
		"decision": "go",
		"value":    map[string]interface{}{"@tag": "Yellow"},
	}))
	var resp Response
	require.NoError(t, c.ReadJSON(&resp))
	require.Equal(t, "w1", resp.Id)
	require.Empty(t, resp.Err)
	require.Equal(t, "hurry", resp.Result.Action)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("not json")))
	resp = Response{}
	require.NoError(t, c.ReadJSON(&resp))
	require.Contains(t, resp.Err, "bad request")

	require.NoError(t, c.WriteJSON(map[string]interface{}{
		"spec":     "nope",
		"decision": "go",
		"value":    1,
	}))
	resp = Response{}
	require.NoError(t, c.ReadJSON(&resp))
	require.NotEmpty(t, resp.Id)
	require.Contains(t, resp.Err, "not found")
}
