package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestClient upgrades one server-side connection, registers it and
// returns the browser side of the socket.
func dialTestClient(t *testing.T, hub *ChatHub, userID uuid.UUID, username string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Register(NewChatClient(userID, username, conn))
		close(registered)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}
	return conn
}

func TestHubBroadcastTagsSender(t *testing.T) {
	hub := NewChatHub()

	aliceID := uuid.New()
	aliceConn := dialTestClient(t, hub, aliceID, "alice")
	bobConn := dialTestClient(t, hub, uuid.New(), "bob")
	require.Equal(t, 2, hub.Len())

	var sender *ChatClient
	hub.mu.RLock()
	for c := range hub.clients {
		if c.UserID == aliceID {
			sender = c
		}
	}
	hub.mu.RUnlock()
	require.NotNil(t, sender)

	hub.Broadcast(ChatEvent{
		Event:    EventNewMessage,
		Username: "alice",
		Content:  "hello",
	}, sender)

	readEvent := func(conn *websocket.Conn) ChatEvent {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev ChatEvent
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	fromAlice := readEvent(aliceConn)
	assert.Equal(t, EventNewMessage, fromAlice.Event)
	assert.True(t, fromAlice.Self)
	assert.Equal(t, "hello", fromAlice.Content)

	fromBob := readEvent(bobConn)
	assert.False(t, fromBob.Self)
	assert.Equal(t, "alice", fromBob.Username)
}

func TestHubUnregisterClosesConnection(t *testing.T) {
	hub := NewChatHub()
	conn := dialTestClient(t, hub, uuid.New(), "alice")
	require.Equal(t, 1, hub.Len())

	hub.mu.RLock()
	var client *ChatClient
	for c := range hub.clients {
		client = c
	}
	hub.mu.RUnlock()

	hub.Unregister(client)
	assert.Equal(t, 0, hub.Len())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
