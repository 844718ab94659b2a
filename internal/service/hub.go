package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Chat relay event names shared with the client script.
const (
	EventNewMessage   = "new_message"
	EventMessageError = "message_error"
)

// ChatEvent is the envelope written to every chat connection.
type ChatEvent struct {
	Event    string `json:"event"`
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Content  string `json:"content,omitempty"`
	SentAt   string `json:"sent_at,omitempty"`
	Self     bool   `json:"self,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ChatClient is one live chat connection. An unauthenticated visitor may
// hold a connection (UserID == uuid.Nil) to watch; posting requires auth.
type ChatClient struct {
	UserID   uuid.UUID
	Username string

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewChatClient(userID uuid.UUID, username string, conn *websocket.Conn) *ChatClient {
	return &ChatClient{UserID: userID, Username: username, conn: conn}
}

// Authenticated reports whether the connection belongs to a logged-in user.
func (c *ChatClient) Authenticated() bool {
	return c.UserID != uuid.Nil
}

// Send writes an event to the connection. Writes are serialized because
// the relay may broadcast from multiple request goroutines.
func (c *ChatClient) Send(ev ChatEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(ev)
}

// ChatHub is the explicit registry of active chat connections. Delivery is
// best-effort: a failed write on one connection never blocks the rest.
type ChatHub struct {
	mu      sync.RWMutex
	clients map[*ChatClient]struct{}
}

func NewChatHub() *ChatHub {
	return &ChatHub{clients: make(map[*ChatClient]struct{})}
}

func (h *ChatHub) Register(c *ChatClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *ChatHub) Unregister(c *ChatClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.mu.Lock()
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *ChatHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers an event to every connection. The sender's own
// connection receives the event with Self set so the client renders it as
// its own message.
func (h *ChatHub) Broadcast(ev ChatEvent, sender *ChatClient) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		out := ev
		out.Self = c == sender
		_ = c.Send(out)
	}
}
