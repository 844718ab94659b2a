package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/selera-app/backend/internal/middleware"
	"github.com/selera-app/backend/internal/service"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin pages only; the session cookie carries auth
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// inboundChatMessage is what the page script sends over the socket.
type inboundChatMessage struct {
	Event   string `json:"event"`
	Content string `json:"content"`
}

// ChatHandler upgrades /ws/chat connections and pumps messages through
// the relay.
type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	router.GET("/ws/chat", middleware.OptionalAuth(validator), h.Serve)
}

// Serve upgrades the connection and runs the read loop. Anonymous
// connections may watch; a send from one gets a message_error event back
// instead of a broadcast.
func (h *ChatHandler) Serve(c *gin.Context) {
	conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	userID, username, _ := middleware.CurrentUser(c)
	client := service.NewChatClient(userID, username, conn)

	hub := h.chat.Hub()
	hub.Register(client)
	defer hub.Unregister(client)

	for {
		var msg inboundChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("chat connection dropped")
			}
			return
		}
		if msg.Event != "send_message" {
			continue
		}

		if !client.Authenticated() {
			_ = client.Send(service.ChatEvent{
				Event: service.EventMessageError,
				Error: "login required to send messages",
			})
			continue
		}

		if _, err := h.chat.Post(c.Request.Context(), client, msg.Content); err != nil {
			_ = client.Send(service.ChatEvent{
				Event: service.EventMessageError,
				Error: err.Error(),
			})
		}
	}
}
