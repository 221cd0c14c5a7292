package handlers

import (
	"chat-gateway/internal/config"
	"chat-gateway/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	registry *websocket.Registry
	handler  *websocket.Handler
	opts     websocket.Options
}

func NewWSHandler(registry *websocket.Registry, handler *websocket.Handler, cfg config.WSConfig) *WSHandler {
	return &WSHandler{
		registry: registry,
		handler:  handler,
		opts: websocket.Options{
			SendBufferSize: cfg.SendBufferSize,
			MaxMessageSize: cfg.MaxMessageSize,
		},
	}
}

// HandleWebSocket upgrades the request and hands the connection to its
// lifecycle pumps.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	websocket.ServeWS(h.registry, h.handler, h.opts, c.Writer, c.Request)
}
