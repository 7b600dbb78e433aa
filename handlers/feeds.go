package handlers

import (
	"net/http"

	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same permissive policy as the REST API
	},
}

// FeedHandler upgrades authenticated requests to the live salary feed.
type FeedHandler struct {
	hub *services.FeedHub
	log zerolog.Logger
}

func NewFeedHandler(hub *services.FeedHub, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{hub: hub, log: log}
}

// RequireHub answers 503 when no broker is configured.
func (h *FeedHandler) RequireHub(c *gin.Context) {
	if h.hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed not available"})
		return
	}
	c.Next()
}

// HandleFeedWebSocket handles GET /ws/salaries
func (h *FeedHandler) HandleFeedWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := services.NewFeedClient(h.hub, conn, currentUserID(c), c.ClientIP())
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.WritePump()
	go client.ReadPump()
}

// GetFeedStats returns feed hub statistics
func (h *FeedHandler) GetFeedStats(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	stats := h.hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"enabled": true,
		"clients": stats.Clients,
		"users":   stats.Users,
	})
}
