package handler

import (
	"net/http"

	"anoa.com/confessionwall/internal/logger"
	"anoa.com/confessionwall/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FeedHandler streams inserted confession rows to connected clients over
// a websocket, fed by the redis change-feed channel.
type FeedHandler struct {
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewFeedHandler(redisClient *redis.Client) *FeedHandler {
	return &FeedHandler{
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS policy is enforced on the REST surface
			},
		},
	}
}

func (h *FeedHandler) HandleWebSocket(c *gin.Context) {
	if h.redisClient == nil {
		// No realtime transport configured; clients fall back to fetch.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "change feed unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	pubsub := h.redisClient.Subscribe(c.Request.Context(), service.InsertChannel)
	defer pubsub.Close()

	// Wait for confirmation that the subscription is created
	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		logger.Log.Warn("change feed subscribe failed", zap.Error(err))
		return
	}

	ch := pubsub.Channel()

	// Detect client disconnect via the read loop.
	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			// Payload is already the JSON-encoded confession row;
			// forward it as-is.
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
