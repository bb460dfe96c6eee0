package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler streams snapshot refresh events over Server-Sent Events for
// clients that cannot hold a WebSocket.
type MonitorHandler struct {
	rdb         *redis.Client
	generations GenerationReader
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewMonitorHandler(rdb *redis.Client, generations GenerationReader, m *metrics.Metrics, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:         rdb,
		generations: generations,
		metrics:     m,
		log:         log.With().Str("component", "monitor_handler").Logger(),
	}
}

// DashboardEventsSSE godoc
// GET /api/v1/dashboard/events
func (h *MonitorHandler) DashboardEventsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.RefreshChannel())
	defer pubsub.Close()
	ch := pubsub.Channel()

	h.metrics.StreamClientConnected()
	defer h.metrics.StreamClientDisconnected()

	c.SSEvent("message", gin.H{"event": "hello", "generation": h.generations.CurrentGeneration()})
	c.Writer.Flush()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	pingPayload, _ := json.Marshal(map[string]string{"event": "ping"})

	h.log.Debug().Str("remote", c.ClientIP()).Msg("Dashboard attached to refresh SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Debug().Str("remote", c.ClientIP()).Msg("Dashboard detached from refresh SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON; forward them untouched.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
