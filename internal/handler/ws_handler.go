package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	ws "github.com/stemsi/tagihan-dashboard/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// GenerationReader reports the newest snapshot generation known to the
// process, or 0 when none has been loaded yet.
type GenerationReader interface {
	CurrentGeneration() int64
}

// WSHandler pushes snapshot refresh events to dashboards over WebSocket.
type WSHandler struct {
	rdb         *redis.Client
	generations GenerationReader
	metrics     *metrics.Metrics
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, generations GenerationReader, m *metrics.Metrics, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		generations: generations,
		metrics:     m,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// DashboardStream godoc
// WS /ws/v1/dashboard/stream
// Sends a hello with the current generation, then forwards every
// snapshot.refreshed event. Clients may send {"action":"ping"}.
func (h *WSHandler) DashboardStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.metrics.StreamClientConnected()
	defer h.metrics.StreamClientDisconnected()

	ctx := c.Request.Context()
	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.RefreshChannel())
	defer pubsub.Close()

	// Wait for the subscription so no refresh slips in between hello and
	// the first forwarded event.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Refresh channel subscription failed")
		ws.WriteError(conn, "refresh channel unavailable")
		return
	}

	if err := ws.WriteTyped(conn, ws.HelloResponse{Event: ws.EventHello, Generation: h.generations.CurrentGeneration()}); err != nil {
		return
	}

	wsLog := h.log.With().Str("remote", c.ClientIP()).Logger()
	wsLog.Info().Msg("Dashboard connected")

	// Only this goroutine writes; the reader hands pings over.
	pings := make(chan struct{}, 1)
	closed := make(chan struct{})
	go h.readLoop(conn, wsLog, pings, closed)

	events := pubsub.Channel()
	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Dashboard disconnected")
			return
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping dashboard")
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, log zerolog.Logger, pings chan<- struct{}, closed chan<- struct{}) {
	defer close(closed)
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			select {
			case pings <- struct{}{}:
			default:
			}
		default:
			log.Debug().Str("action", string(msg.Action)).Msg("Ignoring unknown action")
		}
	}
}
