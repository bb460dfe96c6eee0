package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	ws "github.com/stemsi/tagihan-dashboard/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedGeneration int64

func (g fixedGeneration) CurrentGeneration() int64 { return int64(g) }

func TestDashboardStream(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewWSHandler(rdb, fixedGeneration(3), metrics.New(prometheus.NewRegistry()), zerolog.Nop(), nil)
	r := gin.New()
	r.GET("/ws/v1/dashboard/stream", h.DashboardStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/dashboard/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello ws.HelloResponse
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, ws.EventHello, hello.Event)
	assert.Equal(t, int64(3), hello.Generation)

	payload := `{"event":"snapshot.refreshed","generation":4}`
	require.NoError(t, rdb.Publish(context.Background(), config.CacheKey.RefreshChannel(), payload).Err())

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(msg))

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)
}

func TestDashboardEventsSSE(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewMonitorHandler(rdb, fixedGeneration(5), metrics.New(prometheus.NewRegistry()), zerolog.Nop())
	r := gin.New()
	r.GET("/api/v1/dashboard/events", h.DashboardEventsSSE)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/v1/dashboard/events")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	nextData := func() string {
		for lines.Scan() {
			line := lines.Text()
			if strings.HasPrefix(line, "data:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	assert.JSONEq(t, `{"event":"hello","generation":5}`, nextData())

	channel := config.CacheKey.RefreshChannel()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	payload := `{"event":"snapshot.refreshed","generation":6}`
	require.NoError(t, rdb.Publish(context.Background(), channel, payload).Err())
	assert.JSONEq(t, payload, nextData())
}

func TestBuildUpgrader_Origins(t *testing.T) {
	open := buildUpgrader(nil)
	restricted := buildUpgrader([]string{"https://tu.sekolah.sch.id"})

	req := httptest.NewRequest("GET", "/ws/v1/dashboard/stream", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.True(t, open.CheckOrigin(req))
	assert.False(t, restricted.CheckOrigin(req))

	req.Header.Set("Origin", "https://TU.sekolah.sch.id")
	assert.True(t, restricted.CheckOrigin(req))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 42s", formatDuration(42*time.Second))
	assert.Equal(t, "2h 5m 0s", formatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1d 1h 0m 0s", formatDuration(25*time.Hour))
}
