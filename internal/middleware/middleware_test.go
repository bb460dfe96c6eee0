package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRateLimiter(rdb, 2, time.Minute, zerolog.Nop())
	r := gin.New()
	r.POST("/refresh", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/refresh", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/refresh", nil).Code)

	w := serve(r, http.MethodPost, "/refresh", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/refresh", nil).Code)
}

func TestRateLimiter_RedisDownLetsRequestsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := gin.New()
	r.POST("/refresh", NewRateLimiter(rdb, 1, time.Minute, zerolog.Nop()).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/refresh", nil).Code)
}

func TestBrotli(t *testing.T) {
	big := strings.Repeat(`{"nama":"Siti Aminah","kelas":"X A"}`, 100)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, big) })

	accept := http.Header{"Accept-Encoding": []string{"gzip, br"}}

	w := serve(r, http.MethodGet, "/big", accept)
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, big, string(plain))

	w = serve(r, http.MethodGet, "/small", accept)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	w = serve(r, http.MethodGet, "/metrics", accept)
	assert.Empty(t, w.Header().Get("Content-Encoding"))

	w = serve(r, http.MethodGet, "/big", nil)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, big, w.Body.String())
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/kelas", CacheControl(60), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/tagihan", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "private, max-age=60", serve(r, http.MethodGet, "/kelas", nil).Header().Get("Cache-Control"))
	assert.Equal(t, "no-store", serve(r, http.MethodGet, "/tagihan", nil).Header().Get("Cache-Control"))
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/tagihan/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/tagihan/1", nil)
	serve(r, http.MethodGet, "/tagihan/2", nil)
	serve(r, http.MethodGet, "/nope", nil)

	n, err := testutil.GatherAndCount(reg, "tagihan_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
