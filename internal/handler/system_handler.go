package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports process and dependency health.
type SystemHandler struct {
	rdb         *redis.Client
	generations GenerationReader
	startTime   time.Time
	log         zerolog.Logger
}

func NewSystemHandler(rdb *redis.Client, generations GenerationReader, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:         rdb,
		generations: generations,
		startTime:   time.Now(),
		log:         log.With().Str("component", "system_handler").Logger(),
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	Redis      string `json:"redis"`
	Uptime     string `json:"uptime"`
	Generation int64  `json:"generation"`
	RekapQueue int64  `json:"rekap_queue"`
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// Health godoc
// GET /health
// 200 while Redis answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	st := healthStatus{
		Status:     "ok",
		Redis:      "ok",
		Uptime:     formatDuration(time.Since(h.startTime)),
		Generation: h.generations.CurrentGeneration(),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	pipe := h.rdb.Pipeline()
	pingCmd := pipe.Ping(ctx)
	queueCmd := pipe.LLen(ctx, config.WorkerKey.PersistRekapQueue)
	_, _ = pipe.Exec(ctx)

	if err := pingCmd.Err(); err != nil {
		h.log.Warn().Err(err).Msg("Health check: redis unreachable")
		st.Status = "degraded"
		st.Redis = "unreachable"
		response.Success(c, http.StatusServiceUnavailable, st)
		return
	}
	st.RekapQueue, _ = queueCmd.Result()

	response.Success(c, http.StatusOK, st)
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
