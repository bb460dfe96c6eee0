package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/handler"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	"github.com/stemsi/tagihan-dashboard/internal/middleware"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

// referenceMaxAge is how long browsers may reuse the class and major lists.
const referenceMaxAge = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Dashboard *handler.DashboardHandler
	Tagihan   *handler.TagihanHandler
	Student   *handler.StudentHandler
	Class     *handler.ClassHandler
	Major     *handler.MajorHandler
	Kas       *handler.KasHandler
	Refresh   *handler.RefreshHandler
	Monitor   *handler.MonitorHandler
	WS        *handler.WSHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// refreshLimiter may be nil to leave the refresh action unthrottled.
func SetupRouter(
	handlers *Handlers,
	refreshLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Metrics(m))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Dashboard ──────────────────────────────────────────────────
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("", handlers.Dashboard.GetDashboardData)
		dashboard.GET("/history", handlers.Dashboard.GetHistory)
		dashboard.GET("/events", handlers.Monitor.DashboardEventsSSE)
	}

	// ─── 2. Tagihan ────────────────────────────────────────────────────
	tagihan := api.Group("/tagihan")
	{
		tagihan.GET("", handlers.Tagihan.ListBills)
		tagihan.GET("/search", handlers.Tagihan.SearchBills)
		tagihan.GET("/tunggakan", handlers.Tagihan.GetArrears)
		tagihan.GET("/stats", handlers.Tagihan.GetStats)
		tagihan.GET("/:id", handlers.Tagihan.GetBill)
		tagihan.POST("/:id/bayar", handlers.Tagihan.RecordPayment)
		tagihan.DELETE("/:id", handlers.Tagihan.DeleteBill)
	}

	// ─── 3. Siswa ──────────────────────────────────────────────────────
	siswa := api.Group("/siswa")
	{
		siswa.GET("", handlers.Student.ListStudents)
		siswa.GET("/:id/tagihan", handlers.Student.GetStudentBills)
	}

	// ─── 4. Reference lists ────────────────────────────────────────────
	reference := router.Group("/api/v1")
	reference.Use(middleware.CacheControl(referenceMaxAge))
	{
		reference.GET("/kelas", handlers.Class.ListClasses)
		reference.GET("/jurusan", handlers.Major.ListMajors)
	}

	// ─── 5. Kas ────────────────────────────────────────────────────────
	kas := api.Group("/kas")
	{
		kas.GET("", handlers.Kas.ListKas)
		kas.GET("/summary", handlers.Kas.GetSummary)
		kas.POST("", handlers.Kas.CreateKas)
	}

	// ─── 6. Manual refresh (rate limited) ──────────────────────────────
	if refreshLimiter != nil {
		api.POST("/refresh", refreshLimiter.Middleware(), handlers.Refresh.Refresh)
	} else {
		api.POST("/refresh", handlers.Refresh.Refresh)
	}

	// ─── 7. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/dashboard/stream", handlers.WS.DashboardStream)
	}

	return router
}
