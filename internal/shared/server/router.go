package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
	"github.com/magungh1/exporo-sme-export-assistant/internal/catalog"
	"github.com/magungh1/exporo-sme-export-assistant/internal/chat"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
	"github.com/magungh1/exporo-sme-export-assistant/internal/services/health"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/config"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/metrics"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/respond"
)

const chatRateLimitGroup = "CHAT"

// RouterDeps are the handlers mounted by NewRouter.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	ProfileHandler *profiles.Handler
	HistoryHandler *assessments.Handler
	ChatHandler    *chat.Handler
	RateLimiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.AllowedOrigins()),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	r.GET("/ready", func(c *gin.Context) {
		report, ready := healthSvc.Ready(c.Request.Context())
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ready": ready, "checks": report})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	catalog.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(
		middleware.Identity(),
		middleware.RateLimit(chatRateLimit(deps.Config.RateLimit, deps.RateLimiter)),
	)
	registerMeRoutes(authed)
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.RegisterRoutes(authed)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(authed)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(authed)
	}

	return r
}

// chatRateLimit throttles chat turns per user. Other routes are not limited.
func chatRateLimit(cfg config.RateLimitConfig, limiter *middleware.RateLimiter) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.ChatPerMinute > 0 {
		burst := cfg.ChatBurst
		if burst <= 0 {
			burst = 1
		}
		rules[chatRateLimitGroup] = middleware.RateLimitRule{Rate: float64(cfg.ChatPerMinute) / 60, Burst: burst}
	}
	return middleware.RateLimitConfig{
		Rules:   rules,
		Limiter: limiter,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/chat/messages") {
				return chatRateLimitGroup
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
