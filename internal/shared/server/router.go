package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coverage-backend/internal/assessments"
	"coverage-backend/internal/services/health"
	"coverage-backend/internal/shared/config"
	"coverage-backend/internal/shared/metrics"
	"coverage-backend/internal/shared/server/middleware"
	"coverage-backend/internal/shared/server/respond"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupAnswers = "ANSWERS"

	healthPath    = "/api/v1/health"
	questionsPath = "/api/v1/questions"
	metricsPath   = "/metrics"
)

// RouterDeps contains handlers wired into the router.
type RouterDeps struct {
	Config            config.Config
	AssessmentHandler *assessments.Handler
	Health            *health.Service
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(healthPath, questionsPath, metricsPath),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	registerMeRoutes(api)
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rps := deps.Config.RateLimitRPS
	burst := deps.Config.RateLimitBurst
	return middleware.RateLimitConfig{
		Limiter:      deps.RateLimiter,
		DefaultGroup: rateGroupDefault,
		GroupFor: func(c *gin.Context) string {
			switch c.FullPath() {
			case healthPath, metricsPath:
				return "NONE"
			case "/api/v1/assessments/:id/answers", "/api/v1/assessments/:id/back":
				return rateGroupAnswers
			}
			return rateGroupDefault
		},
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDefault: {Rate: rps, Burst: burst},
			rateGroupAnswers: {Rate: rps * 2, Burst: burst * 2},
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
