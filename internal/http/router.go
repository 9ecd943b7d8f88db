package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/glucobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/glucobridge-backend/internal/http/middleware"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins string
	Metrics     *observability.Metrics

	// AuthMiddleware is nil when no JWT secret is configured.
	AuthMiddleware *httpMW.AuthMiddleware

	MealHandler             *httpH.MealHandler
	MetabolicProfileHandler *httpH.MetabolicProfileHandler
	HealthHandler           *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Meals
		if cfg.MealHandler != nil {
			api.POST("/meals/analyze", cfg.MealHandler.Analyze)
		}

		// Metabolic profile
		if cfg.MetabolicProfileHandler != nil {
			api.POST("/metabolic-profile/refresh", cfg.MetabolicProfileHandler.Refresh)
			api.GET("/metabolic-profile/:user_id", cfg.MetabolicProfileHandler.Get)
		}
	}

	return r
}
