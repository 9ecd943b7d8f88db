package app

import (
	httpx "github.com/yungbote/glucobridge-backend/internal/http"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *httpx.Server {
	return httpx.NewServer(httpx.RouterConfig{
		Log:                     log,
		ServiceName:             cfg.ServiceName,
		CORSOrigins:             cfg.CORSOrigins,
		Metrics:                 metrics,
		AuthMiddleware:          middleware.Auth,
		MealHandler:             handlers.Meal,
		MetabolicProfileHandler: handlers.MetabolicProfile,
		HealthHandler:           handlers.Health,
	})
}
