package app

import (
	httpMW "github.com/yungbote/glucobridge-backend/internal/http/middleware"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type Middleware struct {
	// Auth is nil when JWT_SECRET_KEY is unset.
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set; API routes are unauthenticated")
		return Middleware{}
	}
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey)}
}
