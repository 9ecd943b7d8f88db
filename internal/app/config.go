package app

import (
	"time"

	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
)

type Config struct {
	Port        string
	LogMode     string
	ServiceName string
	Environment string
	Version     string

	DBDriver   string
	SQLitePath string

	JWTSecretKey string
	CORSOrigins  string

	AnalyzeCacheTTL time.Duration
	ExplainTimeout  time.Duration

	ProfileRefreshConcurrency int
	WorkerEnabled             bool
}

func LoadConfig() Config {
	return Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "glucobridge"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),

		DBDriver:   envutil.String("DB_DRIVER", "postgres"),
		SQLitePath: envutil.String("SQLITE_PATH", "file:glucose.db?_foreign_keys=on"),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		CORSOrigins:  envutil.String("CORS_ORIGINS", ""),

		AnalyzeCacheTTL: envutil.Minutes("ANALYZE_CACHE_TTL_MINUTES", 2*time.Hour),
		ExplainTimeout:  envutil.Millis("EXPLAIN_TIMEOUT_MS", 4*time.Second),

		ProfileRefreshConcurrency: max(envutil.Int("PROFILE_REFRESH_CONCURRENCY", 4), 1),
		WorkerEnabled:             envutil.Bool("PROFILE_REFRESH_WORKER_ENABLED", true),
	}
}
