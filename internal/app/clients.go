package app

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/glucobridge-backend/internal/clients/redis"
	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/gemini"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
	"github.com/yungbote/glucobridge-backend/internal/platform/openai"
	"github.com/yungbote/glucobridge-backend/internal/temporalx"
)

// Clients holds the optional outbound integrations. Any field may be nil.
type Clients struct {
	AnalysisCache redis.AnalysisCache
	OpenAI        openai.Client
	Gemini        gemini.Client
	Temporal      temporalsdkclient.Client
	TemporalCfg   temporalx.Config
}

func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if envutil.String("REDIS_ADDR", "") != "" {
		c, err := redis.NewAnalysisCache(log)
		if err != nil {
			log.Warn("Redis analysis cache unavailable; using database cache only", "error", err)
		} else {
			out.AnalysisCache = c
		}
	}

	if cfg := openai.ConfigFromEnv(); cfg.APIKey != "" {
		c, err := openai.NewClient(log, cfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
	}

	if cfg := gemini.ConfigFromEnv(); cfg.APIKey != "" {
		c, err := gemini.NewClient(ctx, log, cfg)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init gemini client: %w", err)
		}
		out.Gemini = c
	}

	out.TemporalCfg = temporalx.LoadConfig()
	tc, err := temporalx.NewClient(log, out.TemporalCfg)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init temporal client: %w", err)
	}
	out.Temporal = tc
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.AnalysisCache != nil {
		_ = c.AnalysisCache.Close()
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
}
