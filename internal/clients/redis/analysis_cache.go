package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

// AnalysisCache is the fast tier in front of the meal_analysis_cache table. Values are the
// serialized analyze response.
type AnalysisCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type analysisCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewAnalysisCache connects using REDIS_ADDR and pings once.
func NewAnalysisCache(log *logger.Logger) (AnalysisCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewAnalysisCacheWithClient(log, rdb, envutil.String("REDIS_KEY_PREFIX", "glucose:analysis:")), nil
}

// NewAnalysisCacheWithClient wraps an existing client; used by tests and shared pools.
func NewAnalysisCacheWithClient(log *logger.Logger, rdb goredis.UniversalClient, prefix string) AnalysisCache {
	if strings.TrimSpace(prefix) == "" {
		prefix = "glucose:analysis:"
	}
	return &analysisCache{
		log:    log.With("client", "RedisAnalysisCache"),
		rdb:    rdb,
		prefix: prefix,
	}
}

func (c *analysisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("redis analysis cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *analysisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis analysis cache not initialized")
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *analysisCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
