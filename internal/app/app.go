package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/glucobridge-backend/internal/data/db"
	httpx "github.com/yungbote/glucobridge-backend/internal/http"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
	"github.com/yungbote/glucobridge-backend/internal/services"
	"github.com/yungbote/glucobridge-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpx.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	store, err := db.Open(log, cfg.DBDriver, cfg.SQLitePath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := store.DB()

	clientSet, err := wireClients(ctx, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	metrics := observability.Current()
	repoSet := wireRepos(theDB, log)
	serviceSet := wireServices(log, cfg, repoSet, clientSet, metrics)
	handlerSet := wireHandlers(log, theDB, serviceSet)
	middleware := wireMiddleware(log, cfg)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       wireServer(log, cfg, handlerSet, middleware, metrics),
		Cfg:          cfg,
		Repos:        repoSet,
		Clients:      clientSet,
		Services:     serviceSet,
		otelShutdown: shutdown,
	}, nil
}

// Start launches the background refresh loop and, when Temporal is configured, the
// workflow worker.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.Temporal != nil && envutil.Bool("TEMPORAL_WORKER_ENABLED", true) {
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Clients.TemporalCfg, a.Services.MetabolicProfile)
		if err != nil {
			return fmt.Errorf("temporal worker: %w", err)
		}
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("temporal worker: %w", err)
		}
	}
	if a.Cfg.WorkerEnabled && a.Services.ProfileWorker != nil {
		a.Services.ProfileWorker.Start(ctx)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "address", addr)
	return a.Server.Run(ctx, addr)
}

// RefreshProfiles refreshes the given users, or every stale user when none are given,
// in process.
func (a *App) RefreshProfiles(ctx context.Context, userIDs []uuid.UUID, force bool) (services.BatchResult, error) {
	profiles := a.Services.MetabolicProfile
	if len(userIDs) == 0 {
		ids, err := profiles.StaleUserIDs(ctx, envutil.Int("PROFILE_REFRESH_BATCH", 100))
		if err != nil {
			return services.BatchResult{}, fmt.Errorf("list stale users: %w", err)
		}
		userIDs = ids
	}
	res := profiles.RefreshBatch(ctx, userIDs, force, services.TriggerBatch)
	a.Log.Info("Profile refresh finished",
		"users", len(userIDs),
		"refreshed", res.Refreshed,
		"cached", res.Cached,
		"failed", res.Failed,
	)
	return res, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.ProfileWorker != nil {
		a.Services.ProfileWorker.Wait()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
