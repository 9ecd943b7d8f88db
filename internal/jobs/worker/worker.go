package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
	"github.com/yungbote/glucobridge-backend/internal/services"
)

// Refresher is the slice of MetabolicProfileService the worker drives.
type Refresher interface {
	StaleUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	RefreshBatch(ctx context.Context, userIDs []uuid.UUID, force bool, trigger string) services.BatchResult
}

// Dispatcher hands a batch to an external orchestrator instead of refreshing in process.
type Dispatcher interface {
	DispatchRefresh(ctx context.Context, userIDs []uuid.UUID, force bool) error
}

// CachePruner drops analysis cache rows past their TTL.
type CachePruner interface {
	DeleteOlderThan(dbc dbctx.Context, before time.Time) (int64, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	CacheTTL  time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Interval:  envutil.Minutes("PROFILE_REFRESH_INTERVAL_MINUTES", time.Hour),
		BatchSize: envutil.Int("PROFILE_REFRESH_BATCH", 100),
		CacheTTL:  envutil.Minutes("ANALYZE_CACHE_TTL_MINUTES", 2*time.Hour),
	}
}

type Worker struct {
	log        *logger.Logger
	cfg        Config
	refresher  Refresher
	dispatcher Dispatcher
	pruner     CachePruner

	wg sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, refresher Refresher, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Worker{
		log:       baseLog.With("component", "ProfileRefreshWorker"),
		cfg:       cfg,
		refresher: refresher,
	}
}

func (w *Worker) WithDispatcher(d Dispatcher) *Worker {
	w.dispatcher = d
	return w
}

func (w *Worker) WithCachePruner(p CachePruner) *Worker {
	w.pruner = p
	return w
}

// Start runs one pass immediately and then every Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting profile refresh worker", "interval", w.cfg.Interval.String(), "batch", w.cfg.BatchSize)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Wait blocks until the loop started by Start has returned.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Profile refresh worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Profile refresh pass panicked", "panic", r)
		}
	}()
	if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.log.Warn("Profile refresh pass failed", "error", err)
	}
}

// RunOnce refreshes (or dispatches) one batch of stale users and prunes the analysis cache.
func (w *Worker) RunOnce(ctx context.Context) (services.BatchResult, error) {
	var res services.BatchResult
	if w.pruner != nil && w.cfg.CacheTTL > 0 {
		n, err := w.pruner.DeleteOlderThan(dbctx.New(ctx), time.Now().Add(-w.cfg.CacheTTL))
		if err != nil {
			w.log.Warn("Analysis cache prune failed", "error", err)
		} else if n > 0 {
			w.log.Debug("Pruned analysis cache", "rows", n)
		}
	}

	ids, err := w.refresher.StaleUserIDs(ctx, w.cfg.BatchSize)
	if err != nil {
		return res, fmt.Errorf("list stale profiles: %w", err)
	}
	if len(ids) == 0 {
		return res, nil
	}
	if w.dispatcher != nil {
		err := w.dispatcher.DispatchRefresh(ctx, ids, false)
		if err == nil {
			w.log.Info("Dispatched profile refresh batch", "users", len(ids))
			return res, nil
		}
		w.log.Warn("Dispatch failed; refreshing in process", "users", len(ids), "error", err)
	}
	res = w.refresher.RefreshBatch(ctx, ids, false, services.TriggerWorker)
	w.log.Info("Profile refresh pass done",
		"users", len(ids),
		"refreshed", res.Refreshed,
		"cached", res.Cached,
		"failed", res.Failed,
	)
	return res, nil
}
