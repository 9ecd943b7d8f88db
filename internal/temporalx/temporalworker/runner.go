package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
	"github.com/yungbote/glucobridge-backend/internal/temporalx"
	"github.com/yungbote/glucobridge-backend/internal/temporalx/profilerefresh"
)

type Runner struct {
	log      *logger.Logger
	tc       temporalsdkclient.Client
	cfg      temporalx.Config
	profiles profilerefresh.Refresher
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, profiles profilerefresh.Refresher) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if profiles == nil {
		return nil, fmt.Errorf("temporal worker missing profile service")
	}
	return &Runner{log: log, tc: tc, cfg: cfg, profiles: profiles}, nil
}

// Start polls the task queue until ctx is cancelled. Startup is retried for
// TEMPORAL_WORKER_START_MAX_WAIT_SECONDS since the server is often still booting.
func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	if r.cfg.AutoRegisterNamespace {
		if err := temporalx.EnsureNamespace(ctx, r.log, r.cfg); err != nil {
			r.log.Warn("Temporal namespace ensure failed; worker will retry on start", "namespace", r.cfg.Namespace, "error", err)
		}
	}

	maxWait := time.Duration(envutil.Int("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60)) * time.Second
	backoff := envutil.Millis("TEMPORAL_WORKER_START_BACKOFF_MS", 250*time.Millisecond)
	backoffMax := envutil.Millis("TEMPORAL_WORKER_START_BACKOFF_MAX_MS", 5*time.Second)
	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			return nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		missing := errors.As(startErr, &nfe)
		if missing && r.cfg.AutoRegisterNamespace {
			_ = temporalx.EnsureNamespace(ctx, r.log, r.cfg)
		}

		if maxWait <= 0 || time.Now().After(deadline) {
			if missing {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
			}
			return startErr
		}

		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", r.cfg.TaskQueue, "attempt", attempt, "error", startErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(temporalx.ClampBackoff(backoff, backoffMax, attempt)):
		}
	}
}

func (r *Runner) newWorker() worker.Worker {
	concurrency := max(envutil.Int("WORKER_CONCURRENCY", 4), 1)

	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})

	acts := &profilerefresh.Activities{Log: r.log, Profiles: r.profiles}
	w.RegisterWorkflowWithOptions(profilerefresh.Workflow, workflow.RegisterOptions{Name: profilerefresh.WorkflowName})
	w.RegisterActivityWithOptions(acts.RefreshChunk, activity.RegisterOptions{Name: profilerefresh.ActivityRefreshChunk})
	return w
}
