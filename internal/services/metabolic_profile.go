package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	repos "github.com/yungbote/glucobridge-backend/internal/data/repos/glucose"
	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/modules/metabolic"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

// Refresh triggers, used as a metrics label.
const (
	TriggerAPI    = "api"
	TriggerBatch  = "batch"
	TriggerWorker = "worker"
)

type ProfileRefreshResult struct {
	Profile          *types.UserMetabolicProfile `json:"profile"`
	Cached           bool                        `json:"cached"`
	HoursSinceUpdate *float64                    `json:"hours_since_update,omitempty"`
}

type BatchResult struct {
	Refreshed int `json:"refreshed"`
	Cached    int `json:"cached"`
	Failed    int `json:"failed"`
}

type MetabolicProfileService interface {
	// Refresh serves the stored profile while it is fresh and recomputes otherwise.
	Refresh(ctx context.Context, userID uuid.UUID, force bool) (*ProfileRefreshResult, error)
	Get(ctx context.Context, userID uuid.UUID) (*types.UserMetabolicProfile, error)
	StaleUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	RefreshBatch(ctx context.Context, userIDs []uuid.UUID, force bool, trigger string) BatchResult
}

type metabolicProfileService struct {
	log         *logger.Logger
	builder     *metabolic.Builder
	daily       repos.DailyHealthMetricRepo
	profiles    repos.UserMetabolicProfileRepo
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
}

func NewMetabolicProfileService(
	log *logger.Logger,
	builder *metabolic.Builder,
	daily repos.DailyHealthMetricRepo,
	profiles repos.UserMetabolicProfileRepo,
	metrics *observability.Metrics,
	concurrency int,
) MetabolicProfileService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &metabolicProfileService{
		log:         log.With("service", "MetabolicProfileService"),
		builder:     builder,
		daily:       daily,
		profiles:    profiles,
		metrics:     metrics,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (s *metabolicProfileService) Get(ctx context.Context, userID uuid.UUID) (*types.UserMetabolicProfile, error) {
	if userID == uuid.Nil {
		return nil, types.ErrMissingUser
	}
	return s.profiles.GetByUserID(dbctx.New(ctx), userID)
}

func (s *metabolicProfileService) Refresh(ctx context.Context, userID uuid.UUID, force bool) (*ProfileRefreshResult, error) {
	return s.refresh(ctx, userID, force, TriggerAPI)
}

func (s *metabolicProfileService) refresh(ctx context.Context, userID uuid.UUID, force bool, trigger string) (*ProfileRefreshResult, error) {
	if userID == uuid.Nil {
		return nil, types.ErrMissingUser
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "metabolic_profile.refresh")
	defer span.End()
	span.SetAttributes(attribute.Bool("refresh.force", force), attribute.String("refresh.trigger", trigger))

	dbc := dbctx.New(ctx)
	now := s.now()

	existing, err := s.profiles.GetByUserID(dbc, userID)
	if err != nil {
		s.log.Warn("stored metabolic profile unreadable; recomputing", "user_id", userID, "error", err)
		existing = nil
	}
	decision, hours := s.builder.Freshness(existing, now, force)
	if decision == metabolic.DecisionServeCached {
		s.metrics.IncProfileRefresh(trigger, "cached")
		span.SetAttributes(attribute.Bool("refresh.cached", true))
		return &ProfileRefreshResult{Profile: existing, Cached: true, HoursSinceUpdate: hours}, nil
	}

	rows, err := s.daily.ListByUserSince(dbc, userID, s.builder.WindowStart(now))
	if err != nil {
		s.metrics.IncProfileRefresh(trigger, "error")
		span.RecordError(err)
		return nil, fmt.Errorf("load daily metrics: %w", err)
	}
	profile := s.builder.Build(userID, rows, now)
	if err := s.profiles.Upsert(dbc, profile); err != nil {
		s.log.Warn("metabolic profile write failed; returning computed profile", "user_id", userID, "error", err)
	}
	if existing != nil {
		// the upsert keeps the stored primary key
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	}
	s.metrics.IncProfileRefresh(trigger, "computed")
	span.SetAttributes(
		attribute.Bool("refresh.cached", false),
		attribute.Int("profile.coverage_days", profile.DataCoverageDays),
	)
	return &ProfileRefreshResult{Profile: profile, Cached: false, HoursSinceUpdate: hours}, nil
}

// StaleUserIDs lists users with recent daily metrics whose profile is missing or older than
// the freshness window.
func (s *metabolicProfileService) StaleUserIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	now := s.now()
	cfg := s.builder.Config()
	return s.profiles.ListStaleUserIDs(dbctx.New(ctx), s.builder.WindowStart(now), now.Add(-cfg.FreshFor), limit)
}

// RefreshBatch refreshes users with bounded concurrency. One failing user never stops the rest.
func (s *metabolicProfileService) RefreshBatch(ctx context.Context, userIDs []uuid.UUID, force bool, trigger string) BatchResult {
	var (
		mu  sync.Mutex
		out BatchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := s.refresh(gctx, id, force, trigger)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				out.Failed++
				s.log.Warn("metabolic profile refresh failed", "user_id", id, "error", err)
			case res.Cached:
				out.Cached++
			default:
				out.Refreshed++
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
