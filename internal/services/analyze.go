package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	rediscache "github.com/yungbote/glucobridge-backend/internal/clients/redis"
	repos "github.com/yungbote/glucobridge-backend/internal/data/repos/glucose"
	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction/explain"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

const tracerName = "glucose"

// AnalyzeResponse is the pre-meal check payload. It is cached whole, driver text included.
type AnalyzeResponse struct {
	Drivers        []explain.Driver        `json:"drivers"`
	AdjustmentTips []prediction.Tip        `json:"adjustment_tips"`
	Debug          prediction.Debug        `json:"debug"`
	Curve          []prediction.CurvePoint `json:"curve"`
	PeakDelta      float64                 `json:"peak_delta"`
	PeakTimeMin    float64                 `json:"peak_time_min"`

	// Source is where the response came from: "redis", "db" or "computed".
	Source string `json:"-"`
}

type AnalyzeService interface {
	Analyze(ctx context.Context, userID uuid.UUID, draft prediction.MealDraft) (*AnalyzeResponse, error)
}

type AnalyzeDeps struct {
	Engine      *prediction.Engine
	Explainer   ExplanationService
	GlucoseLogs repos.GlucoseLogRepo
	Meals       repos.MealLogRepo
	Reviews     repos.MealReviewRepo
	Activities  repos.ActivityLogRepo
	Daily       repos.DailyHealthMetricRepo
	Calibration repos.UserCalibrationRepo
	Cache       repos.MealAnalysisCacheRepo
	// Front is optional.
	Front    rediscache.AnalysisCache
	CacheTTL time.Duration
	Metrics  *observability.Metrics
	Now      func() time.Time
}

type analyzeService struct {
	log  *logger.Logger
	deps AnalyzeDeps
}

func NewAnalyzeService(log *logger.Logger, deps AnalyzeDeps) AnalyzeService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 2 * time.Hour
	}
	return &analyzeService{log: log.With("service", "AnalyzeService"), deps: deps}
}

func (s *analyzeService) Analyze(ctx context.Context, userID uuid.UUID, draft prediction.MealDraft) (*AnalyzeResponse, error) {
	if userID == uuid.Nil {
		return nil, types.ErrMissingUser
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analyze")
	defer span.End()

	now := s.deps.Now()
	d := draft.Normalize(now)
	key := CacheKey(userID, d)
	span.SetAttributes(attribute.Int("meal.items", len(d.Items)))

	if resp := s.readCache(ctx, userID, key, now); resp != nil {
		span.SetAttributes(attribute.String("analyze.source", resp.Source))
		return resp, nil
	}

	start := time.Now()
	in := s.loadInput(ctx, userID, d)
	s.deps.Metrics.ObserveAnalyzeStage("fetch", time.Since(start))

	start = time.Now()
	res := s.deps.Engine.Analyze(in)
	s.deps.Metrics.ObserveAnalyzeStage("compute", time.Since(start))

	start = time.Now()
	drivers := s.deps.Explainer.Drivers(ctx, explain.Request{
		Codes:      res.Codes,
		MealName:   d.Name,
		TimeBucket: res.Debug.TimeBucket,
	})
	s.deps.Metrics.ObserveAnalyzeStage("explain", time.Since(start))

	resp := &AnalyzeResponse{
		Drivers:        drivers,
		AdjustmentTips: res.Tips,
		Debug:          res.Debug,
		Curve:          res.Curve,
		PeakDelta:      res.PeakDelta,
		PeakTimeMin:    res.PeakTimeMin,
		Source:         "computed",
	}
	span.SetAttributes(
		attribute.String("analyze.source", resp.Source),
		attribute.String("analyze.data_quality", string(res.Debug.Personalization.DataQuality)),
		attribute.Int("analyze.drivers", len(drivers)),
	)
	s.writeCache(ctx, userID, key, resp, now)
	return resp, nil
}

// CacheKey fingerprints a normalized draft: user, meal name, the logged hour and the sorted
// item nutrient summary. Item order does not matter.
func CacheKey(userID uuid.UUID, d prediction.MealDraft) string {
	items := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		q := 1.0
		if it.Quantity != nil {
			q = *it.Quantity
		}
		n := it.Nutrients
		items = append(items, fmt.Sprintf("%s|%g|%s|%g|%g|%g|%g|%g",
			strings.ToLower(it.DisplayName), q, strings.ToLower(it.Unit),
			n.Calories, n.CarbsG, n.ProteinG, n.FatG, n.FibreG))
	}
	sort.Strings(items)
	payload, _ := json.Marshal(struct {
		UserID string   `json:"user_id"`
		Name   string   `json:"name"`
		Hour   string   `json:"hour"`
		Items  []string `json:"items"`
	}{
		UserID: userID.String(),
		Name:   strings.ToLower(d.Name),
		Hour:   d.LoggedAt.UTC().Truncate(time.Hour).Format(time.RFC3339),
		Items:  items,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *analyzeService) readCache(ctx context.Context, userID uuid.UUID, key string, now time.Time) *AnalyzeResponse {
	if s.deps.Front != nil {
		raw, ok, err := s.deps.Front.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("redis analysis cache read failed", "error", err)
		case ok:
			var resp AnalyzeResponse
			if err := json.Unmarshal(raw, &resp); err == nil {
				s.deps.Metrics.IncAnalyzeCache("redis", "hit")
				resp.Source = "redis"
				return &resp
			}
			s.log.Warn("redis analysis cache entry unreadable", "key", key)
		default:
			s.deps.Metrics.IncAnalyzeCache("redis", "miss")
		}
	}
	if s.deps.Cache == nil {
		return nil
	}
	row, err := s.deps.Cache.Get(dbctx.New(ctx), userID, key)
	if err != nil {
		s.log.Warn("analysis cache read failed", "user_id", userID, "error", err)
		return nil
	}
	if row == nil || now.Sub(row.CreatedAt) >= s.deps.CacheTTL {
		s.deps.Metrics.IncAnalyzeCache("db", "miss")
		return nil
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(row.Result, &resp); err != nil {
		s.log.Warn("analysis cache row unreadable; recomputing", "user_id", userID, "error", err)
		return nil
	}
	s.deps.Metrics.IncAnalyzeCache("db", "hit")
	if s.deps.Front != nil {
		if ttl := s.deps.CacheTTL - now.Sub(row.CreatedAt); ttl > 0 {
			_ = s.deps.Front.Set(ctx, key, row.Result, ttl)
		}
	}
	resp.Source = "db"
	return &resp
}

func (s *analyzeService) writeCache(ctx context.Context, userID uuid.UUID, key string, resp *AnalyzeResponse, now time.Time) {
	raw, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn("analysis response not serializable", "error", err)
		return
	}
	if s.deps.Cache != nil {
		row := &types.MealAnalysisCache{
			UserID:    userID,
			InputHash: key,
			Result:    datatypes.JSON(raw),
			CreatedAt: now.UTC(),
		}
		if err := s.deps.Cache.Upsert(dbctx.New(ctx), row); err != nil {
			s.log.Warn("analysis cache write failed", "user_id", userID, "error", err)
		}
	}
	if s.deps.Front != nil {
		if err := s.deps.Front.Set(ctx, key, raw, s.deps.CacheTTL); err != nil {
			s.log.Warn("redis analysis cache write failed", "error", err)
		}
	}
}

// loadInput fetches every history slice concurrently. A failed read leaves its slice empty
// and the engine falls back to defaults for whatever it needed.
func (s *analyzeService) loadInput(ctx context.Context, userID uuid.UUID, d prediction.MealDraft) prediction.Input {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analyze.fetch")
	defer span.End()

	dbc := dbctx.New(ctx)
	from := s.deps.Engine.HistoryFrom(d.LoggedAt)
	to := d.LoggedAt
	in := prediction.Input{Draft: d}

	var g errgroup.Group
	g.Go(func() error {
		rows, err := s.deps.GlucoseLogs.ListByUserBetween(dbc, userID, from, to)
		if err != nil {
			return fmt.Errorf("glucose logs: %w", err)
		}
		in.GlucoseLogs = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.deps.Meals.ListByUserBetween(dbc, userID, from, to)
		if err != nil {
			return fmt.Errorf("meals: %w", err)
		}
		in.Meals = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.deps.Activities.ListByUserBetween(dbc, userID, from, to)
		if err != nil {
			return fmt.Errorf("activities: %w", err)
		}
		in.Activities = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.deps.Reviews.ListCompletedRecent(dbc, userID, s.deps.Engine.ReviewLimit())
		if err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		in.Reviews = rows
		return nil
	})
	g.Go(func() error {
		hours, err := s.sleepFor(dbc, userID, d.LoggedAt)
		if err != nil {
			return fmt.Errorf("sleep: %w", err)
		}
		in.SleepHours = hours
		return nil
	})
	g.Go(func() error {
		row, _, err := s.deps.Calibration.GetOrCreate(dbc, userID, s.deps.Engine.Blender().SeedRow())
		if err != nil {
			return fmt.Errorf("calibration: %w", err)
		}
		in.Calibration = row
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "history fetch degraded")
		s.log.Warn("analyze history fetch degraded; continuing with partial data", "user_id", userID, "error", err)
	}
	span.SetAttributes(
		attribute.Int("history.glucose_logs", len(in.GlucoseLogs)),
		attribute.Int("history.meals", len(in.Meals)),
		attribute.Int("history.reviews", len(in.Reviews)),
	)
	return in
}

// sleepFor reads the meal day's sleep and falls back to the previous day.
func (s *analyzeService) sleepFor(dbc dbctx.Context, userID uuid.UUID, at time.Time) (*float64, error) {
	for _, day := range []time.Time{at, at.AddDate(0, 0, -1)} {
		row, err := s.deps.Daily.GetByUserAndDate(dbc, userID, day)
		if err != nil {
			return nil, err
		}
		if row != nil && row.SleepHours != nil {
			return row.SleepHours, nil
		}
	}
	return nil, nil
}

