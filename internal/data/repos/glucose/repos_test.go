package glucose

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/glucobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	pkgerrors "github.com/yungbote/glucobridge-backend/internal/pkg/errors"
	"github.com/yungbote/glucobridge-backend/internal/pkg/pointers"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
)

func newDBC(t *testing.T) (dbctx.Context, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	return dbctx.Context{Ctx: context.Background(), Tx: tx}, db
}

func TestGlucoseLogRepoListsWindowOldestFirst(t *testing.T) {
	dbc, db := newDBC(t)
	repo := NewGlucoseLogRepo(db, testutil.Logger(t))

	user := uuid.New()
	other := uuid.New()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := []*types.GlucoseLog{
		{UserID: user, GlucoseLevel: 6.1, Context: types.ContextPostMeal, LoggedAt: base.Add(-time.Hour)},
		{UserID: user, GlucoseLevel: 5.2, Context: types.ContextFasting, LoggedAt: base.Add(-3 * time.Hour)},
		{UserID: user, GlucoseLevel: 9.9, Context: types.ContextRandom, LoggedAt: base.Add(time.Hour)},
		{UserID: other, GlucoseLevel: 7.0, Context: types.ContextRandom, LoggedAt: base.Add(-time.Hour)},
	}
	require.NoError(t, repo.Create(dbc, rows))

	got, err := repo.ListByUserBetween(dbc, user, base.Add(-24*time.Hour), base)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5.2, got[0].GlucoseLevel)
	assert.Equal(t, 6.1, got[1].GlucoseLevel)
	assert.True(t, got[0].IsBaseline())
}

func TestMealLogRepoPreloadsItems(t *testing.T) {
	dbc, db := newDBC(t)
	repo := NewMealLogRepo(db, testutil.Logger(t))

	user := uuid.New()
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	meal := &types.MealLog{
		UserID:   user,
		Name:     "Oatmeal",
		LoggedAt: at,
		Items: []types.MealLogItem{
			{DisplayName: "oats", Quantity: 1, CarbsG: 27, FibreG: 4, ProteinG: 5},
			{DisplayName: "banana", Quantity: 0.5, CarbsG: 27, FibreG: 3},
		},
	}
	require.NoError(t, repo.Create(dbc, meal))

	got, err := repo.ListByUserBetween(dbc, user, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Items, 2)
}

func TestMealReviewRepoReturnsCompletedNewestFirstWithLimit(t *testing.T) {
	dbc, db := newDBC(t)
	repo := NewMealReviewRepo(db, testutil.Logger(t))

	user := uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := types.ReviewStatusCompleted
		if i == 4 {
			status = types.ReviewStatusPending
		}
		require.NoError(t, repo.Create(dbc, &types.MealReview{
			UserID:        user,
			MealName:      fmt.Sprintf("meal %d", i),
			Tokens:        datatypes.JSONSlice[string]{"rice", "chicken"},
			PeakDelta:     float64(i),
			TimeToPeakMin: pointers.Float64(40),
			Status:        status,
			ReviewedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := repo.ListCompletedRecent(dbc, user, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "meal 3", got[0].MealName)
	assert.Equal(t, "meal 1", got[2].MealName)
	assert.Equal(t, []string{"rice", "chicken"}, []string(got[0].Tokens))
}

func TestUserCalibrationRepoGetOrCreateIsIdempotent(t *testing.T) {
	dbc, db := newDBC(t)
	repo := NewUserCalibrationRepo(db, testutil.Logger(t))

	user := uuid.New()
	seed := types.UserCalibration{BaselineGlucose: 5.5, CarbSensitivity: 0.5, AvgPeakTimeMin: 45, ExerciseEffect: 0.15, SleepPenalty: 0.2}

	first, created, err := repo.GetOrCreate(dbc, user, seed)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, 5.5, first.BaselineGlucose)

	first.Confidence = 0.7
	first.NObservations = 12
	require.NoError(t, repo.Upsert(dbc, first))

	second, created, err := repo.GetOrCreate(dbc, user, seed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 0.7, second.Confidence)
	assert.Equal(t, 12, second.NObservations)
}

func TestDailyMetricUpsertAndStaleProfiles(t *testing.T) {
	dbc, db := newDBC(t)
	metrics := NewDailyHealthMetricRepo(db, testutil.Logger(t))
	profiles := NewUserMetabolicProfileRepo(db, testutil.Logger(t))

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	fresh, stale, missing := uuid.New(), uuid.New(), uuid.New()
	for _, u := range []uuid.UUID{fresh, stale, missing} {
		require.NoError(t, metrics.Upsert(dbc, &types.DailyHealthMetric{UserID: u, Date: now, SleepHours: pointers.Float64(7)}))
	}
	require.NoError(t, metrics.Upsert(dbc, &types.DailyHealthMetric{UserID: fresh, Date: now.Add(2 * time.Hour), SleepHours: pointers.Float64(6)}))

	row, err := metrics.GetByUserAndDate(dbc, fresh, now)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 6.0, *row.SleepHours)

	require.NoError(t, profiles.Upsert(dbc, &types.UserMetabolicProfile{UserID: fresh, ComputedAt: now.Add(-time.Hour)}))
	require.NoError(t, profiles.Upsert(dbc, &types.UserMetabolicProfile{UserID: stale, ComputedAt: now.Add(-48 * time.Hour)}))

	ids, err := profiles.ListStaleUserIDs(dbc, now.AddDate(0, 0, -90), now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{stale, missing}, ids)
}

func TestMetabolicProfileUpsertOverwrites(t *testing.T) {
	dbc, db := newDBC(t)
	repo := NewUserMetabolicProfileRepo(db, testutil.Logger(t))

	user := uuid.New()
	row := &types.UserMetabolicProfile{
		UserID:        user,
		Sensitivities: datatypes.NewJSONType(types.MetabolicSensitivities{Sleep: types.SensitivityUnknown}),
	}
	require.NoError(t, repo.Upsert(dbc, row))

	next := &types.UserMetabolicProfile{
		UserID:           user,
		Sensitivities:    datatypes.NewJSONType(types.MetabolicSensitivities{Sleep: types.SensitivityHigh}),
		DataCoverageDays: 40,
	}
	require.NoError(t, repo.Upsert(dbc, next))

	got, err := repo.GetByUserID(dbc, user)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.SensitivityHigh, got.Sensitivities.Data().Sleep)
	assert.Equal(t, 40, got.DataCoverageDays)

	none, err := repo.GetByUserID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAnalysisCacheUpsertAndExpire(t *testing.T) {
	dbc, db := newDBC(t)
	repo := NewMealAnalysisCacheRepo(db, testutil.Logger(t))

	user := uuid.New()
	old := time.Now().UTC().Add(-5 * time.Hour)
	require.NoError(t, repo.Upsert(dbc, &types.MealAnalysisCache{UserID: user, InputHash: "h1", Result: datatypes.JSON(`{"v":1}`), CreatedAt: old}))
	require.NoError(t, repo.Upsert(dbc, &types.MealAnalysisCache{UserID: user, InputHash: "h1", Result: datatypes.JSON(`{"v":2}`)}))

	got, err := repo.Get(dbc, user, "h1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"v":2}`, string(got.Result))

	require.NoError(t, repo.Upsert(dbc, &types.MealAnalysisCache{UserID: user, InputHash: "h2", Result: datatypes.JSON(`{}`), CreatedAt: old}))
	n, err := repo.DeleteOlderThan(dbc, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMapErrorClassifies(t *testing.T) {
	assert.True(t, errors.Is(MapError("op", gorm.ErrRecordNotFound), pkgerrors.ErrNotFound))
	assert.True(t, errors.Is(MapError("op", errors.New("UNIQUE constraint failed: user_calibration.user_id")), pkgerrors.ErrConflict))
	assert.True(t, errors.Is(MapError("op", context.DeadlineExceeded), pkgerrors.ErrRetryable))
	assert.Nil(t, MapError("op", nil))
}
