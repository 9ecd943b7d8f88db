package glucose

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type MealAnalysisCacheRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID, inputHash string) (*types.MealAnalysisCache, error)
	Upsert(dbc dbctx.Context, row *types.MealAnalysisCache) error
	DeleteOlderThan(dbc dbctx.Context, before time.Time) (int64, error)
}

type mealAnalysisCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealAnalysisCacheRepo(db *gorm.DB, baseLog *logger.Logger) MealAnalysisCacheRepo {
	return &mealAnalysisCacheRepo{db: db, log: baseLog.With("repo", "MealAnalysisCacheRepo")}
}

func (r *mealAnalysisCacheRepo) Get(dbc dbctx.Context, userID uuid.UUID, inputHash string) (*types.MealAnalysisCache, error) {
	var row types.MealAnalysisCache
	err := dbc.Conn(r.db).
		Where("user_id = ? AND input_hash = ?", userID, inputHash).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, MapError("meal_analysis_cache.get", err)
	}
	return &row, nil
}

// Upsert overwrites the cached result for (user_id, input_hash); last writer wins.
func (r *mealAnalysisCacheRepo) Upsert(dbc dbctx.Context, row *types.MealAnalysisCache) error {
	if row == nil || row.UserID == uuid.Nil || row.InputHash == "" {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "input_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"result", "created_at"}),
		}).
		Create(row).Error
	return MapError("meal_analysis_cache.upsert", err)
}

func (r *mealAnalysisCacheRepo) DeleteOlderThan(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.Conn(r.db).
		Where("created_at < ?", before.UTC()).
		Delete(&types.MealAnalysisCache{})
	if res.Error != nil {
		return 0, MapError("meal_analysis_cache.delete_old", res.Error)
	}
	return res.RowsAffected, nil
}
