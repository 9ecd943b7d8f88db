package glucose

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type MealReviewRepo interface {
	Create(dbc dbctx.Context, row *types.MealReview) error
	ListCompletedRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.MealReview, error)
}

type mealReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealReviewRepo(db *gorm.DB, baseLog *logger.Logger) MealReviewRepo {
	return &mealReviewRepo{db: db, log: baseLog.With("repo", "MealReviewRepo")}
}

func (r *mealReviewRepo) Create(dbc dbctx.Context, row *types.MealReview) error {
	if row == nil {
		return nil
	}
	row.ReviewedAt = row.ReviewedAt.UTC()
	return MapError("meal_review.create", dbc.Conn(r.db).Create(row).Error)
}

// ListCompletedRecent returns at most limit completed reviews, newest first.
func (r *mealReviewRepo) ListCompletedRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.MealReview, error) {
	out := []*types.MealReview{}
	if userID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND status = ?", userID, types.ReviewStatusCompleted).
		Order("reviewed_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, MapError("meal_review.list_completed", err)
	}
	return out, nil
}
