package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type MealLogRepo interface {
	Create(dbc dbctx.Context, meal *types.MealLog) error
	ListByUserBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.MealLog, error)
}

type mealLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealLogRepo(db *gorm.DB, baseLog *logger.Logger) MealLogRepo {
	return &mealLogRepo{db: db, log: baseLog.With("repo", "MealLogRepo")}
}

func (r *mealLogRepo) Create(dbc dbctx.Context, meal *types.MealLog) error {
	if meal == nil {
		return nil
	}
	meal.LoggedAt = meal.LoggedAt.UTC()
	return MapError("meal_log.create", dbc.Conn(r.db).Create(meal).Error)
}

// ListByUserBetween returns meals (with items) logged in [from, to), oldest first.
func (r *mealLogRepo) ListByUserBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.MealLog, error) {
	out := []*types.MealLog{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Preload("Items").
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, from.UTC(), to.UTC()).
		Order("logged_at ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("meal_log.list", err)
	}
	return out, nil
}
