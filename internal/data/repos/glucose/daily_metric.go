package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type DailyHealthMetricRepo interface {
	Upsert(dbc dbctx.Context, row *types.DailyHealthMetric) error
	GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) (*types.DailyHealthMetric, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.DailyHealthMetric, error)
}

type dailyHealthMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyHealthMetricRepo(db *gorm.DB, baseLog *logger.Logger) DailyHealthMetricRepo {
	return &dailyHealthMetricRepo{db: db, log: baseLog.With("repo", "DailyHealthMetricRepo")}
}

// DayStart truncates t to midnight UTC, the key used for daily rows.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *dailyHealthMetricRepo) Upsert(dbc dbctx.Context, row *types.DailyHealthMetric) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	row.Date = DayStart(row.Date)
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"resting_hr",
				"steps",
				"sleep_hours",
				"hrv_ms",
				"metabolic_score",
				"updated_at",
			}),
		}).
		Create(row).Error
	return MapError("daily_health_metric.upsert", err)
}

func (r *dailyHealthMetricRepo) GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) (*types.DailyHealthMetric, error) {
	var row types.DailyHealthMetric
	err := dbc.Conn(r.db).
		Where("user_id = ? AND date = ?", userID, DayStart(day)).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, MapError("daily_health_metric.get", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListByUserSince returns rows dated on or after since, oldest first.
func (r *dailyHealthMetricRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.DailyHealthMetric, error) {
	out := []*types.DailyHealthMetric{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND date >= ?", userID, DayStart(since)).
		Order("date ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("daily_health_metric.list", err)
	}
	return out, nil
}
