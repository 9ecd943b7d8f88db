package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type ActivityLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.ActivityLog) error
	ListByUserBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) Create(dbc dbctx.Context, rows []*types.ActivityLog) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.StartedAt = row.StartedAt.UTC()
	}
	return MapError("activity_log.create", dbc.Conn(r.db).Create(&rows).Error)
}

// ListByUserBetween returns activities that started in [from, to), oldest first.
func (r *activityLogRepo) ListByUserBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.ActivityLog, error) {
	out := []*types.ActivityLog{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND started_at >= ? AND started_at < ?", userID, from.UTC(), to.UTC()).
		Order("started_at ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("activity_log.list", err)
	}
	return out, nil
}
