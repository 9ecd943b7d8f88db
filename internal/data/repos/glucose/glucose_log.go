package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type GlucoseLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.GlucoseLog) error
	ListByUserBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.GlucoseLog, error)
}

type glucoseLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGlucoseLogRepo(db *gorm.DB, baseLog *logger.Logger) GlucoseLogRepo {
	return &glucoseLogRepo{db: db, log: baseLog.With("repo", "GlucoseLogRepo")}
}

func (r *glucoseLogRepo) Create(dbc dbctx.Context, rows []*types.GlucoseLog) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.LoggedAt = row.LoggedAt.UTC()
	}
	return MapError("glucose_log.create", dbc.Conn(r.db).Create(&rows).Error)
}

// ListByUserBetween returns readings with from <= logged_at < to, oldest first.
func (r *glucoseLogRepo) ListByUserBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.GlucoseLog, error) {
	out := []*types.GlucoseLog{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, from.UTC(), to.UTC()).
		Order("logged_at ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("glucose_log.list", err)
	}
	return out, nil
}
