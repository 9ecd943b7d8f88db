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

type UserMetabolicProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserMetabolicProfile, error)
	Upsert(dbc dbctx.Context, row *types.UserMetabolicProfile) error
	// ListStaleUserIDs returns users with daily metrics since activeSince whose profile is
	// missing or was computed before staleBefore.
	ListStaleUserIDs(dbc dbctx.Context, activeSince, staleBefore time.Time, limit int) ([]uuid.UUID, error)
}

type userMetabolicProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserMetabolicProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserMetabolicProfileRepo {
	return &userMetabolicProfileRepo{db: db, log: baseLog.With("repo", "UserMetabolicProfileRepo")}
}

func (r *userMetabolicProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserMetabolicProfile, error) {
	var row types.UserMetabolicProfile
	err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, MapError("user_metabolic_profile.get", err)
	}
	return &row, nil
}

func (r *userMetabolicProfileRepo) Upsert(dbc dbctx.Context, row *types.UserMetabolicProfile) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.ComputedAt.IsZero() {
		row.ComputedAt = now
	}
	row.UpdatedAt = now
	err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"baselines",
				"sensitivities",
				"patterns",
				"data_coverage_days",
				"valid_days_for_sensitivity",
				"computed_at",
				"updated_at",
			}),
		}).
		Create(row).Error
	return MapError("user_metabolic_profile.upsert", err)
}

func (r *userMetabolicProfileRepo) ListStaleUserIDs(dbc dbctx.Context, activeSince, staleBefore time.Time, limit int) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	if limit <= 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Table("daily_health_metric AS m").
		Joins("LEFT JOIN user_metabolic_profile AS p ON p.user_id = m.user_id").
		Where("m.date >= ?", DayStart(activeSince)).
		Where("(p.id IS NULL OR p.computed_at < ?)", staleBefore.UTC()).
		Distinct().
		Limit(limit).
		Pluck("m.user_id", &out).Error
	if err != nil {
		return nil, MapError("user_metabolic_profile.list_stale", err)
	}
	return out, nil
}
