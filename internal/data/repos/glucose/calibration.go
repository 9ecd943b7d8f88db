package glucose

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type UserCalibrationRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserCalibration, error)
	// GetOrCreate returns the user's row, inserting seed when none exists. Concurrent first
	// calls converge on a single row.
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID, seed types.UserCalibration) (*types.UserCalibration, bool, error)
	Upsert(dbc dbctx.Context, row *types.UserCalibration) error
}

type userCalibrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserCalibrationRepo(db *gorm.DB, baseLog *logger.Logger) UserCalibrationRepo {
	return &userCalibrationRepo{db: db, log: baseLog.With("repo", "UserCalibrationRepo")}
}

func (r *userCalibrationRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserCalibration, error) {
	var row types.UserCalibration
	err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, MapError("user_calibration.get", err)
	}
	return &row, nil
}

func (r *userCalibrationRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID, seed types.UserCalibration) (*types.UserCalibration, bool, error) {
	existing, err := r.GetByUserID(dbc, userID)
	if err != nil || existing != nil {
		return existing, false, err
	}

	seed.ID = uuid.New()
	seed.UserID = userID
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&seed)
	if res.Error != nil {
		return nil, false, MapError("user_calibration.create", res.Error)
	}
	if res.RowsAffected == 1 {
		r.log.Debug("Created default calibration", "user_id", userID)
		return &seed, true, nil
	}

	// Lost the race: another request inserted first.
	existing, err = r.GetByUserID(dbc, userID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, MapError("user_calibration.create", gorm.ErrRecordNotFound)
	}
	return existing, false, nil
}

func (r *userCalibrationRepo) Upsert(dbc dbctx.Context, row *types.UserCalibration) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"baseline_glucose",
				"carb_sensitivity",
				"avg_peak_time_min",
				"exercise_effect",
				"sleep_penalty",
				"n_observations",
				"n_quality_observations",
				"confidence",
				"updated_at",
			}),
		}).
		Create(row).Error
	return MapError("user_calibration.upsert", err)
}
