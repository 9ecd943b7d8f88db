package glucose

import (
	"time"

	"github.com/google/uuid"
)

// UserCalibration holds slowly learned response parameters. The analyze path only reads it;
// the learning collaborator owns the counters and confidence.
type UserCalibration struct {
	Model
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	BaselineGlucose      float64   `gorm:"column:baseline_glucose;not null" json:"baseline_glucose"`
	CarbSensitivity      float64   `gorm:"column:carb_sensitivity;not null" json:"carb_sensitivity"`
	AvgPeakTimeMin       float64   `gorm:"column:avg_peak_time_min;not null" json:"avg_peak_time_min"`
	ExerciseEffect       float64   `gorm:"column:exercise_effect;not null" json:"exercise_effect"`
	SleepPenalty         float64   `gorm:"column:sleep_penalty;not null" json:"sleep_penalty"`
	NObservations        int       `gorm:"column:n_observations;not null;default:0" json:"n_observations"`
	NQualityObservations int       `gorm:"column:n_quality_observations;not null;default:0" json:"n_quality_observations"`
	Confidence           float64   `gorm:"column:confidence;not null;default:0" json:"confidence"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserCalibration) TableName() string { return "user_calibration" }
