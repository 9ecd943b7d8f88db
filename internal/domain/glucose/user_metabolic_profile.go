package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SensitivityLevel string

const (
	SensitivityUnknown SensitivityLevel = "unknown"
	SensitivityLow     SensitivityLevel = "low"
	SensitivityMedium  SensitivityLevel = "medium"
	SensitivityHigh    SensitivityLevel = "high"
)

// MetabolicBaselines are 28-day medians; nil when the metric was never reported.
type MetabolicBaselines struct {
	RestingHR      *float64 `json:"resting_hr"`
	Steps          *float64 `json:"steps"`
	SleepHours     *float64 `json:"sleep_hours"`
	HRVMs          *float64 `json:"hrv_ms"`
	MetabolicScore *float64 `json:"metabolic_score"`
}

type MetabolicSensitivities struct {
	Sleep    SensitivityLevel `json:"sleep"`
	Steps    SensitivityLevel `json:"steps"`
	Recovery SensitivityLevel `json:"recovery"`
}

type MetabolicPatterns struct {
	WeekendDisruption bool `json:"weekend_disruption"`
	SleepSensitive    bool `json:"sleep_sensitive"`
	ActivitySensitive bool `json:"activity_sensitive"`
}

// UserMetabolicProfile is the cached long-run profile, refreshed at most daily.
type UserMetabolicProfile struct {
	Model
	UserID                  uuid.UUID                                  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Baselines               datatypes.JSONType[MetabolicBaselines]     `gorm:"column:baselines" json:"baselines"`
	Sensitivities           datatypes.JSONType[MetabolicSensitivities] `gorm:"column:sensitivities" json:"sensitivities"`
	Patterns                datatypes.JSONType[MetabolicPatterns]      `gorm:"column:patterns" json:"patterns"`
	DataCoverageDays        int                                        `gorm:"column:data_coverage_days;not null;default:0" json:"data_coverage_days"`
	ValidDaysForSensitivity int                                        `gorm:"column:valid_days_for_sensitivity;not null;default:0" json:"valid_days_for_sensitivity"`
	ComputedAt              time.Time                                  `gorm:"column:computed_at;not null;index" json:"computed_at"`
	CreatedAt               time.Time                                  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time                                  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserMetabolicProfile) TableName() string { return "user_metabolic_profile" }
