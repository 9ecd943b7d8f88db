package glucose

import (
	"time"

	"github.com/google/uuid"
)

// DailyHealthMetric is one wearable summary per user per calendar day. Every metric is
// optional; devices report different subsets.
type DailyHealthMetric struct {
	Model
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_metric_user_date,priority:1" json:"user_id"`
	Date           time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_metric_user_date,priority:2" json:"date"`
	RestingHR      *float64  `gorm:"column:resting_hr" json:"resting_hr,omitempty"`
	Steps          *float64  `gorm:"column:steps" json:"steps,omitempty"`
	SleepHours     *float64  `gorm:"column:sleep_hours" json:"sleep_hours,omitempty"`
	HRVMs          *float64  `gorm:"column:hrv_ms" json:"hrv_ms,omitempty"`
	MetabolicScore *float64  `gorm:"column:metabolic_score" json:"metabolic_score,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyHealthMetric) TableName() string { return "daily_health_metric" }
