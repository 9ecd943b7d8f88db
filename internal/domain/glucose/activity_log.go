package glucose

import (
	"time"

	"github.com/google/uuid"
)

type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityVigorous Intensity = "vigorous"
)

// ActivityLog is a bout of exercise; StartedAt + DurationMin bounds it.
type ActivityLog struct {
	Model
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_log_user_time,priority:1" json:"user_id"`
	ActivityType string    `gorm:"column:activity_type" json:"activity_type"`
	Intensity    Intensity `gorm:"column:intensity;type:varchar(16);not null;default:'moderate'" json:"intensity"`
	DurationMin  float64   `gorm:"column:duration_min;not null;default:0" json:"duration_min"`
	StartedAt    time.Time `gorm:"column:started_at;not null;index:idx_activity_log_user_time,priority:2" json:"started_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_log" }

// EndedAt is StartedAt plus the logged duration.
func (a ActivityLog) EndedAt() time.Time {
	return a.StartedAt.Add(time.Duration(a.DurationMin * float64(time.Minute)))
}
