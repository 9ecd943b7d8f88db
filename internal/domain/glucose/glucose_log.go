package glucose

import (
	"time"

	"github.com/google/uuid"
)

// ReadingContext tags when a glucose reading was taken relative to meals.
type ReadingContext string

const (
	ContextPreMeal  ReadingContext = "pre_meal"
	ContextPostMeal ReadingContext = "post_meal"
	ContextFasting  ReadingContext = "fasting"
	ContextRandom   ReadingContext = "random"
	ContextBedtime  ReadingContext = "bedtime"
)

// GlucoseLog is an immutable reading appended by the logging collaborator. Values are mmol/L.
type GlucoseLog struct {
	Model
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_glucose_log_user_time,priority:1" json:"user_id"`
	GlucoseLevel float64        `gorm:"column:glucose_level;not null" json:"glucose_level"`
	Context      ReadingContext `gorm:"column:context;type:varchar(32);not null;default:'random'" json:"context"`
	LoggedAt     time.Time      `gorm:"column:logged_at;not null;index:idx_glucose_log_user_time,priority:2" json:"logged_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (GlucoseLog) TableName() string { return "glucose_log" }

// IsBaseline reports whether the reading reflects resting (pre-meal or fasting) glucose.
func (g GlucoseLog) IsBaseline() bool {
	return g.Context == ContextPreMeal || g.Context == ContextFasting
}
