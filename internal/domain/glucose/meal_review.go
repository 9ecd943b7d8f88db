package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReviewStatusPending   = "pending"
	ReviewStatusCompleted = "completed"

	OutcomeSpike  = "spike"
	OutcomeStable = "stable"
)

// MealReview is the observed outcome of a past meal, written by the review collaborator once
// post-meal readings are in. Tokens hold the normalized name tokens used for similarity.
type MealReview struct {
	Model
	UserID        uuid.UUID                   `gorm:"type:uuid;not null;index:idx_meal_review_user_time,priority:1" json:"user_id"`
	MealLogID     *uuid.UUID                  `gorm:"type:uuid;index" json:"meal_log_id,omitempty"`
	MealName      string                      `gorm:"column:meal_name;not null" json:"meal_name"`
	Tokens        datatypes.JSONSlice[string] `gorm:"column:tokens" json:"tokens"`
	PeakDelta     float64                     `gorm:"column:peak_delta;not null;default:0" json:"peak_delta"`
	TimeToPeakMin *float64                    `gorm:"column:time_to_peak_min" json:"time_to_peak_min,omitempty"`
	OutcomeTag    string                      `gorm:"column:outcome_tag;type:varchar(32)" json:"outcome_tag"`
	Status        string                      `gorm:"column:status;type:varchar(32);not null;default:'pending';index" json:"status"`
	ReviewedAt    time.Time                   `gorm:"column:reviewed_at;not null;index:idx_meal_review_user_time,priority:2" json:"reviewed_at"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

func (MealReview) TableName() string { return "meal_review" }
