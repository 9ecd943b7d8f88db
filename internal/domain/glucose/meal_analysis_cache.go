package glucose

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MealAnalysisCache stores an assembled analyze response keyed by the request fingerprint.
type MealAnalysisCache struct {
	Model
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_meal_analysis_cache_key,priority:1" json:"user_id"`
	InputHash string         `gorm:"column:input_hash;type:varchar(64);not null;uniqueIndex:idx_meal_analysis_cache_key,priority:2" json:"input_hash"`
	Result    datatypes.JSON `gorm:"column:result" json:"result"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (MealAnalysisCache) TableName() string { return "meal_analysis_cache" }
