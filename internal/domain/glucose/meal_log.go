package glucose

import (
	"time"

	"github.com/google/uuid"
)

// MealLog is a meal recorded by the logging collaborator with its per-item nutrient snapshot.
type MealLog struct {
	Model
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_meal_log_user_time,priority:1" json:"user_id"`
	Name      string        `gorm:"column:name;not null" json:"name"`
	LoggedAt  time.Time     `gorm:"column:logged_at;not null;index:idx_meal_log_user_time,priority:2" json:"logged_at"`
	Items     []MealLogItem `gorm:"foreignKey:MealLogID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (MealLog) TableName() string { return "meal_log" }

// MealLogItem stores nutrients per unit; Quantity multiplies them.
type MealLogItem struct {
	Model
	MealLogID   uuid.UUID `gorm:"type:uuid;not null;index" json:"meal_log_id"`
	DisplayName string    `gorm:"column:display_name;not null" json:"display_name"`
	Quantity    float64   `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Unit        string    `gorm:"column:unit" json:"unit"`
	Calories    float64   `gorm:"column:calories;not null;default:0" json:"calories"`
	CarbsG      float64   `gorm:"column:carbs_g;not null;default:0" json:"carbs_g"`
	ProteinG    float64   `gorm:"column:protein_g;not null;default:0" json:"protein_g"`
	FatG        float64   `gorm:"column:fat_g;not null;default:0" json:"fat_g"`
	FibreG      float64   `gorm:"column:fibre_g;not null;default:0" json:"fibre_g"`
}

func (MealLogItem) TableName() string { return "meal_log_item" }
