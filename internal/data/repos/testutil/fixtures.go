package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// SeedMeal stores a one-item meal with the given per-unit macros.
func SeedMeal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, at time.Time, carbs, fibre, protein, fat float64) *types.MealLog {
	tb.Helper()
	meal := &types.MealLog{
		UserID:   userID,
		Name:     name,
		LoggedAt: at,
		Items: []types.MealLogItem{{
			DisplayName: name,
			Quantity:    1,
			CarbsG:      carbs,
			FibreG:      fibre,
			ProteinG:    protein,
			FatG:        fat,
		}},
	}
	if err := tx.WithContext(ctx).Create(meal).Error; err != nil {
		tb.Fatalf("seed meal: %v", err)
	}
	return meal
}

func SeedDailyMetric(tb testing.TB, ctx context.Context, tx *gorm.DB, row *types.DailyHealthMetric) *types.DailyHealthMetric {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed daily metric: %v", err)
	}
	return row
}
