package app

import (
	"gorm.io/gorm"

	repos "github.com/yungbote/glucobridge-backend/internal/data/repos/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type Repos struct {
	GlucoseLog       repos.GlucoseLogRepo
	MealLog          repos.MealLogRepo
	MealReview       repos.MealReviewRepo
	ActivityLog      repos.ActivityLogRepo
	DailyMetric      repos.DailyHealthMetricRepo
	Calibration      repos.UserCalibrationRepo
	MetabolicProfile repos.UserMetabolicProfileRepo
	AnalysisCache    repos.MealAnalysisCacheRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		GlucoseLog:       repos.NewGlucoseLogRepo(db, log),
		MealLog:          repos.NewMealLogRepo(db, log),
		MealReview:       repos.NewMealReviewRepo(db, log),
		ActivityLog:      repos.NewActivityLogRepo(db, log),
		DailyMetric:      repos.NewDailyHealthMetricRepo(db, log),
		Calibration:      repos.NewUserCalibrationRepo(db, log),
		MetabolicProfile: repos.NewUserMetabolicProfileRepo(db, log),
		AnalysisCache:    repos.NewMealAnalysisCacheRepo(db, log),
	}
}
