package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/glucobridge-backend/internal/http/handlers"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type Handlers struct {
	Health           *httpH.HealthHandler
	Meal             *httpH.MealHandler
	MetabolicProfile *httpH.MetabolicProfileHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, serviceSet Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:           httpH.NewHealthHandler(pinger),
		Meal:             httpH.NewMealHandler(serviceSet.Analyze),
		MetabolicProfile: httpH.NewMetabolicProfileHandler(serviceSet.MetabolicProfile),
	}
}
