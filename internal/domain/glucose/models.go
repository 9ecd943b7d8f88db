package glucose

// Models lists every row type for AutoMigrate, parents before children.
func Models() []any {
	return []any{
		&GlucoseLog{},
		&MealLog{},
		&MealLogItem{},
		&MealReview{},
		&ActivityLog{},
		&DailyHealthMetric{},
		&UserCalibration{},
		&UserMetabolicProfile{},
		&MealAnalysisCache{},
	}
}
