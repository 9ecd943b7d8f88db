package metabolic

import (
	"time"

	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
)

// Thresholds grade |slope| of score change per unit of factor change.
type Thresholds struct {
	High   float64
	Medium float64
}

type Config struct {
	WindowDays      int
	BaselineDays    int
	MinValidDays    int
	MinFactorDelta  float64
	Sleep           Thresholds
	Steps           Thresholds
	Recovery        Thresholds
	WeekendSleepGap float64
	MinWeekendDays  int
	SleepTargetH    float64
	ActiveSteps     float64
	FreshFor        time.Duration
}

func DefaultConfig() Config {
	return Config{
		WindowDays:      90,
		BaselineDays:    28,
		MinValidDays:    14,
		MinFactorDelta:  0.1,
		Sleep:           Thresholds{High: 4, Medium: 2},
		Steps:           Thresholds{High: 0.004, Medium: 0.002},
		Recovery:        Thresholds{High: 0.5, Medium: 0.25},
		WeekendSleepGap: 1.0,
		MinWeekendDays:  2,
		SleepTargetH:    7,
		ActiveSteps:     5000,
		FreshFor:        24 * time.Hour,
	}
}

// ConfigFromEnv overrides the freshness window only; the grading thresholds are fixed.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.FreshFor = time.Duration(envutil.Int("METABOLIC_PROFILE_FRESH_HOURS", 24)) * time.Hour
	return cfg
}
