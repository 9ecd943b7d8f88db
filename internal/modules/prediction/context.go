package prediction

import (
	"math"
	"time"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// ContextInput is everything the adjuster looks at around the meal time.
type ContextInput struct {
	MealAt     time.Time
	Activities []*types.ActivityLog
	Readings   []*types.GlucoseLog
	SleepHours *float64
	Baseline   float64
}

// ContextResult is reported in the analyze debug block.
type ContextResult struct {
	ActivityScore       float64      `json:"activity_score"`
	WeightedMinutes     float64      `json:"weighted_activity_minutes"`
	ActiveWithinWindow  bool         `json:"active_within_2h"`
	SleepHours          *float64     `json:"sleep_hours"`
	SleepDeficit        float64      `json:"sleep_deficit"`
	LatestBaselineLevel *float64     `json:"latest_fasting_or_pre_meal"`
	GlucoseCV           *float64     `json:"glucose_cv_24h"`
	PeakDeltaMultiplier float64      `json:"peak_delta_multiplier"`
	Codes               []ReasonCode `json:"codes"`
}

type ContextAdjuster struct {
	c       ContextConstants
	clampTo Range
}

func NewContextAdjuster(c Constants) ContextAdjuster {
	return ContextAdjuster{c: c.Context, clampTo: c.Curve.PeakDeltaRange}
}

// Lookback is the earliest instant any context signal reads from.
func (a ContextAdjuster) Lookback(mealAt time.Time) time.Time {
	h := max(a.c.ActivityLookbackH, a.c.VariabilityLookH, a.c.HighBaselineLookH)
	return mealAt.Add(-time.Duration(h) * time.Hour)
}

func (a ContextAdjuster) intensityWeight(i types.Intensity) float64 {
	if w, ok := a.c.IntensityWeights[string(i)]; ok {
		return w
	}
	return a.c.IntensityWeights[string(types.IntensityModerate)]
}

// Evaluate computes the signals and their reason codes. Each signal yields at most one code.
func (a ContextAdjuster) Evaluate(in ContextInput) ContextResult {
	res := ContextResult{PeakDeltaMultiplier: 1, Codes: []ReasonCode{}}
	var set reasonSet

	recentFrom := in.MealAt.Add(-time.Duration(a.c.RecentActivityMin * float64(time.Minute)))
	lookFrom := in.MealAt.Add(-time.Duration(a.c.ActivityLookbackH) * time.Hour)
	anyActivity := false
	for _, act := range in.Activities {
		if act == nil || act.StartedAt.Before(lookFrom) || act.StartedAt.After(in.MealAt) {
			continue
		}
		anyActivity = true
		res.WeightedMinutes += max(act.DurationMin, 0) * a.intensityWeight(act.Intensity)
		if !act.EndedAt().Before(recentFrom) {
			res.ActiveWithinWindow = true
		}
	}
	if res.ActiveWithinWindow {
		res.ActivityScore = a.c.RecentActivityScore
	} else {
		res.ActivityScore = math.Min(a.c.ActivityScoreCap, res.WeightedMinutes/a.c.ActivityMinutesUnit)
	}
	switch {
	case res.ActivityScore >= a.c.ActivityCodeMinScore:
		set.add(ReasonRecentActivity)
	case !anyActivity:
		set.add(ReasonRecentInactivity)
	}

	if in.SleepHours != nil && !math.IsNaN(*in.SleepHours) && *in.SleepHours >= 0 {
		h := *in.SleepHours
		res.SleepHours = &h
		if h < a.c.SleepTargetH {
			res.SleepDeficit = math.Min(a.c.SleepDeficitCap, (a.c.SleepTargetH-h)/a.c.SleepDeficitScale)
			switch {
			case h < a.c.SleepSevereBelowH:
				set.add(ReasonLowSleepSevere)
			case h < a.c.SleepModerateBelowH:
				set.add(ReasonLowSleepModerate)
			default:
				set.add(ReasonLowSleepMild)
			}
		}
	}

	baseFrom := in.MealAt.Add(-time.Duration(a.c.HighBaselineLookH) * time.Hour)
	varFrom := in.MealAt.Add(-time.Duration(a.c.VariabilityLookH) * time.Hour)
	var latest *types.GlucoseLog
	var vals []float64
	for _, r := range in.Readings {
		if r == nil || !r.LoggedAt.Before(in.MealAt) || r.GlucoseLevel <= 0 {
			continue
		}
		if r.IsBaseline() && !r.LoggedAt.Before(baseFrom) {
			if latest == nil || r.LoggedAt.After(latest.LoggedAt) {
				latest = r
			}
		}
		if !r.LoggedAt.Before(varFrom) {
			vals = append(vals, r.GlucoseLevel)
		}
	}
	if latest != nil {
		lv := latest.GlucoseLevel
		res.LatestBaselineLevel = &lv
		if lv > in.Baseline+a.c.HighBaselineMargin {
			set.add(ReasonRecentHighBaseline)
		}
	}
	if len(vals) >= a.c.VariabilityMinCount {
		cv := coefficientOfVariation(vals)
		res.GlucoseCV = &cv
		if cv >= a.c.VariabilityCV {
			set.add(ReasonHighVariability)
		}
	}

	res.Codes = append(res.Codes, set.codes...)
	return res
}

// Adjust applies calibration modifiers: sleep debt raises the peak, activity lowers it, and
// the result is re-clamped.
func (a ContextAdjuster) Adjust(peakDelta float64, res *ContextResult, cal Calibration) float64 {
	mult := (1 + cal.SleepPenalty*res.SleepDeficit) * math.Max(a.c.ActivityFloor, 1-cal.ExerciseEffect*res.ActivityScore)
	res.PeakDeltaMultiplier = mult
	return a.clampTo.Clamp(peakDelta * mult)
}

func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if m <= 0 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss/float64(len(xs))) / m
}
