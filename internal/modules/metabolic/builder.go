package metabolic

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// Builder derives a UserMetabolicProfile from daily wearable metrics. It does no I/O.
type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

func (b *Builder) Config() Config { return b.cfg }

// WindowStart is the first day read for a build at now.
func (b *Builder) WindowStart(now time.Time) time.Time {
	return dayStart(now).AddDate(0, 0, -b.cfg.WindowDays)
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type metric func(*types.DailyHealthMetric) *float64

var (
	restingHR      metric = func(m *types.DailyHealthMetric) *float64 { return m.RestingHR }
	steps          metric = func(m *types.DailyHealthMetric) *float64 { return m.Steps }
	sleepHours     metric = func(m *types.DailyHealthMetric) *float64 { return m.SleepHours }
	hrv            metric = func(m *types.DailyHealthMetric) *float64 { return m.HRVMs }
	metabolicScore metric = func(m *types.DailyHealthMetric) *float64 { return m.MetabolicScore }
)

// Build never fails; missing data yields nil baselines and unknown sensitivities.
func (b *Builder) Build(userID uuid.UUID, rows []*types.DailyHealthMetric, now time.Time) *types.UserMetabolicProfile {
	from := b.WindowStart(now)
	baseFrom := dayStart(now).AddDate(0, 0, -b.cfg.BaselineDays)

	var window, recent []*types.DailyHealthMetric
	days := map[string]struct{}{}
	for _, m := range rows {
		if m == nil || m.Date.Before(from) || m.Date.After(now) {
			continue
		}
		window = append(window, m)
		if !m.Date.Before(baseFrom) {
			recent = append(recent, m)
		}
		if hasAny(m) {
			days[m.Date.UTC().Format(time.DateOnly)] = struct{}{}
		}
	}

	base := types.MetabolicBaselines{
		RestingHR:      baseline(recent, restingHR),
		Steps:          baseline(recent, steps),
		SleepHours:     baseline(recent, sleepHours),
		HRVMs:          baseline(recent, hrv),
		MetabolicScore: baseline(recent, metabolicScore),
	}

	sleepLevel, sleepDays := b.sensitivity(window, sleepHours, base.SleepHours, base.MetabolicScore, b.cfg.Sleep)
	stepsLevel, stepsDays := b.sensitivity(window, steps, base.Steps, base.MetabolicScore, b.cfg.Steps)
	recLevel, recDays := b.sensitivity(window, hrv, base.HRVMs, base.MetabolicScore, b.cfg.Recovery)

	patterns := types.MetabolicPatterns{
		WeekendDisruption: b.weekendDisruption(recent),
		SleepSensitive:    base.SleepHours != nil && *base.SleepHours < b.cfg.SleepTargetH,
		ActivitySensitive: base.Steps != nil && *base.Steps < b.cfg.ActiveSteps,
	}

	return &types.UserMetabolicProfile{
		UserID:    userID,
		Baselines: datatypes.NewJSONType(base),
		Sensitivities: datatypes.NewJSONType(types.MetabolicSensitivities{
			Sleep:    sleepLevel,
			Steps:    stepsLevel,
			Recovery: recLevel,
		}),
		Patterns:                datatypes.NewJSONType(patterns),
		DataCoverageDays:        len(days),
		ValidDaysForSensitivity: max(sleepDays, stepsDays, recDays),
		ComputedAt:              now.UTC(),
	}
}

func hasAny(m *types.DailyHealthMetric) bool {
	return usable(m.RestingHR) || usable(m.Steps) || usable(m.SleepHours) || usable(m.HRVMs) || usable(m.MetabolicScore)
}

func baseline(rows []*types.DailyHealthMetric, get metric) *float64 {
	var vals []float64
	for _, m := range rows {
		if v := get(m); usable(v) {
			vals = append(vals, *v)
		}
	}
	med, ok := median(vals)
	if !ok {
		return nil
	}
	return &med
}

// sensitivity pairs each day's factor delta with its score delta and grades the median
// ratio. Days whose factor barely moved are skipped.
func (b *Builder) sensitivity(rows []*types.DailyHealthMetric, factor metric, factorBase, scoreBase *float64, th Thresholds) (types.SensitivityLevel, int) {
	if factorBase == nil || scoreBase == nil {
		return types.SensitivityUnknown, 0
	}
	var slopes []float64
	for _, m := range rows {
		f, s := factor(m), m.MetabolicScore
		if !usable(f) || !usable(s) {
			continue
		}
		fd := *f - *factorBase
		if math.Abs(fd) <= b.cfg.MinFactorDelta {
			continue
		}
		slopes = append(slopes, (*s-*scoreBase)/fd)
	}
	if len(slopes) < b.cfg.MinValidDays {
		return types.SensitivityUnknown, len(slopes)
	}
	slope, _ := median(slopes)
	switch a := math.Abs(slope); {
	case a >= th.High:
		return types.SensitivityHigh, len(slopes)
	case a >= th.Medium:
		return types.SensitivityMedium, len(slopes)
	default:
		return types.SensitivityLow, len(slopes)
	}
}

func (b *Builder) weekendDisruption(rows []*types.DailyHealthMetric) bool {
	var weekend, weekday []float64
	for _, m := range rows {
		if !usable(m.SleepHours) {
			continue
		}
		switch m.Date.UTC().Weekday() {
		case time.Saturday, time.Sunday:
			weekend = append(weekend, *m.SleepHours)
		default:
			weekday = append(weekday, *m.SleepHours)
		}
	}
	if len(weekend) < b.cfg.MinWeekendDays || len(weekday) < b.cfg.MinWeekendDays {
		return false
	}
	return math.Abs(mean(weekend)-mean(weekday)) > b.cfg.WeekendSleepGap
}
