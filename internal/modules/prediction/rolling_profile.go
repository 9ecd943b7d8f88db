package prediction

import (
	"errors"
	"time"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// ErrInsufficientData marks a history too sparse to personalize. It never reaches callers of
// the analyze pipeline; the builder answers with the default profile instead.
var ErrInsufficientData = errors.New("insufficient data")

// ProfileBuilder derives a UserGlucoseProfile from the trailing window of readings and meals.
type ProfileBuilder struct {
	c        ProfileConstants
	defaults Profile
}

func NewProfileBuilder(c Constants) ProfileBuilder {
	return ProfileBuilder{c: c.Profile, defaults: c.DefaultProfile.Clone()}
}

// Defaults returns a fresh copy of the default profile.
func (b ProfileBuilder) Defaults() Profile {
	return b.defaults.Clone()
}

// Window returns [from, to) covering the trailing window before at.
func (b ProfileBuilder) Window(at time.Time) (time.Time, time.Time) {
	return at.AddDate(0, 0, -b.c.WindowDays), at
}

// Build never fails; sparse history yields the defaults with data_quality none. loc is the
// user's clock for time-of-day bucketing.
func (b ProfileBuilder) Build(logs []*types.GlucoseLog, meals []*types.MealLog, at time.Time, loc *time.Location) Profile {
	p, err := b.build(logs, meals, at, loc)
	if err != nil {
		return b.Defaults()
	}
	return p
}

func (b ProfileBuilder) build(logs []*types.GlucoseLog, meals []*types.MealLog, at time.Time, loc *time.Location) (Profile, error) {
	if loc == nil {
		loc = time.UTC
	}
	from, to := b.Window(at)
	readings := make([]*types.GlucoseLog, 0, len(logs))
	for _, l := range logs {
		if l == nil || l.LoggedAt.Before(from) || !l.LoggedAt.Before(to) {
			continue
		}
		if l.GlucoseLevel <= b.c.ValidGlucose.Min || l.GlucoseLevel >= b.c.ValidGlucose.Max {
			continue
		}
		readings = append(readings, l)
	}
	windowMeals := make([]*types.MealLog, 0, len(meals))
	for _, m := range meals {
		if m == nil || m.LoggedAt.Before(from) || !m.LoggedAt.Before(to) {
			continue
		}
		windowMeals = append(windowMeals, m)
	}
	if len(readings) < b.c.MinLogs || len(windowMeals) < b.c.MinMeals {
		return Profile{}, ErrInsufficientData
	}

	p := b.Defaults()

	var baseVals, postVals []float64
	days := map[string]struct{}{}
	for _, r := range readings {
		days[r.LoggedAt.In(loc).Format(time.DateOnly)] = struct{}{}
		switch {
		case r.IsBaseline():
			baseVals = append(baseVals, r.GlucoseLevel)
		case r.Context == types.ContextPostMeal:
			postVals = append(postVals, r.GlucoseLevel)
		}
	}
	p.DataDays = len(days)
	p.DataQuality = b.quality(p.DataDays, len(readings))

	if len(baseVals) >= b.c.MinBaselineReadings {
		p.BaselineGlucose = mean(baseVals)
	}
	hasDelta := len(postVals) >= b.c.MinPostMealReadings
	if hasDelta {
		p.AvgPeakDelta = mean(postVals) - p.BaselineGlucose
	}

	if hasDelta && p.AvgPeakDelta > 0 {
		b.fillMultipliers(&p, readings, loc)
	}

	var nets []float64
	for _, m := range windowMeals {
		nets = append(nets, AggregateLogged(m).NetCarbs())
	}
	if avgNet := mean(nets); hasDelta && avgNet > 0 {
		p.CarbSensitivity = b.c.CarbSensitivityRange.Clamp(p.AvgPeakDelta / (avgNet / 10))
	}

	if peak, ok := b.peakTime(readings, windowMeals); ok {
		p.AvgPeakTimeMin = peak
	}
	return p, nil
}

// quality tiers require strictly more days and readings as they rise.
func (b ProfileBuilder) quality(days, readings int) DataQuality {
	switch {
	case days >= b.c.HighTier.MinDays && readings >= b.c.HighTier.MinReadings:
		return QualityHigh
	case days >= b.c.MediumTier.MinDays && readings >= b.c.MediumTier.MinReadings:
		return QualityMedium
	default:
		return QualityLow
	}
}

// fillMultipliers normalizes per-bucket post-meal deltas against the overall mean delta.
func (b ProfileBuilder) fillMultipliers(p *Profile, readings []*types.GlucoseLog, loc *time.Location) {
	perBucket := map[TimeBucket][]float64{}
	var all []float64
	for _, r := range readings {
		if r.Context != types.ContextPostMeal {
			continue
		}
		d := r.GlucoseLevel - p.BaselineGlucose
		all = append(all, d)
		bk := BucketFor(r.LoggedAt.In(loc))
		perBucket[bk] = append(perBucket[bk], d)
	}
	overall := mean(all)
	if overall <= 0 {
		return
	}
	for _, bk := range AllBuckets {
		samples := perBucket[bk]
		if len(samples) < b.c.MinBucketSamples {
			continue
		}
		p.TimeMultipliers[bk] = b.c.MultiplierRange.Clamp(mean(samples) / overall)
	}
}

// peakTime averages, across meals, the offset of the highest post-meal reading inside the
// peak window after each meal.
func (b ProfileBuilder) peakTime(readings []*types.GlucoseLog, meals []*types.MealLog) (float64, bool) {
	window := time.Duration(b.c.PeakWindowMin * float64(time.Minute))
	var offsets []float64
	for _, m := range meals {
		best := -1.0
		bestOffset := 0.0
		for _, r := range readings {
			if r.Context != types.ContextPostMeal {
				continue
			}
			off := r.LoggedAt.Sub(m.LoggedAt)
			if off <= 0 || off > window {
				continue
			}
			if r.GlucoseLevel > best {
				best = r.GlucoseLevel
				bestOffset = off.Minutes()
			}
		}
		if best >= 0 {
			offsets = append(offsets, bestOffset)
		}
	}
	if len(offsets) < b.c.MinPeakMeals {
		return 0, false
	}
	return b.c.PeakTimeRange.Clamp(mean(offsets)), true
}
