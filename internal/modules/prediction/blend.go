package prediction

import (
	"math"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// Blender merges the persisted calibration with the rolling profile.
type Blender struct {
	c        BlendConstants
	ranges   CalibrationRanges
	defaults Calibration
}

func NewBlender(c Constants) Blender {
	return Blender{c: c.Blend, ranges: c.CalibrationRanges, defaults: c.DefaultCalibration}
}

// Defaults returns the calibration seeded for users without a stored row.
func (b Blender) Defaults() Calibration { return b.defaults }

// FromRow validates a stored row, coercing every field into its documented range. A nil row
// yields the defaults.
func (b Blender) FromRow(row *types.UserCalibration) Calibration {
	if row == nil {
		return b.defaults
	}
	fix := func(v float64, r Range, def float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return r.Clamp(v)
	}
	return Calibration{
		BaselineGlucose:      fix(row.BaselineGlucose, b.ranges.BaselineGlucose, b.defaults.BaselineGlucose),
		CarbSensitivity:      fix(row.CarbSensitivity, b.ranges.CarbSensitivity, b.defaults.CarbSensitivity),
		AvgPeakTimeMin:       fix(row.AvgPeakTimeMin, b.ranges.AvgPeakTimeMin, b.defaults.AvgPeakTimeMin),
		ExerciseEffect:       fix(row.ExerciseEffect, b.ranges.ExerciseEffect, b.defaults.ExerciseEffect),
		SleepPenalty:         fix(row.SleepPenalty, b.ranges.SleepPenalty, b.defaults.SleepPenalty),
		NObservations:        max(row.NObservations, 0),
		NQualityObservations: max(row.NQualityObservations, 0),
		Confidence:           fix(row.Confidence, b.ranges.Confidence, 0),
	}
}

// SeedRow builds the row inserted on a user's first analyze.
func (b Blender) SeedRow() types.UserCalibration {
	d := b.defaults
	return types.UserCalibration{
		BaselineGlucose:      d.BaselineGlucose,
		CarbSensitivity:      d.CarbSensitivity,
		AvgPeakTimeMin:       d.AvgPeakTimeMin,
		ExerciseEffect:       d.ExerciseEffect,
		SleepPenalty:         d.SleepPenalty,
		NObservations:        d.NObservations,
		NQualityObservations: d.NQualityObservations,
		Confidence:           d.Confidence,
	}
}

// DriftWeight is clamp(scale·(1−confidence), min, max); it reaches its floor as confidence → 1.
func (b Blender) DriftWeight(confidence float64) float64 {
	return clamp(b.c.Scale*(1-clamp(confidence, 0, 1)), b.c.MinWeight, b.c.MaxWeight)
}

type BlendResult struct {
	Profile     Profile
	DriftWeight float64
	Applied     bool
}

// Blend returns the rolling profile unchanged when confidence is zero. Otherwise baseline,
// carb sensitivity and peak time move to (1−w)·calibration + w·rolling.
func (b Blender) Blend(cal Calibration, rolling Profile) BlendResult {
	out := rolling.Clone()
	if cal.Confidence <= 0 {
		return BlendResult{Profile: out}
	}
	w := b.DriftWeight(cal.Confidence)
	mix := func(calV, rollV float64) float64 { return (1-w)*calV + w*rollV }
	out.BaselineGlucose = mix(cal.BaselineGlucose, rolling.BaselineGlucose)
	out.CarbSensitivity = mix(cal.CarbSensitivity, rolling.CarbSensitivity)
	out.AvgPeakTimeMin = mix(cal.AvgPeakTimeMin, rolling.AvgPeakTimeMin)
	return BlendResult{Profile: out, DriftWeight: w, Applied: true}
}
