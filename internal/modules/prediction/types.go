package prediction

import (
	"math"
	"strings"
	"time"
)

type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketMidday    TimeBucket = "midday"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
	BucketNight     TimeBucket = "night"
)

// AllBuckets in clock order starting at 05:00.
var AllBuckets = []TimeBucket{BucketMorning, BucketMidday, BucketAfternoon, BucketEvening, BucketNight}

type DataQuality string

const (
	QualityNone   DataQuality = "none"
	QualityLow    DataQuality = "low"
	QualityMedium DataQuality = "medium"
	QualityHigh   DataQuality = "high"
)

// Nutrients are per unit of the item's quantity.
type Nutrients struct {
	Calories float64 `json:"calories"`
	CarbsG   float64 `json:"carbs_g"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	FibreG   float64 `json:"fibre_g"`
}

type MealItem struct {
	DisplayName string    `json:"display_name"`
	Quantity    *float64  `json:"quantity,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Nutrients   Nutrients `json:"nutrients"`
}

type MealDraft struct {
	Name     string     `json:"name"`
	LoggedAt time.Time  `json:"logged_at"`
	Items    []MealItem `json:"items"`
}

const (
	MaxDraftItems   = 50
	DefaultMealName = "Meal"
)

// finite coerces NaN, Inf and negatives to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Normalize returns a copy safe to feed into the math: nil quantity becomes 1, non-finite or
// negative numbers become 0, an empty name becomes DefaultMealName, a zero LoggedAt becomes
// now and items past MaxDraftItems are dropped.
func (d MealDraft) Normalize(now time.Time) MealDraft {
	out := MealDraft{
		Name:     strings.TrimSpace(d.Name),
		LoggedAt: d.LoggedAt,
	}
	if out.Name == "" {
		out.Name = DefaultMealName
	}
	if out.LoggedAt.IsZero() {
		out.LoggedAt = now
	}
	items := d.Items
	if len(items) > MaxDraftItems {
		items = items[:MaxDraftItems]
	}
	out.Items = make([]MealItem, 0, len(items))
	for _, it := range items {
		q := 1.0
		if it.Quantity != nil {
			q = finite(*it.Quantity)
		}
		out.Items = append(out.Items, MealItem{
			DisplayName: strings.TrimSpace(it.DisplayName),
			Quantity:    &q,
			Unit:        strings.TrimSpace(it.Unit),
			Nutrients: Nutrients{
				Calories: finite(it.Nutrients.Calories),
				CarbsG:   finite(it.Nutrients.CarbsG),
				ProteinG: finite(it.Nutrients.ProteinG),
				FatG:     finite(it.Nutrients.FatG),
				FibreG:   finite(it.Nutrients.FibreG),
			},
		})
	}
	return out
}

// Profile is the rolling empirical response profile.
type Profile struct {
	CarbSensitivity float64                `json:"carb_sensitivity" yaml:"carb_sensitivity"`
	AvgPeakTimeMin  float64                `json:"avg_peak_time_min" yaml:"avg_peak_time_min"`
	AvgPeakDelta    float64                `json:"avg_peak_delta" yaml:"avg_peak_delta"`
	TimeMultipliers map[TimeBucket]float64 `json:"time_multipliers" yaml:"time_multipliers"`
	BaselineGlucose float64                `json:"baseline_glucose" yaml:"baseline_glucose"`
	DataQuality     DataQuality            `json:"data_quality" yaml:"data_quality"`
	DataDays        int                    `json:"data_days" yaml:"data_days"`
}

// Clone deep-copies the multiplier map so callers can never alias the defaults.
func (p Profile) Clone() Profile {
	out := p
	out.TimeMultipliers = make(map[TimeBucket]float64, len(p.TimeMultipliers))
	for k, v := range p.TimeMultipliers {
		out.TimeMultipliers[k] = v
	}
	return out
}

// Multiplier returns the bucket's multiplier, 1.0 when absent.
func (p Profile) Multiplier(b TimeBucket) float64 {
	if v, ok := p.TimeMultipliers[b]; ok && v > 0 {
		return v
	}
	return 1.0
}

// Calibration mirrors the persisted UserCalibration row after range validation.
type Calibration struct {
	BaselineGlucose      float64 `json:"baseline_glucose" yaml:"baseline_glucose"`
	CarbSensitivity      float64 `json:"carb_sensitivity" yaml:"carb_sensitivity"`
	AvgPeakTimeMin       float64 `json:"avg_peak_time_min" yaml:"avg_peak_time_min"`
	ExerciseEffect       float64 `json:"exercise_effect" yaml:"exercise_effect"`
	SleepPenalty         float64 `json:"sleep_penalty" yaml:"sleep_penalty"`
	NObservations        int     `json:"n_observations" yaml:"n_observations"`
	NQualityObservations int     `json:"n_quality_observations" yaml:"n_quality_observations"`
	Confidence           float64 `json:"confidence" yaml:"confidence"`
}

type CurvePoint struct {
	TMin         int     `json:"t_min"`
	GlucoseValue float64 `json:"glucose_value"`
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
