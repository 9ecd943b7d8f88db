package prediction

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

const constantsPathEnv = "PREDICTION_CONSTANTS_YAML"

//go:embed prediction.yaml
var constantsFS embed.FS

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Clamp(v float64) float64 { return clamp(v, r.Min, r.Max) }

type QualityTier struct {
	MinDays     int `yaml:"min_days"`
	MinReadings int `yaml:"min_readings"`
}

type RiskConstants struct {
	LogScale        float64                `yaml:"log_scale"`
	ProteinFactor   float64                `yaml:"protein_factor"`
	ProteinCap      float64                `yaml:"protein_cap"`
	FatFactor       float64                `yaml:"fat_factor"`
	FatCap          float64                `yaml:"fat_cap"`
	FibreFactor     float64                `yaml:"fibre_factor"`
	FibreCap        float64                `yaml:"fibre_cap"`
	BaseMax         float64                `yaml:"base_max"`
	Max             float64                `yaml:"max"`
	TimeModifiers   map[TimeBucket]float64 `yaml:"time_modifiers"`
	FloorNetCarbs   float64                `yaml:"floor_net_carbs"`
	FloorRisk       float64                `yaml:"floor_risk"`
	SpikeMargin     float64                `yaml:"spike_margin"`
	SpikeMinCount   int                    `yaml:"spike_min_count"`
	SpikeBonusScale float64                `yaml:"spike_bonus_scale"`
	SpikeBonusCap   float64                `yaml:"spike_bonus_cap"`
	SpikeLookbackH  int                    `yaml:"spike_lookback_hours"`
}

type ProfileConstants struct {
	WindowDays           int         `yaml:"window_days"`
	MinLogs              int         `yaml:"min_logs"`
	MinMeals             int         `yaml:"min_meals"`
	MinBaselineReadings  int         `yaml:"min_baseline_readings"`
	MinPostMealReadings  int         `yaml:"min_post_meal_readings"`
	MinBucketSamples     int         `yaml:"min_bucket_samples"`
	MultiplierRange      Range       `yaml:"multiplier_range"`
	CarbSensitivityRange Range       `yaml:"carb_sensitivity_range"`
	PeakWindowMin        float64     `yaml:"peak_window_min"`
	MinPeakMeals         int         `yaml:"min_peak_meals"`
	PeakTimeRange        Range       `yaml:"peak_time_range"`
	ValidGlucose         Range       `yaml:"valid_glucose"`
	MediumTier           QualityTier `yaml:"medium_tier"`
	HighTier             QualityTier `yaml:"high_tier"`
}

type BlendConstants struct {
	Scale     float64 `yaml:"scale"`
	MinWeight float64 `yaml:"min_weight"`
	MaxWeight float64 `yaml:"max_weight"`
}

type CalibrationRanges struct {
	BaselineGlucose Range `yaml:"baseline_glucose"`
	CarbSensitivity Range `yaml:"carb_sensitivity"`
	AvgPeakTimeMin  Range `yaml:"avg_peak_time_min"`
	ExerciseEffect  Range `yaml:"exercise_effect"`
	SleepPenalty    Range `yaml:"sleep_penalty"`
	Confidence      Range `yaml:"confidence"`
}

type SimilarConstants struct {
	MaxReviews     int      `yaml:"max_reviews"`
	MinScore       float64  `yaml:"min_score"`
	MaxMatches     int      `yaml:"max_matches"`
	WeightPerMatch float64  `yaml:"weight_per_match"`
	MaxWeight      float64  `yaml:"max_weight"`
	MinTokenLen    int      `yaml:"min_token_len"`
	Stopwords      []string `yaml:"stopwords"`
	SpikyRate      float64  `yaml:"spiky_rate"`
	MinMatchesCode int      `yaml:"min_matches_for_code"`
}

type CurveConstants struct {
	CarbUnit         float64                 `yaml:"carb_unit"`
	RiskScale        float64                 `yaml:"risk_scale"`
	NetCarbScale     float64                 `yaml:"net_carb_scale"`
	NetCarbFactor    float64                 `yaml:"net_carb_factor"`
	PersonalWeights  map[DataQuality]float64 `yaml:"personal_weights"`
	PeakDeltaRange   Range                   `yaml:"peak_delta_range"`
	StepMin          int                     `yaml:"step_min"`
	HorizonMin       int                     `yaml:"horizon_min"`
	RiseExponent     float64                 `yaml:"rise_exponent"`
	Decay            float64                 `yaml:"decay"`
	HighQualityDecay float64                 `yaml:"high_quality_decay_bonus"`
}

type ContextConstants struct {
	RecentActivityMin    float64            `yaml:"recent_activity_min"`
	ActivityLookbackH    int                `yaml:"activity_lookback_hours"`
	IntensityWeights     map[string]float64 `yaml:"intensity_weights"`
	ActivityMinutesUnit  float64            `yaml:"activity_minutes_unit"`
	ActivityScoreCap     float64            `yaml:"activity_score_cap"`
	RecentActivityScore  float64            `yaml:"recent_activity_score"`
	ActivityCodeMinScore float64            `yaml:"activity_code_min_score"`
	ActivityFloor        float64            `yaml:"activity_floor"`
	SleepTargetH         float64            `yaml:"sleep_target_hours"`
	SleepDeficitScale    float64            `yaml:"sleep_deficit_scale"`
	SleepDeficitCap      float64            `yaml:"sleep_deficit_cap"`
	SleepModerateBelowH  float64            `yaml:"sleep_moderate_below_hours"`
	SleepSevereBelowH    float64            `yaml:"sleep_severe_below_hours"`
	HighBaselineMargin   float64            `yaml:"high_baseline_margin"`
	HighBaselineLookH    int                `yaml:"high_baseline_lookback_hours"`
	VariabilityLookH     int                `yaml:"variability_lookback_hours"`
	VariabilityMinCount  int                `yaml:"variability_min_readings"`
	VariabilityCV        float64            `yaml:"variability_cv"`
}

type ReasonThresholds struct {
	HighNetCarbs     float64 `yaml:"high_net_carbs"`
	ModerateNetCarbs float64 `yaml:"moderate_net_carbs"`
	LowNetCarbs      float64 `yaml:"low_net_carbs"`
	LowFibreMax      float64 `yaml:"low_fibre_max"`
	LowFibreMinNet   float64 `yaml:"low_fibre_min_net"`
	LowProteinMax    float64 `yaml:"low_protein_max"`
	LowProteinMinNet float64 `yaml:"low_protein_min_net"`
	ProteinBuffer    float64 `yaml:"protein_buffer"`
	FatBuffer        float64 `yaml:"fat_buffer"`
	FibreBuffer      float64 `yaml:"fibre_buffer"`
	MaxDrivers       int     `yaml:"max_drivers"`
	MaxTips          int     `yaml:"max_tips"`
}

// Constants is the full tuning table for the analyze pipeline. It is loaded once and passed
// by value; nothing mutates it after Validate.
type Constants struct {
	Version            int               `yaml:"version"`
	Risk               RiskConstants     `yaml:"risk"`
	Profile            ProfileConstants  `yaml:"profile"`
	Blend              BlendConstants    `yaml:"blend"`
	CalibrationRanges  CalibrationRanges `yaml:"calibration_ranges"`
	Similar            SimilarConstants  `yaml:"similar"`
	Curve              CurveConstants    `yaml:"curve"`
	Context            ContextConstants  `yaml:"context"`
	Reasons            ReasonThresholds  `yaml:"reasons"`
	DefaultProfile     Profile           `yaml:"default_profile"`
	DefaultCalibration Calibration       `yaml:"default_calibration"`
}

// DefaultConstants is the compiled fallback used when the YAML table is missing or invalid.
func DefaultConstants() Constants {
	return Constants{
		Version: 1,
		Risk: RiskConstants{
			LogScale:      15,
			ProteinFactor: 0.3, ProteinCap: 15,
			FatFactor: 0.2, FatCap: 10,
			FibreFactor: 1.2, FibreCap: 15,
			BaseMax: 80,
			Max:     100,
			TimeModifiers: map[TimeBucket]float64{
				BucketMorning: 0.9, BucketMidday: 1.0, BucketAfternoon: 1.0, BucketEvening: 1.15, BucketNight: 1.25,
			},
			FloorNetCarbs:   5,
			FloorRisk:       15,
			SpikeMargin:     2.0,
			SpikeMinCount:   3,
			SpikeBonusScale: 5,
			SpikeBonusCap:   20,
			SpikeLookbackH:  72,
		},
		Profile: ProfileConstants{
			WindowDays:           14,
			MinLogs:              10,
			MinMeals:             3,
			MinBaselineReadings:  3,
			MinPostMealReadings:  3,
			MinBucketSamples:     2,
			MultiplierRange:      Range{0.5, 1.5},
			CarbSensitivityRange: Range{0.1, 1.0},
			PeakWindowMin:        180,
			MinPeakMeals:         3,
			PeakTimeRange:        Range{25, 120},
			ValidGlucose:         Range{0, 35},
			MediumTier:           QualityTier{MinDays: 5, MinReadings: 30},
			HighTier:             QualityTier{MinDays: 10, MinReadings: 60},
		},
		Blend: BlendConstants{Scale: 0.15, MinWeight: 0.05, MaxWeight: 0.2},
		CalibrationRanges: CalibrationRanges{
			BaselineGlucose: Range{4, 9},
			CarbSensitivity: Range{0.1, 1.2},
			AvgPeakTimeMin:  Range{25, 120},
			ExerciseEffect:  Range{0, 0.35},
			SleepPenalty:    Range{0, 0.45},
			Confidence:      Range{0, 1},
		},
		Similar: SimilarConstants{
			MaxReviews:     200,
			MinScore:       0.25,
			MaxMatches:     5,
			WeightPerMatch: 0.1,
			MaxWeight:      0.4,
			MinTokenLen:    3,
			Stopwords: []string{
				"and", "with", "the", "for", "from", "into", "some", "fresh", "homemade",
				"plus", "side", "small", "large", "medium", "serving",
			},
			SpikyRate:      0.5,
			MinMatchesCode: 2,
		},
		Curve: CurveConstants{
			CarbUnit:      10,
			RiskScale:     4,
			NetCarbScale:  50,
			NetCarbFactor: 2,
			PersonalWeights: map[DataQuality]float64{
				QualityHigh: 0.8, QualityMedium: 0.6, QualityLow: 0.4, QualityNone: 0.2,
			},
			PeakDeltaRange:   Range{0.5, 8.0},
			StepMin:          10,
			HorizonMin:       180,
			RiseExponent:     1.5,
			Decay:            0.015,
			HighQualityDecay: 0.005,
		},
		Context: ContextConstants{
			RecentActivityMin: 120,
			ActivityLookbackH: 24,
			IntensityWeights: map[string]float64{
				"light": 0.5, "moderate": 1.0, "vigorous": 1.5,
			},
			ActivityMinutesUnit:  30,
			ActivityScoreCap:     1.5,
			RecentActivityScore:  1.0,
			ActivityCodeMinScore: 0.5,
			ActivityFloor:        0.5,
			SleepTargetH:         7,
			SleepDeficitScale:    3,
			SleepDeficitCap:      1.5,
			SleepModerateBelowH:  6,
			SleepSevereBelowH:    5,
			HighBaselineMargin:   1.5,
			HighBaselineLookH:    12,
			VariabilityLookH:     24,
			VariabilityMinCount:  4,
			VariabilityCV:        0.36,
		},
		Reasons: ReasonThresholds{
			HighNetCarbs:     40,
			ModerateNetCarbs: 20,
			LowNetCarbs:      5,
			LowFibreMax:      3,
			LowFibreMinNet:   15,
			LowProteinMax:    10,
			LowProteinMinNet: 30,
			ProteinBuffer:    20,
			FatBuffer:        15,
			FibreBuffer:      8,
			MaxDrivers:       5,
			MaxTips:          3,
		},
		DefaultProfile: Profile{
			CarbSensitivity: 0.5,
			AvgPeakTimeMin:  45,
			AvgPeakDelta:    2.5,
			TimeMultipliers: map[TimeBucket]float64{
				BucketMorning: 1.0, BucketMidday: 1.0, BucketAfternoon: 1.0, BucketEvening: 1.1, BucketNight: 1.2,
			},
			BaselineGlucose: 5.5,
			DataQuality:     QualityNone,
			DataDays:        0,
		},
		DefaultCalibration: Calibration{
			BaselineGlucose: 5.5,
			CarbSensitivity: 0.5,
			AvgPeakTimeMin:  45,
			ExerciseEffect:  0.15,
			SleepPenalty:    0.2,
		},
	}
}

func (r Range) valid() bool { return r.Min <= r.Max }

// Validate rejects tables whose formulas would leave their documented bounds.
func (c Constants) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}
	check(c.Risk.BaseMax > 0 && c.Risk.BaseMax <= c.Risk.Max, "risk.base_max must be in (0, risk.max]")
	check(c.Risk.FloorRisk >= 0 && c.Risk.FloorRisk <= c.Risk.Max, "risk.floor_risk out of range")
	for _, b := range AllBuckets {
		_, ok := c.Risk.TimeModifiers[b]
		check(ok, "risk.time_modifiers missing "+string(b))
		_, ok = c.DefaultProfile.TimeMultipliers[b]
		check(ok, "default_profile.time_multipliers missing "+string(b))
	}
	for _, q := range []DataQuality{QualityNone, QualityLow, QualityMedium, QualityHigh} {
		w, ok := c.Curve.PersonalWeights[q]
		check(ok && w >= 0 && w <= 1, "curve.personal_weights invalid for "+string(q))
	}
	check(c.Profile.MediumTier.MinDays < c.Profile.HighTier.MinDays &&
		c.Profile.MediumTier.MinReadings < c.Profile.HighTier.MinReadings,
		"profile tiers must require strictly more days and readings as quality rises")
	check(c.Profile.WindowDays > 0, "profile.window_days must be positive")
	for name, r := range map[string]Range{
		"multiplier_range":       c.Profile.MultiplierRange,
		"carb_sensitivity_range": c.Profile.CarbSensitivityRange,
		"peak_time_range":        c.Profile.PeakTimeRange,
		"peak_delta_range":       c.Curve.PeakDeltaRange,
	} {
		check(r.valid(), name+" min > max")
	}
	check(c.Curve.PeakDeltaRange.Min > 0, "curve.peak_delta_range.min must be positive")
	check(c.Curve.StepMin > 0 && c.Curve.HorizonMin >= c.Curve.StepMin, "curve step/horizon invalid")
	check(c.Blend.MinWeight >= 0 && c.Blend.MinWeight <= c.Blend.MaxWeight && c.Blend.MaxWeight <= 1, "blend weights invalid")
	check(c.Similar.MinScore >= 0 && c.Similar.MinScore <= 1, "similar.min_score must be in [0,1]")
	check(c.Similar.MaxMatches > 0 && c.Similar.MaxReviews > 0, "similar limits must be positive")
	check(c.Similar.MaxWeight >= 0 && c.Similar.MaxWeight <= 1, "similar.max_weight must be in [0,1]")
	check(c.Context.ActivityFloor > 0 && c.Context.ActivityFloor <= 1, "context.activity_floor must be in (0,1]")
	check(c.DefaultProfile.DataQuality == QualityNone, "default_profile.data_quality must be none")
	return errors.Join(errs...)
}

// LoadConstants reads the table from PREDICTION_CONSTANTS_YAML when set, otherwise the
// embedded prediction.yaml, layered over DefaultConstants. Any failure falls back to the
// compiled defaults.
func LoadConstants(log *logger.Logger) Constants {
	c, err := loadConstants()
	if err != nil {
		if log != nil {
			log.Warn("prediction: constants load failed; using compiled defaults", "error", err)
		}
		return DefaultConstants()
	}
	return c
}

func loadConstants() (Constants, error) {
	data, err := readConstantsYAML()
	if err != nil {
		return Constants{}, err
	}
	return ParseConstants(data)
}

// ParseConstants layers a YAML document over DefaultConstants and validates the result.
func ParseConstants(data []byte) (Constants, error) {
	c := DefaultConstants()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Constants{}, fmt.Errorf("parse prediction constants: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Constants{}, fmt.Errorf("invalid prediction constants: %w", err)
	}
	return c, nil
}

func readConstantsYAML() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(constantsPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return constantsFS.ReadFile("prediction.yaml")
}
