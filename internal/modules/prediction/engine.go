package prediction

import (
	"sort"
	"time"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// Input is the history the engine needs around one draft. Slices may hold rows outside the
// windows each stage uses; every stage filters for itself.
type Input struct {
	Draft       MealDraft
	GlucoseLogs []*types.GlucoseLog
	Meals       []*types.MealLog
	Calibration *types.UserCalibration
	Reviews     []*types.MealReview
	Activities  []*types.ActivityLog
	SleepHours  *float64
}

type Personalization struct {
	CarbSensitivity float64     `json:"carb_sensitivity"`
	AvgPeakTime     float64     `json:"avg_peak_time"`
	BaselineGlucose float64     `json:"baseline_glucose"`
	DataDays        int         `json:"data_days"`
	DataQuality     DataQuality `json:"data_quality"`
}

type CalibrationDebug struct {
	Confidence      float64 `json:"confidence"`
	NObservations   int     `json:"n_observations"`
	CarbSensitivity float64 `json:"carb_sensitivity"`
	ExerciseEffect  float64 `json:"exercise_effect"`
	SleepPenalty    float64 `json:"sleep_penalty"`
	DriftWeight     float64 `json:"driftWeight"`
}

type Debug struct {
	NetCarbs        float64          `json:"net_carbs"`
	FibreG          float64          `json:"fibre_g"`
	ProteinG        float64          `json:"protein_g"`
	FatG            float64          `json:"fat_g"`
	TimeBucket      TimeBucket       `json:"time_bucket"`
	RecentSpikeAvg  *float64         `json:"recent_spike_avg"`
	Personalization Personalization  `json:"personalization"`
	SimilarMeals    SimilarSummary   `json:"similar_meals"`
	Context         ContextResult    `json:"context"`
	Calibration     CalibrationDebug `json:"calibration"`
}

// Analysis is the numeric outcome of one draft. Driver prose is attached later by the
// explanation chain; Risk stays inside the service.
type Analysis struct {
	Codes       []ReasonCode `json:"reason_codes"`
	Tips        []Tip        `json:"adjustment_tips"`
	Curve       []CurvePoint `json:"curve"`
	PeakDelta   float64      `json:"peak_delta"`
	PeakTimeMin float64      `json:"peak_time_min"`
	Risk        float64      `json:"-"`
	Debug       Debug        `json:"debug"`
}

// Engine runs the full pipeline over in-memory inputs. It does no I/O.
type Engine struct {
	c         Constants
	profiles  ProfileBuilder
	blender   Blender
	baseline  BaselinePredictor
	tokenizer Tokenizer
	memory    Memory
	curve     CurveGenerator
	context   ContextAdjuster
}

func NewEngine(c Constants) *Engine {
	return &Engine{
		c:         c,
		profiles:  NewProfileBuilder(c),
		blender:   NewBlender(c),
		baseline:  NewBaselinePredictor(c),
		tokenizer: NewTokenizer(c),
		memory:    NewMemory(c),
		curve:     NewCurveGenerator(c),
		context:   NewContextAdjuster(c),
	}
}

func (e *Engine) Constants() Constants { return e.c }
func (e *Engine) Blender() Blender     { return e.blender }
func (e *Engine) Tokenizer() Tokenizer { return e.tokenizer }
func (e *Engine) ReviewLimit() int     { return e.memory.ReviewLimit() }

// HistoryFrom is the earliest instant any stage reads glucose, meal or activity rows from.
func (e *Engine) HistoryFrom(mealAt time.Time) time.Time {
	from, _ := e.profiles.Window(mealAt)
	if t := mealAt.Add(-time.Duration(e.c.Risk.SpikeLookbackH) * time.Hour); t.Before(from) {
		from = t
	}
	if t := e.context.Lookback(mealAt); t.Before(from) {
		from = t
	}
	return from
}

// Analyze expects a normalized draft.
func (e *Engine) Analyze(in Input) Analysis {
	d := in.Draft
	at := d.LoggedAt
	totals := Aggregate(d.Items)
	bucket := BucketFor(at)

	rolling := e.profiles.Build(in.GlucoseLogs, in.Meals, at, at.Location())
	cal := e.blender.FromRow(in.Calibration)
	blended := e.blender.Blend(cal, rolling)
	p := blended.Profile

	spikes := e.baseline.SummarizeSpikes(in.GlucoseLogs, p.BaselineGlucose, at)
	risk := e.baseline.Predict(totals, bucket, spikes)

	similar := e.memory.Match(e.tokenizer.DraftTokens(d), in.Reviews)

	peakDelta := e.curve.BasePeakDelta(risk.NetCarbs, risk.Risk, p, bucket)
	peakDelta, peakTime := e.curve.BlendSimilar(peakDelta, p.AvgPeakTimeMin, similar)
	peakTime = e.c.Profile.PeakTimeRange.Clamp(peakTime)
	peakDelta = e.curve.ClampPeakDelta(peakDelta)

	ctxRes := e.context.Evaluate(ContextInput{
		MealAt:     at,
		Activities: in.Activities,
		Readings:   in.GlucoseLogs,
		SleepHours: in.SleepHours,
		Baseline:   p.BaselineGlucose,
	})
	peakDelta = e.context.Adjust(peakDelta, &ctxRes, cal)

	var set reasonSet
	set.addAll(risk.Codes)
	set.addAll(e.memory.Codes(similar))
	set.addAll(ctxRes.Codes)
	codes := OrderReasons(set.codes, e.c.Reasons.MaxDrivers)

	out := Analysis{
		Codes:       codes,
		Tips:        Tips(OrderReasons(set.codes, -1), e.c.Reasons.MaxTips),
		Curve:       e.curve.Points(p.BaselineGlucose, peakDelta, peakTime, p.DataQuality),
		PeakDelta:   round1(peakDelta),
		PeakTimeMin: round1(peakTime),
		Risk:        risk.Risk,
		Debug: Debug{
			NetCarbs:   round1(totals.NetCarbs()),
			FibreG:     round1(totals.Fibre),
			ProteinG:   round1(totals.Protein),
			FatG:       round1(totals.Fat),
			TimeBucket: bucket,
			Personalization: Personalization{
				CarbSensitivity: p.CarbSensitivity,
				AvgPeakTime:     p.AvgPeakTimeMin,
				BaselineGlucose: p.BaselineGlucose,
				DataDays:        p.DataDays,
				DataQuality:     p.DataQuality,
			},
			SimilarMeals: similar,
			Context:      ctxRes,
			Calibration: CalibrationDebug{
				Confidence:      cal.Confidence,
				NObservations:   cal.NObservations,
				CarbSensitivity: cal.CarbSensitivity,
				ExerciseEffect:  cal.ExerciseEffect,
				SleepPenalty:    cal.SleepPenalty,
				DriftWeight:     blended.DriftWeight,
			},
		},
	}
	if spikes.Bonus > 0 {
		avg := round1(spikes.Avg)
		out.Debug.RecentSpikeAvg = &avg
	}
	return out
}

// OrderReasons sorts codes by presentation rank and keeps at most limit (negative keeps all).
func OrderReasons(codes []ReasonCode, limit int) []ReasonCode {
	out := append([]ReasonCode(nil), codes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []ReasonCode{}
	}
	return out
}
