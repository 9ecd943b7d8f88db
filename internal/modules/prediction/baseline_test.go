package prediction

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/pkg/pointers"
)

func whiteRiceBowl(at time.Time) MealDraft {
	return MealDraft{
		Name:     "White rice bowl",
		LoggedAt: at,
		Items: []MealItem{{
			DisplayName: "White rice",
			Quantity:    pointers.Float64(1),
			Unit:        "bowl",
			Nutrients:   Nutrients{Calories: 370, CarbsG: 80, ProteinG: 8, FatG: 2, FibreG: 1},
		}},
	}
}

func TestBaselinePredictor_WhiteRiceBowlEvening(t *testing.T) {
	at := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	p := NewBaselinePredictor(DefaultConstants())
	totals := Aggregate(whiteRiceBowl(at).Items)

	res := p.Predict(totals, BucketFor(at), SpikeSummary{})

	assert.InDelta(t, 79.0, res.NetCarbs, 1e-9)
	assert.Equal(t, BucketEvening, res.Bucket)
	assert.InDelta(t, 1.15, res.TimeModifier, 1e-9)
	assert.Greater(t, res.Risk, res.BaseRisk)
	assert.InDelta(t, res.BaseRisk*1.15, res.Risk, 1e-9)
	assert.Subset(t, res.Codes, []ReasonCode{ReasonHighNetCarbs, ReasonLowFibre, ReasonLateMeal})
	assert.NotContains(t, res.Codes, ReasonRecentSpikes)
}

func TestBaselinePredictor_RiskBounds(t *testing.T) {
	p := NewBaselinePredictor(DefaultConstants())
	cases := []MacroTotals{
		{},
		{Carbs: 6},
		{Carbs: 400, Fibre: 0},
		{Carbs: 30, Protein: 200, Fat: 200, Fibre: 40},
		{Carbs: 1e9},
	}
	for _, tot := range cases {
		for _, b := range AllBuckets {
			for _, bonus := range []float64{0, 20} {
				res := p.Predict(tot, b, SpikeSummary{Bonus: bonus})
				if res.Risk < 0 || res.Risk > 100 || math.IsNaN(res.Risk) {
					t.Fatalf("risk out of bounds for %+v/%s: %v", tot, b, res.Risk)
				}
			}
		}
	}
}

func TestBaselinePredictor_FloorAppliesAboveFiveNetCarbs(t *testing.T) {
	p := NewBaselinePredictor(DefaultConstants())
	heavy := MacroTotals{Carbs: 10, Protein: 60, Fat: 60, Fibre: 2}
	assert.Equal(t, 15.0, p.Predict(heavy, BucketMorning, SpikeSummary{}).Risk)

	tiny := MacroTotals{Carbs: 4, Protein: 60, Fat: 60}
	res := p.Predict(tiny, BucketMorning, SpikeSummary{})
	assert.Equal(t, 0.0, res.Risk)
	assert.Contains(t, res.Codes, ReasonLowNetCarbs)
	assert.Contains(t, res.Codes, ReasonProteinBuffer)
}

func TestBaselinePredictor_SummarizeSpikes(t *testing.T) {
	mealAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := NewBaselinePredictor(DefaultConstants())
	post := func(ago time.Duration, v float64) *types.GlucoseLog {
		return &types.GlucoseLog{GlucoseLevel: v, Context: types.ContextPostMeal, LoggedAt: mealAt.Add(-ago)}
	}
	logs := []*types.GlucoseLog{
		post(2*time.Hour, 9.5),
		post(20*time.Hour, 9.5),
		post(40*time.Hour, 9.5),
		post(100*time.Hour, 15),
		post(3*time.Hour, 6.0),
		{GlucoseLevel: 14, Context: types.ContextRandom, LoggedAt: mealAt.Add(-time.Hour)},
	}

	s := p.SummarizeSpikes(logs, 5.5, mealAt)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 7.5, s.Threshold, 1e-9)
	assert.InDelta(t, 9.5, s.Avg, 1e-9)
	assert.InDelta(t, 10.0, s.Bonus, 1e-9)

	res := p.Predict(MacroTotals{Carbs: 30, Fibre: 5}, BucketMidday, s)
	assert.Contains(t, res.Codes, ReasonRecentSpikes)

	few := p.SummarizeSpikes(logs[:2], 5.5, mealAt)
	assert.Equal(t, 2, few.Count)
	assert.Zero(t, few.Bonus)
}

func TestBucketFor(t *testing.T) {
	cases := map[int]TimeBucket{
		0: BucketNight, 4: BucketNight, 5: BucketMorning, 9: BucketMorning, 10: BucketMidday,
		13: BucketMidday, 14: BucketAfternoon, 17: BucketAfternoon, 18: BucketEvening,
		21: BucketEvening, 22: BucketNight, 23: BucketNight,
	}
	for hour, want := range cases {
		got := BucketFor(time.Date(2026, 1, 1, hour, 30, 0, 0, time.UTC))
		if got != want {
			t.Fatalf("hour %d: got %s want %s", hour, got, want)
		}
	}
}

func TestAggregate_ScalesByQuantityAndDropsInvalid(t *testing.T) {
	items := []MealItem{
		{Quantity: pointers.Float64(2), Nutrients: Nutrients{CarbsG: 10, FibreG: 1, ProteinG: 3}},
		{Nutrients: Nutrients{CarbsG: 5, FatG: -4}},
		{Quantity: pointers.Float64(math.NaN()), Nutrients: Nutrients{CarbsG: 100}},
	}
	got := Aggregate(items)
	assert.InDelta(t, 25.0, got.Carbs, 1e-9)
	assert.InDelta(t, 2.0, got.Fibre, 1e-9)
	assert.InDelta(t, 6.0, got.Protein, 1e-9)
	assert.Zero(t, got.Fat)
	assert.InDelta(t, 23.0, got.NetCarbs(), 1e-9)

	assert.Zero(t, MacroTotals{Carbs: 2, Fibre: 9}.NetCarbs())
}
