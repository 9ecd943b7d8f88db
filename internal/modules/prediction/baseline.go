package prediction

import (
	"math"
	"time"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

// SpikeSummary describes trailing post-meal readings above the spike threshold.
type SpikeSummary struct {
	Count     int     `json:"count"`
	Threshold float64 `json:"threshold"`
	Avg       float64 `json:"avg"`
	Bonus     float64 `json:"bonus"`
}

// RiskResult is internal. Risk shapes the curve but never leaves the service.
type RiskResult struct {
	NetCarbs     float64
	BaseRisk     float64
	TimeModifier float64
	Risk         float64
	Bucket       TimeBucket
	Spikes       SpikeSummary
	Codes        []ReasonCode
}

type BaselinePredictor struct {
	risk    RiskConstants
	reasons ReasonThresholds
}

func NewBaselinePredictor(c Constants) BaselinePredictor {
	return BaselinePredictor{risk: c.Risk, reasons: c.Reasons}
}

// SummarizeSpikes looks at post-meal readings in the lookback window before mealAt whose value
// exceeds baseline + margin. The bonus applies only with enough such readings.
func (p BaselinePredictor) SummarizeSpikes(logs []*types.GlucoseLog, baseline float64, mealAt time.Time) SpikeSummary {
	threshold := baseline + p.risk.SpikeMargin
	from := mealAt.Add(-time.Duration(p.risk.SpikeLookbackH) * time.Hour)
	var vals []float64
	for _, l := range logs {
		if l == nil || l.Context != types.ContextPostMeal {
			continue
		}
		if l.LoggedAt.Before(from) || !l.LoggedAt.Before(mealAt) {
			continue
		}
		if l.GlucoseLevel > threshold {
			vals = append(vals, l.GlucoseLevel)
		}
	}
	s := SpikeSummary{Count: len(vals), Threshold: threshold}
	if len(vals) == 0 {
		return s
	}
	s.Avg = mean(vals)
	if len(vals) >= p.risk.SpikeMinCount && s.Avg > threshold {
		s.Bonus = math.Min(p.risk.SpikeBonusCap, (s.Avg-threshold)*p.risk.SpikeBonusScale)
	}
	return s
}

// BaseRisk is the composition-only score before the time modifier, in [0, base_max].
func (p BaselinePredictor) BaseRisk(t MacroTotals) float64 {
	net := t.NetCarbs()
	raw := p.risk.LogScale*math.Log(net+1) -
		math.Min(p.risk.ProteinCap, max(t.Protein, 0)*p.risk.ProteinFactor) -
		math.Min(p.risk.FatCap, max(t.Fat, 0)*p.risk.FatFactor) -
		math.Min(p.risk.FibreCap, max(t.Fibre, 0)*p.risk.FibreFactor)
	return clamp(raw, 0, p.risk.BaseMax)
}

// Predict scores a meal. The result is always within [0, risk.max].
func (p BaselinePredictor) Predict(t MacroTotals, bucket TimeBucket, spikes SpikeSummary) RiskResult {
	mod, ok := p.risk.TimeModifiers[bucket]
	if !ok {
		mod = 1.0
	}
	net := t.NetCarbs()
	base := p.BaseRisk(t)
	risk := base*mod + spikes.Bonus
	if net > p.risk.FloorNetCarbs {
		risk = math.Max(risk, p.risk.FloorRisk)
	}
	risk = clamp(risk, 0, p.risk.Max)

	return RiskResult{
		NetCarbs:     net,
		BaseRisk:     base,
		TimeModifier: mod,
		Risk:         risk,
		Bucket:       bucket,
		Spikes:       spikes,
		Codes:        p.codes(t, bucket, spikes),
	}
}

func (p BaselinePredictor) codes(t MacroTotals, bucket TimeBucket, spikes SpikeSummary) []ReasonCode {
	r := p.reasons
	net := t.NetCarbs()
	var set reasonSet
	switch {
	case net >= r.HighNetCarbs:
		set.add(ReasonHighNetCarbs)
	case net >= r.ModerateNetCarbs:
		set.add(ReasonModerateNetCarbs)
	case net <= r.LowNetCarbs:
		set.add(ReasonLowNetCarbs)
	}
	if t.Fibre < r.LowFibreMax && net >= r.LowFibreMinNet {
		set.add(ReasonLowFibre)
	}
	if t.Protein < r.LowProteinMax && net >= r.LowProteinMinNet {
		set.add(ReasonLowProtein)
	}
	if t.Protein >= r.ProteinBuffer {
		set.add(ReasonProteinBuffer)
	}
	if t.Fat >= r.FatBuffer {
		set.add(ReasonFatBuffer)
	}
	if t.Fibre >= r.FibreBuffer {
		set.add(ReasonFibreBuffer)
	}
	if bucket == BucketEvening || bucket == BucketNight {
		set.add(ReasonLateMeal)
	}
	if spikes.Bonus > 0 {
		set.add(ReasonRecentSpikes)
	}
	return set.codes
}
