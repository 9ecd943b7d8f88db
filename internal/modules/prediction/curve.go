package prediction

import "math"

// CurveGenerator shapes the 0–180 minute response: a power-law rise to the peak followed by
// exponential decay. The shape is fixed; only its parameters are personalized.
type CurveGenerator struct {
	c CurveConstants
}

func NewCurveGenerator(c Constants) CurveGenerator {
	return CurveGenerator{c: c.Curve}
}

// PersonalWeight is the share given to the personalized estimate for a data-quality tier.
func (g CurveGenerator) PersonalWeight(q DataQuality) float64 {
	if w, ok := g.c.PersonalWeights[q]; ok {
		return w
	}
	return g.c.PersonalWeights[QualityNone]
}

// BasePeakDelta blends the personalized estimate with the risk-derived one. Unclamped.
func (g CurveGenerator) BasePeakDelta(netCarbs, risk float64, p Profile, bucket TimeBucket) float64 {
	personal := (netCarbs / g.c.CarbUnit) * p.CarbSensitivity * p.Multiplier(bucket)
	fromRisk := (risk/100)*g.c.RiskScale + (netCarbs/g.c.NetCarbScale)*g.c.NetCarbFactor
	w := g.PersonalWeight(p.DataQuality)
	return w*personal + (1-w)*fromRisk
}

// BlendSimilar pulls peak delta and peak time toward what similar meals did.
func (g CurveGenerator) BlendSimilar(peakDelta, peakTime float64, s SimilarSummary) (float64, float64) {
	if s.K == 0 || s.Weight <= 0 {
		return peakDelta, peakTime
	}
	w := s.Weight
	peakDelta = (1-w)*peakDelta + w*s.AvgPeakDelta
	if s.AvgPeakTimeMin != nil {
		peakTime = (1-w)*peakTime + w**s.AvgPeakTimeMin
	}
	return peakDelta, peakTime
}

// ClampPeakDelta bounds a peak delta to the configured range.
func (g CurveGenerator) ClampPeakDelta(v float64) float64 {
	return g.c.PeakDeltaRange.Clamp(v)
}

// Decay is the falling-limb rate; high-quality profiles decay faster.
func (g CurveGenerator) Decay(q DataQuality) float64 {
	if q == QualityHigh {
		return g.c.Decay + g.c.HighQualityDecay
	}
	return g.c.Decay
}

// Points samples baseline + delta(t) every step from 0 to the horizon, rounded to 0.1.
func (g CurveGenerator) Points(baseline, peakDelta, peakTime float64, q DataQuality) []CurvePoint {
	if peakTime <= 0 {
		peakTime = 1
	}
	decay := g.Decay(q)
	out := make([]CurvePoint, 0, g.c.HorizonMin/g.c.StepMin+1)
	for t := 0; t <= g.c.HorizonMin; t += g.c.StepMin {
		ft := float64(t)
		var delta float64
		if ft <= peakTime {
			delta = peakDelta * math.Pow(ft/peakTime, g.c.RiseExponent)
		} else {
			delta = peakDelta * math.Exp(-decay*(ft-peakTime))
		}
		out = append(out, CurvePoint{TMin: t, GlucoseValue: round1(math.Max(0, baseline+delta))})
	}
	return out
}
