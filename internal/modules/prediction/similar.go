package prediction

import (
	"math"
	"sort"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

type SimilarMealMatch struct {
	MealName  string  `json:"meal_name"`
	Score     float64 `json:"score"`
	PeakDelta float64 `json:"peak_delta"`
}

type SimilarSummary struct {
	K              int                `json:"k"`
	AvgPeakDelta   float64            `json:"avg_peak_delta"`
	AvgPeakTimeMin *float64           `json:"avg_peak_time_min"`
	SpikeRate      float64            `json:"spike_rate"`
	TopMatches     []SimilarMealMatch `json:"top_matches"`
	Weight         float64            `json:"weight"`
}

// Memory scores past meal reviews against a candidate token set.
type Memory struct {
	c         SimilarConstants
	tokenizer Tokenizer
}

func NewMemory(c Constants) Memory {
	return Memory{c: c.Similar, tokenizer: NewTokenizer(c)}
}

// ReviewLimit is how many recent completed reviews the caller should fetch.
func (m Memory) ReviewLimit() int { return m.c.MaxReviews }

type scoredReview struct {
	review *types.MealReview
	score  float64
}

// Match keeps reviews scoring at least min_score, best first, capped at max_matches. Reviews
// must be ordered newest first; ties keep that order. Reviews without stored tokens are
// tokenized from their meal name.
func (m Memory) Match(candidate []string, reviews []*types.MealReview) SimilarSummary {
	out := SimilarSummary{TopMatches: []SimilarMealMatch{}}
	if len(candidate) == 0 {
		return out
	}
	if len(reviews) > m.c.MaxReviews {
		reviews = reviews[:m.c.MaxReviews]
	}
	var scored []scoredReview
	for _, r := range reviews {
		if r == nil || r.Status != types.ReviewStatusCompleted {
			continue
		}
		toks := []string(r.Tokens)
		if len(toks) == 0 {
			toks = m.tokenizer.Tokens(r.MealName)
		}
		if len(toks) == 0 {
			continue
		}
		if s := Jaccard(candidate, toks); s >= m.c.MinScore {
			scored = append(scored, scoredReview{review: r, score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > m.c.MaxMatches {
		scored = scored[:m.c.MaxMatches]
	}
	if len(scored) == 0 {
		return out
	}

	var deltas, times []float64
	spikes := 0
	for _, s := range scored {
		deltas = append(deltas, s.review.PeakDelta)
		if s.review.TimeToPeakMin != nil && *s.review.TimeToPeakMin > 0 {
			times = append(times, *s.review.TimeToPeakMin)
		}
		if s.review.OutcomeTag == types.OutcomeSpike {
			spikes++
		}
		out.TopMatches = append(out.TopMatches, SimilarMealMatch{
			MealName:  s.review.MealName,
			Score:     math.Round(s.score*1000) / 1000,
			PeakDelta: s.review.PeakDelta,
		})
	}
	out.K = len(scored)
	out.AvgPeakDelta = mean(deltas)
	if len(times) > 0 {
		avg := mean(times)
		out.AvgPeakTimeMin = &avg
	}
	out.SpikeRate = float64(spikes) / float64(out.K)
	out.Weight = m.Weight(out.K)
	return out
}

// Weight is min(max_weight, weight_per_match·k).
func (m Memory) Weight(k int) float64 {
	return math.Min(m.c.MaxWeight, m.c.WeightPerMatch*float64(k))
}

// Codes flags consistently spiky or consistently stable history for similar meals.
func (m Memory) Codes(s SimilarSummary) []ReasonCode {
	if s.K < m.c.MinMatchesCode {
		return nil
	}
	switch {
	case s.SpikeRate >= m.c.SpikyRate:
		return []ReasonCode{ReasonSimilarMealsSpiked}
	case s.SpikeRate == 0:
		return []ReasonCode{ReasonSimilarMealsStable}
	}
	return nil
}
