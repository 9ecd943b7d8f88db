package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/pkg/pointers"
)

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard([]string{"rice", "chicken"}, []string{"chicken", "rice"}))
	assert.Equal(t, 0.0, Jaccard([]string{"rice"}, []string{"salad"}))
	assert.Equal(t, 1.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]string{"rice"}, nil))
	assert.InDelta(t, 1.0/3.0, Jaccard([]string{"rice", "chicken"}, []string{"rice", "beef"}), 1e-9)

	sets := [][]string{nil, {"a"}, {"a", "b"}, {"b", "c", "d"}, {"a", "a", "b"}}
	for _, a := range sets {
		for _, b := range sets {
			j := Jaccard(a, b)
			require.GreaterOrEqual(t, j, 0.0)
			require.LessOrEqual(t, j, 1.0)
			require.Equal(t, j, Jaccard(b, a))
		}
	}
}

func TestTokenizer_Tokens(t *testing.T) {
	tk := NewTokenizer(DefaultConstants())
	got := tk.Tokens("White Rice & Chicken, with the sauce!", "rice bowl", "a la carte")
	assert.Equal(t, []string{"white", "rice", "chicken", "sauce", "bowl", "carte"}, got)
	assert.Empty(t, tk.Tokens("", "an of", "  "))
}

func TestTokenizer_DraftTokensIncludeItems(t *testing.T) {
	tk := NewTokenizer(DefaultConstants())
	d := MealDraft{Name: "Dinner", Items: []MealItem{{DisplayName: "Salmon fillet"}, {DisplayName: "Brown rice"}}}
	assert.Equal(t, []string{"dinner", "salmon", "fillet", "brown", "rice"}, tk.DraftTokens(d))
}

func review(name string, peak float64, ttp *float64, outcome string) *types.MealReview {
	return &types.MealReview{
		MealName:      name,
		PeakDelta:     peak,
		TimeToPeakMin: ttp,
		OutcomeTag:    outcome,
		Status:        types.ReviewStatusCompleted,
		ReviewedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemory_MatchAggregatesBestReviews(t *testing.T) {
	m := NewMemory(DefaultConstants())
	candidate := []string{"white", "rice", "chicken"}
	pending := review("white rice chicken", 9, nil, types.OutcomeSpike)
	pending.Status = types.ReviewStatusPending

	reviews := []*types.MealReview{
		review("White rice with chicken", 4.0, pointers.Float64(50), types.OutcomeSpike),
		review("Chicken salad", 1.0, nil, types.OutcomeStable),
		review("Fried rice", 3.0, pointers.Float64(70), types.OutcomeSpike),
		review("Porridge", 2.0, nil, types.OutcomeStable),
		pending,
		nil,
	}
	got := m.Match(candidate, reviews)

	require.Equal(t, 3, got.K)
	assert.Equal(t, "White rice with chicken", got.TopMatches[0].MealName)
	assert.Equal(t, 1.0, got.TopMatches[0].Score)
	assert.Equal(t, "Chicken salad", got.TopMatches[1].MealName)
	assert.Equal(t, "Fried rice", got.TopMatches[2].MealName)
	assert.InDelta(t, (4.0+1.0+3.0)/3, got.AvgPeakDelta, 1e-9)
	require.NotNil(t, got.AvgPeakTimeMin)
	assert.InDelta(t, 60.0, *got.AvgPeakTimeMin, 1e-9)
	assert.InDelta(t, 2.0/3.0, got.SpikeRate, 1e-9)
	assert.InDelta(t, 0.3, got.Weight, 1e-9)
	assert.Equal(t, []ReasonCode{ReasonSimilarMealsSpiked}, m.Codes(got))
}

func TestMemory_MatchCapsAndWeights(t *testing.T) {
	m := NewMemory(DefaultConstants())
	var reviews []*types.MealReview
	for i := 0; i < 8; i++ {
		reviews = append(reviews, review("Oat porridge", 1.0, nil, types.OutcomeStable))
	}
	got := m.Match([]string{"oat", "porridge"}, reviews)
	assert.Equal(t, 5, got.K)
	assert.Len(t, got.TopMatches, 5)
	assert.InDelta(t, 0.4, got.Weight, 1e-9)
	assert.Nil(t, got.AvgPeakTimeMin)
	assert.Equal(t, []ReasonCode{ReasonSimilarMealsStable}, m.Codes(got))
}

func TestMemory_NoCandidateTokens(t *testing.T) {
	m := NewMemory(DefaultConstants())
	got := m.Match(nil, []*types.MealReview{review("Rice", 1, nil, types.OutcomeStable)})
	assert.Zero(t, got.K)
	assert.NotNil(t, got.TopMatches)
	assert.Empty(t, m.Codes(got))
}
