package prediction

// ReasonCode is a fixed-vocabulary tag naming a contributing factor.
type ReasonCode string

const (
	ReasonHighNetCarbs       ReasonCode = "HIGH_NET_CARBS"
	ReasonModerateNetCarbs   ReasonCode = "MODERATE_NET_CARBS"
	ReasonLowNetCarbs        ReasonCode = "LOW_NET_CARBS"
	ReasonLowFibre           ReasonCode = "LOW_FIBRE"
	ReasonLowProtein         ReasonCode = "LOW_PROTEIN"
	ReasonProteinBuffer      ReasonCode = "PROTEIN_BUFFER"
	ReasonFatBuffer          ReasonCode = "FAT_BUFFER"
	ReasonFibreBuffer        ReasonCode = "FIBRE_BUFFER"
	ReasonLateMeal           ReasonCode = "LATE_MEAL"
	ReasonRecentSpikes       ReasonCode = "RECENT_SPIKES"
	ReasonSimilarMealsSpiked ReasonCode = "SIMILAR_MEALS_SPIKED"
	ReasonSimilarMealsStable ReasonCode = "SIMILAR_MEALS_STABLE"
	ReasonRecentActivity     ReasonCode = "RECENT_ACTIVITY"
	ReasonRecentInactivity   ReasonCode = "RECENT_INACTIVITY"
	ReasonRecentHighBaseline ReasonCode = "RECENT_HIGH_BASELINE"
	ReasonHighVariability    ReasonCode = "HIGH_VARIABILITY"
	ReasonLowSleepMild       ReasonCode = "LOW_SLEEP_MILD"
	ReasonLowSleepModerate   ReasonCode = "LOW_SLEEP_MODERATE"
	ReasonLowSleepSevere     ReasonCode = "LOW_SLEEP_SEVERE"
)

// Driver order: composition first, then timing, then history and context.
var reasonRank = map[ReasonCode]int{
	ReasonHighNetCarbs:       0,
	ReasonModerateNetCarbs:   1,
	ReasonLowFibre:           2,
	ReasonLowProtein:         3,
	ReasonLowNetCarbs:        4,
	ReasonFibreBuffer:        5,
	ReasonProteinBuffer:      6,
	ReasonFatBuffer:          7,
	ReasonLateMeal:           10,
	ReasonRecentSpikes:       20,
	ReasonSimilarMealsSpiked: 21,
	ReasonSimilarMealsStable: 22,
	ReasonRecentHighBaseline: 23,
	ReasonHighVariability:    24,
	ReasonLowSleepSevere:     30,
	ReasonLowSleepModerate:   31,
	ReasonLowSleepMild:       32,
	ReasonRecentInactivity:   33,
	ReasonRecentActivity:     34,
}

// Rank orders codes for presentation; unknown codes sort last.
func (c ReasonCode) Rank() int {
	if r, ok := reasonRank[c]; ok {
		return r
	}
	return 1 << 10
}

// KnownReason reports whether c belongs to the vocabulary.
func KnownReason(c ReasonCode) bool {
	_, ok := reasonRank[c]
	return ok
}

type reasonSet struct {
	seen  map[ReasonCode]bool
	codes []ReasonCode
}

func (s *reasonSet) add(c ReasonCode) {
	if s.seen == nil {
		s.seen = map[ReasonCode]bool{}
	}
	if s.seen[c] {
		return
	}
	s.seen[c] = true
	s.codes = append(s.codes, c)
}

func (s *reasonSet) addAll(cs []ReasonCode) {
	for _, c := range cs {
		s.add(c)
	}
}
