package prediction

import "sort"

type BenefitLevel string

const (
	BenefitHigh   BenefitLevel = "high"
	BenefitMedium BenefitLevel = "medium"
	BenefitLow    BenefitLevel = "low"
)

func (b BenefitLevel) weight() int {
	switch b {
	case BenefitHigh:
		return 0
	case BenefitMedium:
		return 1
	default:
		return 2
	}
}

type ActionType string

const (
	ActionReducePortion  ActionType = "reduce_portion"
	ActionFibreFirst     ActionType = "fibre_first"
	ActionAddProtein     ActionType = "add_protein"
	ActionPostMealWalk   ActionType = "post_meal_walk"
	ActionEatEarlier     ActionType = "eat_earlier"
	ActionRestAndHydrate ActionType = "rest_and_hydrate"
	ActionKeepGoing      ActionType = "keep_going"
)

type Tip struct {
	Title        string       `json:"title"`
	Detail       string       `json:"detail"`
	BenefitLevel BenefitLevel `json:"benefit_level"`
	ActionType   ActionType   `json:"action_type"`
}

var tipCatalogue = map[ReasonCode][]Tip{
	ReasonHighNetCarbs: {{
		Title:        "Trim the starch portion",
		Detail:       "A smaller serving of the starchy part of this meal usually softens the rise.",
		BenefitLevel: BenefitHigh,
		ActionType:   ActionReducePortion,
	}},
	ReasonModerateNetCarbs: {{
		Title:        "Start with vegetables",
		Detail:       "Eating the vegetables or salad first tends to slow how quickly carbs land.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionFibreFirst,
	}},
	ReasonLowFibre: {{
		Title:        "Add something high in fibre",
		Detail:       "Beans, greens or whole grains alongside this meal can blunt the peak.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionFibreFirst,
	}},
	ReasonLowProtein: {{
		Title:        "Pair it with protein",
		Detail:       "Adding eggs, yoghurt, fish or tofu can make the response gentler.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionAddProtein,
	}},
	ReasonLateMeal: {
		{
			Title:        "Take a short walk after eating",
			Detail:       "A light walk soon after a later meal helps your body use the carbs.",
			BenefitLevel: BenefitHigh,
			ActionType:   ActionPostMealWalk,
		},
		{
			Title:        "Shift this meal earlier",
			Detail:       "The same meal earlier in the day tends to produce a smaller rise for you.",
			BenefitLevel: BenefitLow,
			ActionType:   ActionEatEarlier,
		},
	},
	ReasonRecentSpikes: {{
		Title:        "Go lighter for a few meals",
		Detail:       "Your recent readings ran high after meals, so a smaller portion is a safer bet.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionReducePortion,
	}},
	ReasonSimilarMealsSpiked: {{
		Title:        "Tweak what worked against you before",
		Detail:       "Similar meals pushed you higher in the past; try a smaller portion this time.",
		BenefitLevel: BenefitHigh,
		ActionType:   ActionReducePortion,
	}},
	ReasonSimilarMealsStable: {{
		Title:        "Keep doing what works",
		Detail:       "Meals like this have stayed steady for you before.",
		BenefitLevel: BenefitLow,
		ActionType:   ActionKeepGoing,
	}},
	ReasonRecentInactivity: {{
		Title:        "Move a little after the meal",
		Detail:       "You have not logged activity today; a short walk afterwards can help.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionPostMealWalk,
	}},
	ReasonRecentHighBaseline: {{
		Title:        "Start lighter today",
		Detail:       "Your levels were already up before this meal, so a lighter plate gives more room.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionReducePortion,
	}},
	ReasonHighVariability: {{
		Title:        "Keep this one simple",
		Detail:       "Your readings have been swinging today; a balanced plate helps steady things.",
		BenefitLevel: BenefitLow,
		ActionType:   ActionAddProtein,
	}},
	ReasonLowSleepSevere: {{
		Title:        "Go easy after a short night",
		Detail:       "Little sleep can make the same meal hit harder; rest and water help.",
		BenefitLevel: BenefitHigh,
		ActionType:   ActionRestAndHydrate,
	}},
	ReasonLowSleepModerate: {{
		Title:        "Factor in last night",
		Detail:       "Less sleep than usual can raise your response; plan a lighter option.",
		BenefitLevel: BenefitMedium,
		ActionType:   ActionRestAndHydrate,
	}},
	ReasonLowSleepMild: {{
		Title:        "Stay hydrated",
		Detail:       "Slightly short sleep can nudge your response up; water and an early night help.",
		BenefitLevel: BenefitLow,
		ActionType:   ActionRestAndHydrate,
	}},
}

// Tips picks catalogue entries for the given codes, one per action type, best benefit first,
// capped at limit. Ties keep the order the codes were given in.
func Tips(codes []ReasonCode, limit int) []Tip {
	out := []Tip{}
	seen := map[ActionType]int{}
	for _, c := range codes {
		for _, tip := range tipCatalogue[c] {
			if i, ok := seen[tip.ActionType]; ok {
				if tip.BenefitLevel.weight() < out[i].BenefitLevel.weight() {
					out[i] = tip
				}
				continue
			}
			seen[tip.ActionType] = len(out)
			out = append(out, tip)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BenefitLevel.weight() < out[j].BenefitLevel.weight()
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
