package explain

import (
	"context"

	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
)

var templates = map[prediction.ReasonCode]string{
	prediction.ReasonHighNetCarbs:       "This meal is carb heavy, which usually drives a bigger rise.",
	prediction.ReasonModerateNetCarbs:   "This meal has a moderate amount of carbs.",
	prediction.ReasonLowNetCarbs:        "This meal is light on carbs, so the rise should stay small.",
	prediction.ReasonLowFibre:           "There is little fibre here to slow the carbs down.",
	prediction.ReasonLowProtein:         "There is not much protein to balance the carbs.",
	prediction.ReasonProteinBuffer:      "The protein in this meal helps soften the rise.",
	prediction.ReasonFatBuffer:          "The fat in this meal slows how quickly carbs are absorbed.",
	prediction.ReasonFibreBuffer:        "The fibre in this meal helps slow the carbs down.",
	prediction.ReasonLateMeal:           "Later meals tend to produce a bigger response for you.",
	prediction.ReasonRecentSpikes:       "Your readings after meals have been running high lately.",
	prediction.ReasonSimilarMealsSpiked: "Similar meals have pushed your levels up before.",
	prediction.ReasonSimilarMealsStable: "Similar meals have kept you steady before.",
	prediction.ReasonRecentActivity:     "Your recent activity should help your body handle this meal.",
	prediction.ReasonRecentInactivity:   "You have not logged any activity today.",
	prediction.ReasonRecentHighBaseline: "Your levels were already elevated before this meal.",
	prediction.ReasonHighVariability:    "Your readings have been swinging more than usual today.",
	prediction.ReasonLowSleepMild:       "You slept a little less than usual last night.",
	prediction.ReasonLowSleepModerate:   "Short sleep last night can make this meal hit harder.",
	prediction.ReasonLowSleepSevere:     "Very little sleep last night can noticeably raise your response.",
}

const genericTemplate = "This factor may influence how you respond to this meal."

// TemplateProvider is the deterministic last resort. It always answers every code.
type TemplateProvider struct{}

func (TemplateProvider) Name() string { return "template" }

func (TemplateProvider) Explain(_ context.Context, req Request) (map[prediction.ReasonCode]string, error) {
	out := make(map[prediction.ReasonCode]string, len(req.Codes))
	for _, c := range req.Codes {
		out[c] = Template(c)
	}
	return out, nil
}

// Template returns the fixed phrase for a code.
func Template(c prediction.ReasonCode) string {
	if t, ok := templates[c]; ok {
		return t
	}
	return genericTemplate
}
