package prediction

import types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"

// MacroTotals are meal-level sums of nutrient × quantity.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs_g"`
	Fibre    float64 `json:"fibre_g"`
	Protein  float64 `json:"protein_g"`
	Fat      float64 `json:"fat_g"`
}

// NetCarbs is carbs minus fibre, floored at zero.
func (m MacroTotals) NetCarbs() float64 {
	return max(m.Carbs-m.Fibre, 0)
}

// Aggregate sums item nutrients scaled by quantity. A nil quantity counts as one unit and
// negative contributions are dropped.
func Aggregate(items []MealItem) MacroTotals {
	var t MacroTotals
	for _, it := range items {
		q := 1.0
		if it.Quantity != nil {
			q = finite(*it.Quantity)
		}
		t.Calories += finite(it.Nutrients.Calories) * q
		t.Carbs += finite(it.Nutrients.CarbsG) * q
		t.Fibre += finite(it.Nutrients.FibreG) * q
		t.Protein += finite(it.Nutrients.ProteinG) * q
		t.Fat += finite(it.Nutrients.FatG) * q
	}
	return t
}

// AggregateLogged sums a persisted meal's items.
func AggregateLogged(meal *types.MealLog) MacroTotals {
	if meal == nil {
		return MacroTotals{}
	}
	items := make([]MealItem, 0, len(meal.Items))
	for _, it := range meal.Items {
		q := it.Quantity
		items = append(items, MealItem{
			DisplayName: it.DisplayName,
			Quantity:    &q,
			Nutrients: Nutrients{
				Calories: it.Calories,
				CarbsG:   it.CarbsG,
				ProteinG: it.ProteinG,
				FatG:     it.FatG,
				FibreG:   it.FibreG,
			},
		})
	}
	return Aggregate(items)
}
