package metabolic

import (
	"math"
	"time"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

type Decision int

const (
	// DecisionServeCached returns the stored row as is.
	DecisionServeCached Decision = iota
	DecisionCompute
)

// Freshness reports whether a stored profile may be served and how old it is in hours.
// A missing row, a forced refresh or a row at least FreshFor old all recompute.
func (b *Builder) Freshness(row *types.UserMetabolicProfile, now time.Time, force bool) (Decision, *float64) {
	if row == nil || row.ComputedAt.IsZero() {
		return DecisionCompute, nil
	}
	age := now.Sub(row.ComputedAt)
	hours := math.Round(age.Hours()*10) / 10
	if force || age >= b.cfg.FreshFor {
		return DecisionCompute, &hours
	}
	return DecisionServeCached, &hours
}
