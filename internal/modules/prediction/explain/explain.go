package explain

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
)

// ErrProviderFailed wraps any upstream generation failure. The chain never returns it.
var ErrProviderFailed = errors.New("explanation provider failed")

// Driver is one user-facing contributing factor.
type Driver struct {
	Text       string                `json:"text"`
	ReasonCode prediction.ReasonCode `json:"reason_code"`
}

// Request carries only coarse context: codes, the meal name and the time of day. Numbers never
// reach a provider.
type Request struct {
	Codes      []prediction.ReasonCode
	MealName   string
	TimeBucket prediction.TimeBucket
}

// Provider turns reason codes into one sentence each. Partial answers are allowed.
type Provider interface {
	Name() string
	Explain(ctx context.Context, req Request) (map[prediction.ReasonCode]string, error)
}

// DefaultTimeout bounds one LLM provider call.
const DefaultTimeout = 4 * time.Second
