package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/glucobridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction/explain"
	"github.com/yungbote/glucobridge-backend/internal/observability"
)

type slowProvider struct{}

func (slowProvider) Name() string { return "slow" }

func (slowProvider) Explain(ctx context.Context, _ explain.Request) (map[prediction.ReasonCode]string, error) {
	<-ctx.Done()
	return nil, errors.Join(explain.ErrProviderFailed, ctx.Err())
}

type fixedProvider map[prediction.ReasonCode]string

func (fixedProvider) Name() string { return "fixed" }

func (p fixedProvider) Explain(context.Context, explain.Request) (map[prediction.ReasonCode]string, error) {
	return p, nil
}

func TestExplanationService_BudgetFallsBackToTemplates(t *testing.T) {
	log := testutil.Logger(t)
	m := observability.NewMetrics()
	svc := NewExplanationService(log, explain.NewChain(log, slowProvider{}), m, 20*time.Millisecond)

	got := svc.Drivers(context.Background(), explain.Request{
		Codes: []prediction.ReasonCode{prediction.ReasonHighNetCarbs, prediction.ReasonLateMeal},
	})
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, explain.Template(d.ReasonCode), d.Text)
	}
	assert.Equal(t, []string{"slow", "template"}, svc.Providers())
}

func TestExplanationService_PartialProviderOutput(t *testing.T) {
	log := testutil.Logger(t)
	provider := fixedProvider{prediction.ReasonHighNetCarbs: "A big serving of starch tends to lift glucose quickly."}
	svc := NewExplanationService(log, explain.NewChain(log, provider), nil, 0)

	got := svc.Drivers(context.Background(), explain.Request{
		Codes: []prediction.ReasonCode{prediction.ReasonHighNetCarbs, prediction.ReasonLateMeal},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "A big serving of starch tends to lift glucose quickly.", got[0].Text)
	assert.Equal(t, explain.Template(prediction.ReasonLateMeal), got[1].Text)
}
