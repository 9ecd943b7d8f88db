package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/glucobridge-backend/internal/modules/prediction/explain"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

// ExplanationService turns reason codes into driver sentences. It never fails; the worst case
// is template text.
type ExplanationService interface {
	Drivers(ctx context.Context, req explain.Request) []explain.Driver
	Providers() []string
}

type explanationService struct {
	log     *logger.Logger
	chain   *explain.Chain
	metrics *observability.Metrics
	budget  time.Duration
}

// NewExplanationService bounds the whole chain by budget. Each LLM provider still carries its
// own per-call timeout.
func NewExplanationService(log *logger.Logger, chain *explain.Chain, metrics *observability.Metrics, budget time.Duration) ExplanationService {
	return &explanationService{
		log:     log.With("service", "ExplanationService"),
		chain:   chain,
		metrics: metrics,
		budget:  budget,
	}
}

func (s *explanationService) Providers() []string { return s.chain.Providers() }

func (s *explanationService) Drivers(ctx context.Context, req explain.Request) []explain.Driver {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analyze.explain")
	defer span.End()
	if s.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	drivers := s.chain.Explain(ctx, req)
	templated := 0
	for _, d := range drivers {
		if d.Text == explain.Template(d.ReasonCode) {
			templated++
		}
	}
	status := "llm"
	switch {
	case len(drivers) == 0:
		status = "empty"
	case templated == len(drivers):
		status = "template"
	case templated > 0:
		status = "partial"
	}
	s.metrics.IncExplainOutcome(firstProvider(s.chain.Providers()), status)
	span.SetAttributes(
		attribute.Int("explain.codes", len(req.Codes)),
		attribute.Int("explain.templated", templated),
		attribute.String("explain.status", status),
	)
	return drivers
}

func firstProvider(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return names[0]
}
