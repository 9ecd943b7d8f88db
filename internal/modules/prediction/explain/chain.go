package explain

import (
	"context"

	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

// Chain tries providers in order and always ends with the templates. The numeric result
// never depends on it.
type Chain struct {
	log       *logger.Logger
	providers []Provider
}

func NewChain(log *logger.Logger, providers ...Provider) *Chain {
	ps := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Chain{log: log.With("component", "ExplanationChain"), providers: ps}
}

// Providers lists the configured provider names, templates last.
func (c *Chain) Providers() []string {
	out := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		out = append(out, p.Name())
	}
	return append(out, TemplateProvider{}.Name())
}

// Explain returns one driver per code, in code order. Texts a provider omits or that fail
// sanitizing are filled from templates.
func (c *Chain) Explain(ctx context.Context, req Request) []Driver {
	out := make([]Driver, 0, len(req.Codes))
	if len(req.Codes) == 0 {
		return out
	}
	var texts map[prediction.ReasonCode]string
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		got, err := p.Explain(ctx, req)
		if err != nil {
			c.log.Warn("explanation provider failed; trying next", "provider", p.Name(), "error", err)
			continue
		}
		clean := make(map[prediction.ReasonCode]string, len(got))
		for code, text := range got {
			if s, ok := Sanitize(text); ok {
				clean[code] = s
			}
		}
		if len(clean) == 0 {
			c.log.Warn("explanation provider returned nothing usable; trying next", "provider", p.Name())
			continue
		}
		if len(clean) < len(req.Codes) {
			c.log.Debug("explanation provider partial; filling from templates",
				"provider", p.Name(), "have", len(clean), "want", len(req.Codes))
		}
		texts = clean
		break
	}
	for _, code := range req.Codes {
		text, ok := texts[code]
		if !ok {
			text = Template(code)
		}
		out = append(out, Driver{Text: text, ReasonCode: code})
	}
	return out
}
