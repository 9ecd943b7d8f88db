package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/platform/gemini"
	"github.com/yungbote/glucobridge-backend/internal/platform/openai"
)

const systemPrompt = `You write short, friendly explanations for a meal check feature.
For each reason code you are given, write exactly one plain sentence addressed to the user.
Never use numbers, percentages or medical terms. Never give a diagnosis or treatment advice.
Keep each sentence under twenty words.`

var driversSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"drivers"},
	"properties": map[string]any{
		"drivers": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"reason_code", "text"},
				"properties": map[string]any{
					"reason_code": map[string]any{"type": "string"},
					"text":        map[string]any{"type": "string"},
				},
			},
		},
	},
}

func userPrompt(req Request) string {
	codes := make([]string, 0, len(req.Codes))
	for _, c := range req.Codes {
		codes = append(codes, string(c))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Meal: %s\n", strings.TrimSpace(req.MealName))
	fmt.Fprintf(&b, "Time of day: %s\n", req.TimeBucket)
	fmt.Fprintf(&b, "Reason codes: %s\n", strings.Join(codes, ", "))
	b.WriteString(`Return JSON: {"drivers":[{"reason_code":"...","text":"..."}]}`)
	return b.String()
}

type driversPayload struct {
	Drivers []struct {
		ReasonCode string `json:"reason_code"`
		Text       string `json:"text"`
	} `json:"drivers"`
}

// collect keeps only texts for requested codes.
func (p driversPayload) collect(req Request) map[prediction.ReasonCode]string {
	want := make(map[prediction.ReasonCode]bool, len(req.Codes))
	for _, c := range req.Codes {
		want[c] = true
	}
	out := map[prediction.ReasonCode]string{}
	for _, d := range p.Drivers {
		c := prediction.ReasonCode(strings.ToUpper(strings.TrimSpace(d.ReasonCode)))
		if want[c] && strings.TrimSpace(d.Text) != "" {
			out[c] = d.Text
		}
	}
	return out
}

// OpenAIProvider asks the Responses API for schema-constrained driver text.
type OpenAIProvider struct {
	client  openai.Client
	timeout time.Duration
}

func NewOpenAIProvider(client openai.Client, timeout time.Duration) *OpenAIProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIProvider{client: client, timeout: timeout}
}

func (p *OpenAIProvider) Name() string { return "openai:" + p.client.Model() }

func (p *OpenAIProvider) Explain(ctx context.Context, req Request) (map[prediction.ReasonCode]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	obj, err := p.client.GenerateJSON(ctx, systemPrompt, userPrompt(req), "meal_drivers", driversSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderFailed, p.Name(), err)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderFailed, p.Name(), err)
	}
	var payload driversPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderFailed, p.Name(), err)
	}
	return payload.collect(req), nil
}

// GeminiProvider asks GenAI for the same JSON shape through its JSON response mode.
type GeminiProvider struct {
	client  gemini.Client
	timeout time.Duration
}

func NewGeminiProvider(client gemini.Client, timeout time.Duration) *GeminiProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiProvider{client: client, timeout: timeout}
}

func (p *GeminiProvider) Name() string { return "gemini:" + p.client.Model() }

func (p *GeminiProvider) Explain(ctx context.Context, req Request) (map[prediction.ReasonCode]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	text, err := p.client.GenerateText(ctx, systemPrompt, userPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderFailed, p.Name(), err)
	}
	var payload driversPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrProviderFailed, p.Name(), err)
	}
	return payload.collect(req), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
