package explain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

type stubProvider struct {
	name  string
	out   map[prediction.ReasonCode]string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Explain(context.Context, Request) (map[prediction.ReasonCode]string, error) {
	s.calls++
	return s.out, s.err
}

var rice = Request{
	Codes:      []prediction.ReasonCode{prediction.ReasonHighNetCarbs, prediction.ReasonLowFibre, prediction.ReasonLateMeal},
	MealName:   "White rice bowl",
	TimeBucket: prediction.BucketEvening,
}

func TestChain_FallsThroughToTemplates(t *testing.T) {
	failing := &stubProvider{name: "a", err: errors.New("boom")}
	empty := &stubProvider{name: "b", out: map[prediction.ReasonCode]string{}}
	c := NewChain(logger.NewNop(), failing, empty)

	got := c.Explain(context.Background(), rice)

	require.Len(t, got, 3)
	for i, d := range got {
		assert.Equal(t, rice.Codes[i], d.ReasonCode)
		assert.Equal(t, Template(d.ReasonCode), d.Text)
	}
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, []string{"a", "b", "template"}, c.Providers())
}

func TestChain_StopsAtFirstUsableProviderAndFillsGaps(t *testing.T) {
	first := &stubProvider{name: "first", out: map[prediction.ReasonCode]string{
		prediction.ReasonHighNetCarbs: "  Rice brings a lot of\n carbs at once. ",
		prediction.ReasonLowFibre:     "Only 1g of fibre here.",
	}}
	second := &stubProvider{name: "second", out: map[prediction.ReasonCode]string{
		prediction.ReasonLateMeal: "Evening meals hit you harder.",
	}}
	got := NewChain(logger.NewNop(), first, second).Explain(context.Background(), rice)

	assert.Equal(t, []Driver{
		{Text: "Rice brings a lot of carbs at once.", ReasonCode: prediction.ReasonHighNetCarbs},
		{Text: Template(prediction.ReasonLowFibre), ReasonCode: prediction.ReasonLowFibre},
		{Text: Template(prediction.ReasonLateMeal), ReasonCode: prediction.ReasonLateMeal},
	}, got)
	assert.Zero(t, second.calls)
}

func TestChain_CancelledContextUsesTemplates(t *testing.T) {
	p := &stubProvider{name: "p", out: map[prediction.ReasonCode]string{prediction.ReasonHighNetCarbs: "x"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := NewChain(logger.NewNop(), p).Explain(ctx, rice)
	assert.Len(t, got, 3)
	assert.Zero(t, p.calls)
}

func TestChain_NoCodes(t *testing.T) {
	got := NewChain(logger.NewNop()).Explain(context.Background(), Request{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTemplates_CoverVocabularyAndPassSanitizer(t *testing.T) {
	for code, text := range templates {
		assert.True(t, prediction.KnownReason(code), code)
		clean, ok := Sanitize(text)
		assert.True(t, ok, "template for %s rejected", code)
		assert.Equal(t, text, clean)
	}
	assert.Equal(t, genericTemplate, Template("NOT_A_CODE"))
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Plain sentence.", "Plain sentence.", true},
		{"  \"Quoted\n\nline\"  ", "Quoted line", true},
		{"", "", false},
		{"Expect a 30% rise.", "", false},
		{"Expect about 2 mmol more.", "", false},
		{"This could indicate diabetes.", "", false},
		{"Talk to someone about your medication.", "", false},
	}
	for _, tc := range cases {
		got, ok := Sanitize(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	long, ok := Sanitize(strings.Repeat("word ", 80))
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(long)), maxTextLen)
	assert.True(t, strings.HasSuffix(long, "."))
	assert.NotContains(t, long, "\n")
}

type fakeGemini struct {
	text        string
	err         error
	sawDeadline bool
}

func (f *fakeGemini) Model() string { return "fake" }

func (f *fakeGemini) GenerateText(ctx context.Context, system, user string) (string, error) {
	_, f.sawDeadline = ctx.Deadline()
	return f.text, f.err
}

func TestGeminiProvider_ParsesAndFilters(t *testing.T) {
	f := &fakeGemini{text: "```json\n{\"drivers\":[{\"reason_code\":\"high_net_carbs\",\"text\":\"Lots of carbs.\"},{\"reason_code\":\"FAT_BUFFER\",\"text\":\"Not asked.\"}]}\n```"}
	p := NewGeminiProvider(f, time.Second)

	got, err := p.Explain(context.Background(), rice)
	require.NoError(t, err)
	assert.Equal(t, map[prediction.ReasonCode]string{prediction.ReasonHighNetCarbs: "Lots of carbs."}, got)
	assert.True(t, f.sawDeadline)
	assert.Equal(t, "gemini:fake", p.Name())
}

func TestGeminiProvider_WrapsFailures(t *testing.T) {
	_, err := NewGeminiProvider(&fakeGemini{err: errors.New("quota")}, 0).Explain(context.Background(), rice)
	assert.ErrorIs(t, err, ErrProviderFailed)

	_, err = NewGeminiProvider(&fakeGemini{text: "not json"}, 0).Explain(context.Background(), rice)
	assert.ErrorIs(t, err, ErrProviderFailed)
}

type fakeOpenAI struct {
	obj map[string]any
	err error
}

func (f *fakeOpenAI) GenerateJSON(context.Context, string, string, string, map[string]any) (map[string]any, error) {
	return f.obj, f.err
}

func (f *fakeOpenAI) GenerateText(context.Context, string, string) (string, error) {
	return "", errors.New("unused")
}

func (f *fakeOpenAI) Model() string { return "gpt-test" }

func TestOpenAIProvider_Explain(t *testing.T) {
	p := NewOpenAIProvider(&fakeOpenAI{obj: map[string]any{
		"drivers": []any{
			map[string]any{"reason_code": "LATE_MEAL", "text": "Later meals land harder for you."},
			map[string]any{"reason_code": "LOW_FIBRE", "text": "   "},
		},
	}}, 0)
	got, err := p.Explain(context.Background(), rice)
	require.NoError(t, err)
	assert.Equal(t, map[prediction.ReasonCode]string{prediction.ReasonLateMeal: "Later meals land harder for you."}, got)

	_, err = NewOpenAIProvider(&fakeOpenAI{err: errors.New("503")}, 0).Explain(context.Background(), rice)
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestUserPrompt_CarriesNoNumbers(t *testing.T) {
	p := userPrompt(rice)
	assert.Contains(t, p, "HIGH_NET_CARBS, LOW_FIBRE, LATE_MEAL")
	assert.Contains(t, p, "evening")
}
