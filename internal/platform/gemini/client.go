package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/glucobridge-backend/internal/platform/envutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

// Client generates short text completions through the Google GenAI SDK.
type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	Model() string
}

type Config struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:          envutil.String("GEMINI_API_KEY", ""),
		Model:           envutil.String("GEMINI_MODEL", "gemini-2.0-flash"),
		Temperature:     envutil.Float("GEMINI_TEMPERATURE", 0.2),
		MaxOutputTokens: envutil.Int("GEMINI_MAX_OUTPUT_TOKENS", 512),
	}
}

type client struct {
	log   *logger.Logger
	cfg   Config
	genai *genai.Client
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &client{
		log:   log.With("client", "GeminiClient", "model", cfg.Model),
		cfg:   cfg,
		genai: gc,
	}, nil
}

func (c *client) Model() string { return c.cfg.Model }

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	conf := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(c.cfg.Temperature)),
		ResponseMIMEType: "application/json",
	}
	if c.cfg.MaxOutputTokens > 0 {
		conf.MaxOutputTokens = int32(c.cfg.MaxOutputTokens)
	}
	if strings.TrimSpace(system) != "" {
		conf.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(user), conf)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("GenAI returned no text")
	}
	c.log.Debug("GenAI generate ok", "chars", len(text))
	return text, nil
}
