package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// =============================================================================
// GEMINI CLIENT
// =============================================================================

// GeminiConfig configures the Gemini-backed client.
type GeminiConfig struct {
	APIKey       string
	DefaultModel string
	Timeout      time.Duration // per-call deadline; 0 means no local deadline
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:       apiKey,
		DefaultModel: "gemini-2.5-flash",
		Timeout:      2 * time.Minute,
	}
}

// GeminiClient implements Client against the Google GenAI API.
type GeminiClient struct {
	client       *genai.Client
	defaultModel string
	timeout      time.Duration
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := strings.TrimSpace(config.DefaultModel)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiClient{
		client:       client,
		defaultModel: model,
		timeout:      config.Timeout,
	}, nil
}

// Complete runs a plain-text completion with the default model.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.defaultModel, "", prompt, 0.7, 0, false)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CompleteStructured runs a completion that must return JSON.
func (c *GeminiClient) CompleteStructured(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	return c.generate(ctx, model, req.SystemPrompt, req.UserPrompt, req.Temperature, req.MaxTokens, true)
}

func (c *GeminiClient) generate(ctx context.Context, model, system, user string, temperature float32, maxTokens int32, structured bool) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = maxTokens
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if structured {
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}

	resp := &Response{
		Text:    result.Text(),
		Latency: time.Since(start),
	}
	if result.UsageMetadata != nil {
		resp.Tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	return resp, nil
}
