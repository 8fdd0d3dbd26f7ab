package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"shotlist/internal/config"
	"shotlist/internal/log"
)

type AnthropicClient struct {
	client  anthropic.Client
	model   string
	limiter *RateLimiter
	timeout time.Duration
}

func NewAnthropicClient(cfg config.Config) (*AnthropicClient, error) {
	if err := cfg.Require("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey); err != nil {
		return nil, err
	}
	return &AnthropicClient{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		model:   cfg.LLMModel,
		limiter: NewRateLimiter(cfg.LLMRateLimitRPS),
		timeout: time.Duration(cfg.LLMTimeoutMs) * time.Millisecond,
	}, nil
}

// Complete sends one user message. Seed has no Anthropic equivalent and is
// ignored.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	if err := c.limiter.WaitTurn(ctx); err != nil {
		return "", err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	maxTokens := int64(params.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		StopSequences: params.Stop,
	}
	if params.System != "" {
		req.System = []anthropic.TextBlockParam{{Text: params.System}}
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}
	if params.TopP > 0 {
		req.TopP = anthropic.Float(params.TopP)
	}
	if params.TopK > 0 {
		req.TopK = anthropic.Int(int64(params.TopK))
	}

	logger := log.WithComponent("llm")
	start := time.Now()
	message, err := c.client.Messages.New(ctx, req)
	if err != nil {
		logger.Error("anthropic request failed", "model", c.model, "error", err)
		return "", fmt.Errorf("anthropic api error: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			logger.Info("anthropic response",
				"model", c.model,
				"chars", len(block.Text),
				"tokens_in", message.Usage.InputTokens,
				"tokens_out", message.Usage.OutputTokens,
				"ms", time.Since(start).Milliseconds(),
			)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}
