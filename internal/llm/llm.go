// Package llm is the text-generation collaborator used by the breakdown and
// QC stages. Callers depend on Completer only.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"shotlist/internal/config"
)

// Params are the sampling parameters forwarded to the model. Zero values
// mean "provider default".
type Params struct {
	System      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
	Seed        int64
	Stop        []string
}

type Completer interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// DefaultParams builds sampling parameters from config.
func DefaultParams(cfg config.Config) Params {
	return Params{MaxTokens: cfg.LLMMaxTokens, Temperature: cfg.LLMTemperature}
}

// New returns the completer named by LLM_PROVIDER.
func New(cfg config.Config) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "anthropic":
		return NewAnthropicClient(cfg)
	case "mock":
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s", cfg.LLMProvider)
	}
}

// Mock replays scripted responses in order and records every prompt. Once
// the script runs out the last response repeats.
type Mock struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
	Params    []Params
}

func (m *Mock) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.Prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
