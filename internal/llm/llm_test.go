package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"shotlist/internal/config"
)

func TestMockReplaysScript(t *testing.T) {
	m := &Mock{Responses: []string{"one", "two"}}
	ctx := context.Background()
	for i, want := range []string{"one", "two", "two"} {
		got, err := m.Complete(ctx, "p", Params{MaxTokens: 10})
		if err != nil || got != want {
			t.Fatalf("call %d: got %q err=%v", i, got, err)
		}
	}
	if m.Calls() != 3 || m.Params[0].MaxTokens != 10 {
		t.Fatalf("calls=%d params=%+v", m.Calls(), m.Params)
	}
}

func TestMockError(t *testing.T) {
	boom := errors.New("boom")
	m := &Mock{Err: boom}
	if _, err := m.Complete(context.Background(), "p", Params{}); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestNewProviders(t *testing.T) {
	c, err := New(config.Config{LLMProvider: "mock"})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if _, ok := c.(*Mock); !ok {
		t.Fatalf("got %T", c)
	}
	if _, err := New(config.Config{LLMProvider: "anthropic"}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := New(config.Config{LLMProvider: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := New(config.Config{LLMProvider: "anthropic", AnthropicAPIKey: "k", LLMModel: "m"}); err != nil {
		t.Fatalf("anthropic: %v", err)
	}
}

func TestRateLimiterSpacesCalls(t *testing.T) {
	r := NewRateLimiter(20)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := r.WaitTurn(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("calls not spaced: %v", elapsed)
	}
}

func TestRateLimiterHonoursCancel(t *testing.T) {
	r := NewRateLimiter(1)
	_ = r.WaitTurn(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.WaitTurn(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}
