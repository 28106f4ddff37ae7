package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CompletionRequest is one provider-agnostic LLM call.
type CompletionRequest struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// Provider is a callable model client for one AI vendor.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// OpenAI-compatible endpoints keyed by provider id. Anything not listed here
// is handled by a dedicated adapter.
var openAICompatibleBases = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"mistral":    "https://api.mistral.ai/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

// NewProvider maps a provider identifier and API key to a client.
func NewProvider(ctx context.Context, providerID, apiKey string) (Provider, error) {
	switch providerID {
	case "anthropic", "claude":
		return NewAnthropicClient(apiKey, ""), nil
	case "gemini", "google":
		return NewGeminiClient(ctx, apiKey)
	default:
		if base, ok := openAICompatibleBases[providerID]; ok {
			return NewOpenAIClient(providerID, apiKey, base), nil
		}
		return nil, fmt.Errorf("unknown AI provider %q", providerID)
	}
}

// CompleteWithRetry wraps a provider call in the standard retry policy.
func CompleteWithRetry(ctx context.Context, p Provider, req CompletionRequest) (string, error) {
	return WithRetry(ctx, DefaultRetryOptions, func() (string, error) {
		return p.Complete(ctx, req)
	})
}

// CompleteJSON runs a completion and unmarshals the (fence-stripped)
// response into v.
func CompleteJSON(ctx context.Context, p Provider, req CompletionRequest, v any) error {
	text, err := CompleteWithRetry(ctx, p, req)
	if err != nil {
		return err
	}
	text = stripCodeFences(strings.TrimSpace(text))
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parsing model JSON: %w (raw: %s)", err, truncate(text, 300))
	}
	return nil
}

// stripCodeFences removes markdown ```json ... ``` wrappers
func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
