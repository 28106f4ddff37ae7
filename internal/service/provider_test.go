package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`), "unfenced text passes through")
}

func TestNewProviderSelection(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, "anthropic", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	p, err = NewProvider(ctx, "groq", "gsk-test")
	require.NoError(t, err)
	assert.Equal(t, "groq", p.Name())

	_, err = NewProvider(ctx, "clippy", "key")
	assert.Error(t, err)
}

type stubProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.responses[i], nil
}

func TestCompleteJSONParsesFencedResponse(t *testing.T) {
	stub := &stubProvider{responses: []string{"```json\n{\"name\":\"Jane\"}\n```"}}

	var out struct {
		Name string `json:"name"`
	}
	err := CompleteJSON(context.Background(), stub, CompletionRequest{Prompt: "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Name)
}

func TestCompleteJSONRejectsNonJSON(t *testing.T) {
	stub := &stubProvider{responses: []string{"I cannot help with that."}}

	var out map[string]string
	err := CompleteJSON(context.Background(), stub, CompletionRequest{Prompt: "x"}, &out)
	assert.Error(t, err)
}
