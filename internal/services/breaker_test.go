package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterUpstreamFailures(t *testing.T) {
	llm := &stubLLM{err: &UpstreamError{Provider: "openai", StatusCode: 502}}
	client := NewBreakerLLMClient(llm, "test", BreakerConfig{MinRequests: 3, FailureRatio: 0.5, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := client.Complete(context.Background(), "p", "")
		require.Error(t, err)
	}
	require.Len(t, llm.prompts, 3)

	_, err := client.Complete(context.Background(), "p", "")
	assert.True(t, IsUpstream(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, llm.prompts, 3, "open breaker must not call the provider")
}

func TestBreakerIgnoresConfigurationErrors(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("%w: OPENAI_API_KEY not configured", ErrConfiguration)}
	client := NewBreakerLLMClient(llm, "test", BreakerConfig{MinRequests: 2, FailureRatio: 0.5})

	for i := 0; i < 5; i++ {
		_, err := client.Complete(context.Background(), "p", "")
		assert.ErrorIs(t, err, ErrConfiguration)
	}
	assert.Len(t, llm.prompts, 5)
}

func TestBreakerPassesThroughReplies(t *testing.T) {
	client := NewBreakerLLMClient(&stubLLM{reply: `["Go"]`}, "test", BreakerConfig{})

	text, err := client.Complete(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Equal(t, `["Go"]`, text)
}
