package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	NopObserver
	llmOutcomes []string
	fallbacks   []string
	transcripts []string
}

func (r *recordingObserver) ObserveLLMCall(provider, outcome string, _ time.Duration) {
	r.llmOutcomes = append(r.llmOutcomes, provider+":"+outcome)
}

func (r *recordingObserver) ObserveAnalysisFallback(operation string) {
	r.fallbacks = append(r.fallbacks, operation)
}

func (r *recordingObserver) ObserveTranscription(outcome string, _ time.Duration) {
	r.transcripts = append(r.transcripts, outcome)
}

func TestOpenAIClientMissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL}, nil)
	_, err := client.Complete(context.Background(), "hello", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Equal(t, int32(0), hits.Load())
}

func TestOpenAIClientReturnsFirstChoice(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"first"}},{"message":{"role":"assistant","content":"second"}}]}`))
	}))
	defer srv.Close()

	observer := &recordingObserver{}
	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-4", Temperature: 0.7}, observer)

	text, err := client.Complete(context.Background(), "extract please", "")
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	assert.Equal(t, "gpt-4", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "extract please", got.Messages[0].Content)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	assert.Equal(t, []string{"openai:ok"}, observer.llmOutcomes)
}

func TestOpenAIClientNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	observer := &recordingObserver{}
	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, observer)
	_, err := client.Complete(context.Background(), "hi", "")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, []string{"openai:upstream_error"}, observer.llmOutcomes)
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := client.Complete(context.Background(), "hi", "")

	assert.True(t, IsUpstream(err))
	assert.ErrorIs(t, err, errNoChoices)
}

func TestOpenAIClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: url}, nil)
	_, err := client.Complete(context.Background(), "hi", "")

	assert.True(t, IsUpstream(err))
	assert.NotErrorIs(t, err, ErrConfiguration)
}

func TestGeminiClientMissingKey(t *testing.T) {
	observer := &recordingObserver{}
	client := NewGeminiClient(GeminiConfig{}, observer)

	_, err := client.Complete(context.Background(), "hi", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
