package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLMTimeout bounds a single completion call.
const LLMTimeout = 60 * time.Second

const maxUpstreamBody = 4 << 20

var errNoChoices = errors.New("no choices in completion response")

// LLMClient sends one prompt to a hosted model and returns the raw reply text.
type LLMClient interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type openAIClient struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	observer   Observer
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient captures the credential once. A missing key is not an
// error here; every Complete call fails with ErrConfiguration instead.
func NewOpenAIClient(cfg OpenAIConfig, observer Observer) LLMClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = LLMTimeout
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &openAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		observer:   observer,
	}
}

// Complete implements LLMClient.
func (c *openAIClient) Complete(ctx context.Context, prompt, model string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY not configured", ErrConfiguration)
	}
	if model == "" {
		model = c.cfg.Model
	}

	start := time.Now()
	text, err := c.complete(ctx, prompt, model)
	c.observer.ObserveLLMCall("openai", outcomeOf(err), time.Since(start))
	return text, err
}

func (c *openAIClient) complete(ctx context.Context, prompt, model string) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return "", &UpstreamError{Provider: "openai", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var cc chatCompletionResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", &UpstreamError{Provider: "openai", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		return "", &UpstreamError{Provider: "openai", Err: errNoChoices}
	}

	return cc.Choices[0].Message.Content, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConfiguration):
		return "config_error"
	default:
		return "upstream_error"
	}
}
