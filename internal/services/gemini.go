package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type geminiClient struct {
	client    *genai.Client
	initErr   error
	modelName string
	cfg       GeminiConfig
	observer  Observer
}

func NewGeminiClient(cfg GeminiConfig, observer Observer) LLMClient {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = LLMTimeout
	}
	if observer == nil {
		observer = NopObserver{}
	}

	g := &geminiClient{modelName: cfg.Model, cfg: cfg, observer: observer}
	if cfg.APIKey == "" {
		g.initErr = fmt.Errorf("%w: GEMINI_API_KEY not configured", ErrConfiguration)
		return g
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("❌ Failed to create Gemini client: %v", err)
		g.initErr = fmt.Errorf("%w: create gemini client: %v", ErrConfiguration, err)
		return g
	}
	g.client = client
	return g
}

// Complete implements LLMClient.
func (g *geminiClient) Complete(ctx context.Context, prompt, model string) (string, error) {
	if g.initErr != nil {
		return "", g.initErr
	}
	if model == "" {
		model = g.modelName
	}

	start := time.Now()
	text, err := g.generate(ctx, prompt, model)
	g.observer.ObserveLLMCall("gemini", outcomeOf(err), time.Since(start))
	return text, err
}

func (g *geminiClient) generate(ctx context.Context, prompt, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	temperature := g.cfg.Temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", geminiUpstreamError(err)
	}
	if resp == nil {
		return "", &UpstreamError{Provider: "gemini", Err: errors.New("nil response")}
	}

	text := resp.Text()
	if text == "" {
		return "", &UpstreamError{Provider: "gemini", Err: errNoChoices}
	}
	return text, nil
}

func geminiUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &UpstreamError{Provider: "gemini", StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message, Err: err}
	}
	return &UpstreamError{Provider: "gemini", Err: err}
}
