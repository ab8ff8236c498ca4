package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

type breakerLLMClient struct {
	next LLMClient
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreakerLLMClient fails fast while the provider keeps erroring. It never
// retries; an open breaker surfaces as an UpstreamError.
func NewBreakerLLMClient(next LLMClient, name string, cfg BreakerConfig) LLMClient {
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.6
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// a missing credential says nothing about provider health
			return err == nil || errors.Is(err, ErrConfiguration) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("⚡ Circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &breakerLLMClient{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Complete implements LLMClient.
func (b *breakerLLMClient) Complete(ctx context.Context, prompt, model string) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, prompt, model)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &UpstreamError{Provider: b.cb.Name(), Err: err}
	}
	return text, err
}
