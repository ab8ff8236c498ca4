package services

import "time"

// Observer receives service-level measurements. The metrics package provides
// the Prometheus implementation.
type Observer interface {
	ObserveLLMCall(provider, outcome string, elapsed time.Duration)
	ObserveAnalysisFallback(operation string)
	ObserveTranscription(outcome string, elapsed time.Duration)
}

type NopObserver struct{}

func (NopObserver) ObserveLLMCall(string, string, time.Duration) {}
func (NopObserver) ObserveAnalysisFallback(string)               {}
func (NopObserver) ObserveTranscription(string, time.Duration)   {}
