package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// BeamSize is the decoding beam width used for every transcription.
const BeamSize = 5

type TranscriberState string

const (
	StateUnavailable TranscriberState = "unavailable"
	StateReady       TranscriberState = "ready"
)

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type TranscribeOptions struct {
	Language string
	BeamSize int
}

// SpeechEngine is a local speech-to-text model.
type SpeechEngine interface {
	Load(ctx context.Context) error
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) ([]Segment, error)
	ModelName() string
}

type TranscriberStatus struct {
	State  TranscriberState
	Model  string
	Reason string
}

type TranscriptionService interface {
	IsAvailable() bool
	Status() TranscriberStatus
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Transcriber is either Ready, holding a loaded engine, or Unavailable. The
// state is fixed at construction.
type Transcriber struct {
	engine          SpeechEngine
	pool            InferencePool
	status          TranscriberStatus
	defaultLanguage string
	observer        Observer
}

// NewTranscriber loads the engine once. Any failure leaves the transcriber
// Unavailable instead of aborting startup.
func NewTranscriber(ctx context.Context, engine SpeechEngine, pool InferencePool, defaultLanguage string, observer Observer) *Transcriber {
	if defaultLanguage == "" {
		defaultLanguage = "zh"
	}
	if observer == nil {
		observer = NopObserver{}
	}

	t := &Transcriber{
		engine:          engine,
		pool:            pool,
		defaultLanguage: defaultLanguage,
		observer:        observer,
		status:          TranscriberStatus{State: StateUnavailable},
	}

	if engine == nil || pool == nil {
		t.status.Reason = "speech engine not configured"
		log.Printf("⚠️ Transcription disabled: %s", t.status.Reason)
		return t
	}
	t.status.Model = engine.ModelName()

	if err := t.load(ctx); err != nil {
		t.status.Reason = err.Error()
		log.Printf("⚠️ Failed to load speech model %q, transcription unavailable: %v", t.status.Model, err)
		return t
	}

	// the engine may report the model it actually serves
	t.status.Model = engine.ModelName()
	t.status.State = StateReady
	log.Printf("✅ Speech model %q loaded", t.status.Model)
	return t
}

func (t *Transcriber) load(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech engine panicked during load: %v", r)
		}
	}()
	return t.engine.Load(ctx)
}

func (t *Transcriber) IsAvailable() bool {
	return t.status.State == StateReady
}

func (t *Transcriber) Status() TranscriberStatus {
	return t.status
}

type transcribeResult struct {
	segments []Segment
	err      error
}

// Transcribe runs the engine on the inference pool and joins the segment
// texts with single spaces in chronological order.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if !t.IsAvailable() {
		return "", fmt.Errorf("%w: transcription service is not available", ErrServiceUnavailable)
	}
	if language == "" {
		language = t.defaultLanguage
	}

	start := time.Now()
	done := make(chan transcribeResult, 1)
	job := func(jobCtx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				done <- transcribeResult{err: fmt.Errorf("speech engine panicked: %v", r)}
			}
		}()
		segments, err := t.engine.Transcribe(jobCtx, audioPath, TranscribeOptions{
			Language: language,
			BeamSize: BeamSize,
		})
		done <- transcribeResult{segments: segments, err: err}
	}

	if err := t.pool.Submit(ctx, job); err != nil {
		t.observer.ObserveTranscription("error", time.Since(start))
		return "", err
	}

	select {
	case res := <-done:
		if res.err != nil {
			t.observer.ObserveTranscription("error", time.Since(start))
			return "", fmt.Errorf("transcription failed: %w", res.err)
		}
		t.observer.ObserveTranscription("ok", time.Since(start))
		return joinSegments(res.segments), nil
	case <-ctx.Done():
		t.observer.ObserveTranscription("error", time.Since(start))
		return "", errors.Join(errors.New("transcription abandoned"), ctx.Err())
	}
}

func joinSegments(segments []Segment) string {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	parts := make([]string, 0, len(ordered))
	for _, seg := range ordered {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
