package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	loadErr   error
	loadPanic bool
	segments  []Segment
	err       error

	mu    sync.Mutex
	calls []TranscribeOptions
}

func (f *fakeEngine) Load(context.Context) error {
	if f.loadPanic {
		panic("cuda not found")
	}
	return f.loadErr
}

func (f *fakeEngine) Transcribe(_ context.Context, _ string, opts TranscribeOptions) ([]Segment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()
	return f.segments, f.err
}

func (f *fakeEngine) ModelName() string { return "base" }

func startedPool(t *testing.T) InferencePool {
	t.Helper()
	pool := NewInferencePool(1)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	return pool
}

func TestNewTranscriberUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		engine SpeechEngine
		reason string
	}{
		{"no engine", nil, "speech engine not configured"},
		{"load error", &fakeEngine{loadErr: errors.New("model not found")}, "model not found"},
		{"load panic", &fakeEngine{loadPanic: true}, "panicked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranscriber(context.Background(), tt.engine, startedPool(t), "", nil)

			assert.False(t, tr.IsAvailable())
			assert.Equal(t, StateUnavailable, tr.Status().State)
			assert.Contains(t, tr.Status().Reason, tt.reason)

			_, err := tr.Transcribe(context.Background(), "/tmp/a.wav", "en")
			assert.ErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}

func TestTranscribeJoinsSegments(t *testing.T) {
	engine := &fakeEngine{segments: []Segment{
		{Start: 2.5, End: 4, Text: "  world "},
		{Start: 0, End: 2.5, Text: "hello"},
		{Start: 4, End: 5, Text: "   "},
		{Start: 5, End: 6, Text: "again"},
	}}
	observer := &recordingObserver{}
	tr := NewTranscriber(context.Background(), engine, startedPool(t), "zh", observer)
	require.True(t, tr.IsAvailable())
	assert.Equal(t, "base", tr.Status().Model)

	text, err := tr.Transcribe(context.Background(), "/tmp/a.wav", "")
	require.NoError(t, err)
	assert.Equal(t, "hello world again", text)

	require.Len(t, engine.calls, 1)
	assert.Equal(t, "zh", engine.calls[0].Language)
	assert.Equal(t, BeamSize, engine.calls[0].BeamSize)
	assert.Equal(t, 5, engine.calls[0].BeamSize)
	assert.Equal(t, []string{"ok"}, observer.transcripts)
}

func TestTranscribeUsesRequestedLanguage(t *testing.T) {
	engine := &fakeEngine{segments: []Segment{{Text: "hi"}}}
	tr := NewTranscriber(context.Background(), engine, startedPool(t), "zh", nil)

	_, err := tr.Transcribe(context.Background(), "/tmp/a.wav", "en")
	require.NoError(t, err)
	require.Len(t, engine.calls, 1)
	assert.Equal(t, "en", engine.calls[0].Language)
}

func TestTranscribeNoSpeechIsEmpty(t *testing.T) {
	tr := NewTranscriber(context.Background(), &fakeEngine{}, startedPool(t), "zh", nil)

	text, err := tr.Transcribe(context.Background(), "/tmp/silence.wav", "")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestTranscribeEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("corrupt audio")}
	observer := &recordingObserver{}
	tr := NewTranscriber(context.Background(), engine, startedPool(t), "zh", observer)

	_, err := tr.Transcribe(context.Background(), "/tmp/a.wav", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")
	assert.Contains(t, err.Error(), "corrupt audio")
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, []string{"error"}, observer.transcripts)
}

func TestTranscribeAfterPoolStopped(t *testing.T) {
	pool := NewInferencePool(1)
	pool.Start(context.Background())
	tr := NewTranscriber(context.Background(), &fakeEngine{}, pool, "zh", nil)
	pool.Stop()

	_, err := tr.Transcribe(context.Background(), "/tmp/a.wav", "")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
