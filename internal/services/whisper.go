package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type WhisperConfig struct {
	BaseURL     string
	Model       string
	Device      string
	ComputeType string
	Timeout     time.Duration
}

// whisperEngine talks to a local whisper inference sidecar serving
// GET /health and multipart POST /transcribe.
type whisperEngine struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

type whisperHealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type whisperTranscribeResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

func NewWhisperEngine(cfg WhisperConfig) SpeechEngine {
	if cfg.Model == "" {
		cfg.Model = "base"
	}
	if cfg.Device == "" {
		cfg.Device = "cpu"
	}
	if cfg.ComputeType == "" {
		cfg.ComputeType = "int8"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &whisperEngine{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (w *whisperEngine) ModelName() string {
	return w.cfg.Model
}

// Load implements SpeechEngine. The sidecar loads its model before it starts
// listening, so a healthy /health means the engine is ready.
func (w *whisperEngine) Load(ctx context.Context) error {
	if strings.TrimSpace(w.cfg.BaseURL) == "" {
		return fmt.Errorf("WHISPER_URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint("/health"), nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisper health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return whisperStatusError("health", resp)
	}

	var health whisperHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("whisper sidecar not ready: status %q", health.Status)
	}

	if health.Model != "" && health.Model != w.cfg.Model {
		log.Printf("⚠️ Whisper sidecar serves model %q, configured %q; using %q", health.Model, w.cfg.Model, health.Model)
		w.cfg.Model = health.Model
	}
	return nil
}

// Transcribe implements SpeechEngine.
func (w *whisperEngine) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) ([]Segment, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	src, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer src.Close()

	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	fields := map[string]string{
		"model":        w.cfg.Model,
		"device":       w.cfg.Device,
		"compute_type": w.cfg.ComputeType,
		"language":     opts.Language,
		"beam_size":    strconv.Itoa(opts.BeamSize),
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint("/transcribe"), body)
	if err != nil {
		return nil, fmt.Errorf("create transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper transcribe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, whisperStatusError("transcribe", resp)
	}

	var out whisperTranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transcribe response: %w", err)
	}
	if len(out.Segments) == 0 && strings.TrimSpace(out.Text) != "" {
		return []Segment{{Text: out.Text}}, nil
	}
	return out.Segments, nil
}

func (w *whisperEngine) endpoint(path string) string {
	return strings.TrimRight(w.cfg.BaseURL, "/") + path
}

func whisperStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("whisper %s status: %s", operation, resp.Status)
	}
	return fmt.Errorf("whisper %s status: %s: %s", operation, resp.Status, msg)
}
