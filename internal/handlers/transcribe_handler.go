package handlers

import (
	"fmt"
	"log"
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/interview-helper/api/internal/models"
	"github.com/interview-helper/api/internal/services"
)

const MaxAudioSize = 50 * 1024 * 1024

var allowedAudioTypes = map[string]bool{
	"audio/wav":    true,
	"audio/x-wav":  true,
	"audio/wave":   true,
	"audio/mpeg":   true,
	"audio/mp3":    true,
	"audio/mp4":    true,
	"audio/x-m4a":  true,
	"audio/m4a":    true,
	"audio/webm":   true,
	"audio/ogg":    true,
	"audio/flac":   true,
	"audio/x-flac": true,
}

type TranscribeHandler struct {
	storageService  services.StorageService
	transcriber     services.TranscriptionService
	defaultLanguage string
}

func NewTranscribeHandler(
	storageService services.StorageService,
	transcriber services.TranscriptionService,
	defaultLanguage string,
) *TranscribeHandler {
	if defaultLanguage == "" {
		defaultLanguage = "zh"
	}
	return &TranscribeHandler{
		storageService:  storageService,
		transcriber:     transcriber,
		defaultLanguage: defaultLanguage,
	}
}

// HandleTranscribe handles POST /api/transcribe. Availability is checked
// before anything about the upload.
func (h *TranscribeHandler) HandleTranscribe(c *fiber.Ctx) error {
	if !h.transcriber.IsAvailable() {
		return respondError(c, fiber.StatusServiceUnavailable, "Transcription service is not available")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "No file provided")
	}

	mediaType := audioMediaType(file.Header.Get("Content-Type"))
	if !allowedAudioTypes[mediaType] {
		return respondError(c, fiber.StatusBadRequest, fmt.Sprintf("Unsupported audio type %q", mediaType))
	}

	if file.Size > MaxAudioSize {
		return respondError(c, fiber.StatusRequestEntityTooLarge, "File size exceeds 50MB limit")
	}

	content, err := readUpload(file)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to read uploaded file: %v", err))
	}
	if len(content) > MaxAudioSize {
		return respondError(c, fiber.StatusRequestEntityTooLarge, "File size exceeds 50MB limit")
	}

	stored, err := h.storageService.Store(content, file.Filename, models.KindAudio)
	if err != nil {
		log.Printf("❌ Failed to store audio: %v", err)
		return respondError(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
	}

	language := strings.TrimSpace(c.FormValue("language"))
	if language == "" {
		language = h.defaultLanguage
	}

	transcript, err := h.transcriber.Transcribe(c.UserContext(), stored.Path, language)
	if err != nil {
		log.Printf("❌ Transcription of %s failed: %v", stored.ID, err)
		return respondError(c, statusForError(err), err.Error())
	}

	return c.JSON(models.TranscribeResponse{
		Success:    true,
		FileID:     stored.ID.String(),
		Transcript: transcript,
	})
}

// HandleStatus handles GET /api/transcribe/status.
func (h *TranscribeHandler) HandleStatus(c *fiber.Ctx) error {
	if h.transcriber.IsAvailable() {
		return c.JSON(models.TranscribeStatusResponse{
			Available: true,
			Message:   fmt.Sprintf("Transcription service is available (model: %s)", h.transcriber.Status().Model),
		})
	}

	message := "Transcription service is not available"
	if reason := h.transcriber.Status().Reason; reason != "" {
		message += ": " + reason
	}
	return c.JSON(models.TranscribeStatusResponse{
		Available: false,
		Message:   message,
	})
}

func audioMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
