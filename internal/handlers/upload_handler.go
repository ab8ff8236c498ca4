package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/interview-helper/api/internal/models"
	"github.com/interview-helper/api/internal/services"
)

const (
	MaxResumeSize     = 10 * 1024 * 1024
	ResumeContentType = "application/pdf"
	previewLength     = 500
)

type UploadHandler struct {
	storageService services.StorageService
	pdfParser      services.PDFParserService
}

func NewUploadHandler(
	storageService services.StorageService,
	pdfParser services.PDFParserService,
) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		pdfParser:      pdfParser,
	}
}

// HandleUpload handles POST /api/resume/upload. Checks run in a fixed order:
// media type, size, then text extraction.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "No file provided")
	}

	if contentType := file.Header.Get("Content-Type"); contentType != ResumeContentType {
		return respondError(c, fiber.StatusBadRequest, "Only PDF files are allowed")
	}

	if file.Size > MaxResumeSize {
		return respondError(c, fiber.StatusRequestEntityTooLarge, "File size exceeds 10MB limit")
	}

	content, err := readUpload(file)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to read uploaded file: %v", err))
	}
	if len(content) > MaxResumeSize {
		return respondError(c, fiber.StatusRequestEntityTooLarge, "File size exceeds 10MB limit")
	}

	stored, err := h.storageService.Store(content, file.Filename, models.KindResume)
	if err != nil {
		log.Printf("❌ Failed to store resume: %v", err)
		return respondError(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
	}

	text, err := h.pdfParser.ExtractText(stored.Path)
	if err != nil {
		log.Printf("⚠️ Resume %s produced no text: %v", stored.ID, err)
		return respondError(c, statusForError(err), services.ErrExtractionFailed.Error())
	}

	return c.JSON(models.ResumeUploadResponse{
		Success: true,
		FileID:  stored.ID.String(),
		Text:    preview(text, previewLength),
	})
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
