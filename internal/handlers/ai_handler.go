package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/interview-helper/api/internal/models"
	"github.com/interview-helper/api/internal/services"
)

type AIHandler struct {
	analysis services.AnalysisService
}

func NewAIHandler(analysis services.AnalysisService) *AIHandler {
	return &AIHandler{analysis: analysis}
}

// HandleExtractSkills handles POST /api/ai/extract-skills
func (h *AIHandler) HandleExtractSkills(c *fiber.Ctx) error {
	var req models.ExtractSkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	skills, err := h.analysis.ExtractSkills(c.UserContext(), req.Text, req.Context)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.ExtractSkillsResponse{Skills: skills})
}

// HandleExtractJD handles POST /api/ai/extract-jd
func (h *AIHandler) HandleExtractJD(c *fiber.Ctx) error {
	var req models.ExtractJDRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	info, err := h.analysis.ExtractJDInfo(c.UserContext(), req.JDText)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(info)
}

// HandleAnalyzeInterview handles POST /api/ai/analyze-interview
func (h *AIHandler) HandleAnalyzeInterview(c *fiber.Ctx) error {
	var req models.AnalyzeInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	analysis, err := h.analysis.AnalyzeInterview(c.UserContext(), req.Transcript, req.JD, req.Resume)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(analysis)
}

// HandleMockQuestions handles POST /api/ai/generate-mock-questions
func (h *AIHandler) HandleMockQuestions(c *fiber.Ctx) error {
	var req models.MockQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	// num_questions is advisory; only an absent value gets the default
	numQuestions := services.DefaultNumQuestions
	if req.NumQuestions != nil {
		numQuestions = *req.NumQuestions
	}

	questions, err := h.analysis.GenerateMockQuestions(c.UserContext(), req.JD, req.Resume, numQuestions)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.MockQuestionsResponse{Questions: questions})
}

// fail is the single log site for errors the analysis service propagates.
func (h *AIHandler) fail(c *fiber.Ctx, err error) error {
	log.Printf("❌ %s %s failed: %v", c.Method(), c.Path(), err)
	return respondError(c, fiber.StatusInternalServerError, err.Error())
}
