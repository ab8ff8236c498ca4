package server

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/interview-helper/api/internal/handlers"
	"github.com/interview-helper/api/internal/metrics"
	"github.com/interview-helper/api/internal/middleware"
	"github.com/interview-helper/api/internal/services"
)

const AppName = "Interview Helper API"

// bodyLimit leaves room for multipart framing around the largest upload.
const bodyLimit = handlers.MaxAudioSize + 1<<20

// Dependencies are constructed once in main and shared by all requests.
// Metrics and RateLimiter are optional.
type Dependencies struct {
	Storage         services.StorageService
	PDFParser       services.PDFParserService
	Analysis        services.AnalysisService
	Transcriber     services.TranscriptionService
	DefaultLanguage string
	CORSOrigins     string
	AccessLog       bool
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.RateLimiter
}

func New(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      AppName,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
	}

	origins := deps.CORSOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
	}))

	uploadHandler := handlers.NewUploadHandler(deps.Storage, deps.PDFParser)
	aiHandler := handlers.NewAIHandler(deps.Analysis)
	transcribeHandler := handlers.NewTranscribeHandler(deps.Storage, deps.Transcriber, deps.DefaultLanguage)

	limit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Handler()
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": AppName})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api")
	api.Post("/resume/upload", uploadHandler.HandleUpload)

	ai := api.Group("/ai")
	ai.Post("/extract-skills", limit, aiHandler.HandleExtractSkills)
	ai.Post("/extract-jd", limit, aiHandler.HandleExtractJD)
	ai.Post("/analyze-interview", limit, aiHandler.HandleAnalyzeInterview)
	ai.Post("/generate-mock-questions", limit, aiHandler.HandleMockQuestions)

	api.Post("/transcribe", limit, transcribeHandler.HandleTranscribe)
	api.Get("/transcribe/status", transcribeHandler.HandleStatus)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else {
		log.Printf("❌ Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"detail": err.Error(),
	})
}
