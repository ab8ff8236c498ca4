package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/interview-helper/api/internal/config"
	"github.com/interview-helper/api/internal/metrics"
	"github.com/interview-helper/api/internal/middleware"
	"github.com/interview-helper/api/internal/server"
	"github.com/interview-helper/api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	appMetrics := metrics.New()

	// Initialize services
	storageService, err := services.NewStorageService(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to resolve data directory: %v", err)
	}
	if err := storageService.EnsureDirs(); err != nil {
		log.Fatalf("❌ Failed to create data directories: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	log.Println("✅ Storage and PDF parser initialized")

	llmClient := newLLMClient(cfg, appMetrics)
	analysisService := services.NewAnalysisService(llmClient, appMetrics)
	log.Printf("✅ Analysis service initialized with provider %q", cfg.LLM.Provider)

	// Start inference pool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := services.NewInferencePool(cfg.Whisper.Workers)
	pool.Start(ctx)

	var engine services.SpeechEngine
	if cfg.Whisper.URL != "" {
		engine = services.NewWhisperEngine(services.WhisperConfig{
			BaseURL:     cfg.Whisper.URL,
			Model:       cfg.Whisper.Model,
			Device:      cfg.Whisper.Device,
			ComputeType: cfg.Whisper.ComputeType,
		})
	}

	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Whisper.LoadTimeout)
	transcriber := services.NewTranscriber(loadCtx, engine, pool, cfg.Whisper.Language, appMetrics)
	loadCancel()

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		log.Printf("✅ Rate limiting enabled: %d req/min, burst %d", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	app := server.New(server.Dependencies{
		Storage:         storageService,
		PDFParser:       pdfParser,
		Analysis:        analysisService,
		Transcriber:     transcriber,
		DefaultLanguage: cfg.Whisper.Language,
		CORSOrigins:     cfg.Server.CORSOrigins,
		AccessLog:       true,
		Metrics:         appMetrics,
		RateLimiter:     limiter,
	})
	log.Println("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s (%s)\n", addr, cfg.Server.Env)

	if err := app.Listen(addr); err != nil {
		log.Printf("❌ Failed to start server: %v", err)
	}

	pool.Stop()
	if limiter != nil {
		limiter.Close()
	}
	log.Println("👋 Server stopped")
}

func newLLMClient(cfg *config.Config, observer services.Observer) services.LLMClient {
	var client services.LLMClient
	switch cfg.LLM.Provider {
	case "gemini":
		client = services.NewGeminiClient(services.GeminiConfig{
			APIKey:      cfg.LLM.GeminiAPIKey,
			Model:       cfg.LLM.GeminiModel,
			Temperature: cfg.LLM.Temperature,
		}, observer)
	default:
		if cfg.LLM.Provider != "openai" {
			log.Printf("⚠️ Unknown LLM_PROVIDER %q, falling back to openai", cfg.LLM.Provider)
		}
		client = services.NewOpenAIClient(services.OpenAIConfig{
			APIKey:      cfg.LLM.OpenAIAPIKey,
			BaseURL:     cfg.LLM.OpenAIBaseURL,
			Model:       cfg.LLM.OpenAIModel,
			Temperature: cfg.LLM.Temperature,
		}, observer)
	}

	if !cfg.LLM.BreakerEnabled {
		return client
	}
	log.Println("✅ LLM circuit breaker enabled")
	return services.NewBreakerLLMClient(client, "llm-"+cfg.LLM.Provider, services.BreakerConfig{
		MinRequests:  uint32(max(cfg.LLM.BreakerMinRequests, 0)),
		FailureRatio: cfg.LLM.BreakerFailureRatio,
		OpenTimeout:  cfg.LLM.BreakerOpenTimeout,
	})
}
