package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/handlers"
	"github.com/vagnerlopes/whatsapp-sales-agent/internal/service"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/kb"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/llm"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/redis"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/speech"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/validator"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/whatsapp"
	"github.com/vagnerlopes/whatsapp-sales-agent/routes"

	_ "github.com/vagnerlopes/whatsapp-sales-agent/docs" // swagger docs
)

// @title WhatsApp Sales Agent API
// @version 1.0
// @description Conversational WhatsApp sales assistant with voice support and a vector knowledge base

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /

// @schemes http https
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger.Init()

	// Load config
	cfg := environments.Load()

	// Hard-fail if required secrets are missing. ElevenLabs is checked
	// at the point of use instead: the voice channel is best-effort.
	if cfg.WhatsApp.AccessToken == "" {
		logger.Fatalf("WHATSAPP_ACCESS_TOKEN is required but not set")
	}
	if cfg.WhatsApp.PhoneID == "" {
		logger.Fatalf("WHATSAPP_PHONE_ID is required but not set")
	}
	if cfg.OpenAI.APIKey == "" {
		logger.Fatalf("OPENAI_API_KEY is required but not set")
	}
	if cfg.Pinecone.APIKey == "" {
		logger.Fatalf("PINECONE_API_KEY is required but not set")
	}
	if cfg.Pinecone.IndexHost == "" {
		logger.Fatalf("PINECONE_INDEX_HOST is required but not set")
	}

	logger.Infof("Starting WhatsApp Sales Agent...")

	// Ensure working folders exist
	for _, folder := range []string{cfg.Agent.MediaFolder, cfg.Agent.TempFolder} {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			logger.Fatalf("Failed to create folder %s: %v", folder, err)
		}
	}

	// Init dedup cache (optional)
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		var err error
		redisClient, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Redis not available, webhook dedup disabled: %v", err)
			redisClient = nil
		}
	} else {
		logger.Infof("REDIS_HOST not set, webhook dedup disabled")
	}

	// Initialize collaborator clients
	whatsappClient := whatsapp.NewClient(cfg.WhatsApp)
	kbClient := kb.NewClient(cfg.Pinecone, cfg.OpenAI)
	llmClient := llm.NewClient(cfg.OpenAI)
	transcriber := speech.NewTranscriber(cfg.OpenAI)
	synthesizer := speech.NewSynthesizer(cfg.ElevenLabs)
	paymentService := service.NewPaymentService(cfg.Payment)

	// Initialize the message pipeline
	var dedup service.DedupCache
	if redisClient != nil {
		dedup = redisClient
	}
	pipeline := service.NewPipeline(
		whatsappClient,
		transcriber,
		synthesizer,
		kbClient,
		llmClient,
		paymentService,
		dedup,
		cfg.Agent,
		cfg.Sales,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, redisClient)
	webhookHandler := handlers.NewWebhookHandler(pipeline, cfg.WhatsApp.VerifyToken)
	kbHandler := handlers.NewKBHandler(kbClient)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"x-kb-auth-key",
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, webhookHandler, kbHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Shutdown HTTP server (with timeout); in-flight pipeline runs get
	// to finish their reply dispatch.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
