package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/handlers"
	"github.com/vagnerlopes/whatsapp-sales-agent/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	kbHandler *handlers.KBHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Meta calls these; they carry their own verification handshake.
	e.GET("/webhook", webhookHandler.Verify)
	e.POST("/webhook", webhookHandler.Receive)

	// Knowledge-base administration with its own API key.
	v1 := e.Group("/api/v1")
	kb := v1.Group("/kb", middlewares.APIKeyAuth(cfg.Auth.KBAPIKey))

	kb.POST("/media", kbHandler.AddMedia)
	kb.POST("/texts", kbHandler.AddText)
}
