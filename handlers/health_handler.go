package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/redis"
)

// HealthHandler reports collaborator configuration and dedup cache
// connectivity. The external APIs are not probed on every check.
type HealthHandler struct {
	cfg          *environments.Config
	redis        *redis.Client
	checkTimeout time.Duration
}

func NewHealthHandler(cfg *environments.Config, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		cfg:          cfg,
		redis:        redisClient,
		checkTimeout: 2 * time.Second,
	}
}

// Health godoc
// @Summary Health check
// @Description Returns overall status with collaborator configuration and dedup cache connectivity
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	services := map[string]bool{
		"whatsapp":   h.cfg.WhatsApp.AccessToken != "" && h.cfg.WhatsApp.PhoneID != "",
		"openai":     h.cfg.OpenAI.APIKey != "",
		"pinecone":   h.cfg.Pinecone.APIKey != "" && h.cfg.Pinecone.IndexHost != "",
		"elevenlabs": h.cfg.ElevenLabs.APIKey != "" && h.cfg.ElevenLabs.VoiceID != "",
	}

	overallStatus := "ok"
	for _, configured := range services {
		if !configured {
			overallStatus = "degraded"
		}
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "down"
			overallStatus = "degraded"
		} else {
			redisStatus = "up"
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
		"components": map[string]any{
			"redis": map[string]any{
				"status": redisStatus,
			},
		},
	})
}
