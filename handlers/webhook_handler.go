package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vagnerlopes/whatsapp-sales-agent/internal/domain"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/response"
)

// messageProcessor is a minimal internal interface for the webhook
// handler; it matches Pipeline.ProcessMessage and lets us unit test
// the handler with a small fake implementation.
type messageProcessor interface {
	ProcessMessage(ctx context.Context, phone string, msg *domain.InboundMessage) (*domain.ProcessResult, error)
}

type WebhookHandler struct {
	processor   messageProcessor
	verifyToken string
}

func NewWebhookHandler(processor messageProcessor, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		processor:   processor,
		verifyToken: verifyToken,
	}
}

// Verify godoc
// @Summary WhatsApp webhook verification
// @Description Meta calls this once to verify the webhook URL (hub.challenge echo)
// @Tags webhook
// @Produce plain
// @Param hub.mode query string true "Must be 'subscribe'"
// @Param hub.challenge query string true "Challenge to echo back"
// @Param hub.verify_token query string false "Shared verification token"
// @Success 200 {string} string
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /webhook [get]
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	challenge := c.QueryParam("hub.challenge")
	token := c.QueryParam("hub.verify_token")

	if mode != "subscribe" {
		return response.BadRequestWithMessage(c, "Invalid verification request")
	}

	// No token configured means permissive dev mode: accept and echo.
	if h.verifyToken == "" {
		logger.Warnf("Webhook verification accepted without a configured verify token")
		return c.String(http.StatusOK, challenge)
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		return response.Forbidden(c, "Verification token mismatch")
	}

	return c.String(http.StatusOK, challenge)
}

// Receive godoc
// @Summary WhatsApp webhook delivery
// @Description Runs one inbound message through the sales pipeline
// @Tags webhook
// @Accept json
// @Produce json
// @Param envelope body domain.WebhookEnvelope true "Meta webhook envelope"
// @Success 200 {object} domain.ProcessResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /webhook [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	var envelope domain.WebhookEnvelope
	if err := c.Bind(&envelope); err != nil {
		return response.BadRequest(c, err)
	}

	if len(envelope.Entry) == 0 {
		return response.BadRequestWithMessage(c, "Invalid webhook payload: missing entry")
	}
	if len(envelope.Entry[0].Changes) == 0 {
		return response.BadRequestWithMessage(c, "Invalid webhook payload: missing changes")
	}

	value := envelope.Entry[0].Changes[0].Value

	// Status-only deliveries (sent/read receipts) carry no messages.
	if len(value.Messages) == 0 {
		return c.JSON(http.StatusOK, domain.ProcessResult{Status: domain.StatusNoMessages})
	}

	message := value.Messages[0]
	if message.From == "" {
		return response.BadRequestWithMessage(c, "Invalid webhook payload: missing sender")
	}

	result, err := h.processor.ProcessMessage(c.Request().Context(), message.From, &message)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedMessage) {
			logger.Warnf("Webhook payload error: %v", err)
			return response.BadRequest(c, err)
		}

		logger.Errorf("Webhook processing error for %s: %v", message.From, err)
		return response.InternalServerError(c, fmt.Errorf("failed to process message"))
	}

	return c.JSON(http.StatusOK, result)
}
