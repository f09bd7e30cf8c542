package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/response"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/validator"
)

// kbIngestor is the slice of the knowledge-store client the admin
// endpoints need.
type kbIngestor interface {
	AddMedia(ctx context.Context, filePath, caption string) error
	AddText(ctx context.Context, source, content string) error
}

// KBHandler exposes knowledge-base ingestion for operators. The
// pipeline itself only reads from the store.
type KBHandler struct {
	kb kbIngestor
}

func NewKBHandler(kb kbIngestor) *KBHandler {
	return &KBHandler{kb: kb}
}

type AddMediaRequest struct {
	FilePath string `json:"filePath" validate:"required"`
	Caption  string `json:"caption" validate:"required,max=2000"`
}

type AddTextRequest struct {
	Source  string `json:"source" validate:"required"`
	Content string `json:"content" validate:"required,max=8000"`
}

// AddMedia godoc
// @Summary Index a media asset
// @Description Embeds the caption and registers the media file for similarity lookup
// @Tags kb
// @Accept json
// @Produce json
// @Param x-kb-auth-key header string true "API key for KB administration"
// @Param media body AddMediaRequest true "Media asset to index"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/kb/media [post]
func (h *KBHandler) AddMedia(c echo.Context) error {
	var req AddMediaRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.kb.AddMedia(c.Request().Context(), req.FilePath, req.Caption); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Created(c, "Media indexed successfully", req)
}

// AddText godoc
// @Summary Index a text chunk
// @Description Embeds and stores a raw text chunk (product sheet, FAQ entry)
// @Tags kb
// @Accept json
// @Produce json
// @Param x-kb-auth-key header string true "API key for KB administration"
// @Param text body AddTextRequest true "Text chunk to index"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/kb/texts [post]
func (h *KBHandler) AddText(c echo.Context) error {
	var req AddTextRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.kb.AddText(c.Request().Context(), req.Source, req.Content); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Created(c, "Text indexed successfully", map[string]any{
		"source": req.Source,
	})
}
