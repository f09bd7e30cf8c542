package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
)

// Client talks to the WhatsApp Cloud API (graph.facebook.com).
type Client struct {
	httpClient *resty.Client
	phoneID    string
}

type sendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type uploadMediaResponse struct {
	ID string `json:"id"`
}

type mediaMetaResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func NewClient(cfg environments.WhatsAppConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetAuthToken(cfg.AccessToken)

	return &Client{
		httpClient: client,
		phoneID:    cfg.PhoneID,
	}
}

// SendText sends a plain text message. This is the primary reply
// channel; callers treat errors as fatal.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}

	var result sendMessageResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(fmt.Sprintf("/%s/messages", c.phoneID))
	if err != nil {
		return fmt.Errorf("failed to send text message: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("send text returned status %d: %s", resp.StatusCode(), resp.String())
	}

	logger.Debugf("Sent text to %s (id: %s)", to, firstMessageID(result))

	return nil
}

// SendAudio uploads the audio file and sends it as a voice message.
func (c *Client) SendAudio(ctx context.Context, to, filePath string) error {
	mediaID, err := c.uploadMedia(ctx, filePath)
	if err != nil {
		return err
	}

	return c.sendByMediaID(ctx, to, "audio", mediaID)
}

// SendMedia uploads an image or video file and sends it. The message
// type is derived from the file extension.
func (c *Client) SendMedia(ctx context.Context, to, filePath string) error {
	mediaID, err := c.uploadMedia(ctx, filePath)
	if err != nil {
		return err
	}

	msgType := "video"
	if imageExtensions[strings.ToLower(filepath.Ext(filePath))] {
		msgType = "image"
	}

	return c.sendByMediaID(ctx, to, msgType, mediaID)
}

// DownloadMedia resolves the media URL for mediaID and downloads the
// content to outPath. Returns the path written.
func (c *Client) DownloadMedia(ctx context.Context, mediaID, outPath string) (string, error) {
	var meta mediaMetaResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&meta).
		Get("/" + mediaID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve media %s: %w", mediaID, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("media lookup returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if meta.URL == "" {
		return "", fmt.Errorf("no download url for media %s", mediaID)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	// The media URL is absolute and short-lived; it still requires the
	// bearer token that the client already carries.
	download, err := c.httpClient.R().
		SetContext(ctx).
		SetOutput(outPath).
		Get(meta.URL)
	if err != nil {
		return "", fmt.Errorf("failed to download media %s: %w", mediaID, err)
	}

	if download.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("media download returned status %d", download.StatusCode())
	}

	return outPath, nil
}

func (c *Client) uploadMedia(ctx context.Context, filePath string) (string, error) {
	var result uploadMediaResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFile("file", filePath).
		SetFormData(map[string]string{"messaging_product": "whatsapp"}).
		SetResult(&result).
		Post(fmt.Sprintf("/%s/media", c.phoneID))
	if err != nil {
		return "", fmt.Errorf("failed to upload media %s: %w", filePath, err)
	}

	if resp.StatusCode() != http.StatusOK || result.ID == "" {
		return "", fmt.Errorf("media upload returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return result.ID, nil
}

func (c *Client) sendByMediaID(ctx context.Context, to, msgType, mediaID string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              msgType,
		msgType:             map[string]string{"id": mediaID},
	}

	var result sendMessageResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(fmt.Sprintf("/%s/messages", c.phoneID))
	if err != nil {
		return fmt.Errorf("failed to send %s message: %w", msgType, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("send %s returned status %d: %s", msgType, resp.StatusCode(), resp.String())
	}

	logger.Debugf("Sent %s to %s (id: %s)", msgType, to, firstMessageID(result))

	return nil
}

func firstMessageID(r sendMessageResponse) string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}
