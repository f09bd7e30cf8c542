package speech

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
)

const openaiAPIBase = "https://api.openai.com/v1"

// Transcriber converts voice notes to text with the OpenAI Whisper
// transcription endpoint (multipart upload, fixed source language).
type Transcriber struct {
	httpClient *resty.Client
	model      string
	language   string
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func NewTranscriber(cfg environments.OpenAIConfig) *Transcriber {
	client := resty.New().
		SetBaseURL(openaiAPIBase).
		SetTimeout(120 * time.Second).
		SetAuthToken(cfg.APIKey)

	return &Transcriber{
		httpClient: client,
		model:      cfg.WhisperModel,
		language:   cfg.Language,
	}
}

// Transcribe uploads the audio file at path and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	var result transcriptionResponse

	start := time.Now()

	resp, err := t.httpClient.R().
		SetContext(ctx).
		SetFile("file", path).
		SetFormData(map[string]string{
			"model":           t.model,
			"language":        t.language,
			"response_format": "json",
		}).
		SetResult(&result).
		Post("/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("transcription returned status %d: %s", resp.StatusCode(), resp.String())
	}

	logger.Debugf("Transcribed %s in %v", filepath.Base(path), time.Since(start))

	return result.Text, nil
}
