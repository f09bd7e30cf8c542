package speech

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
)

const elevenLabsAPIBase = "https://api.elevenlabs.io/v1"

// Opus in an OGG container is what WhatsApp expects for voice notes,
// so no local transcoding is needed.
const outputFormat = "opus_48000_64"

// Synthesizer turns reply text into a voice note via ElevenLabs.
// Missing credentials surface as an error at the point of use, never
// as a process crash; the pipeline treats the audio channel as
// best-effort anyway.
type Synthesizer struct {
	httpClient *resty.Client
	apiKey     string
	voiceID    string
	model      string
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

func NewSynthesizer(cfg environments.ElevenLabsConfig) *Synthesizer {
	client := resty.New().
		SetBaseURL(elevenLabsAPIBase).
		SetTimeout(cfg.Timeout).
		SetHeader("xi-api-key", cfg.APIKey)

	return &Synthesizer{
		httpClient: client,
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		model:      cfg.Model,
	}
}

// Synthesize writes spoken audio for text to outPath (OGG/Opus).
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	if s.apiKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is not configured")
	}
	if s.voiceID == "" {
		return fmt.Errorf("ELEVENLABS_VOICE_ID is not configured")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("output_format", outputFormat).
		SetBody(synthesizeRequest{
			Text:    text,
			ModelID: s.model,
			VoiceSettings: voiceSettings{
				Stability:       0.5,
				SimilarityBoost: 0.8,
				Style:           0.0,
				UseSpeakerBoost: true,
				Speed:           1.0,
			},
		}).
		SetOutput(outPath).
		Post("/text-to-speech/" + s.voiceID)
	if err != nil {
		return fmt.Errorf("synthesis request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		// resty wrote whatever came back to outPath; drop the partial file.
		os.Remove(outPath)
		return fmt.Errorf("synthesis returned status %d", resp.StatusCode())
	}

	logger.Debugf("Synthesized %d chars to %s", len(text), outPath)

	return nil
}
