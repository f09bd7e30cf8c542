package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/internal/domain"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
)

// Fixed user-facing strings. Internal error details are never sent
// over the messaging channel.
const (
	msgAudioApology  = "Desculpe, não consegui processar o áudio."
	msgClarification = "Desculpe, não entendi. Pode repetir, por favor?"
	msgBuyingIntent  = "Perfeito! Aqui está o link para finalizar sua compra: %s"
	msgPriceOffer    = "Entendo que o preço é uma preocupação. Posso te oferecer essa condição especial: %s"
)

// Small internal interfaces so we can test without touching the real
// WhatsApp, OpenAI, Pinecone and ElevenLabs clients.
type messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendAudio(ctx context.Context, to, filePath string) error
	SendMedia(ctx context.Context, to, filePath string) error
	DownloadMedia(ctx context.Context, mediaID, outPath string) (string, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type knowledgeBase interface {
	Query(ctx context.Context, text string, topK int) ([]domain.KBMatch, error)
	ArchiveChat(ctx context.Context, turn domain.ConversationTurn) error
}

type replyGenerator interface {
	Generate(ctx context.Context, userText string, contexts []domain.KBMatch) (string, error)
}

type linkProvider interface {
	Link(priceObjection, maxDiscount bool) string
}

// DedupCache is exported so main can declare an optional cache slot
// without tripping over a typed-nil interface.
type DedupCache interface {
	MarkProcessed(ctx context.Context, messageID string) (bool, error)
}

// Pipeline runs one inbound message through
// extract -> retrieve -> generate -> archive -> reply -> media -> heuristics.
// Every execution is request-scoped and holds no shared mutable state.
type Pipeline struct {
	whatsapp messenger
	stt      transcriber
	tts      synthesizer
	kb       knowledgeBase
	llm      replyGenerator
	payment  linkProvider
	dedup    DedupCache // nil when dedup is disabled
	agentCfg environments.AgentConfig
	salesCfg environments.SalesConfig

	// rng drives the fallback-media draw; injected so the 30% policy
	// is deterministic under test.
	rng func() float64
}

func NewPipeline(
	whatsapp messenger,
	stt transcriber,
	tts synthesizer,
	kb knowledgeBase,
	llm replyGenerator,
	payment linkProvider,
	dedup DedupCache,
	agentCfg environments.AgentConfig,
	salesCfg environments.SalesConfig,
) *Pipeline {
	return &Pipeline{
		whatsapp: whatsapp,
		stt:      stt,
		tts:      tts,
		kb:       kb,
		llm:      llm,
		payment:  payment,
		dedup:    dedup,
		agentCfg: agentCfg,
		salesCfg: salesCfg,
		rng:      rand.Float64,
	}
}

// ProcessMessage is the orchestration entry point. Best-effort steps
// swallow their own failures; a returned error means reply generation
// or the primary text channel failed and the handler must answer 5xx.
func (p *Pipeline) ProcessMessage(ctx context.Context, phone string, msg *domain.InboundMessage) (*domain.ProcessResult, error) {
	if p.dedup != nil && msg.ID != "" {
		firstSeen, err := p.dedup.MarkProcessed(ctx, msg.ID)
		if err != nil {
			logger.Warnf("Dedup cache unavailable, processing anyway: %v", err)
		} else if !firstSeen {
			logger.Infof("Skipping duplicate delivery of message %s", msg.ID)
			return &domain.ProcessResult{Status: domain.StatusDuplicate}, nil
		}
	}

	userText, extractErrMsg, err := p.extractUserText(ctx, msg)
	if err != nil {
		return nil, err
	}

	if extractErrMsg != "" {
		if err := p.whatsapp.SendText(ctx, phone, extractErrMsg); err != nil {
			return nil, fmt.Errorf("failed to send extraction apology: %w", err)
		}
		return &domain.ProcessResult{Status: domain.StatusError, Message: extractErrMsg}, nil
	}

	if userText == "" {
		if err := p.whatsapp.SendText(ctx, phone, msgClarification); err != nil {
			return nil, fmt.Errorf("failed to send clarification prompt: %w", err)
		}
		return &domain.ProcessResult{Status: domain.StatusNoInput}, nil
	}

	mediaFiles := p.relevantMedia(ctx, userText)

	reply, err := p.generateReply(ctx, userText)
	if err != nil {
		return nil, err
	}

	p.archiveChat(ctx, userText, reply, phone)

	if err := p.sendReply(ctx, phone, reply); err != nil {
		return nil, err
	}

	mediaSent := p.sendMediaFiles(ctx, phone, mediaFiles)

	if p.detectBuyingIntent(ctx, userText, phone) {
		return &domain.ProcessResult{Status: domain.StatusBuyingIntent, MediaSent: &mediaSent}, nil
	}

	p.handlePriceObjection(ctx, userText, phone)

	return &domain.ProcessResult{Status: domain.StatusOK, MediaSent: &mediaSent}, nil
}

// extractUserText returns (text, userFacingError, fatalError). Audio
// failures degrade to a fixed apology; unknown message types yield
// neither text nor error.
func (p *Pipeline) extractUserText(ctx context.Context, msg *domain.InboundMessage) (string, string, error) {
	switch msg.Type {
	case domain.MessageTypeText:
		if msg.Text == nil {
			return "", "", fmt.Errorf("%w: text message without text body", domain.ErrMalformedMessage)
		}
		return msg.Text.Body, "", nil

	case domain.MessageTypeAudio:
		if msg.Audio == nil || msg.Audio.ID == "" {
			return "", "", fmt.Errorf("%w: audio message without attachment id", domain.ErrMalformedMessage)
		}

		inPath := filepath.Join(p.agentCfg.TempFolder, fmt.Sprintf("input_%s.ogg", uuid.NewString()))
		defer os.Remove(inPath)

		path, err := p.whatsapp.DownloadMedia(ctx, msg.Audio.ID, inPath)
		if err != nil {
			logger.Errorf("Audio download error for %s: %v", msg.Audio.ID, err)
			return "", msgAudioApology, nil
		}

		userText, err := p.stt.Transcribe(ctx, path)
		if err != nil {
			logger.Errorf("Audio transcription error for %s: %v", msg.Audio.ID, err)
			return "", msgAudioApology, nil
		}

		return userText, "", nil
	}

	return "", "", nil
}

// relevantMedia returns the media file references among the top-K
// matches for userText. A failing query degrades to no media.
func (p *Pipeline) relevantMedia(ctx context.Context, userText string) []string {
	matches, err := p.kb.Query(ctx, userText, p.agentCfg.TopK)
	if err != nil {
		logger.Warnf("Knowledge store media lookup failed: %v", err)
		return nil
	}

	var files []string
	for _, m := range matches {
		if m.Type == "media" && m.FilePath != "" {
			files = append(files, m.FilePath)
		}
	}

	return files
}

// generateReply runs retrieval-augmented generation. Both the context
// retrieval and the completion are fatal on failure; only the media
// lookup degrades.
func (p *Pipeline) generateReply(ctx context.Context, userText string) (string, error) {
	contexts, err := p.kb.Query(ctx, userText, p.agentCfg.TopK)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve reply context: %w", err)
	}

	reply, err := p.llm.Generate(ctx, userText, contexts)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	return reply, nil
}

// archiveChat is best-effort; a failed upsert never blocks the reply.
func (p *Pipeline) archiveChat(ctx context.Context, userText, reply, phone string) {
	turn := domain.ConversationTurn{
		UserText:  userText,
		Reply:     reply,
		Phone:     phone,
		Timestamp: time.Now(),
	}

	if err := p.kb.ArchiveChat(ctx, turn); err != nil {
		logger.Warnf("Failed to archive chat for %s: %v", phone, err)
		return
	}

	logger.Debugf("Chat archived for %s", phone)
}

// sendReply sends the text reply (primary channel, fatal on failure)
// and then a synthesized voice note (best-effort). The temp audio file
// is removed regardless of outcome.
func (p *Pipeline) sendReply(ctx context.Context, phone, reply string) error {
	if err := p.whatsapp.SendText(ctx, phone, reply); err != nil {
		return fmt.Errorf("failed to send text reply: %w", err)
	}

	audioPath := filepath.Join(p.agentCfg.TempFolder, fmt.Sprintf("reply_%s.ogg", uuid.NewString()))
	defer os.Remove(audioPath)

	if err := p.tts.Synthesize(ctx, reply, audioPath); err != nil {
		logger.Warnf("Voice reply synthesis failed for %s: %v", phone, err)
		return nil
	}

	if err := p.whatsapp.SendAudio(ctx, phone, audioPath); err != nil {
		logger.Warnf("Voice reply send failed for %s: %v", phone, err)
	}

	return nil
}

// sendMediaFiles sends every existing media file, counting successes.
// When nothing was sent there is a fallbackProbability chance of
// sending the designated fallback asset; each invocation is an
// independent draw.
func (p *Pipeline) sendMediaFiles(ctx context.Context, phone string, mediaFiles []string) int {
	sent := 0

	for _, file := range mediaFiles {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			logger.Warnf("Skipping missing media file %s", file)
			continue
		}
		if err := p.whatsapp.SendMedia(ctx, phone, file); err != nil {
			logger.Warnf("Failed to send media %s to %s: %v", file, phone, err)
			continue
		}
		sent++
	}

	if sent == 0 && p.rng() < p.agentCfg.FallbackProbability {
		fallback := filepath.Join(p.agentCfg.MediaFolder, p.agentCfg.FallbackMediaFile)
		if _, err := os.Stat(fallback); err == nil {
			if err := p.whatsapp.SendMedia(ctx, phone, fallback); err != nil {
				logger.Warnf("Failed to send fallback media to %s: %v", phone, err)
			} else {
				sent++
			}
		}
	}

	return sent
}

// detectBuyingIntent checks the buying keyword list and, on a match,
// sends the non-discounted payment link. It runs before the
// price-objection check and short-circuits it.
func (p *Pipeline) detectBuyingIntent(ctx context.Context, userText, phone string) bool {
	if !containsKeyword(userText, p.salesCfg.BuyingKeywords) {
		return false
	}

	link := p.payment.Link(false, false)
	if err := p.whatsapp.SendText(ctx, phone, fmt.Sprintf(msgBuyingIntent, link)); err != nil {
		logger.Warnf("Failed to send payment link to %s: %v", phone, err)
	}

	return true
}

// handlePriceObjection sends the 40% discount link on a price
// complaint. Side effect only: the terminal status stays ok.
func (p *Pipeline) handlePriceObjection(ctx context.Context, userText, phone string) bool {
	if !containsKeyword(userText, p.salesCfg.PriceKeywords) {
		return false
	}

	link := p.payment.Link(true, false)
	if err := p.whatsapp.SendText(ctx, phone, fmt.Sprintf(msgPriceOffer, link)); err != nil {
		logger.Warnf("Failed to send discount link to %s: %v", phone, err)
	}

	return true
}

func containsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
