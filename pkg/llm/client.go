package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/internal/domain"
)

// Fixed sales persona. Discounts and media behavior are described here
// so the model reinforces what the pipeline heuristics actually do.
const systemPrompt = `Você é uma vendedora virtual em Português (Brasil), sotaque de São Paulo.
Seja simpática, objetiva e persuasiva. Use o contexto do KB quando disponível.
Se cliente reclamar do preço, ofereça desconto (40%/50%) conforme regras.
Sempre que relevante, envie imagens ou vídeos do KB; se não houver mídia relacionada, existe 30% de chance de enviar uma mídia de reforço.`

// Client generates sales replies with an OpenAI chat model. Each call
// is stateless: the only cross-turn memory is whatever the knowledge
// store returns as context.
type Client struct {
	openai      openai.Client
	model       string
	temperature float64
}

func NewClient(cfg environments.OpenAIConfig) *Client {
	return &Client{
		openai:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.ChatModel,
		temperature: cfg.Temperature,
	}
}

// Generate produces one completion for userText, grounded on the
// knowledge-store matches passed as context.
func (c *Client) Generate(ctx context.Context, userText string, contexts []domain.KBMatch) (string, error) {
	resp, err := c.openai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildQuestion(userText, contexts)),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	reply := resp.Choices[0].Message.Content
	if reply == "" {
		return "", fmt.Errorf("empty completion content")
	}

	return reply, nil
}

func buildQuestion(userText string, contexts []domain.KBMatch) string {
	var b strings.Builder

	b.WriteString("Contexto (do KB):\n")
	if len(contexts) == 0 {
		b.WriteString("(vazio)\n")
	}
	for _, match := range contexts {
		if content := match.Content(); content != "" {
			b.WriteString("- ")
			b.WriteString(content)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nPergunta do cliente:\n")
	b.WriteString(userText)
	b.WriteString("\n\nResposta clara, útil e profissional:")

	return b.String()
}
