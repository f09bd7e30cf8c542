package kb

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/internal/domain"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
)

// Record type tags stored in vector metadata.
const (
	TypeText        = "text"
	TypeMedia       = "media"
	TypeChatHistory = "chat_history"
)

// Client is the knowledge-store client: OpenAI embeddings plus the
// Pinecone data plane (query + upsert) over REST.
type Client struct {
	httpClient *resty.Client
	openai     openai.Client
	embedModel string
}

type queryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

type upsertVector struct {
	ID       string            `json:"id"`
	Values   []float64         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

type upsertRequest struct {
	Vectors []upsertVector `json:"vectors"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func NewClient(pineconeCfg environments.PineconeConfig, openaiCfg environments.OpenAIConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(pineconeCfg.IndexHost).
		SetTimeout(pineconeCfg.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Api-Key", pineconeCfg.APIKey)

	return &Client{
		httpClient: httpClient,
		openai:     openai.NewClient(option.WithAPIKey(openaiCfg.APIKey)),
		embedModel: openaiCfg.EmbeddingModel,
	}
}

// Query embeds text and returns the topK nearest records with their
// metadata, in the store's native similarity order.
func (c *Client) Query(ctx context.Context, text string, topK int) ([]domain.KBMatch, error) {
	vector, err := c.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	var result queryResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(queryRequest{
			Vector:          vector,
			TopK:            topK,
			IncludeMetadata: true,
		}).
		SetResult(&result).
		Post("/query")
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge store: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("knowledge store query returned status %d: %s", resp.StatusCode(), resp.String())
	}

	matches := make([]domain.KBMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, domain.KBMatch{
			ID:       m.ID,
			Score:    m.Score,
			Type:     m.Metadata["type"],
			FilePath: m.Metadata["file_path"],
			Caption:  m.Metadata["caption"],
			Source:   m.Metadata["source"],
		})
	}

	return matches, nil
}

// ArchiveChat upserts one conversation turn under a key derived from
// the sender and the current time, so repeated calls never collide.
func (c *Client) ArchiveChat(ctx context.Context, turn domain.ConversationTurn) error {
	text := fmt.Sprintf("Cliente (%s): %s\nAgente: %s", turn.Phone, turn.UserText, turn.Reply)

	vector, err := c.embed(ctx, text)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("chat_%s_%d", turn.Phone, turn.Timestamp.UnixNano())

	return c.upsert(ctx, []upsertVector{{
		ID:     key,
		Values: vector,
		Metadata: map[string]string{
			"type":   TypeChatHistory,
			"source": TypeChatHistory,
			"phone":  turn.Phone,
		},
	}})
}

// AddMedia indexes a media asset under its caption so similarity
// queries against user text can surface it.
func (c *Client) AddMedia(ctx context.Context, filePath, caption string) error {
	vector, err := c.embed(ctx, caption)
	if err != nil {
		return err
	}

	return c.upsert(ctx, []upsertVector{{
		ID:     fmt.Sprintf("media_%d", time.Now().UnixNano()),
		Values: vector,
		Metadata: map[string]string{
			"type":      TypeMedia,
			"file_path": filePath,
			"caption":   caption,
		},
	}})
}

// AddText indexes a raw text chunk (product sheet, FAQ entry, ...).
func (c *Client) AddText(ctx context.Context, source, content string) error {
	vector, err := c.embed(ctx, content)
	if err != nil {
		return err
	}

	return c.upsert(ctx, []upsertVector{{
		ID:     fmt.Sprintf("text_%d", time.Now().UnixNano()),
		Values: vector,
		Metadata: map[string]string{
			"type":    TypeText,
			"source":  source,
			"caption": content,
		},
	}})
}

func (c *Client) upsert(ctx context.Context, vectors []upsertVector) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(upsertRequest{Vectors: vectors}).
		Post("/vectors/upsert")
	if err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("vector upsert returned status %d: %s", resp.StatusCode(), resp.String())
	}

	logger.Debugf("Upserted %d vector(s) into knowledge store", len(vectors))

	return nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.openai.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(normalizeText(text)),
		},
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
