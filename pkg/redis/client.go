package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/vagnerlopes/whatsapp-sales-agent/environments"
	"github.com/vagnerlopes/whatsapp-sales-agent/pkg/logger"
)

// Client is a webhook dedup cache backed by Valkey. Meta re-delivers
// webhook events on slow responses; remembering provider message ids
// for a day keeps duplicate deliveries from producing a second reply.
type Client struct {
	client valkey.Client
}

const (
	processedKeyPrefix = "processed_message:"
	processedTTL       = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

// MarkProcessed records messageID and reports whether this was the
// first time it was seen. SET NX makes the check-and-set atomic across
// concurrent deliveries.
func (c *Client) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	key := processedKeyPrefix + messageID

	result := c.client.Do(ctx, c.client.B().Set().Key(key).Value("1").Nx().Ex(processedTTL).Build())
	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			// NX rejected the write: the id was already present.
			return false, nil
		}
		return false, fmt.Errorf("failed to mark message as processed: %w", err)
	}

	logger.Debugf("Recorded message id %s in dedup cache", messageID)

	return true, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
