package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ConfigCache implements ports.ClientConfigCache using Redis. It shields
// the clients table from one read per delivery attempt; entries expire on
// their TTL, so config changes take effect within one TTL window.
type ConfigCache struct {
	client *goredis.Client
	prefix string
}

// NewConfigCache creates a new Redis-backed client config cache.
func NewConfigCache(client *goredis.Client) *ConfigCache {
	return &ConfigCache{
		client: client,
		prefix: "webhook_config:",
	}
}

// Get retrieves a cached webhook config. Returns nil, nil on a miss.
func (c *ConfigCache) Get(ctx context.Context, clientID uuid.UUID) (*domain.ClientWebhookConfig, error) {
	val, err := c.client.Get(ctx, c.prefix+clientID.String()).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis config get: %w", err)
	}

	var cfg domain.ClientWebhookConfig
	if err := json.Unmarshal(val, &cfg); err != nil {
		return nil, fmt.Errorf("decode cached config: %w", err)
	}
	return &cfg, nil
}

// Set stores a webhook config with TTL.
func (c *ConfigCache) Set(ctx context.Context, cfg *domain.ClientWebhookConfig, ttl time.Duration) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+cfg.ClientID.String(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis config set: %w", err)
	}
	return nil
}
