package postgres

import (
	"context"
	"errors"
	"fmt"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClientConfigRepo implements ports.ClientConfigRepository against the
// business layer's clients table.
type ClientConfigRepo struct {
	pool Pool
}

// NewClientConfigRepo creates a new ClientConfigRepo.
func NewClientConfigRepo(pool Pool) *ClientConfigRepo {
	return &ClientConfigRepo{pool: pool}
}

// GetWebhookConfig fetches the webhook settings for a client. Returns
// (nil, nil) when the client does not exist.
func (r *ClientConfigRepo) GetWebhookConfig(ctx context.Context, clientID uuid.UUID) (*domain.ClientWebhookConfig, error) {
	query := `SELECT id, webhook_enabled, webhook_url, webhook_secret
		FROM clients WHERE id = $1`

	cfg := &domain.ClientWebhookConfig{}
	var url, secret *string
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&cfg.ClientID, &cfg.WebhookEnabled, &url, &secret,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client webhook config: %w", err)
	}
	if url != nil {
		cfg.WebhookURL = *url
	}
	if secret != nil {
		cfg.WebhookSecret = *secret
	}
	return cfg, nil
}
