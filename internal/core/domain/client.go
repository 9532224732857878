package domain

import "github.com/google/uuid"

// ClientWebhookConfig is the subset of the client entity the dispatcher
// needs: whether and where to deliver, and the shared signing secret.
// The full client record is owned by the business layer.
type ClientWebhookConfig struct {
	ClientID       uuid.UUID `json:"client_id"`
	WebhookEnabled bool      `json:"webhook_enabled"`
	WebhookURL     string    `json:"webhook_url"`
	WebhookSecret  string    `json:"webhook_secret"`
}

// Deliverable reports whether events for this client can be sent at all.
func (c *ClientWebhookConfig) Deliverable() bool {
	return c.WebhookEnabled && c.WebhookURL != ""
}
