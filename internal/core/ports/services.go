package ports

import (
	"context"
	"time"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// SignatureService signs and verifies webhook payloads with HMAC-SHA256.
// The string-to-sign is timestamp + "." + payload, and payload must be the
// exact bytes sent on the wire.
type SignatureService interface {
	Sign(secret string, timestamp string, payload []byte) string
	Verify(secret string, timestamp string, payload []byte, signature string) bool
}

// StatusRule computes the status a confirmation signal should move a
// payment to. The mapping (confirmation thresholds, provider status
// vocabulary) is business policy supplied by the caller.
type StatusRule interface {
	Compute(p *domain.Payment, c domain.Confirmation) domain.PaymentStatus
}

// RejectionReason classifies why a confirmation was not applied.
type RejectionReason string

const (
	// ReasonAlreadyTerminal: the payment already reached a final status.
	// Audit-significant — logged as a double-confirmation rejection.
	ReasonAlreadyTerminal RejectionReason = "already_terminal"
	// ReasonNoChange: the computed status equals the current one. Benign.
	ReasonNoChange RejectionReason = "no_state_change"
)

// ConfirmationResult is the definite outcome returned to every
// confirmation caller. Never surfaced as an error.
type ConfirmationResult struct {
	Applied   bool
	Reason    RejectionReason // Set when Applied is false
	Message   string
	OldStatus domain.PaymentStatus
	NewStatus domain.PaymentStatus
	EventID   *uuid.UUID // The single event emitted for an applied transition
}

// ConfirmationService is the transition guard: it applies a requested
// status change exactly once per distinct confirmation signal and emits
// exactly one webhook event per change that actually occurs.
type ConfirmationService interface {
	Confirm(ctx context.Context, paymentID uuid.UUID, conf domain.Confirmation) (*ConfirmationResult, error)
	ConfirmByTransactionID(ctx context.Context, transactionID string, conf domain.Confirmation) (*ConfirmationResult, error)
}

// DispatchSummary aggregates the outcome of one dispatch pass.
type DispatchSummary struct {
	Processed int `json:"processed"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// DispatchService delivers due webhook events over HTTP with bounded
// retries. Per-event delivery failures never propagate; only systemic
// failures (event store unreachable) abort a pass.
type DispatchService interface {
	DispatchPending(ctx context.Context, limit int, timeout time.Duration) (*DispatchSummary, error)
}

// ClientConfigCache is a TTL-bounded read cache in front of
// ClientConfigRepository. Get returns nil, nil on a miss.
type ClientConfigCache interface {
	Get(ctx context.Context, clientID uuid.UUID) (*domain.ClientWebhookConfig, error)
	Set(ctx context.Context, cfg *domain.ClientWebhookConfig, ttl time.Duration) error
}
