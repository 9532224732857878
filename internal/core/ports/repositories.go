package ports

import (
	"context"
	"time"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// PaymentRepository defines persistence operations for payments.
// Methods accepting pgx.Tx run inside the confirmation transaction so the
// status mutation and event append commit or roll back as a unit.
type PaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	// GetByIDForUpdate locks the payment row for the duration of tx.
	// The lock is scoped to that single row; no cross-row locking.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error)
	// UpdateStatus persists status, confirmation evidence and updated_at.
	UpdateStatus(ctx context.Context, tx pgx.Tx, p *domain.Payment) error
}

// WebhookEventRepository defines persistence for webhook events.
type WebhookEventRepository interface {
	// Create appends an event within the confirmation transaction.
	Create(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error)
	GetByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]domain.WebhookEvent, error)
	// ClaimDue atomically selects up to limit pending events whose
	// next_attempt_at has passed, oldest-due first, and pushes their
	// next_attempt_at forward by lease so concurrent dispatchers cannot
	// pick them up again while delivery is in flight.
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]domain.WebhookEvent, error)
	// Update persists delivery bookkeeping after an attempt.
	Update(ctx context.Context, event *domain.WebhookEvent) error
}

// ClientConfigRepository reads client webhook configuration owned by the
// business layer.
type ClientConfigRepository interface {
	GetWebhookConfig(ctx context.Context, clientID uuid.UUID) (*domain.ClientWebhookConfig, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
