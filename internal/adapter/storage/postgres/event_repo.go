package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, client_id, payment_id, event_type, payload, status,
	attempts, max_attempts, next_attempt_at, last_error, last_response_code,
	delivered_at, created_at, updated_at`

// WebhookEventRepo implements ports.WebhookEventRepository.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Create appends the event inside the confirmation transaction.
func (r *WebhookEventRepo) Create(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) error {
	query := `INSERT INTO webhook_events
		(id, client_id, payment_id, event_type, payload, status, attempts, max_attempts,
		 next_attempt_at, last_error, last_response_code, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := tx.Exec(ctx, query,
		event.ID, event.ClientID, event.PaymentID, string(event.EventType),
		[]byte(event.Payload), string(event.Status), event.Attempts, event.MaxAttempts,
		event.NextAttemptAt, event.LastError, event.LastResponseCode, event.DeliveredAt,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook event: %w", err)
	}
	return nil
}

// GetByID fetches a single event.
func (r *WebhookEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM webhook_events WHERE id = $1`

	e, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event by id: %w", err)
	}
	return e, nil
}

// GetByPaymentID returns all events for a payment, oldest first.
func (r *WebhookEventRepo) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]domain.WebhookEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM webhook_events
		WHERE payment_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list webhook events by payment: %w", err)
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ClaimDue atomically selects due pending events and pushes next_attempt_at
// forward by lease. SKIP LOCKED keeps concurrent dispatchers from claiming
// the same rows; the lease keeps an event off later passes while its
// delivery is in flight. A crashed dispatcher's claims simply lapse.
func (r *WebhookEventRepo) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]domain.WebhookEvent, error) {
	query := `UPDATE webhook_events
		SET next_attempt_at = NOW() + make_interval(secs => $2), updated_at = NOW()
		WHERE id IN (
			SELECT id FROM webhook_events
			WHERE status = 'pending'
			  AND attempts < max_attempts
			  AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + eventColumns

	rows, err := r.pool.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("claim due webhook events: %w", err)
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claimed event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update persists delivery bookkeeping after an attempt.
func (r *WebhookEventRepo) Update(ctx context.Context, event *domain.WebhookEvent) error {
	query := `UPDATE webhook_events
		SET status=$1, attempts=$2, next_attempt_at=$3, last_error=$4,
		    last_response_code=$5, delivered_at=$6, updated_at=$7
		WHERE id=$8`

	_, err := r.pool.Exec(ctx, query,
		string(event.Status), event.Attempts, event.NextAttemptAt, event.LastError,
		event.LastResponseCode, event.DeliveredAt, event.UpdatedAt, event.ID,
	)
	if err != nil {
		return fmt.Errorf("update webhook event: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.WebhookEvent, error) {
	e := &domain.WebhookEvent{}
	var eventType, status string
	var payload []byte
	err := row.Scan(
		&e.ID, &e.ClientID, &e.PaymentID, &eventType, &payload, &status,
		&e.Attempts, &e.MaxAttempts, &e.NextAttemptAt, &e.LastError, &e.LastResponseCode,
		&e.DeliveredAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.EventType = domain.EventType(eventType)
	e.Status = domain.WebhookEventStatus(status)
	e.Payload = payload
	return e, nil
}
