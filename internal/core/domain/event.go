package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WebhookEventStatus represents the delivery state of a webhook event.
type WebhookEventStatus string

const (
	WebhookEventStatusPending   WebhookEventStatus = "pending"
	WebhookEventStatusDelivered WebhookEventStatus = "delivered"
	WebhookEventStatusFailed    WebhookEventStatus = "failed"
)

// EventType identifies the kind of payment state change announced to a client.
type EventType string

const (
	EventPaymentCreated   EventType = "payment.created"
	EventPaymentPending   EventType = "payment.pending"
	EventPaymentApproved  EventType = "payment.approved"
	EventPaymentCompleted EventType = "payment.completed"
	EventPaymentFailed    EventType = "payment.failed"
	EventPaymentRejected  EventType = "payment.rejected"
	EventPaymentCancelled EventType = "payment.cancelled"
)

// EventTypeForStatus maps a payment status to the event type announcing it.
func EventTypeForStatus(s PaymentStatus) (EventType, bool) {
	switch s {
	case PaymentStatusPending:
		return EventPaymentPending, true
	case PaymentStatusApproved:
		return EventPaymentApproved, true
	case PaymentStatusCompleted:
		return EventPaymentCompleted, true
	case PaymentStatusFailed:
		return EventPaymentFailed, true
	case PaymentStatusRejected:
		return EventPaymentRejected, true
	case PaymentStatusCancelled:
		return EventPaymentCancelled, true
	}
	return "", false
}

// maxLastErrorLen bounds last_error so provider error pages don't bloat rows.
const maxLastErrorLen = 500

// WebhookEvent is a durable record that a payment state change must be
// announced to a client, independent of delivery outcome. Created once per
// effective status transition; mutated exclusively by the dispatcher.
type WebhookEvent struct {
	ID               uuid.UUID          `json:"id"`
	ClientID         uuid.UUID          `json:"client_id"`
	PaymentID        uuid.UUID          `json:"payment_id"`
	EventType        EventType          `json:"event_type"`
	Payload          json.RawMessage    `json:"payload"` // Canonical JSON, signed byte-for-byte
	Status           WebhookEventStatus `json:"status"`
	Attempts         int                `json:"attempts"`
	MaxAttempts      int                `json:"max_attempts"`
	NextAttemptAt    *time.Time         `json:"next_attempt_at"`
	LastError        *string            `json:"last_error"`
	LastResponseCode *int               `json:"last_response_code"`
	DeliveredAt      *time.Time         `json:"delivered_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// PaymentSnapshot is the externally visible view of a payment embedded in
// a webhook payload, frozen at transition time.
type PaymentSnapshot struct {
	ID             uuid.UUID        `json:"id"`
	ClientID       uuid.UUID        `json:"client_id"`
	Amount         *decimal.Decimal `json:"amount"`
	Currency       string           `json:"currency"`
	FiatAmount     *decimal.Decimal `json:"fiat_amount"`
	FiatCurrency   string           `json:"fiat_currency"`
	CryptoAmount   *decimal.Decimal `json:"crypto_amount"`
	CryptoCurrency string           `json:"crypto_currency"`
	Status         PaymentStatus    `json:"status"`
	PaymentMethod  string           `json:"payment_method"`
	TransactionID  string           `json:"transaction_id"`
	Description    *string          `json:"description"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

// WebhookPayload is the JSON body delivered to the client's webhook URL.
// The marshaled bytes are stored on the event and signed unchanged, so
// sender and verifier always compute over identical input.
type WebhookPayload struct {
	EventType EventType       `json:"event_type"`
	Payment   PaymentSnapshot `json:"payment"`
	Timestamp string          `json:"timestamp"`
}

// NewWebhookEvent builds a pending event for the given payment transition.
func NewWebhookEvent(p *Payment, eventType EventType, now time.Time) (*WebhookEvent, error) {
	payload := WebhookPayload{
		EventType: eventType,
		Payment: PaymentSnapshot{
			ID:             p.ID,
			ClientID:       p.ClientID,
			Amount:         p.Amount,
			Currency:       p.Currency,
			FiatAmount:     p.FiatAmount,
			FiatCurrency:   p.FiatCurrency,
			CryptoAmount:   p.CryptoAmount,
			CryptoCurrency: p.CryptoCurrency,
			Status:         p.Status,
			PaymentMethod:  p.PaymentMethod,
			TransactionID:  p.TransactionID,
			Description:    p.Description,
			CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:      p.UpdatedAt.UTC().Format(time.RFC3339),
		},
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	next := now
	return &WebhookEvent{
		ID:            uuid.New(),
		ClientID:      p.ClientID,
		PaymentID:     p.ID,
		EventType:     eventType,
		Payload:       raw,
		Status:        WebhookEventStatusPending,
		Attempts:      0,
		MaxAttempts:   MaxAttempts,
		NextAttemptAt: &next, // Due immediately
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsDeliverable reports whether the event is still eligible for delivery.
func (e *WebhookEvent) IsDeliverable(now time.Time) bool {
	if e.Status != WebhookEventStatusPending {
		return false
	}
	if e.Attempts >= e.MaxAttempts {
		return false
	}
	if e.NextAttemptAt != nil && e.NextAttemptAt.After(now) {
		return false
	}
	return true
}

// MarkDelivered records a successful delivery. Delivered is terminal.
func (e *WebhookEvent) MarkDelivered(responseCode int, now time.Time) {
	e.Status = WebhookEventStatusDelivered
	e.Attempts++
	e.DeliveredAt = &now
	e.LastResponseCode = &responseCode
	e.LastError = nil
	e.UpdatedAt = now
}

// RecordFailure records a failed delivery attempt and schedules the retry.
// Once attempts reach MaxAttempts the event becomes terminally failed and
// no further attempt is scheduled.
func (e *WebhookEvent) RecordFailure(errMsg string, responseCode *int, now time.Time) {
	e.Attempts++
	if len(errMsg) > maxLastErrorLen {
		errMsg = errMsg[:maxLastErrorLen]
	}
	e.LastError = &errMsg
	e.LastResponseCode = responseCode
	e.UpdatedAt = now

	delay, ok := RetryDelay(e.Attempts)
	if !ok || e.Attempts >= e.MaxAttempts {
		e.Status = WebhookEventStatusFailed
		e.NextAttemptAt = nil
		return
	}
	next := now.Add(delay)
	e.NextAttemptAt = &next
}

// MarkUndeliverable terminally fails the event without consuming a delivery
// attempt. Used when the owning client has webhooks disabled or unset.
func (e *WebhookEvent) MarkUndeliverable(reason string, now time.Time) {
	e.Status = WebhookEventStatusFailed
	e.LastError = &reason
	e.NextAttemptAt = nil
	e.UpdatedAt = now
}
