package dto

import (
	"encoding/json"
	"time"

	"paycrypt-gateway/internal/core/domain"
	"paycrypt-gateway/internal/core/ports"
)

// ConfirmationRequest is the request body for crypto confirmation intake.
// Providers disagree on the hash field name, so txid/tx_hash/hash are all
// accepted; ResolveTxHash picks the first one present.
type ConfirmationRequest struct {
	PaymentID     string `json:"payment_id,omitempty" binding:"omitempty,uuid"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status" binding:"required,max=50"`
	Confirmations int    `json:"confirmations" binding:"gte=0"`
	TxHash        string `json:"tx_hash,omitempty" binding:"omitempty,tx_hash"`
	TxID          string `json:"txid,omitempty" binding:"omitempty,tx_hash"`
	Hash          string `json:"hash,omitempty" binding:"omitempty,tx_hash"`
}

// ResolveTxHash returns the transaction hash under whichever alias the
// provider used.
func (r *ConfirmationRequest) ResolveTxHash() string {
	switch {
	case r.TxHash != "":
		return r.TxHash
	case r.TxID != "":
		return r.TxID
	default:
		return r.Hash
	}
}

// ConfirmationResponse is the response body for a confirmation attempt.
type ConfirmationResponse struct {
	Applied   bool    `json:"applied"`
	Reason    string  `json:"reason,omitempty"`
	Message   string  `json:"message"`
	OldStatus string  `json:"old_status"`
	NewStatus string  `json:"new_status"`
	EventID   *string `json:"event_id,omitempty"`
}

// EventResponse is the inspection view of a webhook event.
type EventResponse struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"client_id"`
	PaymentID        string          `json:"payment_id"`
	EventType        string          `json:"event_type"`
	Payload          json.RawMessage `json:"payload"`
	Status           string          `json:"status"`
	Attempts         int             `json:"attempts"`
	MaxAttempts      int             `json:"max_attempts"`
	NextAttemptAt    *string         `json:"next_attempt_at"`
	LastError        *string         `json:"last_error"`
	LastResponseCode *int            `json:"last_response_code"`
	DeliveredAt      *string         `json:"delivered_at"`
	CreatedAt        string          `json:"created_at"`
}

// ToConfirmationResponse converts a service result to its DTO.
func ToConfirmationResponse(result *ports.ConfirmationResult) ConfirmationResponse {
	resp := ConfirmationResponse{
		Applied:   result.Applied,
		Reason:    string(result.Reason),
		Message:   result.Message,
		OldStatus: string(result.OldStatus),
		NewStatus: string(result.NewStatus),
	}
	if result.EventID != nil {
		s := result.EventID.String()
		resp.EventID = &s
	}
	return resp
}

// ToEventResponse converts a webhook event to its DTO.
func ToEventResponse(e *domain.WebhookEvent) EventResponse {
	resp := EventResponse{
		ID:               e.ID.String(),
		ClientID:         e.ClientID.String(),
		PaymentID:        e.PaymentID.String(),
		EventType:        string(e.EventType),
		Payload:          e.Payload,
		Status:           string(e.Status),
		Attempts:         e.Attempts,
		MaxAttempts:      e.MaxAttempts,
		LastError:        e.LastError,
		LastResponseCode: e.LastResponseCode,
		CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.NextAttemptAt != nil {
		s := e.NextAttemptAt.UTC().Format(time.RFC3339)
		resp.NextAttemptAt = &s
	}
	if e.DeliveredAt != nil {
		s := e.DeliveredAt.UTC().Format(time.RFC3339)
		resp.DeliveredAt = &s
	}
	return resp
}
