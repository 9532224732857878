package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment represents a crypto or bank-gateway payment tracked by the
// business layer. Status changes flow exclusively through the
// confirmation service; rows are never deleted (audit requirement).
type Payment struct {
	ID                 uuid.UUID        `json:"id"`
	ClientID           uuid.UUID        `json:"client_id"`
	Amount             *decimal.Decimal `json:"amount"`
	Currency           string           `json:"currency"`
	FiatAmount         *decimal.Decimal `json:"fiat_amount"`
	FiatCurrency       string           `json:"fiat_currency"`
	CryptoAmount       *decimal.Decimal `json:"crypto_amount"`
	CryptoCurrency     string           `json:"crypto_currency"`
	Status             PaymentStatus    `json:"status"`
	PaymentMethod      string           `json:"payment_method"`
	TransactionID      string           `json:"transaction_id"`
	Description        *string          `json:"description,omitempty"`
	ConfirmationTxHash *string          `json:"confirmation_tx_hash,omitempty"`
	ConfirmationCount  int              `json:"confirmation_count"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// IsTerminal returns true if the payment is in a final state and no
// further confirmation may change it.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRejected, PaymentStatusCancelled:
		return true
	}
	return false
}

// Confirmation is the evidence carried by a confirmation signal from an
// external wallet provider or bank gateway.
type Confirmation struct {
	TxHash         string
	Count          int
	ProviderStatus string
}
