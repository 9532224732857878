package postgres

import (
	"context"
	"errors"
	"fmt"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, client_id, amount, currency, fiat_amount, fiat_currency,
	crypto_amount, crypto_currency, status, payment_method, transaction_id,
	description, confirmation_tx_hash, confirmation_count, created_at, updated_at`

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// GetByID fetches a payment by its UUID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return p, nil
}

// GetByTransactionID fetches a payment by its provider transaction reference.
func (r *PaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by transaction_id: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a payment and holds a row lock until tx ends.
// Confirmations for the same payment serialize on this lock.
func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment for update: %w", err)
	}
	return p, nil
}

// UpdateStatus persists the status transition and confirmation evidence.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `UPDATE payments
		SET status=$1, confirmation_tx_hash=$2, confirmation_count=$3, updated_at=$4
		WHERE id=$5`

	_, err := tx.Exec(ctx, query,
		string(p.Status), p.ConfirmationTxHash, p.ConfirmationCount, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	var status string
	err := row.Scan(
		&p.ID, &p.ClientID, &p.Amount, &p.Currency, &p.FiatAmount, &p.FiatCurrency,
		&p.CryptoAmount, &p.CryptoCurrency, &status, &p.PaymentMethod, &p.TransactionID,
		&p.Description, &p.ConfirmationTxHash, &p.ConfirmationCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	return p, nil
}
