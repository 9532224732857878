package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paycrypt-gateway/internal/core/domain"
	"paycrypt-gateway/internal/core/ports"
	"paycrypt-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ThresholdStatusRule is the default status computation: a confirmed
// deposit with enough confirmations completes the payment, with fewer it
// is approved; provider failure states reject it. The business layer can
// substitute its own ports.StatusRule.
type ThresholdStatusRule struct {
	RequiredConfirmations int
}

// Compute maps provider evidence to the payment's next status. Returning
// the current status means "no state change".
func (r ThresholdStatusRule) Compute(p *domain.Payment, c domain.Confirmation) domain.PaymentStatus {
	switch strings.ToLower(c.ProviderStatus) {
	case "confirmed", "completed", "success":
		if c.Count >= r.RequiredConfirmations {
			return domain.PaymentStatusCompleted
		}
		return domain.PaymentStatusApproved
	case "pending", "processing":
		return domain.PaymentStatusPending
	case "failed", "rejected", "cancelled", "error":
		return domain.PaymentStatusRejected
	}
	return p.Status
}

// ConfirmationServiceImpl implements ports.ConfirmationService — the
// transition guard. The status mutation and the webhook event append share
// one database transaction: either both happen or neither.
type ConfirmationServiceImpl struct {
	paymentRepo ports.PaymentRepository
	eventRepo   ports.WebhookEventRepository
	rule        ports.StatusRule
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewConfirmationService creates a new ConfirmationServiceImpl.
func NewConfirmationService(
	paymentRepo ports.PaymentRepository,
	eventRepo ports.WebhookEventRepository,
	rule ports.StatusRule,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ConfirmationServiceImpl {
	return &ConfirmationServiceImpl{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		rule:        rule,
		transactor:  transactor,
		log:         log,
	}
}

// Confirm applies a confirmation signal to a payment at most once.
// Rejections (double confirmation, no-op) are structured results, not
// errors; the guard performs no network I/O — delivery is the dispatcher's
// job on its own schedule.
func (s *ConfirmationServiceImpl) Confirm(ctx context.Context, paymentID uuid.UUID, conf domain.Confirmation) (*ports.ConfirmationResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock the single payment row for the duration of the transaction
	payment, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, paymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}

	if payment.IsTerminal() {
		// Audit-significant: a repeated confirmation after a terminal
		// outcome. Rejected without side effects.
		s.log.Warn().
			Str("payment_id", payment.ID.String()).
			Str("status", string(payment.Status)).
			Str("tx_hash", conf.TxHash).
			Int("confirmations", conf.Count).
			Msg("double confirmation rejected")

		return &ports.ConfirmationResult{
			Applied:   false,
			Reason:    ports.ReasonAlreadyTerminal,
			Message:   fmt.Sprintf("already in terminal status %s", payment.Status),
			OldStatus: payment.Status,
			NewStatus: payment.Status,
		}, nil
	}

	newStatus := s.rule.Compute(payment, conf)
	if newStatus == payment.Status {
		return &ports.ConfirmationResult{
			Applied:   false,
			Reason:    ports.ReasonNoChange,
			Message:   "no state change",
			OldStatus: payment.Status,
			NewStatus: payment.Status,
		}, nil
	}

	oldStatus := payment.Status
	now := time.Now().UTC()
	payment.Status = newStatus
	if conf.TxHash != "" {
		payment.ConfirmationTxHash = &conf.TxHash
	}
	payment.ConfirmationCount = conf.Count
	payment.UpdatedAt = now

	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, payment); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update payment status: %w", err))
	}

	eventType, ok := domain.EventTypeForStatus(newStatus)
	if !ok {
		return nil, apperror.InternalError(fmt.Errorf("no event type for status %s", newStatus))
	}

	event, err := domain.NewWebhookEvent(payment, eventType, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("build webhook event: %w", err))
	}
	if err := s.eventRepo.Create(ctx, dbTx, event); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create webhook event: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(newStatus)).
		Str("event_id", event.ID.String()).
		Msg("payment transition applied")

	return &ports.ConfirmationResult{
		Applied:   true,
		Message:   fmt.Sprintf("status %s -> %s", oldStatus, newStatus),
		OldStatus: oldStatus,
		NewStatus: newStatus,
		EventID:   &event.ID,
	}, nil
}

// ConfirmByTransactionID resolves the payment by its provider transaction
// reference and delegates to Confirm.
func (s *ConfirmationServiceImpl) ConfirmByTransactionID(ctx context.Context, transactionID string, conf domain.Confirmation) (*ports.ConfirmationResult, error) {
	payment, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payment by transaction id: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	return s.Confirm(ctx, payment.ID, conf)
}
