package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"paycrypt-gateway/internal/core/domain"
	"paycrypt-gateway/internal/core/ports"
	"paycrypt-gateway/internal/service"
	"paycrypt-gateway/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret"

type fixture struct {
	payments   *inMemoryPaymentRepo
	events     *inMemoryEventRepo
	clients    *inMemoryClientRepo
	confirmSvc *service.ConfirmationServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payments: newInMemoryPaymentRepo(),
		events:   newInMemoryEventRepo(),
		clients:  newInMemoryClientRepo(),
	}
	rule := service.ThresholdStatusRule{RequiredConfirmations: 3}
	f.confirmSvc = service.NewConfirmationService(f.payments, f.events, rule, newInMemoryTransactor(), logger.NewNop())
	return f
}

func (f *fixture) dispatcher(workers int) *service.DispatchServiceImpl {
	return service.NewDispatchService(
		f.events,
		f.clients,
		nil,
		service.NewHMACSignatureService(),
		&http.Client{Timeout: 5 * time.Second},
		workers,
		logger.NewNop(),
	)
}

func (f *fixture) addPayment(t *testing.T, webhookURL string) *domain.Payment {
	t.Helper()
	amount := decimal.RequireFromString("250.00")
	crypto := decimal.RequireFromString("0.0041")
	now := time.Now().UTC()
	p := &domain.Payment{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		Amount:         &amount,
		Currency:       "USD",
		FiatAmount:     &amount,
		FiatCurrency:   "USD",
		CryptoAmount:   &crypto,
		CryptoCurrency: "BTC",
		Status:         domain.PaymentStatusPending,
		PaymentMethod:  "crypto",
		TransactionID:  "tx-" + uuid.NewString()[:8],
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.payments.add(p)
	f.clients.add(&domain.ClientWebhookConfig{
		ClientID:       p.ClientID,
		WebhookEnabled: true,
		WebhookURL:     webhookURL,
		WebhookSecret:  testSecret,
	})
	return p
}

// receivedRequest captures one webhook delivery for later assertions.
type receivedRequest struct {
	eventType string
	eventID   string
	timestamp string
	signature string
	body      []byte
}

// webhookReceiver is an httptest handler that records every delivery.
type webhookReceiver struct {
	mu       sync.Mutex
	requests []receivedRequest
	status   int
}

func (r *webhookReceiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, receivedRequest{
		eventType: req.Header.Get(service.HeaderEvent),
		eventID:   req.Header.Get(service.HeaderEventID),
		timestamp: req.Header.Get(service.HeaderTimestamp),
		signature: req.Header.Get(service.HeaderSignature),
		body:      body,
	})
	status := r.status
	r.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (r *webhookReceiver) received() []receivedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]receivedRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

func (r *webhookReceiver) setStatus(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = code
}

func TestConfirmThenDispatch_DeliversSignedWebhook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receiver := &webhookReceiver{}
	server := httptest.NewServer(receiver)
	defer server.Close()

	payment := f.addPayment(t, server.URL)

	result, err := f.confirmSvc.Confirm(ctx, payment.ID, domain.Confirmation{
		TxHash:         "0xfeed",
		Count:          6,
		ProviderStatus: "confirmed",
	})
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.NotNil(t, result.EventID)
	assert.Equal(t, domain.PaymentStatusCompleted, result.NewStatus)

	summary, err := f.dispatcher(2).DispatchPending(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Delivered)

	got := receiver.received()
	require.Len(t, got, 1)
	assert.Equal(t, "payment.completed", got[0].eventType)
	assert.Equal(t, result.EventID.String(), got[0].eventID)

	// Signature must verify over exactly the delivered timestamp and body.
	sig := service.NewHMACSignatureService()
	assert.True(t, sig.Verify(testSecret, got[0].timestamp, got[0].body, got[0].signature))

	var payload domain.WebhookPayload
	require.NoError(t, json.Unmarshal(got[0].body, &payload))
	assert.Equal(t, domain.EventPaymentCompleted, payload.EventType)
	assert.Equal(t, payment.ID, payload.Payment.ID)
	assert.Equal(t, domain.PaymentStatusCompleted, payload.Payment.Status)

	stored, err := f.events.GetByID(ctx, *result.EventID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.WebhookEventStatusDelivered, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.NotNil(t, stored.DeliveredAt)

	updated, err := f.payments.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, updated.Status)
	require.NotNil(t, updated.ConfirmationTxHash)
	assert.Equal(t, "0xfeed", *updated.ConfirmationTxHash)
}

func TestConfirmThenDispatch_DoubleConfirmationEmitsOneEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receiver := &webhookReceiver{}
	server := httptest.NewServer(receiver)
	defer server.Close()

	payment := f.addPayment(t, server.URL)
	conf := domain.Confirmation{TxHash: "0xfeed", Count: 6, ProviderStatus: "confirmed"}

	first, err := f.confirmSvc.Confirm(ctx, payment.ID, conf)
	require.NoError(t, err)
	require.True(t, first.Applied)

	second, err := f.confirmSvc.Confirm(ctx, payment.ID, conf)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, ports.ReasonAlreadyTerminal, second.Reason)

	events, err := f.events.GetByPaymentID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	summary, err := f.dispatcher(2).DispatchPending(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
	assert.Len(t, receiver.received(), 1)
}

func TestConfirmThenDispatch_FailedDeliveryRetriesLater(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receiver := &webhookReceiver{}
	receiver.setStatus(http.StatusServiceUnavailable)
	server := httptest.NewServer(receiver)
	defer server.Close()

	payment := f.addPayment(t, server.URL)

	result, err := f.confirmSvc.Confirm(ctx, payment.ID, domain.Confirmation{Count: 6, ProviderStatus: "confirmed"})
	require.NoError(t, err)
	require.True(t, result.Applied)

	dispatcher := f.dispatcher(2)

	summary, err := dispatcher.DispatchPending(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	stored, err := f.events.GetByID(ctx, *result.EventID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookEventStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.NextAttemptAt)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Minute), *stored.NextAttemptAt, 10*time.Second)
	require.NotNil(t, stored.LastError)
	assert.Contains(t, *stored.LastError, "HTTP 503")
	require.NotNil(t, stored.LastResponseCode)
	assert.Equal(t, http.StatusServiceUnavailable, *stored.LastResponseCode)

	// Not due yet: an immediate second pass claims nothing.
	receiver.setStatus(http.StatusOK)
	summary, err = dispatcher.DispatchPending(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
	assert.Len(t, receiver.received(), 1)
}

func TestConfirmThenDispatch_DisabledClientNeverCalled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	receiver := &webhookReceiver{}
	server := httptest.NewServer(receiver)
	defer server.Close()

	payment := f.addPayment(t, server.URL)
	f.clients.add(&domain.ClientWebhookConfig{ClientID: payment.ClientID, WebhookEnabled: false})

	result, err := f.confirmSvc.Confirm(ctx, payment.ID, domain.Confirmation{Count: 6, ProviderStatus: "confirmed"})
	require.NoError(t, err)
	require.True(t, result.Applied)

	summary, err := f.dispatcher(2).DispatchPending(ctx, 10, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, receiver.received())

	stored, err := f.events.GetByID(ctx, *result.EventID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookEventStatusFailed, stored.Status)
	assert.Zero(t, stored.Attempts)
	assert.Nil(t, stored.NextAttemptAt)
}
