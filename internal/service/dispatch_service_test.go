package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"paycrypt-gateway/internal/core/domain"
	"paycrypt-gateway/internal/core/ports/mocks"
	"paycrypt-gateway/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type httpClientFunc func(*http.Request) (*http.Response, error)

func (f httpClientFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func httpResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func claimedEvent(t *testing.T, status domain.PaymentStatus) domain.WebhookEvent {
	t.Helper()
	payment := newTestPayment(status)
	eventType, ok := domain.EventTypeForStatus(status)
	require.True(t, ok)
	event, err := domain.NewWebhookEvent(payment, eventType, time.Now().UTC())
	require.NoError(t, err)
	return *event
}

func deliverableConfig(event domain.WebhookEvent) *domain.ClientWebhookConfig {
	return &domain.ClientWebhookConfig{
		ClientID:       event.ClientID,
		WebhookEnabled: true,
		WebhookURL:     "https://client.example/hook",
		WebhookSecret:  "whsec_test",
	}
}

type dispatchFixture struct {
	eventRepo  *mocks.MockWebhookEventRepository
	clientRepo *mocks.MockClientConfigRepository
	cache      *mocks.MockClientConfigCache
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	ctrl := gomock.NewController(t)
	return &dispatchFixture{
		eventRepo:  mocks.NewMockWebhookEventRepository(ctrl),
		clientRepo: mocks.NewMockClientConfigRepository(ctrl),
		cache:      mocks.NewMockClientConfigCache(ctrl),
	}
}

func (f *dispatchFixture) service(client HTTPClient, workers int) *DispatchServiceImpl {
	return NewDispatchService(f.eventRepo, f.clientRepo, nil, NewHMACSignatureService(), client, workers, logger.NewNop())
}

func TestDispatchService_DeliversSignedRequest(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)

	var gotReq *http.Request
	var gotBody []byte
	client := httpClientFunc(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		var err error
		gotBody, err = io.ReadAll(req.Body)
		require.NoError(t, err)
		return httpResponse(http.StatusOK, `{"ok":true}`), nil
	})

	var updated *domain.WebhookEvent
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.WebhookEvent) error {
			updated = e
			return nil
		})

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Delivered)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, cfg.WebhookURL, gotReq.URL.String())
	assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))
	assert.Equal(t, "payment.completed", gotReq.Header.Get(HeaderEvent))
	assert.Equal(t, event.ID.String(), gotReq.Header.Get(HeaderEventID))
	assert.Equal(t, []byte(event.Payload), gotBody, "wire body is the stored canonical payload")

	ts := gotReq.Header.Get(HeaderTimestamp)
	_, tsErr := time.Parse(time.RFC3339, ts)
	assert.NoError(t, tsErr)

	sig := gotReq.Header.Get(HeaderSignature)
	assert.True(t, NewHMACSignatureService().Verify(cfg.WebhookSecret, ts, gotBody, sig),
		"signature verifies over the delivered timestamp and body")

	require.NotNil(t, updated)
	assert.Equal(t, domain.WebhookEventStatusDelivered, updated.Status)
	assert.Equal(t, 1, updated.Attempts)
	require.NotNil(t, updated.LastResponseCode)
	assert.Equal(t, http.StatusOK, *updated.LastResponseCode)
	require.NotNil(t, updated.DeliveredAt)
}

func TestDispatchService_Non2xxSchedulesRetry(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusInternalServerError, "upstream exploded"), nil
	})

	var updated *domain.WebhookEvent
	start := time.Now().UTC()
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.WebhookEvent) error {
			updated = e
			return nil
		})

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Delivered)

	require.NotNil(t, updated)
	assert.Equal(t, domain.WebhookEventStatusPending, updated.Status, "still retryable")
	assert.Equal(t, 1, updated.Attempts)
	require.NotNil(t, updated.LastError)
	assert.Contains(t, *updated.LastError, "HTTP 500")
	assert.Contains(t, *updated.LastError, "upstream exploded")
	require.NotNil(t, updated.LastResponseCode)
	assert.Equal(t, http.StatusInternalServerError, *updated.LastResponseCode)
	// First retry is scheduled one minute out
	require.NotNil(t, updated.NextAttemptAt)
	assert.WithinDuration(t, start.Add(time.Minute), *updated.NextAttemptAt, 5*time.Second)
}

func TestDispatchService_ConnectionErrorSchedulesRetry(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	var updated *domain.WebhookEvent
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.WebhookEvent) error {
			updated = e
			return nil
		})

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	require.NotNil(t, updated)
	require.NotNil(t, updated.LastError)
	assert.Contains(t, *updated.LastError, "connection error")
	assert.Nil(t, updated.LastResponseCode)
}

func TestDispatchService_DisabledClientSkipsWithoutAttempt(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)
	cfg.WebhookEnabled = false

	var called atomic.Bool
	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		called.Store(true)
		return httpResponse(http.StatusOK, ""), nil
	})

	var updated *domain.WebhookEvent
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.WebhookEvent) error {
			updated = e
			return nil
		})

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, called.Load(), "no HTTP request for a disabled client")

	require.NotNil(t, updated)
	assert.Equal(t, domain.WebhookEventStatusFailed, updated.Status)
	assert.Equal(t, 0, updated.Attempts, "skip consumes no delivery attempt")
	assert.Nil(t, updated.NextAttemptAt)
	require.NotNil(t, updated.LastError)
	assert.Contains(t, *updated.LastError, "disabled")
}

func TestDispatchService_ExhaustionTerminallyFails(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	event.Attempts = domain.MaxAttempts - 1
	cfg := deliverableConfig(event)

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusBadGateway, "still down"), nil
	})

	var updated *domain.WebhookEvent
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *domain.WebhookEvent) error {
			updated = e
			return nil
		})

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	require.NotNil(t, updated)
	assert.Equal(t, domain.WebhookEventStatusFailed, updated.Status)
	assert.Equal(t, domain.MaxAttempts, updated.Attempts)
	assert.Nil(t, updated.NextAttemptAt, "no retry after the final attempt")
}

func TestDispatchService_ClaimFailurePropagates(t *testing.T) {
	f := newDispatchFixture(t)
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return(nil, errors.New("store unreachable"))

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		t.Error("no delivery should happen")
		return nil, nil
	})

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestDispatchService_NothingDue(t *testing.T) {
	f := newDispatchFixture(t)
	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return(nil, nil)

	summary, err := f.service(nil, 4).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
	assert.Zero(t, summary.Delivered)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)
}

func TestDispatchService_MixedBatchWithWorkers(t *testing.T) {
	f := newDispatchFixture(t)

	good := claimedEvent(t, domain.PaymentStatusCompleted)
	flaky := claimedEvent(t, domain.PaymentStatusApproved)
	disabled := claimedEvent(t, domain.PaymentStatusRejected)

	goodCfg := deliverableConfig(good)
	flakyCfg := deliverableConfig(flaky)
	flakyCfg.WebhookURL = "https://flaky.example/hook"
	disabledCfg := deliverableConfig(disabled)
	disabledCfg.WebhookEnabled = false

	client := httpClientFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "flaky.example" {
			return httpResponse(http.StatusServiceUnavailable, "busy"), nil
		}
		return httpResponse(http.StatusNoContent, ""), nil
	})

	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 50, gomock.Any()).
		Return([]domain.WebhookEvent{good, flaky, disabled}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), good.ClientID).Return(goodCfg, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), flaky.ClientID).Return(flakyCfg, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), disabled.ClientID).Return(disabledCfg, nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	summary, err := f.service(client, 4).DispatchPending(context.Background(), 50, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Delivered)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestDispatchService_ConfigCacheHitSkipsStore(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusOK, ""), nil
	})

	svc := NewDispatchService(f.eventRepo, f.clientRepo, f.cache, NewHMACSignatureService(), client, 1, logger.NewNop())

	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.cache.EXPECT().Get(gomock.Any(), event.ClientID).Return(cfg, nil)
	// No GetWebhookConfig expectation: a store read would fail the test.
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := svc.DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
}

func TestDispatchService_ConfigCacheMissPopulatesCache(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusOK, ""), nil
	})

	svc := NewDispatchService(f.eventRepo, f.clientRepo, f.cache, NewHMACSignatureService(), client, 1, logger.NewNop())

	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.cache.EXPECT().Get(gomock.Any(), event.ClientID).Return(nil, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.cache.EXPECT().Set(gomock.Any(), cfg, gomock.Any()).Return(nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := svc.DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
}

func TestDispatchService_ConfigCacheErrorFallsBackToStore(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)
	cfg := deliverableConfig(event)

	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		return httpResponse(http.StatusOK, ""), nil
	})

	svc := NewDispatchService(f.eventRepo, f.clientRepo, f.cache, NewHMACSignatureService(), client, 1, logger.NewNop())

	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.cache.EXPECT().Get(gomock.Any(), event.ClientID).Return(nil, errors.New("redis: connection refused"))
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(cfg, nil)
	f.cache.EXPECT().Set(gomock.Any(), cfg, gomock.Any()).Return(nil)
	f.eventRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	summary, err := svc.DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
}

func TestDispatchService_ConfigLookupFailureLeavesEventUntouched(t *testing.T) {
	f := newDispatchFixture(t)
	event := claimedEvent(t, domain.PaymentStatusCompleted)

	var called atomic.Bool
	client := httpClientFunc(func(*http.Request) (*http.Response, error) {
		called.Store(true)
		return httpResponse(http.StatusOK, ""), nil
	})

	f.eventRepo.EXPECT().ClaimDue(gomock.Any(), 10, gomock.Any()).Return([]domain.WebhookEvent{event}, nil)
	f.clientRepo.EXPECT().GetWebhookConfig(gomock.Any(), event.ClientID).Return(nil, errors.New("pg down"))
	// No Update expectation: the claim lease lapses and the event retries
	// without consuming an attempt.

	summary, err := f.service(client, 1).DispatchPending(context.Background(), 10, 5*time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.False(t, called.Load())
}
