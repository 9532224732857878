package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"paycrypt-gateway/internal/core/domain"
	"paycrypt-gateway/internal/core/ports"
	"paycrypt-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Webhook delivery headers. X-Paycrypt-Event-Id is the receiver's
// deduplication key: delivery is at-least-once.
const (
	HeaderEvent     = "X-Paycrypt-Event"
	HeaderTimestamp = "X-Paycrypt-Timestamp"
	HeaderSignature = "X-Paycrypt-Signature"
	HeaderEventID   = "X-Paycrypt-Event-Id"
)

const (
	// claimLeaseMargin pads the claim lease beyond the request timeout so
	// a crashed dispatcher's claims lapse shortly after its requests would
	// have timed out.
	claimLeaseMargin = 30 * time.Second

	configCacheTTL = 5 * time.Minute

	// maxResponseSnippet bounds how much of a client's error response is
	// kept in last_error.
	maxResponseSnippet = 200
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type dispatchOutcome int

const (
	outcomeDelivered dispatchOutcome = iota
	outcomeFailed
	outcomeSkipped
)

// DispatchServiceImpl implements ports.DispatchService. All configuration
// is passed at construction; instances hold no global state, so multiple
// dispatchers may run against the same store concurrently — the claim
// lease keeps any single event on exactly one of them.
type DispatchServiceImpl struct {
	eventRepo   ports.WebhookEventRepository
	clientRepo  ports.ClientConfigRepository
	configCache ports.ClientConfigCache // nil = cache disabled
	sigSvc      ports.SignatureService
	httpClient  HTTPClient
	workers     int
	log         zerolog.Logger
}

// NewDispatchService creates a new DispatchServiceImpl. workers bounds
// delivery concurrency within a pass; values < 1 mean sequential.
func NewDispatchService(
	eventRepo ports.WebhookEventRepository,
	clientRepo ports.ClientConfigRepository,
	configCache ports.ClientConfigCache,
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	workers int,
	log zerolog.Logger,
) *DispatchServiceImpl {
	if workers < 1 {
		workers = 1
	}
	return &DispatchServiceImpl{
		eventRepo:   eventRepo,
		clientRepo:  clientRepo,
		configCache: configCache,
		sigSvc:      sigSvc,
		httpClient:  httpClient,
		workers:     workers,
		log:         log,
	}
}

// DispatchPending claims up to limit due events and delivers them with
// bounded concurrency. Per-event failures are recorded on the event and
// never abort the pass; only a claim failure (event store unreachable)
// propagates. Cancelling ctx stops new deliveries between events and lets
// in-flight requests run out their timeout.
func (s *DispatchServiceImpl) DispatchPending(ctx context.Context, limit int, timeout time.Duration) (*ports.DispatchSummary, error) {
	events, err := s.eventRepo.ClaimDue(ctx, limit, timeout+claimLeaseMargin)
	if err != nil {
		return nil, apperror.ErrEventStore(fmt.Errorf("claim due events: %w", err))
	}

	summary := &ports.DispatchSummary{}
	if len(events) == 0 {
		return summary, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for i := range events {
		if ctx.Err() != nil {
			// Graceful shutdown: unclaimed events become due again when
			// their lease lapses.
			break
		}
		event := &events[i]
		g.Go(func() error {
			outcome := s.dispatchEvent(ctx, event, timeout)
			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			switch outcome {
			case outcomeDelivered:
				summary.Delivered++
			case outcomeFailed:
				summary.Failed++
			case outcomeSkipped:
				summary.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info().
		Int("processed", summary.Processed).
		Int("delivered", summary.Delivered).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("dispatch pass complete")

	return summary, nil
}

// dispatchEvent attempts delivery of one claimed event and persists the
// resulting bookkeeping.
func (s *DispatchServiceImpl) dispatchEvent(ctx context.Context, event *domain.WebhookEvent, timeout time.Duration) dispatchOutcome {
	now := time.Now().UTC()

	cfg, err := s.resolveConfig(ctx, event.ClientID)
	if err != nil {
		// Transient lookup failure: leave the event untouched — the claim
		// lease lapses and it becomes due again. Not a delivery attempt.
		s.log.Error().Err(err).
			Str("event_id", event.ID.String()).
			Str("client_id", event.ClientID.String()).
			Msg("webhook: client config lookup failed")
		return outcomeSkipped
	}

	if cfg == nil || !cfg.Deliverable() {
		// Terminal, non-retryable, and not a delivery attempt.
		event.MarkUndeliverable("webhooks disabled for client", now)
		s.persist(ctx, event)
		s.log.Debug().
			Str("event_id", event.ID.String()).
			Str("client_id", event.ClientID.String()).
			Msg("webhook: delivery disabled for client")
		return outcomeSkipped
	}

	resp, err := s.deliver(ctx, event, cfg, timeout)
	now = time.Now().UTC()
	if err != nil {
		event.RecordFailure(deliveryError(err, timeout), nil, now)
		s.persist(ctx, event)
		s.log.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Int("attempt", event.Attempts).
			Msg("webhook: delivery failed")
		return outcomeFailed
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		event.MarkDelivered(resp.StatusCode, now)
		s.persist(ctx, event)
		s.log.Info().
			Str("event_id", event.ID.String()).
			Int("status", resp.StatusCode).
			Int("attempt", event.Attempts).
			Msg("webhook: delivered")
		return outcomeDelivered
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSnippet))
	code := resp.StatusCode
	event.RecordFailure(fmt.Sprintf("HTTP %d: %s", code, snippet), &code, now)
	s.persist(ctx, event)
	s.log.Warn().
		Str("event_id", event.ID.String()).
		Int("status", code).
		Int("attempt", event.Attempts).
		Msg("webhook: non-2xx response")
	return outcomeFailed
}

// deliver POSTs the event's canonical payload to the client's webhook URL,
// bounded by timeout.
func (s *DispatchServiceImpl) deliver(ctx context.Context, event *domain.WebhookEvent, cfg *domain.ClientWebhookConfig, timeout time.Duration) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(event.Payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, string(event.EventType))
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderEventID, event.ID.String())
	if cfg.WebhookSecret != "" {
		req.Header.Set(HeaderSignature, s.sigSvc.Sign(cfg.WebhookSecret, timestamp, event.Payload))
	}

	return s.httpClient.Do(req)
}

// resolveConfig reads the client webhook config through the cache when one
// is configured. Cache errors fall through to the repository.
func (s *DispatchServiceImpl) resolveConfig(ctx context.Context, clientID uuid.UUID) (*domain.ClientWebhookConfig, error) {
	if s.configCache != nil {
		cfg, err := s.configCache.Get(ctx, clientID)
		if err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("config cache read failed, falling back to store")
		} else if cfg != nil {
			return cfg, nil
		}
	}

	cfg, err := s.clientRepo.GetWebhookConfig(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if cfg != nil && s.configCache != nil {
		if err := s.configCache.Set(ctx, cfg, configCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("client_id", clientID.String()).Msg("config cache write failed")
		}
	}
	return cfg, nil
}

// persist writes delivery bookkeeping. An update failure is logged but the
// outcome stands; a delivered event whose update was lost may be
// redelivered once its lease lapses, which the at-least-once contract and
// the event-id header already cover.
func (s *DispatchServiceImpl) persist(ctx context.Context, event *domain.WebhookEvent) {
	if err := s.eventRepo.Update(ctx, event); err != nil {
		s.log.Error().Err(err).Str("event_id", event.ID.String()).Msg("webhook: bookkeeping update failed")
	}
}

func deliveryError(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("request timeout after %s", timeout)
	}
	return fmt.Sprintf("connection error: %v", err)
}
