package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"paycrypt-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) add(p *domain.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.TransactionID == transactionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	// Row locking is modeled by the serializing transactor, not here.
	return r.GetByID(ctx, id)
}

func (r *inMemoryPaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; !ok {
		return fmt.Errorf("payment not found")
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

// --- In-Memory Webhook Event Repo ---

type inMemoryEventRepo struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*domain.WebhookEvent
}

func newInMemoryEventRepo() *inMemoryEventRepo {
	return &inMemoryEventRepo{events: make(map[uuid.UUID]*domain.WebhookEvent)}
}

func (r *inMemoryEventRepo) Create(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *inMemoryEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEventRepo) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]domain.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookEvent
	for _, e := range r.events {
		if e.PaymentID == paymentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ClaimDue mirrors the SKIP LOCKED claim: selection and the lease bump
// happen under one lock, so concurrent dispatchers never claim the same
// event.
func (r *inMemoryEventRepo) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var due []*domain.WebhookEvent
	for _, e := range r.events {
		if e.Status != domain.WebhookEventStatusPending {
			continue
		}
		if e.Attempts >= e.MaxAttempts {
			continue
		}
		if e.NextAttemptAt == nil || e.NextAttemptAt.After(now) {
			continue
		}
		due = append(due, e)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(*due[j].NextAttemptAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]domain.WebhookEvent, 0, len(due))
	for _, e := range due {
		next := now.Add(lease)
		e.NextAttemptAt = &next
		claimed = append(claimed, *e)
	}
	return claimed, nil
}

func (r *inMemoryEventRepo) Update(ctx context.Context, event *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return fmt.Errorf("event not found")
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

// --- In-Memory Client Config Repo ---

type inMemoryClientRepo struct {
	mu      sync.RWMutex
	configs map[uuid.UUID]*domain.ClientWebhookConfig
}

func newInMemoryClientRepo() *inMemoryClientRepo {
	return &inMemoryClientRepo{configs: make(map[uuid.UUID]*domain.ClientWebhookConfig)}
}

func (r *inMemoryClientRepo) add(cfg *domain.ClientWebhookConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.configs[cfg.ClientID] = &cp
}

func (r *inMemoryClientRepo) GetWebhookConfig(ctx context.Context, clientID uuid.UUID) (*domain.ClientWebhookConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[clientID]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

// --- In-Memory Transactor (serializing) ---

// inMemoryTransactor serializes transactions with a mutex, standing in for
// the row locks the real store takes with SELECT ... FOR UPDATE.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &memTx{}
	tx.release = func() { t.mu.Unlock() }
	return tx, nil
}

// memTx is a no-op pgx.Tx that releases the transactor lock exactly once
// on Commit or Rollback.
type memTx struct {
	release func()
	once    sync.Once
}

func (t *memTx) done() {
	if t.release != nil {
		t.once.Do(t.release)
	}
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
