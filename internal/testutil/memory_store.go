package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/generation"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/domain/webhooklog"
	"treinorun-backend/internal/repository"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory repository.Store for service tests. The
// transaction boundary is a single mutex; good enough for deterministic
// single-process tests, not a real isolation model.
type MemoryStore struct {
	mu sync.Mutex

	usersByID     map[uint]*users.User
	nextUserID    uint
	payments      []*billing.Payment
	nextPaymentID uint
	subs          []*billing.Subscription
	nextSubID     uint
	generations   []*generation.Record
	nextGenID     uint
	logEntries    []*webhooklog.Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByID:     map[uint]*users.User{},
		nextUserID:    1,
		nextPaymentID: 1,
		nextSubID:     1,
		nextGenID:     1,
	}
}

func (s *MemoryStore) Users() repository.UserRepo                 { return memUsers{s} }
func (s *MemoryStore) Payments() repository.PaymentRepo           { return memPayments{s} }
func (s *MemoryStore) Subscriptions() repository.SubscriptionRepo { return memSubscriptions{s} }
func (s *MemoryStore) Generations() repository.GenerationRepo     { return memGenerations{s} }
func (s *MemoryStore) WebhookLogs() repository.WebhookLogRepo     { return memWebhookLogs{s} }

// Transaction snapshots all state up front and restores it when fn fails, so
// tests asserting that an aborted delivery left no partial writes are honest.
func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	usersByID     map[uint]*users.User
	nextUserID    uint
	payments      []*billing.Payment
	nextPaymentID uint
	subs          []*billing.Subscription
	nextSubID     uint
	generations   []*generation.Record
	nextGenID     uint
	logEntries    []*webhooklog.Entry
}

func (s *MemoryStore) snapshot() memSnapshot {
	snap := memSnapshot{
		usersByID:     make(map[uint]*users.User, len(s.usersByID)),
		nextUserID:    s.nextUserID,
		nextPaymentID: s.nextPaymentID,
		nextSubID:     s.nextSubID,
		nextGenID:     s.nextGenID,
	}
	for id, u := range s.usersByID {
		cp := *u
		snap.usersByID[id] = &cp
	}
	for _, p := range s.payments {
		cp := *p
		snap.payments = append(snap.payments, &cp)
	}
	for _, sub := range s.subs {
		cp := *sub
		snap.subs = append(snap.subs, &cp)
	}
	for _, rec := range s.generations {
		cp := *rec
		snap.generations = append(snap.generations, &cp)
	}
	for _, e := range s.logEntries {
		cp := *e
		snap.logEntries = append(snap.logEntries, &cp)
	}
	return snap
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.usersByID = snap.usersByID
	s.nextUserID = snap.nextUserID
	s.payments = snap.payments
	s.nextPaymentID = snap.nextPaymentID
	s.subs = snap.subs
	s.nextSubID = snap.nextSubID
	s.generations = snap.generations
	s.nextGenID = snap.nextGenID
	s.logEntries = snap.logEntries
}

// --- users ---

type memUsers struct{ s *MemoryStore }

func (r memUsers) ByID(ctx context.Context, id uint) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.usersByID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) ByEmail(ctx context.Context, email string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.usersByID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Create(ctx context.Context, u *users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.nextUserID
	r.s.nextUserID++
	if u.Tier == "" {
		u.Tier = users.TierFree
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.s.usersByID[u.ID] = &cp
	return nil
}

func (r memUsers) UpdateTier(ctx context.Context, id uint, tier string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.usersByID[id]; ok {
		u.Tier = tier
	}
	return nil
}

func (r memUsers) SetPreapprovalPlan(ctx context.Context, id uint, planID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.usersByID[id]; ok {
		u.PreapprovalPlanID = &planID
	}
	return nil
}

func (r memUsers) StampGeneration(ctx context.Context, id uint, at time.Time, tier string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.usersByID[id]; ok {
		stamp := at
		u.LastGenerationAt = &stamp
		u.Tier = tier
	}
	return nil
}

func (r memUsers) List(ctx context.Context) ([]users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]users.User, 0, len(r.s.usersByID))
	for _, u := range r.s.usersByID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- payments ---

type memPayments struct{ s *MemoryStore }

func (r memPayments) ByProviderID(ctx context.Context, providerPaymentID string) (*billing.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ProviderPaymentID == providerPaymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memPayments) Create(ctx context.Context, p *billing.Payment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.ProviderPaymentID == p.ProviderPaymentID {
			return false, nil
		}
	}
	p.ID = r.s.nextPaymentID
	r.s.nextPaymentID++
	p.CreatedAt = time.Now()
	cp := *p
	r.s.payments = append(r.s.payments, &cp)
	return true, nil
}

func (r memPayments) List(ctx context.Context) ([]billing.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]billing.Payment, 0, len(r.s.payments))
	for _, p := range r.s.payments {
		out = append(out, *p)
	}
	return out, nil
}

// --- subscriptions ---

type memSubscriptions struct{ s *MemoryStore }

func (r memSubscriptions) ByProviderID(ctx context.Context, providerSubscriptionID string) (*billing.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subs {
		if sub.ProviderSubscriptionID == providerSubscriptionID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memSubscriptions) Upsert(ctx context.Context, sub *billing.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.subs {
		if existing.ProviderSubscriptionID == sub.ProviderSubscriptionID {
			existing.Status = sub.Status
			existing.UserID = sub.UserID
			existing.UpdatedAt = sub.UpdatedAt
			sub.ID = existing.ID
			return nil
		}
	}
	sub.ID = r.s.nextSubID
	r.s.nextSubID++
	cp := *sub
	r.s.subs = append(r.s.subs, &cp)
	return nil
}

func (r memSubscriptions) LatestByUser(ctx context.Context, userID uint) (*billing.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *billing.Subscription
	for _, sub := range r.s.subs {
		if sub.UserID != userID {
			continue
		}
		if latest == nil || sub.ID > latest.ID {
			latest = sub
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

// --- generation records ---

type memGenerations struct{ s *MemoryStore }

func (r memGenerations) LatestByUser(ctx context.Context, userID uint) (*generation.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *generation.Record
	for _, rec := range r.s.generations {
		if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.ID > latest.ID {
			latest = rec
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r memGenerations) Create(ctx context.Context, rec *generation.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec.ID = r.s.nextGenID
	r.s.nextGenID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	cp := *rec
	r.s.generations = append(r.s.generations, &cp)
	return nil
}

// --- webhook ingestion log ---

type memWebhookLogs struct{ s *MemoryStore }

func (r memWebhookLogs) Append(ctx context.Context, e *webhooklog.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}
	cp := *e
	r.s.logEntries = append(r.s.logEntries, &cp)
	return nil
}

func (r memWebhookLogs) MarkOutcome(ctx context.Context, id string, status string, errMsg *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.logEntries {
		if e.ID == id {
			e.Status = status
			e.Error = errMsg
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memWebhookLogs) List(ctx context.Context, limit int) ([]webhooklog.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]webhooklog.Entry, 0, len(r.s.logEntries))
	for i := len(r.s.logEntries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, *r.s.logEntries[i])
	}
	return out, nil
}
