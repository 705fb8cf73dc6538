package repository

import (
	"context"
	"errors"
	"time"

	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/generation"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/domain/webhooklog"
)

// ErrNotFound is returned by lookups when no row matches. Implementations
// translate their driver's sentinel into this one.
var ErrNotFound = errors.New("record not found")

// Store groups the repositories and the transaction boundary. Every service
// receives a Store explicitly; there is no package-level database handle.
type Store interface {
	Users() UserRepo
	Payments() PaymentRepo
	Subscriptions() SubscriptionRepo
	Generations() GenerationRepo
	WebhookLogs() WebhookLogRepo

	// Transaction runs fn against a Store bound to a single database
	// transaction. An error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type UserRepo interface {
	ByID(ctx context.Context, id uint) (*users.User, error)
	ByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, u *users.User) error
	UpdateTier(ctx context.Context, id uint, tier string) error
	SetPreapprovalPlan(ctx context.Context, id uint, planID string) error
	StampGeneration(ctx context.Context, id uint, at time.Time, tier string) error
	List(ctx context.Context) ([]users.User, error)
}

type PaymentRepo interface {
	ByProviderID(ctx context.Context, providerPaymentID string) (*billing.Payment, error)
	// Create inserts p unless a row with the same provider payment id already
	// exists. It reports whether the insert actually happened, so replayed
	// deliveries can be detected without racing a concurrent worker.
	Create(ctx context.Context, p *billing.Payment) (created bool, err error)
	List(ctx context.Context) ([]billing.Payment, error)
}

type SubscriptionRepo interface {
	ByProviderID(ctx context.Context, providerSubscriptionID string) (*billing.Subscription, error)
	// Upsert inserts the subscription or, on provider-id conflict, overwrites
	// status, owner and timestamp in place.
	Upsert(ctx context.Context, s *billing.Subscription) error
	LatestByUser(ctx context.Context, userID uint) (*billing.Subscription, error)
}

type GenerationRepo interface {
	LatestByUser(ctx context.Context, userID uint) (*generation.Record, error)
	Create(ctx context.Context, r *generation.Record) error
}

type WebhookLogRepo interface {
	Append(ctx context.Context, e *webhooklog.Entry) error
	MarkOutcome(ctx context.Context, id string, status string, errMsg *string) error
	List(ctx context.Context, limit int) ([]webhooklog.Entry, error)
}
