package service

import (
	"context"
	"errors"
	"time"

	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/generation"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/repository"
)

// FreeCooldown is the minimum age of the most recent generation before a
// free-tier user may request another one.
const FreeCooldown = 30 * 24 * time.Hour

// Entitlements decides whether a user may start a new plan generation and
// records the ones that succeed.
type Entitlements struct {
	store repository.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewEntitlements(store repository.Store, log *logger.Logger) *Entitlements {
	return &Entitlements{store: store, log: log, now: time.Now}
}

// CanGenerate is consulted synchronously on every generation request. An
// error means the store failed, not that the user is denied.
func (e *Entitlements) CanGenerate(ctx context.Context, email, tier string) (bool, error) {
	if !users.ValidTier(tier) {
		return false, nil
	}

	user, err := e.store.Users().ByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// First contact: free usage is implicitly allowed, paid is not
		// because no subscription history can exist.
		return tier == users.TierFree, nil
	}
	if err != nil {
		return false, err
	}

	if tier == users.TierPaid {
		sub, err := e.store.Subscriptions().LatestByUser(ctx, user.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return sub.Status == billing.SubscriptionAuthorized, nil
	}

	last, err := e.store.Generations().LatestByUser(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return e.now().Sub(last.CreatedAt) >= FreeCooldown, nil
}

// RecordGeneration is called only after the external generation succeeded,
// so a failed generation never consumes the free-tier allowance.
func (e *Entitlements) RecordGeneration(ctx context.Context, email, tier string) error {
	now := e.now()
	return e.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().ByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			user = &users.User{Email: email, Tier: tier}
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Generations().Create(ctx, &generation.Record{
			UserID:    user.ID,
			Tier:      tier,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return tx.Users().StampGeneration(ctx, user.ID, now, tier)
	})
}
