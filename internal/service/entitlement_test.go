package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/generation"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/repository"
	"treinorun-backend/internal/testutil"

	"github.com/stretchr/testify/suite"
)

type EntitlementSuite struct {
	suite.Suite
	store *testutil.MemoryStore
	ent   *Entitlements
	ctx   context.Context
	now   time.Time
}

func TestEntitlements(t *testing.T) {
	suite.Run(t, new(EntitlementSuite))
}

func (s *EntitlementSuite) SetupTest() {
	s.store = testutil.NewMemoryStore()
	s.ent = NewEntitlements(s.store, logger.NewNop())
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	s.ent.now = func() time.Time { return s.now }
}

func (s *EntitlementSuite) createUser(email, tier string) *users.User {
	u := &users.User{Email: email, Tier: tier}
	s.Require().NoError(s.store.Users().Create(s.ctx, u))
	return u
}

func (s *EntitlementSuite) addGeneration(userID uint, at time.Time) {
	s.Require().NoError(s.store.Generations().Create(s.ctx, &generation.Record{
		UserID:    userID,
		Tier:      users.TierFree,
		CreatedAt: at,
	}))
}

func (s *EntitlementSuite) addSubscription(providerID string, userID uint, status string) {
	s.Require().NoError(s.store.Subscriptions().Upsert(s.ctx, &billing.Subscription{
		ProviderSubscriptionID: providerID,
		UserID:                 userID,
		Status:                 status,
		UpdatedAt:              s.now,
	}))
}

func (s *EntitlementSuite) TestUnknownUser() {
	ok, err := s.ent.CanGenerate(s.ctx, "nobody@x.com", users.TierFree)
	s.NoError(err)
	s.True(ok, "first free use is implicitly allowed")

	ok, err = s.ent.CanGenerate(s.ctx, "nobody@x.com", users.TierPaid)
	s.NoError(err)
	s.False(ok, "paid without any history is denied")
}

func (s *EntitlementSuite) TestUnknownTierDenied() {
	s.createUser("a@x.com", users.TierFree)

	ok, err := s.ent.CanGenerate(s.ctx, "a@x.com", "mensal")
	s.NoError(err)
	s.False(ok)
}

func (s *EntitlementSuite) TestPaidRequiresAuthorizedSubscription() {
	u := s.createUser("a@x.com", users.TierPaid)

	ok, err := s.ent.CanGenerate(s.ctx, "a@x.com", users.TierPaid)
	s.NoError(err)
	s.False(ok, "no subscription rows yet")

	s.addSubscription("sub-1", u.ID, billing.SubscriptionAuthorized)
	ok, err = s.ent.CanGenerate(s.ctx, "a@x.com", users.TierPaid)
	s.NoError(err)
	s.True(ok)

	// Paid access ignores generation recency entirely.
	s.addGeneration(u.ID, s.now.Add(-time.Minute))
	ok, err = s.ent.CanGenerate(s.ctx, "a@x.com", users.TierPaid)
	s.NoError(err)
	s.True(ok)
}

func (s *EntitlementSuite) TestPaidConsultsOnlyLatestSubscription() {
	u := s.createUser("a@x.com", users.TierPaid)
	s.addSubscription("sub-old", u.ID, billing.SubscriptionAuthorized)
	s.addSubscription("sub-new", u.ID, billing.SubscriptionCancelled)

	ok, err := s.ent.CanGenerate(s.ctx, "a@x.com", users.TierPaid)
	s.NoError(err)
	s.False(ok, "latest row by id ordering is cancelled")
}

func (s *EntitlementSuite) TestFreeCooldownBoundary() {
	u := s.createUser("a@x.com", users.TierFree)

	// 29 days, 23:59:59 ago: one second short of the cooldown.
	s.addGeneration(u.ID, s.now.Add(-(FreeCooldown - time.Second)))
	ok, err := s.ent.CanGenerate(s.ctx, "a@x.com", users.TierFree)
	s.NoError(err)
	s.False(ok)
}

func (s *EntitlementSuite) TestFreeCooldownExactlyThirtyDays() {
	u := s.createUser("a@x.com", users.TierFree)

	s.addGeneration(u.ID, s.now.Add(-FreeCooldown))
	ok, err := s.ent.CanGenerate(s.ctx, "a@x.com", users.TierFree)
	s.NoError(err)
	s.True(ok)
}

func (s *EntitlementSuite) TestRecordGenerationCreatesUserAndStamps() {
	s.NoError(s.ent.RecordGeneration(s.ctx, "new@x.com", users.TierFree))

	user, err := s.store.Users().ByEmail(s.ctx, "new@x.com")
	s.NoError(err)
	s.Require().NotNil(user.LastGenerationAt)
	s.True(user.LastGenerationAt.Equal(s.now))
	s.Equal(users.TierFree, user.Tier)

	rec, err := s.store.Generations().LatestByUser(s.ctx, user.ID)
	s.NoError(err)
	s.True(rec.CreatedAt.Equal(s.now))
}

// annotatingStore adds query context to user lookup errors, the way a real
// driver layer does, so not-found detection has to unwrap rather than compare.
type annotatingStore struct {
	*testutil.MemoryStore
}

func (s *annotatingStore) Users() repository.UserRepo {
	return annotatingUsers{s.MemoryStore.Users()}
}

type annotatingUsers struct {
	repository.UserRepo
}

func (r annotatingUsers) ByEmail(ctx context.Context, email string) (*users.User, error) {
	u, err := r.UserRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("users by email %q: %w", email, err)
	}
	return u, nil
}

func (s *EntitlementSuite) TestWrappedNotFoundStillAllowsFirstFreeUse() {
	ent := NewEntitlements(&annotatingStore{s.store}, logger.NewNop())

	ok, err := ent.CanGenerate(s.ctx, "nobody@x.com", users.TierFree)
	s.NoError(err)
	s.True(ok)
}

func (s *EntitlementSuite) TestFreeTierScenario() {
	// New user: permitted, record created.
	ok, err := s.ent.CanGenerate(s.ctx, "a@x.com", users.TierFree)
	s.NoError(err)
	s.True(ok)
	s.NoError(s.ent.RecordGeneration(s.ctx, "a@x.com", users.TierFree))

	// One second later: denied.
	s.now = s.now.Add(time.Second)
	ok, err = s.ent.CanGenerate(s.ctx, "a@x.com", users.TierFree)
	s.NoError(err)
	s.False(ok)

	// 31 days later: permitted again.
	s.now = s.now.Add(31 * 24 * time.Hour)
	ok, err = s.ent.CanGenerate(s.ctx, "a@x.com", users.TierFree)
	s.NoError(err)
	s.True(ok)
}
