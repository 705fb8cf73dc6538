package repository

import (
	"context"
	"errors"
	"time"

	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/generation"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/domain/webhooklog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a *gorm.DB. Concurrent deliveries for
// the same provider id serialize on the unique indexes, not on process locks,
// so multiple instances can run behind a load balancer.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepo                 { return gormUsers{s.db} }
func (s *GormStore) Payments() PaymentRepo           { return gormPayments{s.db} }
func (s *GormStore) Subscriptions() SubscriptionRepo { return gormSubscriptions{s.db} }
func (s *GormStore) Generations() GenerationRepo     { return gormGenerations{s.db} }
func (s *GormStore) WebhookLogs() WebhookLogRepo     { return gormWebhookLogs{s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- users ---

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) ByID(ctx context.Context, id uint) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r gormUsers) ByEmail(ctx context.Context, email string) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r gormUsers) Create(ctx context.Context, u *users.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r gormUsers) UpdateTier(ctx context.Context, id uint, tier string) error {
	return r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", id).
		Update("tier", tier).Error
}

func (r gormUsers) SetPreapprovalPlan(ctx context.Context, id uint, planID string) error {
	return r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", id).
		Update("preapproval_plan_id", planID).Error
}

func (r gormUsers) StampGeneration(ctx context.Context, id uint, at time.Time, tier string) error {
	return r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_generation_at": at,
			"tier":               tier,
		}).Error
}

func (r gormUsers) List(ctx context.Context) ([]users.User, error) {
	var out []users.User
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// --- payments ---

type gormPayments struct{ db *gorm.DB }

func (r gormPayments) ByProviderID(ctx context.Context, providerPaymentID string) (*billing.Payment, error) {
	var p billing.Payment
	if err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r gormPayments) Create(ctx context.Context, p *billing.Payment) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_payment_id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r gormPayments) List(ctx context.Context) ([]billing.Payment, error) {
	var out []billing.Payment
	err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC").Find(&out).Error
	return out, err
}

// --- subscriptions ---

type gormSubscriptions struct{ db *gorm.DB }

func (r gormSubscriptions) ByProviderID(ctx context.Context, providerSubscriptionID string) (*billing.Subscription, error) {
	var s billing.Subscription
	if err := r.db.WithContext(ctx).
		Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r gormSubscriptions) Upsert(ctx context.Context, s *billing.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "user_id", "updated_at"}),
	}).Create(s).Error
}

func (r gormSubscriptions) LatestByUser(ctx context.Context, userID uint) (*billing.Subscription, error) {
	var s billing.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// --- generation records ---

type gormGenerations struct{ db *gorm.DB }

func (r gormGenerations) LatestByUser(ctx context.Context, userID uint) (*generation.Record, error) {
	var rec generation.Record
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r gormGenerations) Create(ctx context.Context, rec *generation.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// --- webhook ingestion log ---

type gormWebhookLogs struct{ db *gorm.DB }

func (r gormWebhookLogs) Append(ctx context.Context, e *webhooklog.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r gormWebhookLogs) MarkOutcome(ctx context.Context, id string, status string, errMsg *string) error {
	return r.db.WithContext(ctx).Model(&webhooklog.Entry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errMsg,
		}).Error
}

func (r gormWebhookLogs) List(ctx context.Context, limit int) ([]webhooklog.Entry, error) {
	var out []webhooklog.Entry
	err := r.db.WithContext(ctx).Order("received_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
