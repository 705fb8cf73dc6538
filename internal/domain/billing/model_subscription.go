package billing

import (
	"time"

	"treinorun-backend/internal/domain/users"
)

type Subscription struct {
	ID                     uint   `gorm:"primaryKey"`
	ProviderSubscriptionID string `gorm:"column:provider_subscription_id;not null;uniqueIndex:idx_subscriptions_provider_subscription_id"`
	UserID                 uint
	User                   users.User
	Status                 string `gorm:"type:varchar(20);not null"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
