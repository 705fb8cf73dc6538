package billing

import (
	"time"

	"treinorun-backend/internal/domain/users"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID                uint   `gorm:"primaryKey"`
	ProviderPaymentID string `gorm:"column:provider_payment_id;not null;uniqueIndex:idx_payments_provider_payment_id"`
	UserID            uint
	User              users.User
	Status            string
	Amount            decimal.Decimal `gorm:"type:numeric(10,2)"`
	Method            *string
	ApprovedAt        *time.Time
	CreatedAt         time.Time
}
