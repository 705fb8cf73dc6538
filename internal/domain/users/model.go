package users

import "time"

type User struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string
	Email string `gorm:"not null;uniqueIndex:idx_users_email"`

	// Tier holds the plan label the user is currently entitled to.
	Tier string `gorm:"type:varchar(20);not null;default:'gratuito'"`

	// PreapprovalPlanID is the provider-side plan the user subscribed through.
	PreapprovalPlanID *string `gorm:"column:preapproval_plan_id"`

	LastGenerationAt *time.Time `gorm:"column:last_generation_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
