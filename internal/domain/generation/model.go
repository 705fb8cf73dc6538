package generation

import (
	"time"

	"treinorun-backend/internal/domain/users"
)

// Record is written once per successful plan generation. Its only consumer
// is the free-tier cooldown check.
type Record struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	User      users.User
	Tier      string `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
}

func (Record) TableName() string { return "generation_records" }
