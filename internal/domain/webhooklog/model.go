package webhooklog

import (
	"time"

	"gorm.io/datatypes"
)

// Processing statuses, kept in the provider's locale as the operators read them.
const (
	StatusReceived  = "recebido"
	StatusTest      = "teste"
	StatusIgnored   = "ignorado"
	StatusProcessed = "processado"
	StatusError     = "erro"
)

// Entry is append-only: once a terminal status is written the row is never
// touched again. It exists for audit and manual replay, not for idempotency.
type Entry struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	Payload    datatypes.JSON `gorm:"column:payload"`
	Status     string         `gorm:"type:varchar(20);not null;index"`
	Error      *string        `gorm:"column:error_message"`
	ReceivedAt time.Time      `gorm:"column:received_at;not null"`
}

func (Entry) TableName() string { return "logs_webhook" }
