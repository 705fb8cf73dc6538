package database

import (
	"fmt"
	"log"

	"treinorun-backend/config"
	"treinorun-backend/internal/domain/billing"
	"treinorun-backend/internal/domain/generation"
	"treinorun-backend/internal/domain/users"
	"treinorun-backend/internal/domain/webhooklog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the connection and migrates the schema. The handle is
// returned to the caller and injected everywhere; nothing holds it globally.
func InitDB() *gorm.DB {
	db, err := gorm.Open(postgres.Open(config.DB_URL), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("❌ Failed to enable pgcrypto extension:", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&billing.Payment{},
		&billing.Subscription{},
		&generation.Record{},
		&webhooklog.Entry{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
	return db
}
