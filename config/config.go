package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string

	MERCADOPAGO_ACCESS_TOKEN   string
	MERCADOPAGO_WEBHOOK_SECRET string
	MERCADOPAGO_PLAN_ID        string

	ADMIN_EMAIL         string
	ADMIN_PASSWORD_HASH string

	SMTP_FROM     string
	SMTP_PASSWORD string
	SMTP_HOST     string
	SMTP_PORT     string

	PLAN_SERVICE_URL string
	WEBHOOK_WORKERS  int
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "*")

	// A missing webhook secret is fatal here, at startup; at request time
	// the verifier fails closed instead of crashing.
	MERCADOPAGO_ACCESS_TOKEN = mustEnv("MERCADOPAGO_ACCESS_TOKEN")
	MERCADOPAGO_WEBHOOK_SECRET = mustEnv("MERCADOPAGO_WEBHOOK_SECRET")
	MERCADOPAGO_PLAN_ID = getEnv("MERCADOPAGO_PLAN_ID", "")

	ADMIN_EMAIL = mustEnv("ADMIN_EMAIL")
	ADMIN_PASSWORD_HASH = mustEnv("ADMIN_PASSWORD_HASH")

	SMTP_FROM = getEnv("SMTP_FROM", "")
	SMTP_PASSWORD = getEnv("SMTP_PASSWORD", "")
	SMTP_HOST = getEnv("SMTP_HOST", "smtp.zoho.com")
	SMTP_PORT = getEnv("SMTP_PORT", "587")

	PLAN_SERVICE_URL = mustEnv("PLAN_SERVICE_URL")
	WEBHOOK_WORKERS = getEnvInt("WEBHOOK_WORKERS", 4)
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s, using %d", key, fallback)
	}
	return fallback
}
