package main

import (
	"log"
	"time"

	"treinorun-backend/config"
	"treinorun-backend/database"
	adminapi "treinorun-backend/internal/api/admin"
	treinosapi "treinorun-backend/internal/api/treinos"
	webhookapi "treinorun-backend/internal/api/webhook"
	routes "treinorun-backend/internal/app/http"
	"treinorun-backend/internal/infra/mercadopago"
	"treinorun-backend/internal/infra/planservice"
	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/mail"
	"treinorun-backend/internal/repository"
	"treinorun-backend/internal/service"
	"treinorun-backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	db := database.InitDB()

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("❌ Failed to build logger:", err)
	}
	defer zlog.Sync()

	store := repository.NewGormStore(db)
	verifier := mercadopago.NewSignatureVerifier([]byte(config.MERCADOPAGO_WEBHOOK_SECRET))
	mpClient := mercadopago.NewClient(config.MERCADOPAGO_ACCESS_TOKEN)
	mailer := mail.NewSMTPMailer(config.SMTP_FROM, config.SMTP_PASSWORD, config.SMTP_HOST, config.SMTP_PORT)

	reconciler := service.NewReconciler(store, mpClient, mailer, config.MERCADOPAGO_PLAN_ID, zlog)
	pool := worker.NewPool(config.WEBHOOK_WORKERS, 64, reconciler.ProcessDelivery, zlog)
	defer pool.Stop()

	entitlements := service.NewEntitlements(store, zlog)
	generator := planservice.NewClient(config.PLAN_SERVICE_URL)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Webhook: webhookapi.NewHandler(store, verifier, pool, zlog),
		Treinos: treinosapi.NewHandler(entitlements, generator, zlog),
		Admin:   adminapi.NewHandler(store),
	})

	r.Run(":" + config.PORT)
}
