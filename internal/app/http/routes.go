package routes

import (
	adminapi "treinorun-backend/internal/api/admin"
	treinosapi "treinorun-backend/internal/api/treinos"
	webhookapi "treinorun-backend/internal/api/webhook"
	"treinorun-backend/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Webhook *webhookapi.Handler
	Treinos *treinosapi.Handler
	Admin   *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// The provider probes with GET and notifies with POST on the same path.
	r.GET("/webhook/mercadopago", h.Webhook.Probe)
	r.POST("/webhook/mercadopago", middleware.RateLimit("100-D"), h.Webhook.Receive)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.RateLimit("50-H"), middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/api/treinos", h.Treinos.Create)
	public.POST("/admin/login", h.Admin.Login)

	// Operator routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/payments", h.Admin.ListPayments)
	admin.GET("/webhook-logs", h.Admin.ListWebhookLogs)
}
