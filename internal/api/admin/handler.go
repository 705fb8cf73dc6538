package admin

import (
	"crypto/subtle"
	"net/http"
	"time"

	"treinorun-backend/config"
	"treinorun-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	store repository.Store
}

func NewHandler(store repository.Store) *Handler {
	return &Handler{store: store}
}

// Login authenticates the operator account configured via environment and
// issues a short-lived admin JWT.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(input.Email), []byte(config.ADMIN_EMAIL)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(config.ADMIN_PASSWORD_HASH), []byte(input.Password)) == nil
	if !emailOK || !passOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": input.Email,
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString([]byte(config.JWT_SECRET))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

type AdminUser struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Tier             string     `json:"tier"`
	PlanID           *string    `json:"preapproval_plan_id,omitempty"`
	LastGenerationAt *time.Time `json:"last_generation_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type AdminPayment struct {
	ID         uint       `json:"id"`
	ProviderID string     `json:"provider_payment_id"`
	Email      string     `json:"email"`
	Amount     string     `json:"amount"`
	Status     string     `json:"status"`
	Method     *string    `json:"method,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  string     `json:"created_at"`
}

type AdminLogEntry struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
	Payload    string  `json:"payload"`
	ReceivedAt string  `json:"received_at"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	all, err := h.store.Users().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var out []AdminUser
	for _, u := range all {
		out = append(out, AdminUser{
			ID:               u.ID,
			Name:             u.Name,
			Email:            u.Email,
			Tier:             u.Tier,
			PlanID:           u.PreapprovalPlanID,
			LastGenerationAt: u.LastGenerationAt,
			CreatedAt:        u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListPayments(c *gin.Context) {
	payments, err := h.store.Payments().List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	var out []AdminPayment
	for _, p := range payments {
		out = append(out, AdminPayment{
			ID:         p.ID,
			ProviderID: p.ProviderPaymentID,
			Email:      p.User.Email,
			Amount:     p.Amount.StringFixed(2),
			Status:     p.Status,
			Method:     p.Method,
			ApprovedAt: p.ApprovedAt,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListWebhookLogs(c *gin.Context) {
	entries, err := h.store.WebhookLogs().List(c.Request.Context(), 200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load webhook logs"})
		return
	}

	out := make([]AdminLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, AdminLogEntry{
			ID:         e.ID,
			Status:     e.Status,
			Error:      e.Error,
			Payload:    string(e.Payload),
			ReceivedAt: e.ReceivedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}
