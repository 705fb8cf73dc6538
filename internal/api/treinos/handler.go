package treinos

import (
	"net/http"

	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	entitlements *service.Entitlements
	generator    service.Generator
	log          *logger.Logger
}

func NewHandler(entitlements *service.Entitlements, generator service.Generator, log *logger.Logger) *Handler {
	return &Handler{entitlements: entitlements, generator: generator, log: log}
}

// Create handles a plan-generation request: entitlement check, external
// generation, then the usage record. The record is written only after the
// generation succeeded so a failed generation does not burn the monthly
// free-tier allowance.
func (h *Handler) Create(c *gin.Context) {
	var input service.PlanRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed, err := h.entitlements.CanGenerate(c.Request.Context(), input.Email, input.Tier)
	if err != nil {
		h.log.Errorf("entitlement check for %s failed: %v", input.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check entitlement"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Geração não permitida para o plano solicitado",
		})
		return
	}

	plan, err := h.generator.Generate(c.Request.Context(), input)
	if err != nil {
		h.log.Errorf("plan generation for %s failed: %v", input.Email, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Plan generation failed"})
		return
	}

	if err := h.entitlements.RecordGeneration(c.Request.Context(), input.Email, input.Tier); err != nil {
		// The user already has their plan; losing the record is an
		// operational problem, not a user-facing one.
		h.log.Errorf("failed to record generation for %s: %v", input.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
