package service

import "context"

// PlanRequest is what the external generation service receives. The plan text
// itself is produced entirely outside this backend.
type PlanRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name"`
	Tier        string `json:"tier" binding:"required"`
	Goal        string `json:"goal"`
	Level       string `json:"level"`
	DaysPerWeek int    `json:"days_per_week"`
}

// Generator is the external plan-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, req PlanRequest) (string, error)
}
