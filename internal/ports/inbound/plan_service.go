// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the application exposes to its callers
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
)

// PlanService defines the plan generation and saved-plan use cases
type PlanService interface {
	// GeneratePlan drafts a plan with the AI generator and runs it through the
	// safety substitution engine before returning it.
	GeneratePlan(ctx context.Context, cmd GeneratePlanCommand) (*PlanResponse, error)

	// Saved plan management, capped at plan.MaxSavedPlans per user.
	SavePlan(ctx context.Context, cmd SavePlanCommand) (*SavedPlanDTO, error)
	ListSavedPlans(ctx context.Context, userID uuid.UUID) ([]*SavedPlanDTO, error)
	GetSavedPlan(ctx context.Context, userID, planID uuid.UUID) (*SavedPlanDTO, error)
	DeleteSavedPlan(ctx context.Context, userID, planID uuid.UUID) error
}

// GeneratePlanCommand carries one plan-generation request. UserID may be nil
// for anonymous requests; constraints always travel explicitly with the
// command, never as ambient state.
type GeneratePlanCommand struct {
	UserID    *uuid.UUID
	Goal      string
	Allergies []string
	Injuries  []plan.Injury
}

// SavePlanCommand persists a generated plan for a user.
type SavePlanCommand struct {
	UserID uuid.UUID
	Title  string
	Plan   PlanResponse
}

// MealDTO is the wire shape of one meal in a safe plan.
type MealDTO struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	ImageURL string  `json:"image_url,omitempty"`
}

// WorkoutDTO is the wire shape of one workout in a safe plan.
type WorkoutDTO struct {
	Name              string `json:"name"`
	Duration          string `json:"duration"`
	EstimatedCalories int    `json:"estimated_calories"`
	ImageURL          string `json:"image_url,omitempty"`
}

// SafePlanDTO groups the checked items. Field names are part of the observable
// contract consumed by the frontend.
type SafePlanDTO struct {
	Meals    []MealDTO    `json:"meals"`
	Workouts []WorkoutDTO `json:"workouts"`
}

// ReplacementsDTO mirrors plan.ReplacementLog on the wire.
type ReplacementsDTO struct {
	Meals    []plan.ReplacementRecord `json:"meals"`
	Workouts []plan.ReplacementRecord `json:"workouts"`
}

// PlanResponse is the full generate-plan response payload.
type PlanResponse struct {
	Goal             string          `json:"goal"`
	SafePlan         SafePlanDTO     `json:"safe_plan"`
	ReplacementsMade ReplacementsDTO `json:"replacements_made"`
}

// SavedPlanDTO is the wire shape of a stored plan.
type SavedPlanDTO struct {
	ID        uuid.UUID    `json:"id"`
	Title     string       `json:"title"`
	Plan      PlanResponse `json:"plan"`
	CreatedAt time.Time    `json:"created_at"`
}
