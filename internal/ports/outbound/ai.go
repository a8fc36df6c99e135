package outbound

import (
	"context"

	"github.com/planforge/v1/internal/domain/plan"
)

// DraftPlanRequest carries everything the generator needs to draft a one-day
// plan. Available item names bias the model toward the catalog so the rules
// engine can reason about what comes back.
type DraftPlanRequest struct {
	Goal               string
	Allergies          []string
	Injuries           []plan.Injury
	AvailableFoods     []string
	AvailableExercises []string
}

// PlanGenerationService is the upstream collaborator that drafts plans. The
// draft is untrusted input: names are free text that may not match the catalog.
type PlanGenerationService interface {
	GenerateDraftPlan(ctx context.Context, req DraftPlanRequest) (*plan.DraftPlan, error)
}

// AISuggestion is a generated replacement candidate plus a short justification.
type AISuggestion struct {
	Item   plan.ConsumableItem
	Reason string
}

// AISuggestionService is the low-confidence fallback consulted when no curated
// substitution rule exists. Implementations return (nil, nil) when no candidate
// is available; callers treat any error the same as no candidate.
type AISuggestionService interface {
	SuggestReplacement(ctx context.Context, item plan.ConsumableItem, hazard string, goal string) (*AISuggestion, error)
	ValidateExerciseSafety(ctx context.Context, exerciseName string, injuries []plan.Injury, goal string) (bool, error)
}
