// Package plan provides the application layer for plan generation and
// saved-plan management. It implements the use cases defined in the inbound
// ports, orchestrating the generator, the rules engine, and persistence.
package plan

import (
	"context"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/application/rules"
	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/planforge/v1/internal/ports/outbound"
	"github.com/planforge/v1/pkg/errors"
	"go.uber.org/zap"
)

// PlanService implements the plan use cases.
type PlanService struct {
	generator outbound.PlanGenerationService
	engine    *rules.Engine
	catalog   outbound.CatalogRepository
	planRepo  outbound.SavedPlanRepository
	userRepo  outbound.UserRepository
	images    outbound.ImageResolver
	logger    *zap.Logger
}

// NewPlanService creates a new plan service.
func NewPlanService(
	generator outbound.PlanGenerationService,
	engine *rules.Engine,
	catalog outbound.CatalogRepository,
	planRepo outbound.SavedPlanRepository,
	userRepo outbound.UserRepository,
	images outbound.ImageResolver,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		generator: generator,
		engine:    engine,
		catalog:   catalog,
		planRepo:  planRepo,
		userRepo:  userRepo,
		images:    images,
		logger:    logger.Named("plan-service"),
	}
}

// GeneratePlan drafts a plan for the goal and runs every item through the
// safety substitution engine. Constraints from the request body win; an
// authenticated request that sends none falls back to the stored safety
// profile.
func (s *PlanService) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.PlanResponse, error) {
	if cmd.Goal == "" {
		return nil, errors.NewValidationError("goal is required")
	}

	constraints := s.resolveConstraints(ctx, cmd)

	req := outbound.DraftPlanRequest{
		Goal:      cmd.Goal,
		Allergies: constraints.Allergies,
		Injuries:  constraints.Injuries,
	}
	if names, err := s.catalog.ListNames(ctx, plan.KindMeal); err == nil {
		req.AvailableFoods = names
	}
	if names, err := s.catalog.ListNames(ctx, plan.KindExercise); err == nil {
		req.AvailableExercises = names
	}

	draft, err := s.generator.GenerateDraftPlan(ctx, req)
	if err != nil {
		return nil, errors.NewExternalServiceError("plan generator", err)
	}
	draft.Goal = cmd.Goal

	result, err := s.engine.BuildSafePlan(ctx, *draft, constraints)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Plan generated",
		zap.String("goal", cmd.Goal),
		zap.Int("meals", len(result.SafeMeals)),
		zap.Int("exercises", len(result.SafeExercises)),
	)

	return s.toResponse(result), nil
}

// resolveConstraints picks the constraint set for a generation request. A
// profile lookup failure degrades to the command's (empty) constraints; it
// never fails the request.
func (s *PlanService) resolveConstraints(ctx context.Context, cmd inbound.GeneratePlanCommand) plan.UserConstraints {
	constraints := plan.NewUserConstraints(cmd.Allergies, cmd.Injuries)
	if !constraints.Empty() || cmd.UserID == nil {
		return constraints
	}

	account, err := s.userRepo.FindByID(ctx, *cmd.UserID)
	if err != nil {
		s.logger.Warn("Profile lookup failed, generating without constraints",
			zap.String("user_id", cmd.UserID.String()),
			zap.Error(err),
		)
		return constraints
	}
	if account == nil {
		return constraints
	}
	return account.Constraints()
}

// SavePlan stores a generated plan for the user, enforcing the per-user cap.
func (s *PlanService) SavePlan(ctx context.Context, cmd inbound.SavePlanCommand) (*inbound.SavedPlanDTO, error) {
	count, err := s.planRepo.CountByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, errors.NewDatabaseError("count saved plans", err)
	}
	if count >= plan.MaxSavedPlans {
		return nil, errors.NewPlanQuotaExceededError(plan.MaxSavedPlans)
	}

	saved := plan.NewSavedPlan(cmd.UserID, cmd.Title, fromResponse(cmd.Plan))
	if err := s.planRepo.Create(ctx, saved); err != nil {
		return nil, errors.NewDatabaseError("create saved plan", err)
	}

	s.logger.Info("Plan saved",
		zap.String("plan_id", saved.ID.String()),
		zap.String("user_id", cmd.UserID.String()),
	)

	return s.toSavedDTO(saved), nil
}

// ListSavedPlans returns the user's saved plans, newest first.
func (s *PlanService) ListSavedPlans(ctx context.Context, userID uuid.UUID) ([]*inbound.SavedPlanDTO, error) {
	saved, err := s.planRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list saved plans", err)
	}

	out := make([]*inbound.SavedPlanDTO, 0, len(saved))
	for _, sp := range saved {
		out = append(out, s.toSavedDTO(sp))
	}
	return out, nil
}

// GetSavedPlan returns one saved plan, scoped to its owner.
func (s *PlanService) GetSavedPlan(ctx context.Context, userID, planID uuid.UUID) (*inbound.SavedPlanDTO, error) {
	saved, err := s.findOwned(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	return s.toSavedDTO(saved), nil
}

// DeleteSavedPlan removes one saved plan, scoped to its owner.
func (s *PlanService) DeleteSavedPlan(ctx context.Context, userID, planID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return errors.NewDatabaseError("delete saved plan", err)
	}
	return nil
}

func (s *PlanService) findOwned(ctx context.Context, userID, planID uuid.UUID) (*plan.SavedPlan, error) {
	saved, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, errors.NewDatabaseError("load saved plan", err)
	}
	if saved == nil || saved.UserID != userID {
		// Ownership failures read as not-found so plan IDs leak nothing.
		return nil, errors.NewPlanNotFoundError(planID.String())
	}
	return saved, nil
}

// toResponse renders a checked plan as the wire payload, resolving an
// illustrative image per item.
func (s *PlanService) toResponse(result *plan.PlanResult) *inbound.PlanResponse {
	resp := &inbound.PlanResponse{
		Goal: result.Goal,
		SafePlan: inbound.SafePlanDTO{
			Meals:    make([]inbound.MealDTO, 0, len(result.SafeMeals)),
			Workouts: make([]inbound.WorkoutDTO, 0, len(result.SafeExercises)),
		},
		ReplacementsMade: inbound.ReplacementsDTO{
			Meals:    result.Replacements.Meals,
			Workouts: result.Replacements.Workouts,
		},
	}
	if resp.ReplacementsMade.Meals == nil {
		resp.ReplacementsMade.Meals = []plan.ReplacementRecord{}
	}
	if resp.ReplacementsMade.Workouts == nil {
		resp.ReplacementsMade.Workouts = []plan.ReplacementRecord{}
	}

	for _, item := range result.SafeMeals {
		dto := inbound.MealDTO{Name: item.Name}
		if item.Meal != nil {
			dto.Calories = item.Meal.Calories
			dto.Protein = item.Meal.Protein
			dto.Carbs = item.Meal.Carbs
			dto.Fat = item.Meal.Fat
		}
		if s.images != nil {
			dto.ImageURL = s.images.ImageURL(plan.KindMeal, item.Name)
		}
		resp.SafePlan.Meals = append(resp.SafePlan.Meals, dto)
	}

	for _, item := range result.SafeExercises {
		dto := inbound.WorkoutDTO{Name: item.Name}
		if item.Exercise != nil {
			dto.Duration = item.Exercise.Duration
			dto.EstimatedCalories = item.Exercise.EstimatedCalories
		}
		if s.images != nil {
			dto.ImageURL = s.images.ImageURL(plan.KindExercise, item.Name)
		}
		resp.SafePlan.Workouts = append(resp.SafePlan.Workouts, dto)
	}

	return resp
}

func (s *PlanService) toSavedDTO(saved *plan.SavedPlan) *inbound.SavedPlanDTO {
	return &inbound.SavedPlanDTO{
		ID:        saved.ID,
		Title:     saved.Title,
		Plan:      *s.toResponse(&saved.Result),
		CreatedAt: saved.CreatedAt,
	}
}

// fromResponse rebuilds the domain result from a wire payload so saved plans
// round-trip. Image URLs are not persisted; they re-resolve on read.
func fromResponse(resp inbound.PlanResponse) plan.PlanResult {
	result := plan.PlanResult{
		Goal: resp.Goal,
		Replacements: plan.ReplacementLog{
			Meals:    resp.ReplacementsMade.Meals,
			Workouts: resp.ReplacementsMade.Workouts,
		},
	}
	if result.Replacements.Meals == nil {
		result.Replacements.Meals = []plan.ReplacementRecord{}
	}
	if result.Replacements.Workouts == nil {
		result.Replacements.Workouts = []plan.ReplacementRecord{}
	}

	for _, m := range resp.SafePlan.Meals {
		result.SafeMeals = append(result.SafeMeals, plan.ConsumableItem{
			Name: m.Name,
			Kind: plan.KindMeal,
			Meal: &plan.MealFacts{
				Calories: m.Calories,
				Protein:  m.Protein,
				Carbs:    m.Carbs,
				Fat:      m.Fat,
			},
		})
	}
	for _, w := range resp.SafePlan.Workouts {
		result.SafeExercises = append(result.SafeExercises, plan.ConsumableItem{
			Name: w.Name,
			Kind: plan.KindExercise,
			Exercise: &plan.ExerciseFacts{
				Duration:          w.Duration,
				EstimatedCalories: w.EstimatedCalories,
			},
		})
	}
	return result
}
