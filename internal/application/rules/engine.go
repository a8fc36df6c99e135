// Package rules implements the safety substitution engine: it takes a draft
// plan and a user's constraint set and produces a safety-checked plan plus a
// transparent log of every substitution made and why.
//
// Resolution is two-tier by design: the curated substitution-rule table is
// authoritative and cheap; the AI suggestion collaborator is a lower-confidence
// escape hatch consulted only when curated data is silent. When neither yields
// a safe replacement the item is removed and the removal is recorded, never
// silently dropped.
package rules

import (
	"context"

	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/ports/outbound"
	"github.com/planforge/v1/pkg/errors"
	"go.uber.org/zap"
)

// Engine applies the safety and substitution rules. It holds no mutable state;
// the catalog and rule table are read-only reference data, so one Engine is
// safe for concurrent use across requests.
type Engine struct {
	catalog   outbound.CatalogRepository
	rules     outbound.SubstitutionRuleRepository
	suggester outbound.AISuggestionService
	logger    *zap.Logger
}

// NewEngine creates a substitution engine.
func NewEngine(
	catalog outbound.CatalogRepository,
	rules outbound.SubstitutionRuleRepository,
	suggester outbound.AISuggestionService,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		catalog:   catalog,
		rules:     rules,
		suggester: suggester,
		logger:    logger.Named("rules-engine"),
	}
}

// BuildSafePlan runs every draft item through the substitution resolver in
// draft order. Items are replaced in place; the output never reorders. The
// whole request fails only on a malformed item or a substitution conflict;
// partial success (some items replaced, some removed) is the expected
// steady state for a constrained user.
func (e *Engine) BuildSafePlan(ctx context.Context, draft plan.DraftPlan, constraints plan.UserConstraints) (*plan.PlanResult, error) {
	result := &plan.PlanResult{
		Goal: draft.Goal,
		Replacements: plan.ReplacementLog{
			Meals:    []plan.ReplacementRecord{},
			Workouts: []plan.ReplacementRecord{},
		},
	}

	for _, item := range draft.Meals {
		resolved, record, err := e.Resolve(ctx, item, constraints, draft.Goal)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			result.SafeMeals = append(result.SafeMeals, *resolved)
		}
		if record != nil {
			result.Replacements.Meals = append(result.Replacements.Meals, *record)
		}
	}

	// The final exercise list never repeats a workout: two unsafe items whose
	// rules share a target would otherwise both materialize it.
	used := make(map[string]bool)
	for _, item := range draft.Exercises {
		resolved, record, err := e.resolve(ctx, item, constraints, draft.Goal, used)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			result.SafeExercises = append(result.SafeExercises, *resolved)
		}
		if record != nil {
			result.Replacements.Workouts = append(result.Replacements.Workouts, *record)
		}
	}

	e.logger.Info("Safe plan assembled",
		zap.Int("meals", len(result.SafeMeals)),
		zap.Int("exercises", len(result.SafeExercises)),
		zap.Int("meal_replacements", len(result.Replacements.Meals)),
		zap.Int("workout_replacements", len(result.Replacements.Workouts)),
	)

	return result, nil
}

// Resolve checks a single item and, when unsafe, resolves a replacement.
// Returns (item, nil, nil) for a safe item, (replacement, record, nil) for a
// substitution, and (nil, record, nil) when the item was removed outright.
func (e *Engine) Resolve(ctx context.Context, item plan.ConsumableItem, constraints plan.UserConstraints, goal string) (*plan.ConsumableItem, *plan.ReplacementRecord, error) {
	return e.resolve(ctx, item, constraints, goal, nil)
}

// resolve is Resolve plus duplicate suppression. When used is non-nil, every
// emitted item claims its normalized name; an item or rule target that would
// repeat a claimed name falls through to the next tier instead.
func (e *Engine) resolve(ctx context.Context, item plan.ConsumableItem, constraints plan.UserConstraints, goal string, used map[string]bool) (*plan.ConsumableItem, *plan.ReplacementRecord, error) {
	if err := item.Validate(); err != nil {
		return nil, nil, errors.NewValidationError(err.Error())
	}

	item = e.enrich(ctx, item)

	hazard, unsafe := e.checkSafety(ctx, item, constraints, goal)
	if !unsafe {
		if !claim(used, item.Name) {
			e.logger.Info("Dropping duplicate workout",
				zap.String("name", item.Name),
			)
			record := plan.ReplacementRecord{
				Replaced: item.Name,
				With:     plan.RemovedMarker,
				Reason:   "duplicate workout removed",
			}
			return nil, &record, nil
		}
		return &item, nil, nil
	}

	e.logger.Info("Unsafe item detected",
		zap.String("name", item.Name),
		zap.String("kind", string(item.Kind)),
		zap.String("hazard", hazard),
	)

	// Tier one: curated substitution rule. The rule table is reference data, so
	// a lookup failure degrades to the generative fallback rather than failing
	// the request.
	rule, err := e.rules.Find(ctx, item.Kind, item.Name)
	if err != nil {
		e.logger.Warn("Substitution rule lookup failed",
			zap.String("name", item.Name),
			zap.Error(err),
		)
		rule = nil
	}

	if rule != nil {
		replacement := e.materialize(ctx, rule, item)

		// The target is re-validated against the full constraint set, not just
		// the hazard that fired. A residual hazard means the rule table itself
		// is defective; that must surface, not recurse or pass through.
		if residual, hit := constraints.FirstHazard(replacement); hit {
			return nil, nil, errors.NewSubstitutionConflictError(item.Name, replacement.Name, residual)
		}

		// A second rule pointing at an already-emitted target falls through to
		// the AI tier for a distinct alternative.
		if claim(used, replacement.Name) {
			record := plan.ReplacementRecord{
				Replaced: item.Name,
				With:     replacement.Name,
				Reason:   rule.Reason,
			}
			return &replacement, &record, nil
		}
		e.logger.Info("Rule target already in plan, consulting AI tier",
			zap.String("name", item.Name),
			zap.String("target", replacement.Name),
		)
	}

	// Tier two: ask the AI collaborator. Any failure here collapses into the
	// terminal removal fallback; it never propagates as a request failure.
	return e.resolveWithSuggestion(ctx, item, constraints, hazard, goal, used)
}

// checkSafety decides whether an item may stay in the plan and names the
// hazard when it may not. Tag matching is exact (case/space-normalized, no
// substrings); exercises additionally pass through the curated severity screen
// and, when injuries are present, an AI safety check.
func (e *Engine) checkSafety(ctx context.Context, item plan.ConsumableItem, constraints plan.UserConstraints, goal string) (string, bool) {
	if hazard, hit := constraints.FirstHazard(item); hit {
		return hazard, true
	}

	if item.Kind != plan.KindExercise || len(constraints.Injuries) == 0 {
		return "", false
	}

	if injury, hit := screenSeverity(item.Name, constraints.Injuries); hit {
		return injury, true
	}

	safe, err := e.suggester.ValidateExerciseSafety(ctx, item.Name, constraints.Injuries, goal)
	if err != nil {
		// An injured user's exercise that cannot be validated is treated as
		// unsafe. The resolver's own outage path ends in the removal fallback,
		// so this never fails the request.
		e.logger.Warn("AI safety validation unavailable, treating as unsafe",
			zap.String("exercise", item.Name),
			zap.Error(err),
		)
		return constraints.Injuries[0].Name, true
	}
	if !safe {
		return constraints.Injuries[0].Name, true
	}

	return "", false
}

// resolveWithSuggestion runs the generative fallback and, failing that, the
// terminal removal.
func (e *Engine) resolveWithSuggestion(ctx context.Context, item plan.ConsumableItem, constraints plan.UserConstraints, hazard, goal string, used map[string]bool) (*plan.ConsumableItem, *plan.ReplacementRecord, error) {
	removed := plan.ReplacementRecord{
		Replaced: item.Name,
		With:     plan.RemovedMarker,
		Reason:   plan.RemovedReason,
	}

	suggestion, err := e.suggester.SuggestReplacement(ctx, item, hazard, goal)
	if err != nil {
		e.logger.Warn("AI suggestion unavailable, removing item",
			zap.String("name", item.Name),
			zap.Error(err),
		)
		return nil, &removed, nil
	}
	if suggestion == nil || plan.NormalizeName(suggestion.Item.Name) == "" {
		return nil, &removed, nil
	}

	candidate := suggestion.Item
	candidate.Kind = item.Kind
	candidate = e.enrich(ctx, candidate)

	if residual, hit := constraints.FirstHazard(candidate); hit {
		e.logger.Warn("AI suggestion is itself unsafe, removing item",
			zap.String("name", item.Name),
			zap.String("suggested", candidate.Name),
			zap.String("hazard", residual),
		)
		return nil, &removed, nil
	}

	if !claim(used, candidate.Name) {
		e.logger.Warn("AI suggestion duplicates an earlier workout, removing item",
			zap.String("name", item.Name),
			zap.String("suggested", candidate.Name),
		)
		return nil, &removed, nil
	}

	record := plan.ReplacementRecord{
		Replaced: item.Name,
		With:     candidate.Name,
		Reason:   suggestion.Reason,
	}
	if record.Reason == "" {
		record.Reason = composeReason(item.Kind, hazard)
	}
	return &candidate, &record, nil
}

// enrich fills the item's hazard tags and missing attributes from the catalog.
// Catalog misses and lookup errors both fail open: the item keeps whatever it
// arrived with and an unknown name carries no known hazards.
func (e *Engine) enrich(ctx context.Context, item plan.ConsumableItem) plan.ConsumableItem {
	entry, err := e.catalog.FindItem(ctx, item.Kind, item.Name)
	if err != nil {
		e.logger.Warn("Catalog lookup failed",
			zap.String("name", item.Name),
			zap.Error(err),
		)
		return item
	}
	if entry == nil {
		return item
	}

	if len(item.HazardTags) == 0 {
		item.HazardTags = entry.HazardTags
	}
	if item.Kind == plan.KindMeal && item.Meal == nil {
		item.Meal = entry.Meal
	}
	if item.Kind == plan.KindExercise {
		if item.Exercise == nil {
			item.Exercise = entry.Exercise
		} else if item.Exercise.Difficulty == "" && entry.Exercise != nil {
			item.Exercise.Difficulty = entry.Exercise.Difficulty
		}
	}
	return item
}

// materialize builds the replacement item a rule points at. The catalog entry
// supplies attributes and hazard tags; when the target is not in the catalog
// the replacement is constructed bare, inheriting the slot attributes of the
// item it replaces.
func (e *Engine) materialize(ctx context.Context, rule *outbound.SubstitutionRule, original plan.ConsumableItem) plan.ConsumableItem {
	replacement := plan.ConsumableItem{
		Name: rule.TargetName,
		Kind: rule.Kind,
	}

	entry, err := e.catalog.FindItem(ctx, rule.Kind, rule.TargetName)
	if err != nil {
		e.logger.Warn("Catalog lookup failed for rule target",
			zap.String("target", rule.TargetName),
			zap.Error(err),
		)
		entry = nil
	}

	if entry != nil {
		replacement.HazardTags = entry.HazardTags
		replacement.Meal = entry.Meal
		replacement.Exercise = entry.Exercise
	}

	// Keep the slot shape of the item being replaced: a workout swap inherits
	// the original duration, a meal swap the original macros, when the catalog
	// has nothing better.
	if replacement.Kind == plan.KindMeal && replacement.Meal == nil {
		replacement.Meal = original.Meal
	}
	if replacement.Kind == plan.KindExercise {
		if replacement.Exercise == nil {
			replacement.Exercise = &plan.ExerciseFacts{}
		}
		if replacement.Exercise.Duration == "" && original.Exercise != nil {
			facts := *replacement.Exercise
			facts.Duration = original.Exercise.Duration
			replacement.Exercise = &facts
		}
	}

	return replacement
}

// claim reserves a name in the emitted set. A nil set means duplicate
// suppression is off and every claim succeeds.
func claim(used map[string]bool, name string) bool {
	if used == nil {
		return true
	}
	key := plan.NormalizeName(name)
	if used[key] {
		return false
	}
	used[key] = true
	return true
}

func composeReason(kind plan.ItemKind, hazard string) string {
	if kind == plan.KindMeal {
		return hazard + " allergy (AI substitution)"
	}
	return hazard + " contraindication (AI substitution)"
}
