package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/ports/outbound"
	apperrors "github.com/planforge/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	items map[string]*plan.ConsumableItem
	err   error
}

func catalogKey(kind plan.ItemKind, name string) string {
	return string(kind) + "/" + plan.NormalizeName(name)
}

func (f *fakeCatalog) FindItem(_ context.Context, kind plan.ItemKind, name string) (*plan.ConsumableItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[catalogKey(kind, name)]
	if !ok {
		return nil, nil
	}
	found := *item
	return &found, nil
}

func (f *fakeCatalog) ListNames(_ context.Context, _ plan.ItemKind) ([]string, error) {
	return nil, nil
}

type fakeRuleTable struct {
	rules map[string]*outbound.SubstitutionRule
	err   error
}

func (f *fakeRuleTable) Find(_ context.Context, kind plan.ItemKind, sourceName string) (*outbound.SubstitutionRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	rule, ok := f.rules[catalogKey(kind, sourceName)]
	if !ok {
		return nil, nil
	}
	return rule, nil
}

type fakeSuggester struct {
	suggestion  *outbound.AISuggestion
	suggestErr  error
	exerciseOK  bool
	validateErr error

	suggestCalls  int
	validateCalls int
}

func (f *fakeSuggester) SuggestReplacement(_ context.Context, _ plan.ConsumableItem, _ string, _ string) (*outbound.AISuggestion, error) {
	f.suggestCalls++
	return f.suggestion, f.suggestErr
}

func (f *fakeSuggester) ValidateExerciseSafety(_ context.Context, _ string, _ []plan.Injury, _ string) (bool, error) {
	f.validateCalls++
	return f.exerciseOK, f.validateErr
}

func newTestEngine(catalog *fakeCatalog, rules *fakeRuleTable, suggester *fakeSuggester) *Engine {
	if catalog == nil {
		catalog = &fakeCatalog{items: map[string]*plan.ConsumableItem{}}
	}
	if rules == nil {
		rules = &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{}}
	}
	if suggester == nil {
		suggester = &fakeSuggester{exerciseOK: true}
	}
	return NewEngine(catalog, rules, suggester, zap.NewNop())
}

func meal(name string, tags ...string) plan.ConsumableItem {
	return plan.ConsumableItem{
		Name:       name,
		Kind:       plan.KindMeal,
		Meal:       &plan.MealFacts{Calories: 400, Protein: 20, Carbs: 30, Fat: 12},
		HazardTags: tags,
	}
}

func exercise(name string, tags ...string) plan.ConsumableItem {
	return plan.ConsumableItem{
		Name:       name,
		Kind:       plan.KindExercise,
		Exercise:   &plan.ExerciseFacts{Duration: "30 min", EstimatedCalories: 200},
		HazardTags: tags,
	}
}

func injuries(names ...string) []plan.Injury {
	out := make([]plan.Injury, 0, len(names))
	for _, n := range names {
		out = append(out, plan.Injury{Name: n, Severity: plan.SeverityModerate})
	}
	return out
}

func TestBuildSafePlan_AlreadySafePlanPassesThroughUnchanged(t *testing.T) {
	engine := newTestEngine(nil, nil, &fakeSuggester{exerciseOK: true})

	draft := plan.DraftPlan{
		Goal:      "weight loss",
		Meals:     []plan.ConsumableItem{meal("Oatmeal"), meal("Grilled Chicken Salad")},
		Exercises: []plan.ConsumableItem{exercise("Walking"), exercise("Swimming")},
	}
	constraints := plan.NewUserConstraints([]string{"peanuts"}, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeMeals, 2)
	require.Len(t, result.SafeExercises, 2)
	assert.Equal(t, "Oatmeal", result.SafeMeals[0].Name)
	assert.Equal(t, "Grilled Chicken Salad", result.SafeMeals[1].Name)
	assert.Equal(t, "Walking", result.SafeExercises[0].Name)
	assert.Equal(t, "Swimming", result.SafeExercises[1].Name)
	assert.Empty(t, result.Replacements.Meals)
	assert.Empty(t, result.Replacements.Workouts)
}

func TestBuildSafePlan_RuleSubstitutionUsesRuleReasonVerbatim(t *testing.T) {
	catalog := &fakeCatalog{items: map[string]*plan.ConsumableItem{
		catalogKey(plan.KindMeal, "Peanut Butter Toast"): {
			Name: "Peanut Butter Toast", Kind: plan.KindMeal,
			HazardTags: []string{"peanuts"},
			Meal:       &plan.MealFacts{Calories: 350},
		},
		catalogKey(plan.KindMeal, "Almond Butter Toast"): {
			Name: "Almond Butter Toast", Kind: plan.KindMeal,
			HazardTags: []string{"tree nuts"},
			Meal:       &plan.MealFacts{Calories: 340},
		},
	}}
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindMeal, "Peanut Butter Toast"): {
			Kind:       plan.KindMeal,
			SourceName: "peanut butter toast",
			TargetName: "Almond Butter Toast",
			Reason:     "peanut-free swap with comparable protein",
		},
	}}
	suggester := &fakeSuggester{}
	engine := newTestEngine(catalog, rules, suggester)

	draft := plan.DraftPlan{
		Goal:  "muscle gain",
		Meals: []plan.ConsumableItem{{Name: "Peanut Butter Toast", Kind: plan.KindMeal}},
	}
	constraints := plan.NewUserConstraints([]string{"peanuts"}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeMeals, 1)
	assert.Equal(t, "Almond Butter Toast", result.SafeMeals[0].Name)
	require.Len(t, result.Replacements.Meals, 1)
	record := result.Replacements.Meals[0]
	assert.Equal(t, "Peanut Butter Toast", record.Replaced)
	assert.Equal(t, "Almond Butter Toast", record.With)
	assert.Equal(t, "peanut-free swap with comparable protein", record.Reason)
	assert.Zero(t, suggester.suggestCalls)
}

func TestBuildSafePlan_TagMatchingIsExactNotSubstring(t *testing.T) {
	engine := newTestEngine(nil, nil, nil)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{meal("Trail Mix", "peanuts")},
	}
	// "nut" is not "peanuts"; a substring matcher would wrongly flag this.
	constraints := plan.NewUserConstraints([]string{"nut"}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)
	require.Len(t, result.SafeMeals, 1)
	assert.Empty(t, result.Replacements.Meals)
}

func TestBuildSafePlan_MatchingIgnoresCaseAndSpacing(t *testing.T) {
	suggester := &fakeSuggester{}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{meal("Shrimp Stir Fry", "Shell  Fish")},
	}
	constraints := plan.NewUserConstraints([]string{"  SHELL fish "}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.Replacements.Meals, 1)
	assert.Equal(t, plan.RemovedMarker, result.Replacements.Meals[0].With)
	assert.Equal(t, 1, suggester.suggestCalls)
}

func TestBuildSafePlan_RuleTargetStillHazardousFailsLoudly(t *testing.T) {
	catalog := &fakeCatalog{items: map[string]*plan.ConsumableItem{
		catalogKey(plan.KindMeal, "Almond Butter Toast"): {
			Name: "Almond Butter Toast", Kind: plan.KindMeal,
			HazardTags: []string{"tree nuts"},
		},
	}}
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindMeal, "Peanut Butter Toast"): {
			Kind:       plan.KindMeal,
			SourceName: "peanut butter toast",
			TargetName: "Almond Butter Toast",
			Reason:     "peanut-free swap",
		},
	}}
	engine := newTestEngine(catalog, rules, nil)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{meal("Peanut Butter Toast", "peanuts")},
	}
	constraints := plan.NewUserConstraints([]string{"peanuts", "tree nuts"}, nil)

	_, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSubstitutionConflict, apperrors.GetCode(err))
}

func TestBuildSafePlan_AIFallbackWhenNoRuleExists(t *testing.T) {
	suggester := &fakeSuggester{
		suggestion: &outbound.AISuggestion{
			Item:   meal("Sunflower Butter Toast"),
			Reason: "seed butter avoids the allergen",
		},
	}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{meal("Peanut Butter Toast", "peanuts")},
	}
	constraints := plan.NewUserConstraints([]string{"peanuts"}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeMeals, 1)
	assert.Equal(t, "Sunflower Butter Toast", result.SafeMeals[0].Name)
	require.Len(t, result.Replacements.Meals, 1)
	assert.Equal(t, "seed butter avoids the allergen", result.Replacements.Meals[0].Reason)
}

func TestBuildSafePlan_AIFallbackComposesReasonWhenSuggestionHasNone(t *testing.T) {
	suggester := &fakeSuggester{
		suggestion: &outbound.AISuggestion{Item: meal("Sunflower Butter Toast")},
	}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{meal("Peanut Butter Toast", "peanuts")},
	}
	constraints := plan.NewUserConstraints([]string{"peanuts"}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)
	require.Len(t, result.Replacements.Meals, 1)
	assert.Equal(t, "peanuts allergy (AI substitution)", result.Replacements.Meals[0].Reason)
}

func TestBuildSafePlan_RemovesItemWhenSuggestionFails(t *testing.T) {
	cases := []struct {
		name      string
		suggester *fakeSuggester
	}{
		{"collaborator error", &fakeSuggester{suggestErr: errors.New("upstream timeout")}},
		{"no candidate", &fakeSuggester{suggestion: nil}},
		{"unsafe candidate", &fakeSuggester{
			suggestion: &outbound.AISuggestion{Item: meal("Cashew Toast", "peanuts")},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(nil, nil, tc.suggester)

			draft := plan.DraftPlan{
				Goal:  "maintenance",
				Meals: []plan.ConsumableItem{meal("Peanut Butter Toast", "peanuts"), meal("Oatmeal")},
			}
			constraints := plan.NewUserConstraints([]string{"peanuts"}, nil)

			result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
			require.NoError(t, err)

			require.Len(t, result.SafeMeals, 1)
			assert.Equal(t, "Oatmeal", result.SafeMeals[0].Name)
			require.Len(t, result.Replacements.Meals, 1)
			record := result.Replacements.Meals[0]
			assert.Equal(t, "Peanut Butter Toast", record.Replaced)
			assert.Equal(t, plan.RemovedMarker, record.With)
			assert.Equal(t, plan.RemovedReason, record.Reason)
		})
	}
}

func TestBuildSafePlan_CatalogEnrichesBareItems(t *testing.T) {
	catalog := &fakeCatalog{items: map[string]*plan.ConsumableItem{
		catalogKey(plan.KindMeal, "Shrimp Stir Fry"): {
			Name: "Shrimp Stir Fry", Kind: plan.KindMeal,
			HazardTags: []string{"shellfish"},
			Meal:       &plan.MealFacts{Calories: 420, Protein: 35},
		},
	}}
	suggester := &fakeSuggester{}
	engine := newTestEngine(catalog, nil, suggester)

	// The draft item arrives with no tags: only the catalog knows the hazard.
	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{{Name: "shrimp  stir fry", Kind: plan.KindMeal}},
	}
	constraints := plan.NewUserConstraints([]string{"shellfish"}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)
	require.Len(t, result.Replacements.Meals, 1)
	assert.Equal(t, plan.RemovedMarker, result.Replacements.Meals[0].With)
}

func TestBuildSafePlan_UnknownItemsFailOpen(t *testing.T) {
	cases := []struct {
		name    string
		catalog *fakeCatalog
	}{
		{"catalog miss", &fakeCatalog{items: map[string]*plan.ConsumableItem{}}},
		{"catalog error", &fakeCatalog{err: errors.New("connection refused")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(tc.catalog, nil, nil)

			draft := plan.DraftPlan{
				Goal:  "maintenance",
				Meals: []plan.ConsumableItem{{Name: "Mystery Casserole", Kind: plan.KindMeal}},
			}
			constraints := plan.NewUserConstraints([]string{"peanuts"}, nil)

			result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
			require.NoError(t, err)
			require.Len(t, result.SafeMeals, 1)
			assert.Empty(t, result.Replacements.Meals)
		})
	}
}

func TestBuildSafePlan_SevereInjuryBlocksMovementFamily(t *testing.T) {
	suggester := &fakeSuggester{exerciseOK: true}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:      "strength",
		Exercises: []plan.ConsumableItem{exercise("Barbell Squats"), exercise("Swimming")},
	}
	constraints := plan.NewUserConstraints(nil, []plan.Injury{
		{Name: "knee", Severity: plan.SeveritySevere},
	})

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeExercises, 1)
	assert.Equal(t, "Swimming", result.SafeExercises[0].Name)
	require.Len(t, result.Replacements.Workouts, 1)
	assert.Equal(t, "Barbell Squats", result.Replacements.Workouts[0].Replaced)
}

func TestBuildSafePlan_ModerateInjuryDoesNotTripSeverityScreen(t *testing.T) {
	suggester := &fakeSuggester{exerciseOK: true}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:      "strength",
		Exercises: []plan.ConsumableItem{exercise("Barbell Squats")},
	}
	constraints := plan.NewUserConstraints(nil, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)
	require.Len(t, result.SafeExercises, 1)
	assert.Empty(t, result.Replacements.Workouts)
}

func TestBuildSafePlan_AISafetyCheckCanFlagExercise(t *testing.T) {
	suggester := &fakeSuggester{exerciseOK: false}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:      "strength",
		Exercises: []plan.ConsumableItem{exercise("Box Jumps")},
	}
	constraints := plan.NewUserConstraints(nil, injuries("ankle"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.Replacements.Workouts, 1)
	assert.Equal(t, "Box Jumps", result.Replacements.Workouts[0].Replaced)
	assert.Equal(t, 1, suggester.validateCalls)
}

func TestBuildSafePlan_AISafetyCheckOutageTreatsExerciseAsUnsafe(t *testing.T) {
	suggester := &fakeSuggester{validateErr: errors.New("upstream timeout")}
	engine := newTestEngine(nil, nil, suggester)

	draft := plan.DraftPlan{
		Goal:      "strength",
		Exercises: []plan.ConsumableItem{exercise("Box Jumps")},
	}
	constraints := plan.NewUserConstraints(nil, injuries("ankle"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	// Unable to validate means unsafe; with no rule and no suggestion the
	// exercise is removed rather than passed through unchecked.
	assert.Empty(t, result.SafeExercises)
	require.Len(t, result.Replacements.Workouts, 1)
	assert.Equal(t, "Box Jumps", result.Replacements.Workouts[0].Replaced)
	assert.Equal(t, plan.RemovedMarker, result.Replacements.Workouts[0].With)
}

func TestBuildSafePlan_SharedRuleTargetResolvesDistinctAlternative(t *testing.T) {
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindExercise, "Squats"): {
			Kind: plan.KindExercise, SourceName: "Squats",
			TargetName: "Glute Bridge", Reason: "knee-safe hip hinge",
		},
		catalogKey(plan.KindExercise, "Lunges"): {
			Kind: plan.KindExercise, SourceName: "Lunges",
			TargetName: "Glute Bridge", Reason: "knee-safe hip hinge",
		},
	}}
	suggester := &fakeSuggester{
		exerciseOK: true,
		suggestion: &outbound.AISuggestion{
			Item:   exercise("Step-Ups"),
			Reason: "low knee load",
		},
	}
	engine := newTestEngine(nil, rules, suggester)

	draft := plan.DraftPlan{
		Goal: "strength",
		Exercises: []plan.ConsumableItem{
			exercise("Squats", "knee"),
			exercise("Lunges", "knee"),
		},
	}
	constraints := plan.NewUserConstraints(nil, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	// The second rule hit must not repeat the first one's target.
	require.Len(t, result.SafeExercises, 2)
	assert.Equal(t, "Glute Bridge", result.SafeExercises[0].Name)
	assert.Equal(t, "Step-Ups", result.SafeExercises[1].Name)

	require.Len(t, result.Replacements.Workouts, 2)
	assert.Equal(t, "Glute Bridge", result.Replacements.Workouts[0].With)
	assert.Equal(t, "knee-safe hip hinge", result.Replacements.Workouts[0].Reason)
	assert.Equal(t, "Step-Ups", result.Replacements.Workouts[1].With)
	assert.Equal(t, "low knee load", result.Replacements.Workouts[1].Reason)
	assert.Equal(t, 1, suggester.suggestCalls)
}

func TestBuildSafePlan_SharedRuleTargetWithoutAlternativeRemovesItem(t *testing.T) {
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindExercise, "Squats"): {
			Kind: plan.KindExercise, SourceName: "Squats",
			TargetName: "Glute Bridge", Reason: "knee-safe hip hinge",
		},
		catalogKey(plan.KindExercise, "Lunges"): {
			Kind: plan.KindExercise, SourceName: "Lunges",
			TargetName: "Glute Bridge", Reason: "knee-safe hip hinge",
		},
	}}
	suggester := &fakeSuggester{exerciseOK: true}
	engine := newTestEngine(nil, rules, suggester)

	draft := plan.DraftPlan{
		Goal: "strength",
		Exercises: []plan.ConsumableItem{
			exercise("Squats", "knee"),
			exercise("Lunges", "knee"),
		},
	}
	constraints := plan.NewUserConstraints(nil, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeExercises, 1)
	assert.Equal(t, "Glute Bridge", result.SafeExercises[0].Name)
	require.Len(t, result.Replacements.Workouts, 2)
	assert.Equal(t, plan.RemovedMarker, result.Replacements.Workouts[1].With)
	assert.Equal(t, plan.RemovedReason, result.Replacements.Workouts[1].Reason)
}

func TestBuildSafePlan_SafeWorkoutDuplicatingReplacementIsDropped(t *testing.T) {
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindExercise, "Squats"): {
			Kind: plan.KindExercise, SourceName: "Squats",
			TargetName: "Glute Bridge", Reason: "knee-safe hip hinge",
		},
	}}
	suggester := &fakeSuggester{exerciseOK: true}
	engine := newTestEngine(nil, rules, suggester)

	draft := plan.DraftPlan{
		Goal: "strength",
		Exercises: []plan.ConsumableItem{
			exercise("Squats", "knee"),
			exercise("Glute Bridge"),
		},
	}
	constraints := plan.NewUserConstraints(nil, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeExercises, 1)
	assert.Equal(t, "Glute Bridge", result.SafeExercises[0].Name)

	require.Len(t, result.Replacements.Workouts, 2)
	record := result.Replacements.Workouts[1]
	assert.Equal(t, "Glute Bridge", record.Replaced)
	assert.Equal(t, plan.RemovedMarker, record.With)
	assert.Equal(t, "duplicate workout removed", record.Reason)
}

func TestBuildSafePlan_MealsNeverCheckedAgainstInjuries(t *testing.T) {
	engine := newTestEngine(nil, nil, nil)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{meal("Knee Deep Chili", "knee")},
	}
	constraints := plan.NewUserConstraints(nil, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)
	require.Len(t, result.SafeMeals, 1)
	assert.Empty(t, result.Replacements.Meals)
}

func TestBuildSafePlan_PreservesOrderAcrossMixedOutcomes(t *testing.T) {
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindMeal, "Peanut Noodles"): {
			Kind:       plan.KindMeal,
			SourceName: "peanut noodles",
			TargetName: "Sesame Noodles",
			Reason:     "peanut-free sauce",
		},
	}}
	suggester := &fakeSuggester{}
	engine := newTestEngine(nil, rules, suggester)

	draft := plan.DraftPlan{
		Goal: "maintenance",
		Meals: []plan.ConsumableItem{
			meal("Oatmeal"),
			meal("Peanut Noodles", "peanuts"),
			meal("Peanut Brittle", "peanuts"),
			meal("Rice Bowl"),
		},
	}
	constraints := plan.NewUserConstraints([]string{"peanuts"}, nil)

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	// Peanut Brittle has no rule and no suggestion, so it drops out; every
	// surviving slot keeps its draft position.
	require.Len(t, result.SafeMeals, 3)
	assert.Equal(t, "Oatmeal", result.SafeMeals[0].Name)
	assert.Equal(t, "Sesame Noodles", result.SafeMeals[1].Name)
	assert.Equal(t, "Rice Bowl", result.SafeMeals[2].Name)

	require.Len(t, result.Replacements.Meals, 2)
	assert.Equal(t, "Peanut Noodles", result.Replacements.Meals[0].Replaced)
	assert.Equal(t, "Peanut Brittle", result.Replacements.Meals[1].Replaced)
	assert.Equal(t, plan.RemovedMarker, result.Replacements.Meals[1].With)
}

func TestBuildSafePlan_RejectsMalformedItems(t *testing.T) {
	engine := newTestEngine(nil, nil, nil)

	draft := plan.DraftPlan{
		Goal:  "maintenance",
		Meals: []plan.ConsumableItem{{Name: "", Kind: plan.KindMeal}},
	}

	_, err := engine.BuildSafePlan(context.Background(), draft, plan.UserConstraints{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.GetCode(err))
}

func TestBuildSafePlan_RuleTargetInheritsSlotAttributes(t *testing.T) {
	rules := &fakeRuleTable{rules: map[string]*outbound.SubstitutionRule{
		catalogKey(plan.KindExercise, "Running"): {
			Kind:       plan.KindExercise,
			SourceName: "running",
			TargetName: "Cycling",
			Reason:     "lower impact on the knee",
		},
	}}
	engine := newTestEngine(nil, rules, nil)

	draft := plan.DraftPlan{
		Goal:      "endurance",
		Exercises: []plan.ConsumableItem{exercise("Running", "knee")},
	}
	constraints := plan.NewUserConstraints(nil, injuries("knee"))

	result, err := engine.BuildSafePlan(context.Background(), draft, constraints)
	require.NoError(t, err)

	require.Len(t, result.SafeExercises, 1)
	replacement := result.SafeExercises[0]
	assert.Equal(t, "Cycling", replacement.Name)
	require.NotNil(t, replacement.Exercise)
	assert.Equal(t, "30 min", replacement.Exercise.Duration)
}

func TestScreenSeverity(t *testing.T) {
	severe := []plan.Injury{{Name: "wrist", Severity: plan.SeveritySevere}}

	name, hit := screenSeverity("Incline Bench Press", severe)
	require.True(t, hit)
	assert.Equal(t, "wrist", name)

	_, hit = screenSeverity("Jogging", severe)
	assert.False(t, hit)

	_, hit = screenSeverity("Incline Bench Press", injuries("wrist"))
	assert.False(t, hit)
}
