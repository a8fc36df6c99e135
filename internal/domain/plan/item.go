// Package plan contains the core domain model for safety-checked fitness plans.
// It holds the plan item types, user constraints, and the pure safety-check logic
// that everything else in the engine builds on.
package plan

import "strings"

// ItemKind distinguishes meals from exercises in a plan.
type ItemKind string

const (
	KindMeal     ItemKind = "meal"
	KindExercise ItemKind = "exercise"
)

// Valid reports whether the kind is one of the known values.
func (k ItemKind) Valid() bool {
	return k == KindMeal || k == KindExercise
}

// MealFacts holds the nutritional attributes of a meal item.
type MealFacts struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// ExerciseFacts holds the exertion attributes of an exercise item.
type ExerciseFacts struct {
	Duration          string `json:"duration"`
	EstimatedCalories int    `json:"estimated_calories"`
	Difficulty        string `json:"difficulty,omitempty"`
}

// ConsumableItem is a single meal or exercise in a plan. Hazard tags carry the
// allergens (meals) or contraindications (exercises) known for the item; an item
// the catalog has never heard of has an empty tag set.
type ConsumableItem struct {
	Name       string
	Kind       ItemKind
	Meal       *MealFacts
	Exercise   *ExerciseFacts
	HazardTags []string
}

// Validate checks the structural requirements of an item. Items arrive from an
// external generator, so a missing name or kind is possible and must fail loudly.
func (i ConsumableItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrMissingName
	}
	if i.Kind == "" {
		return ErrMissingKind
	}
	if !i.Kind.Valid() {
		return ErrUnknownKind
	}
	return nil
}

// NormalizeName produces the canonical form used for catalog and rule lookups:
// lowercased, trimmed, inner whitespace collapsed.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
