package plan

// RemovedMarker is recorded in place of a replacement name when no safe
// alternative could be found and the item was dropped from the plan.
const RemovedMarker = "(removed)"

// RemovedReason is the user-facing justification for a terminal removal.
const RemovedReason = "no safe alternative found"

// DraftPlan is the unreviewed output of the external plan generator, before
// safety filtering.
type DraftPlan struct {
	Goal      string
	Meals     []ConsumableItem
	Exercises []ConsumableItem
}

// ReplacementRecord documents one substitution or removal, surfaced to the user
// verbatim.
type ReplacementRecord struct {
	Replaced string `json:"replaced"`
	With     string `json:"with"`
	Reason   string `json:"reason"`
}

// ReplacementLog groups replacement records by plan category. The workouts key
// matches the wire contract consumed by the frontend.
type ReplacementLog struct {
	Meals    []ReplacementRecord `json:"meals"`
	Workouts []ReplacementRecord `json:"workouts"`
}

// PlanResult is a safety-checked plan. Item order matches the draft; every item
// is guaranteed to have no hazard overlap with the constraints it was checked
// against.
type PlanResult struct {
	Goal          string
	SafeMeals     []ConsumableItem
	SafeExercises []ConsumableItem
	Replacements  ReplacementLog
}
