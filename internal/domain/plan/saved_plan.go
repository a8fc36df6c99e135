package plan

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxSavedPlans caps how many plans a user may keep.
const MaxSavedPlans = 5

// SavedPlan is a safety-checked plan a user chose to keep.
type SavedPlan struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Result    PlanResult
	CreatedAt time.Time
}

// NewSavedPlan creates a saved plan for a user. An empty title falls back to
// the plan's goal.
func NewSavedPlan(userID uuid.UUID, title string, result PlanResult) *SavedPlan {
	title = strings.TrimSpace(title)
	if title == "" {
		title = result.Goal
	}
	return &SavedPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Result:    result,
		CreatedAt: time.Now(),
	}
}
