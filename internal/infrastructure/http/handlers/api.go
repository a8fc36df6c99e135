// Package handlers provides the JSON API handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/infrastructure/http/middleware"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/planforge/v1/pkg/errors"
	"go.uber.org/zap"
)

// PlanHandlers serves plan generation and saved-plan endpoints.
type PlanHandlers struct {
	planService inbound.PlanService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPlanHandlers creates plan API handlers.
func NewPlanHandlers(planService inbound.PlanService, logger *zap.Logger) *PlanHandlers {
	return &PlanHandlers{
		planService: planService,
		validate:    validator.New(),
		logger:      logger.Named("plan-handlers"),
	}
}

// generatePlanRequest is the POST /generate-plan body. Allergies arrive as a
// list of free-text entries; injuries accept both string and object forms.
type generatePlanRequest struct {
	Goal      string        `json:"goal" validate:"required,max=200"`
	Allergies []string      `json:"allergies" validate:"dive,max=100"`
	Injuries  []plan.Injury `json:"injuries"`
}

type savePlanRequest struct {
	Title string               `json:"title" validate:"max=200"`
	Plan  inbound.PlanResponse `json:"plan" validate:"required"`
}

// GeneratePlan handles POST /api/v1/generate-plan. Works for both anonymous
// and authenticated callers; constraints always come from the request body.
func (h *PlanHandlers) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	cmd := inbound.GeneratePlanCommand{
		Goal:      req.Goal,
		Allergies: req.Allergies,
		Injuries:  req.Injuries,
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		cmd.UserID = &userID
	}

	resp, err := h.planService.GeneratePlan(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	recordReplacementMetrics(resp)
	respondJSON(w, http.StatusOK, resp)
}

// SavePlan handles POST /api/v1/plans.
func (h *PlanHandlers) SavePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	var req savePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	saved, err := h.planService.SavePlan(r.Context(), inbound.SavePlanCommand{
		UserID: userID,
		Title:  req.Title,
		Plan:   req.Plan,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, saved)
}

// ListPlans handles GET /api/v1/plans.
func (h *PlanHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	plans, err := h.planService.ListSavedPlans(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}

// GetPlan handles GET /api/v1/plans/{planID}.
func (h *PlanHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid plan id"))
		return
	}

	saved, err := h.planService.GetSavedPlan(r.Context(), userID, planID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, saved)
}

// DeletePlan handles DELETE /api/v1/plans/{planID}.
func (h *PlanHandlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid plan id"))
		return
	}

	if err := h.planService.DeleteSavedPlan(r.Context(), userID, planID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Root handles GET / with a short service banner.
func Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "planforge",
		"message": "AI fitness and nutrition planner with safety substitution",
	})
}

func recordReplacementMetrics(resp *inbound.PlanResponse) {
	for _, rec := range resp.ReplacementsMade.Meals {
		outcome := "substituted"
		if rec.With == plan.RemovedMarker {
			outcome = "removed"
		}
		middleware.CountReplacement("meals", outcome)
	}
	for _, rec := range resp.ReplacementsMade.Workouts {
		outcome := "substituted"
		if rec.With == plan.RemovedMarker {
			outcome = "removed"
		}
		middleware.CountReplacement("workouts", outcome)
	}
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps application errors to HTTP status codes and a stable
// error payload.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, "Internal server error")
	}

	// ToErrorResponse already carries the top-level "error" key.
	requestID := middleware.RequestIDFromContext(r.Context())
	respondJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, requestID))
}
