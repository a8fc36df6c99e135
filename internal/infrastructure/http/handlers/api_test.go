package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/planforge/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePlanService struct {
	response *inbound.PlanResponse
	err      error
	lastCmd  inbound.GeneratePlanCommand
}

func (f *fakePlanService) GeneratePlan(_ context.Context, cmd inbound.GeneratePlanCommand) (*inbound.PlanResponse, error) {
	f.lastCmd = cmd
	return f.response, f.err
}

func (f *fakePlanService) SavePlan(context.Context, inbound.SavePlanCommand) (*inbound.SavedPlanDTO, error) {
	return nil, f.err
}

func (f *fakePlanService) ListSavedPlans(context.Context, uuid.UUID) ([]*inbound.SavedPlanDTO, error) {
	return nil, f.err
}

func (f *fakePlanService) GetSavedPlan(context.Context, uuid.UUID, uuid.UUID) (*inbound.SavedPlanDTO, error) {
	return nil, f.err
}

func (f *fakePlanService) DeleteSavedPlan(context.Context, uuid.UUID, uuid.UUID) error {
	return f.err
}

func newTestRouter(svc inbound.PlanService) *chi.Mux {
	h := NewPlanHandlers(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/v1/generate-plan", h.GeneratePlan)
	r.Get("/api/v1/plans/{planID}", h.GetPlan)
	r.Get("/health", Health)
	return r
}

func TestGeneratePlanEndpoint(t *testing.T) {
	svc := &fakePlanService{
		response: &inbound.PlanResponse{
			Goal: "lose weight",
			SafePlan: inbound.SafePlanDTO{
				Meals:    []inbound.MealDTO{{Name: "Oatmeal", Calories: 320}},
				Workouts: []inbound.WorkoutDTO{{Name: "Walking", Duration: "30 min"}},
			},
		},
	}
	router := newTestRouter(svc)

	body := `{"goal":"lose weight","allergies":["peanuts"],"injuries":["knee",{"name":"wrist","severity":"severe"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-plan", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp inbound.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "lose weight", resp.Goal)
	require.Len(t, resp.SafePlan.Meals, 1)
	assert.Equal(t, "Oatmeal", resp.SafePlan.Meals[0].Name)

	// Both injury wire forms decode into the command.
	require.Len(t, svc.lastCmd.Injuries, 2)
	assert.Equal(t, "knee", svc.lastCmd.Injuries[0].Name)
	assert.Equal(t, "wrist", svc.lastCmd.Injuries[1].Name)
}

func TestGeneratePlanRejectsMissingGoal(t *testing.T) {
	router := newTestRouter(&fakePlanService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-plan", bytes.NewBufferString(`{"allergies":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.CodeValidationFailed))
}

func TestErrorEnvelopeIsSingleNested(t *testing.T) {
	router := newTestRouter(&fakePlanService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-plan", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "error")

	// The code sits directly under "error"; there is no second "error" level.
	var details struct {
		Code  string          `json:"code"`
		Error json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body["error"], &details))
	assert.Equal(t, string(errors.CodeValidationFailed), details.Code)
	assert.Nil(t, details.Error)
}

func TestGeneratePlanMapsServiceErrors(t *testing.T) {
	svc := &fakePlanService{err: errors.NewSubstitutionConflictError("Squats", "Leg Press", "knee")}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-plan", bytes.NewBufferString(`{"goal":"bulk"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// A defective rule table is a server fault, not a caller mistake.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.CodeSubstitutionConflict))
}

func TestPlanEndpointsRequireAuthentication(t *testing.T) {
	router := newTestRouter(&fakePlanService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakePlanService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
