package gorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/ports/outbound"
	"gorm.io/gorm"
)

// SavedPlanRepository implements saved-plan persistence using GORM.
type SavedPlanRepository struct {
	db *gorm.DB
}

// NewSavedPlanRepository creates a new saved plan repository
func NewSavedPlanRepository(db *gorm.DB) outbound.SavedPlanRepository {
	return &SavedPlanRepository{db: db}
}

// Create stores a saved plan.
func (r *SavedPlanRepository) Create(ctx context.Context, saved *plan.SavedPlan) error {
	model, err := savedPlanToModel(saved)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID returns one saved plan, or (nil, nil) when it does not exist.
func (r *SavedPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plan.SavedPlan, error) {
	var model SavedPlanModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return savedPlanToDomain(&model)
}

// FindByUserID returns a user's saved plans, newest first.
func (r *SavedPlanRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*plan.SavedPlan, error) {
	var models []SavedPlanModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*plan.SavedPlan, 0, len(models))
	for i := range models {
		saved, err := savedPlanToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

// CountByUserID returns how many plans a user has saved.
func (r *SavedPlanRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&SavedPlanModel{}).
		Where("user_id = ?", userID).
		Count(&count)
	return count, result.Error
}

// Delete removes a saved plan.
func (r *SavedPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&SavedPlanModel{}, "id = ?", id).Error
}

func savedPlanToModel(saved *plan.SavedPlan) (*SavedPlanModel, error) {
	result, err := json.Marshal(saved.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan result: %w", err)
	}
	return &SavedPlanModel{
		ID:        saved.ID,
		UserID:    saved.UserID,
		Title:     saved.Title,
		Result:    string(result),
		CreatedAt: saved.CreatedAt,
	}, nil
}

func savedPlanToDomain(model *SavedPlanModel) (*plan.SavedPlan, error) {
	var result plan.PlanResult
	if err := json.Unmarshal([]byte(model.Result), &result); err != nil {
		return nil, fmt.Errorf("failed to decode plan result: %w", err)
	}
	return &plan.SavedPlan{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Result:    result,
		CreatedAt: model.CreatedAt,
	}, nil
}
