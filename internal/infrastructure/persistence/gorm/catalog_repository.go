package gorm

import (
	"context"
	"errors"

	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/ports/outbound"
	"gorm.io/gorm"
)

// CatalogRepository implements the catalog port on the food and exercise
// tables. Lookups go through the normalized name column and only see active
// rows; a miss is (nil, nil) so unknown items fail open upstream.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) outbound.CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindItem looks up one catalog entry by kind and name.
func (r *CatalogRepository) FindItem(ctx context.Context, kind plan.ItemKind, name string) (*plan.ConsumableItem, error) {
	normalized := plan.NormalizeName(name)
	if normalized == "" {
		return nil, nil
	}

	switch kind {
	case plan.KindMeal:
		var model FoodItemModel
		result := r.db.WithContext(ctx).
			Where("normalized_name = ? AND is_active = ?", normalized, true).
			First(&model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, result.Error
		}
		return model.toDomain(), nil

	case plan.KindExercise:
		var model ExerciseItemModel
		result := r.db.WithContext(ctx).
			Where("normalized_name = ? AND is_active = ?", normalized, true).
			First(&model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, result.Error
		}
		return model.toDomain(), nil

	default:
		return nil, nil
	}
}

// ListNames returns the names of all active catalog entries of a kind.
func (r *CatalogRepository) ListNames(ctx context.Context, kind plan.ItemKind) ([]string, error) {
	var names []string

	query := r.db.WithContext(ctx)
	switch kind {
	case plan.KindMeal:
		query = query.Model(&FoodItemModel{})
	case plan.KindExercise:
		query = query.Model(&ExerciseItemModel{})
	default:
		return nil, nil
	}

	result := query.Where("is_active = ?", true).Order("name").Pluck("name", &names)
	if result.Error != nil {
		return nil, result.Error
	}
	return names, nil
}

// SubstitutionRuleRepository implements the rule table port.
type SubstitutionRuleRepository struct {
	db *gorm.DB
}

// NewSubstitutionRuleRepository creates a new substitution rule repository
func NewSubstitutionRuleRepository(db *gorm.DB) outbound.SubstitutionRuleRepository {
	return &SubstitutionRuleRepository{db: db}
}

// Find looks up the curated rule for one (kind, source) pair.
func (r *SubstitutionRuleRepository) Find(ctx context.Context, kind plan.ItemKind, sourceName string) (*outbound.SubstitutionRule, error) {
	normalized := plan.NormalizeName(sourceName)
	if normalized == "" {
		return nil, nil
	}

	var model SubstitutionRuleModel
	result := r.db.WithContext(ctx).
		Where("kind = ? AND source_normalized = ? AND is_active = ?", string(kind), normalized, true).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &outbound.SubstitutionRule{
		Kind:       plan.ItemKind(model.Kind),
		SourceName: model.SourceName,
		TargetName: model.TargetName,
		Reason:     model.Reason,
	}, nil
}
