// Package gorm provides GORM model definitions and the repository
// implementations backed by them.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/domain/user"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`

	// Safety profile
	Goal      string      `gorm:"type:varchar(255)"`
	Allergies StringSlice `gorm:"type:json"`
	Injuries  JSONField   `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time

	SavedPlans []SavedPlanModel `gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// FoodItemModel is one catalog food entry. Allergens are the hazard tags the
// engine matches against a user's allergies.
type FoodItemModel struct {
	ID             uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Name           string      `gorm:"type:varchar(255);not null"`
	NormalizedName string      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Allergens      StringSlice `gorm:"type:json"`
	Calories       int         `gorm:"default:0"`
	Protein        float64     `gorm:"default:0"`
	Carbs          float64     `gorm:"default:0"`
	Fat            float64     `gorm:"default:0"`
	IsActive       bool        `gorm:"default:true;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (FoodItemModel) TableName() string { return "food_items" }

// ExerciseItemModel is one catalog exercise entry. Contraindications are the
// hazard tags matched against a user's injuries.
type ExerciseItemModel struct {
	ID                uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Name              string      `gorm:"type:varchar(255);not null"`
	NormalizedName    string      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Contraindications StringSlice `gorm:"type:json"`
	Duration          string      `gorm:"type:varchar(100)"`
	EstimatedCalories int         `gorm:"default:0"`
	Difficulty        string      `gorm:"type:varchar(50)"`
	IsActive          bool        `gorm:"default:true;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ExerciseItemModel) TableName() string { return "exercise_items" }

// SubstitutionRuleModel maps one unsafe item to its curated replacement,
// keyed by (kind, normalized source name).
type SubstitutionRuleModel struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"`
	Kind             string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_rule_source"`
	SourceNormalized string    `gorm:"column:source_normalized;type:varchar(255);not null;uniqueIndex:idx_rule_source"`
	SourceName       string    `gorm:"type:varchar(255);not null"`
	TargetName       string    `gorm:"type:varchar(255);not null"`
	Reason           string    `gorm:"type:text;not null"`
	IsActive         bool      `gorm:"default:true;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (SubstitutionRuleModel) TableName() string { return "substitution_rules" }

// SavedPlanModel stores a checked plan a user chose to keep. The result is
// persisted as one JSON document; it is read back whole, never queried into.
type SavedPlanModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Result    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`

	User UserModel `gorm:"foreignKey:UserID"`
}

func (SavedPlanModel) TableName() string { return "saved_plans" }

// StringSlice custom type for handling string slices in JSON columns
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// JSONField custom type for handling JSON fields
type JSONField []map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = JSONField{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "[]", nil
	}
	return json.Marshal(j)
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for FoodItemModel
func (f *FoodItemModel) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.NormalizedName = plan.NormalizeName(f.Name)
	return nil
}

// BeforeCreate hook for ExerciseItemModel
func (e *ExerciseItemModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.NormalizedName = plan.NormalizeName(e.Name)
	return nil
}

// BeforeCreate hook for SubstitutionRuleModel
func (r *SubstitutionRuleModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.SourceNormalized = plan.NormalizeName(r.SourceName)
	return nil
}

// Mapping helpers between models and domain types.

func (u *UserModel) toDomain() *user.User {
	injuries := make([]plan.Injury, 0, len(u.Injuries))
	for _, raw := range u.Injuries {
		inj := plan.Injury{Severity: plan.SeverityModerate}
		if name, ok := raw["name"].(string); ok {
			inj.Name = name
		}
		if severity, ok := raw["severity"].(string); ok && severity != "" {
			inj.Severity = plan.Severity(severity)
		}
		injuries = append(injuries, inj)
	}

	return &user.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Goal:         u.Goal,
		Allergies:    u.Allergies,
		Injuries:     injuries,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userToModel(account *user.User) *UserModel {
	injuries := make(JSONField, 0, len(account.Injuries))
	for _, inj := range account.Injuries {
		injuries = append(injuries, map[string]interface{}{
			"name":     inj.Name,
			"severity": string(inj.Severity),
		})
	}

	return &UserModel{
		ID:           account.ID,
		Email:        account.Email,
		Name:         account.Name,
		PasswordHash: account.PasswordHash,
		Goal:         account.Goal,
		Allergies:    StringSlice(account.Allergies),
		Injuries:     injuries,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func (f *FoodItemModel) toDomain() *plan.ConsumableItem {
	return &plan.ConsumableItem{
		Name:       f.Name,
		Kind:       plan.KindMeal,
		HazardTags: f.Allergens,
		Meal: &plan.MealFacts{
			Calories: f.Calories,
			Protein:  f.Protein,
			Carbs:    f.Carbs,
			Fat:      f.Fat,
		},
	}
}

func (e *ExerciseItemModel) toDomain() *plan.ConsumableItem {
	return &plan.ConsumableItem{
		Name:       e.Name,
		Kind:       plan.KindExercise,
		HazardTags: e.Contraindications,
		Exercise: &plan.ExerciseFacts{
			Duration:          e.Duration,
			EstimatedCalories: e.EstimatedCalories,
			Difficulty:        e.Difficulty,
		},
	}
}
