package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/user"
	"github.com/planforge/v1/internal/ports/outbound"
	"gorm.io/gorm"
)

// UserRepository implements user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, account *user.User) error {
	return r.db.WithContext(ctx).Create(userToModel(account)).Error
}

// Update saves changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, account *user.User) error {
	result := r.db.WithContext(ctx).Save(userToModel(account))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// FindByID returns a user by ID, or (nil, nil) when absent.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return model.toDomain(), nil
}

// FindByEmail returns a user by email, or (nil, nil) when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	result := r.db.WithContext(ctx).First(&model, "email = ?", strings.ToLower(strings.TrimSpace(email)))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return model.toDomain(), nil
}

// Exists reports whether a user ID is present.
func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		Count(&count)
	return count > 0, result.Error
}
