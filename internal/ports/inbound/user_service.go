package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
)

// UserService defines the account and profile use cases.
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*AuthResponse, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, cmd UpdateProfileCommand) (*UserDTO, error)
}

// RegisterCommand contains user registration data.
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginCommand contains user login data.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileCommand replaces the user's safety profile and goal.
type UpdateProfileCommand struct {
	Goal      string        `json:"goal" validate:"max=200"`
	Allergies []string      `json:"allergies" validate:"dive,max=100"`
	Injuries  []plan.Injury `json:"injuries"`
}

// UserDTO is the wire shape of an account.
type UserDTO struct {
	ID        uuid.UUID     `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Goal      string        `json:"goal,omitempty"`
	Allergies []string      `json:"allergies,omitempty"`
	Injuries  []plan.Injury `json:"injuries,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// AuthResponse contains authentication response data.
type AuthResponse struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}
