// Package user contains the user domain model: identity plus the safety
// constraints (allergies, injuries) the rules engine depends on.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
)

// User is the account aggregate. PasswordHash is managed by the auth service;
// the domain never sees plaintext passwords.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string

	// Safety profile, fed into plan generation as the default constraint set.
	Allergies []string
	Injuries  []plan.Injury

	Goal string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user with a validated identity. The password hash is set
// separately by the auth layer.
func NewUser(email, name string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Constraints returns the user's stored safety profile as a normalized
// constraint set.
func (u *User) Constraints() plan.UserConstraints {
	return plan.NewUserConstraints(u.Allergies, u.Injuries)
}

// UpdateProfile replaces the safety profile and goal.
func (u *User) UpdateProfile(goal string, allergies []string, injuries []plan.Injury) {
	u.Goal = strings.TrimSpace(goal)
	u.Allergies = allergies
	u.Injuries = injuries
	u.UpdatedAt = time.Now()
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ErrEmailInvalid
	}
	return nil
}
