// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/domain/user"
)

// CatalogRepository is the read-only store of known meals and exercises with
// their hazard tags and nutrition/exertion attributes. Lookups are keyed by
// normalized name; a miss returns (nil, nil), never an error. Unknown items
// are treated as having no known hazards.
type CatalogRepository interface {
	FindItem(ctx context.Context, kind plan.ItemKind, name string) (*plan.ConsumableItem, error)
	ListNames(ctx context.Context, kind plan.ItemKind) ([]string, error)
}

// SubstitutionRule maps one unsafe item to its curated replacement. Rules are
// keyed by (kind, normalized source name); at most one rule fires per item.
type SubstitutionRule struct {
	Kind       plan.ItemKind
	SourceName string
	TargetName string
	Reason     string
}

// SubstitutionRuleRepository looks up curated substitution rules. A miss
// returns (nil, nil).
type SubstitutionRuleRepository interface {
	Find(ctx context.Context, kind plan.ItemKind, sourceName string) (*SubstitutionRule, error)
}

// SavedPlanRepository persists user-saved plans.
type SavedPlanRepository interface {
	Create(ctx context.Context, saved *plan.SavedPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*plan.SavedPlan, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*plan.SavedPlan, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
