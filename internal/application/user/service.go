// Package user provides the application layer for account management: register,
// login, and the safety profile the plan generator defaults to.
package user

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/planforge/v1/internal/domain/user"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/planforge/v1/internal/ports/outbound"
	"github.com/planforge/v1/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionKeyPrefix = "session:"

// UserService implements the account use cases. Tokens are short-lived JWTs
// backed by a server-side session entry, so logout revokes immediately.
type UserService struct {
	userRepo  outbound.UserRepository
	cache     outbound.CacheRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo outbound.UserRepository,
	cache outbound.CacheRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger.Named("user-service"),
	}
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new account and logs it in.
func (s *UserService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.AuthResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("find user by email", err)
	}
	if existing != nil {
		return nil, errors.NewEmailAlreadyExistsError(cmd.Email)
	}

	account, err := user.NewUser(cmd.Email, cmd.Name)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password")
	}
	account.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, account); err != nil {
		return nil, errors.NewDatabaseError("create user", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", account.ID.String()),
		zap.String("email", account.Email),
	)

	return s.issueSession(ctx, account)
}

// Login authenticates a user by email and password.
func (s *UserService) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.AuthResponse, error) {
	account, err := s.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("find user by email", err)
	}
	if account == nil {
		return nil, errors.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, errors.NewInvalidCredentialsError()
	}

	s.logger.Info("User logged in", zap.String("user_id", account.ID.String()))

	return s.issueSession(ctx, account)
}

// Logout revokes the session behind a token. Unknown or expired tokens revoke
// to a no-op rather than an error.
func (s *UserService) Logout(ctx context.Context, token string) error {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil
	}
	if err := s.cache.Delete(ctx, sessionKeyPrefix+claims.ID); err != nil {
		s.logger.Warn("Failed to delete session", zap.Error(err))
	}
	return nil
}

// GetProfile returns the account for a user ID.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*inbound.UserDTO, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("find user", err)
	}
	if account == nil {
		return nil, errors.NewUserNotFoundError(userID.String())
	}
	dto := toDTO(account)
	return &dto, nil
}

// UpdateProfile replaces the user's goal and safety profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, cmd inbound.UpdateProfileCommand) (*inbound.UserDTO, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("find user", err)
	}
	if account == nil {
		return nil, errors.NewUserNotFoundError(userID.String())
	}

	account.UpdateProfile(cmd.Goal, cmd.Allergies, cmd.Injuries)
	if err := s.userRepo.Update(ctx, account); err != nil {
		return nil, errors.NewDatabaseError("update user", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", account.ID.String()))

	dto := toDTO(account)
	return &dto, nil
}

// ParseToken verifies a token's signature and expiry. Whether the backing
// session is still live is a separate check, see SessionActive.
func (s *UserService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorizedError("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.NewUnauthorizedError("invalid token")
	}
	return claims, nil
}

// SessionActive reports whether the session behind the claims is still live.
func (s *UserService) SessionActive(ctx context.Context, claims *Claims) bool {
	ok, err := s.cache.Exists(ctx, sessionKeyPrefix+claims.ID)
	if err != nil {
		// Cache outage must not lock every user out; the JWT expiry still holds.
		s.logger.Warn("Session lookup failed", zap.Error(err))
		return true
	}
	return ok
}

func (s *UserService) issueSession(ctx context.Context, account *user.User) (*inbound.AuthResponse, error) {
	sessionID := uuid.NewString()
	now := time.Now()

	claims := Claims{
		UserID: account.ID,
		Email:  account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, errors.NewInternalError("failed to sign token")
	}

	if err := s.cache.Set(ctx, sessionKeyPrefix+sessionID, []byte(account.ID.String()), s.tokenTTL); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	return &inbound.AuthResponse{
		User:        toDTO(account),
		AccessToken: token,
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

func toDTO(account *user.User) inbound.UserDTO {
	return inbound.UserDTO{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Goal:      account.Goal,
		Allergies: account.Allergies,
		Injuries:  account.Injuries,
		CreatedAt: account.CreatedAt,
	}
}
