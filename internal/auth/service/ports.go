package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"romportal/internal/auth/models"
	jwttoken "romportal/internal/jwt_token"
	audit "romportal/pkg/platform/audit"
)

// UserStore persists admin accounts. Emails are unique case-insensitively;
// a duplicate returns sentinel.ErrAlreadyUsed.
type UserStore interface {
	Save(ctx context.Context, user *models.AdminUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Count(ctx context.Context) (int, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string, role string, expiresIn time.Duration) (*jwttoken.IssuedToken, error)
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// TokenRevocationList remembers signed-out tokens until they would have
// expired anyway.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
