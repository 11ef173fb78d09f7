package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"romportal/internal/certificate/models"
	audit "romportal/pkg/platform/audit"
)

// PasswordVerifier re-authenticates the acting admin before destructive
// operations. It returns an unauthorized domain error on mismatch.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// VerifyCache memoizes public lookups by normalized code. A cache failure
// never fails a lookup.
type VerifyCache interface {
	Get(ctx context.Context, code string) (*models.VerificationResult, bool, error)
	Set(ctx context.Context, code string, result *models.VerificationResult) error
	Invalidate(ctx context.Context, codes ...string) error
}
