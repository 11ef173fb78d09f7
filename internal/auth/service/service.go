package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"romportal/internal/auth/models"
	"romportal/internal/auth/secrets"
	dErrors "romportal/pkg/domain-errors"
	audit "romportal/pkg/platform/audit"
	"romportal/pkg/platform/sentinel"
	"romportal/pkg/requestcontext"
)

// DefaultTokenTTL is how long an admin session token stays valid.
const DefaultTokenTTL = 12 * time.Hour

const invalidCredentials = "invalid email or password"

// Compared against when the email is unknown so both failure paths cost one
// bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z0G5Y2Tz1Jp0QdG0gq0yO8mS"

// Service signs admins in and out and re-authenticates them before
// destructive operations.
type Service struct {
	users          UserStore
	tokens         TokenIssuer
	trl            TokenRevocationList
	auditPublisher AuditPublisher
	logger         *slog.Logger
	tokenTTL       time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserStore, tokens TokenIssuer, trl TokenRevocationList, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("users store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if trl == nil {
		return nil, errors.New("token revocation list is required")
	}
	s := &Service{
		users:    users,
		tokens:   tokens,
		trl:      trl,
		logger:   slog.Default(),
		tokenTTL: DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TokenTTL reports the lifetime of issued session tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// CreateAdmin registers a new operator account.
func (s *Service) CreateAdmin(ctx context.Context, cmd models.CreateAdmin) (*models.AdminUser, error) {
	role, err := models.ParseRole(string(cmd.Role))
	if err != nil {
		return nil, err
	}
	hash, err := secrets.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	user, err := models.NewAdminUser(cmd.Email, hash, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "an admin with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save admin")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionAdminCreated,
		Subject: user.ID.String(),
		Details: map[string]string{"email": user.Email, "role": user.Role.String()},
	})
	return user, nil
}

// HasAdmins reports whether any operator account exists.
func (s *Service) HasAdmins(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count admins")
	}
	return n > 0, nil
}

// VerifyPassword re-authenticates an admin. A wrong password or unknown
// admin is unauthorized with the message "incorrect password".
func (s *Service) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if userID == uuid.Nil {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "incorrect password")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
	}
	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.emit(ctx, audit.Event{
				Action:  audit.ActionReauthFailed,
				ActorID: user.ID.String(),
				Subject: user.ID.String(),
			})
		}
		return err
	}
	return nil
}

// IsTokenRevoked satisfies the auth middleware's revocation check.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.trl.IsRevoked(ctx, jti)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", string(event.Action),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
