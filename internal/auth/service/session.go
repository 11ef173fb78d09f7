package service

import (
	"context"
	"errors"

	"romportal/internal/auth/models"
	"romportal/internal/auth/secrets"
	dErrors "romportal/pkg/domain-errors"
	audit "romportal/pkg/platform/audit"
	"romportal/pkg/platform/middleware/metadata"
	"romportal/pkg/platform/sentinel"
	"romportal/pkg/requestcontext"
)

// SignInWithPassword exchanges email and password for a signed session
// token. Unknown emails and wrong passwords fail identically.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
	}
	if user == nil {
		_ = secrets.Verify(password, dummyHash)
		s.authFailure(ctx, "unknown_email")
		return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
	}
	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.authFailure(ctx, "bad_password", "user_id", user.ID.String())
			return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentials)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	issued, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role.String(), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionAdminSignedIn,
		ActorID: user.ID.String(),
		Subject: user.ID.String(),
		Details: map[string]string{
			"client_ip": metadata.GetClientIP(ctx),
			"device":    metadata.Device(ctx),
		},
	})

	return &models.Session{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
	}, nil
}

// CurrentUser resolves a bearer token to the admin it was issued to.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.AdminUser, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	user, err := s.users.FindByID(ctx, claims.ParsedUserID())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "admin no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin")
	}
	return user, nil
}

// SignOut revokes the token for the rest of its lifetime. Signing out an
// already expired token is a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if dErrors.MessageOf(err) == "token has expired" {
			return nil
		}
		return err
	}

	remaining := s.tokenTTL
	if claims.ExpiresAt != nil {
		remaining = claims.ExpiresAt.Sub(requestcontext.Now(ctx))
	}
	if remaining <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, claims.ID, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionAdminSignedOut,
		ActorID: claims.UserID,
		Subject: claims.UserID,
	})
	return nil
}

func (s *Service) authFailure(ctx context.Context, reason string, attrs ...any) {
	args := append([]any{
		"reason", reason,
		"client_ip", metadata.GetClientIP(ctx),
		"device", metadata.Device(ctx),
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	s.logger.WarnContext(ctx, "admin sign-in failed", args...)
}
